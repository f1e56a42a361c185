package adminauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL はセッショントークンの有効期間。Cookieの Max-Age にも使う。
const TokenTTL = 24 * time.Hour

// DefaultIssuer はトークンの iss クレームに入れる発行者名。
const DefaultIssuer = "catalogsite-admin"

// Claims はセッショントークンのクレーム。
type Claims struct {
	// Email はログインに使われた管理者ID。Subject と同じ値。
	Email string `json:"email"`
	// Role は付与されたロール。現状は常に RoleAdmin。
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Reason はトークン検証が失敗した理由。
// 外部には区別して見せず、テストとログのためだけに使う。
type Reason int

const (
	// ReasonNone は検証に成功したことを表す。
	ReasonNone Reason = iota
	// ReasonMalformed はトークンの構造が壊れていることを表す。
	ReasonMalformed
	// ReasonSignature は署名が検証できないことを表す（鍵違い・改ざん・アルゴリズム違い）。
	ReasonSignature
	// ReasonExpired は有効期限切れを表す。
	ReasonExpired
	// ReasonClaims は必須クレームの欠落や発行者の不一致を表す。
	ReasonClaims
)

// String はログ出力用の理由名を返す。
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMalformed:
		return "malformed"
	case ReasonSignature:
		return "signature"
	case ReasonExpired:
		return "expired"
	case ReasonClaims:
		return "claims"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Result はトークン検証の結果。Valid(claims) か Invalid(reason) のどちらか。
type Result struct {
	claims *Claims
	reason Reason
}

func validResult(claims *Claims) Result {
	return Result{claims: claims, reason: ReasonNone}
}

func invalidResult(reason Reason) Result {
	return Result{reason: reason}
}

// Valid は検証に成功したかを返す。
func (r Result) Valid() bool {
	return r.claims != nil && r.reason == ReasonNone
}

// Claims は検証に成功した場合のクレームを返す。失敗時はnil。
func (r Result) Claims() *Claims {
	return r.claims
}

// Reason は検証失敗の理由を返す。成功時は ReasonNone。
func (r Result) Reason() Reason {
	return r.reason
}

// Signer はHS256でセッショントークンの署名と検証を行う。
// 鍵は生成時に複製して保持し、以後変更しないため並行利用しても安全。
type Signer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// SignerOption は Signer の生成オプション。
type SignerOption func(*Signer)

// WithClock は現在時刻の取得関数を差し替える。テストで期限境界を固定するために使う。
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// WithIssuer は iss クレームの値を差し替える。
func WithIssuer(issuer string) SignerOption {
	return func(s *Signer) {
		s.issuer = issuer
	}
}

// NewSigner は署名鍵から Signer を生成する。鍵が空の場合はエラーを返す。
func NewSigner(key []byte, opts ...SignerOption) (*Signer, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: 署名鍵が空です", ErrInternal)
	}

	s := &Signer{
		key:    append([]byte(nil), key...),
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign は subject に対する管理者トークンを発行する。
// issuedAt は現在時刻、expiresAt はその24時間後になる。
func (s *Signer) Sign(subject string) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Email: subject,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", nil, fmt.Errorf("%w: トークンの署名に失敗: %w", ErrInternal, err)
	}
	return signed, claims, nil
}

// Verify はトークンの署名と有効期限を検証する。
// 現在時刻が expiresAt より前の場合のみ有効とする。
func (s *Signer) Verify(tokenString string) Result {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return invalidResult(reasonFor(err))
	}
	if !token.Valid {
		return invalidResult(ReasonSignature)
	}
	if claims.Subject == "" {
		return invalidResult(ReasonClaims)
	}
	return validResult(claims)
}

// reasonFor はjwtライブラリのエラーを検証失敗理由に変換する。
func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	default:
		return ReasonClaims
	}
}
