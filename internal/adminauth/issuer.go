package adminauth

import (
	"errors"
	"fmt"
)

// TokenSigner はセッショントークンを発行する。
type TokenSigner interface {
	Sign(subject string) (string, *Claims, error)
}

// Issuer はログイン試行を管理者設定と照合し、成功時にトークンを発行する。
type Issuer struct {
	// identity は照合対象の管理者。
	identity Identity
	// signer はトークンの署名を行う。
	signer TokenSigner
}

// NewIssuer は新しい Issuer を生成する。
func NewIssuer(identity Identity, signer TokenSigner) *Issuer {
	return &Issuer{
		identity: identity,
		signer:   signer,
	}
}

// AttemptLogin はログインを試行し、成功時に署名済みトークンとそのクレームを返す。
//
// どちらかの項目が空の場合は ErrBadRequest、不一致の場合は ErrUnauthorized を返す。
// 署名に失敗した場合は ErrInternal をラップしたエラーを返す。
func (i *Issuer) AttemptLogin(identifier, secret string) (string, *Claims, error) {
	if identifier == "" || secret == "" {
		return "", nil, ErrBadRequest
	}
	if !i.identity.matches(identifier, secret) {
		return "", nil, ErrUnauthorized
	}

	token, claims, err := i.signer.Sign(identifier)
	if err != nil {
		if errors.Is(err, ErrInternal) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return token, claims, nil
}
