package adminauth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextKeyClaims は認可済みクレームをGinコンテキストに格納するキー。
const contextKeyClaims = "admin_claims"

// TokenVerifier はセッショントークンを検証する。
type TokenVerifier interface {
	Verify(token string) Result
}

// Paths はゲートが扱うパスの組。
type Paths struct {
	// ProtectedPrefix は保護領域のルート（例: "/admin"）。
	ProtectedPrefix string
	// LoginPath はログイン画面のパス。保護対象から除外される。
	LoginPath string
	// DashboardPath は保護領域ルートへのアクセス時の転送先。
	DashboardPath string
}

// DefaultPaths は既定のパス設定を返す。
func DefaultPaths() Paths {
	return Paths{
		ProtectedPrefix: "/admin",
		LoginPath:       "/admin-login",
		DashboardPath:   "/admin/dashboard",
	}
}

// Transition はゲートがリクエストに対して下す判定。
type Transition int

const (
	// TransitionUnprotected は保護対象外のためそのまま通すことを表す。
	TransitionUnprotected Transition = iota
	// TransitionRedirectToDashboard は保護領域ルートからダッシュボードへ転送することを表す。
	TransitionRedirectToDashboard
	// TransitionMissingCredential はCookie無しのためログイン画面へ転送することを表す。
	TransitionMissingCredential
	// TransitionInvalidCredential は検証失敗のためCookieを削除してログイン画面へ転送することを表す。
	TransitionInvalidCredential
	// TransitionAuthorized は検証成功のためそのまま通すことを表す。
	TransitionAuthorized
)

// String はログ出力用の判定名を返す。
func (t Transition) String() string {
	switch t {
	case TransitionUnprotected:
		return "unprotected"
	case TransitionRedirectToDashboard:
		return "redirect_to_dashboard"
	case TransitionMissingCredential:
		return "missing_credential"
	case TransitionInvalidCredential:
		return "invalid_credential"
	case TransitionAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision はゲートの判定結果。Result は検証を行った場合のみ意味を持つ。
type Decision struct {
	Transition Transition
	Result     Result
}

// DenyFunc はリクエストがログイン画面へ転送される直前に呼ばれる。監査記録に使う。
type DenyFunc func(c *gin.Context, d Decision)

// Gate は保護パス配下へのリクエストを検査するアクセスゲート。
// 状態を持たず、判定はパスとCookieの有無・妥当性だけで決まる。
type Gate struct {
	paths    Paths
	verifier TokenVerifier
	artifact Artifact
	onDeny   DenyFunc
}

// GateOption は Gate の生成オプション。
type GateOption func(*Gate)

// WithDenyHook は拒否時のフックを設定する。
func WithDenyHook(fn DenyFunc) GateOption {
	return func(g *Gate) {
		g.onDeny = fn
	}
}

// NewGate は新しい Gate を生成する。
func NewGate(paths Paths, verifier TokenVerifier, artifact Artifact, opts ...GateOption) *Gate {
	g := &Gate{
		paths:    paths,
		verifier: verifier,
		artifact: artifact,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide はリクエストパスとトークンから判定を下す。副作用は無い。
func (g *Gate) Decide(path, token string, present bool) Decision {
	if path == g.paths.ProtectedPrefix {
		return Decision{Transition: TransitionRedirectToDashboard}
	}
	if !g.protects(path) {
		return Decision{Transition: TransitionUnprotected}
	}
	if !present || token == "" {
		return Decision{Transition: TransitionMissingCredential}
	}

	result := g.verifier.Verify(token)
	if !result.Valid() {
		return Decision{Transition: TransitionInvalidCredential, Result: result}
	}
	return Decision{Transition: TransitionAuthorized, Result: result}
}

// protects はパスが保護対象かを返す。ログイン画面は常に除外する。
func (g *Gate) protects(path string) bool {
	if underPath(path, g.paths.LoginPath) {
		return false
	}
	return underPath(path, g.paths.ProtectedPrefix)
}

// underPath は path が base 自身、またはそのサブパスであるかを返す。
func underPath(path, base string) bool {
	return path == base || strings.HasPrefix(path, base+"/")
}

// Middleware はゲートをGinミドルウェアとして返す。
// 拒否時は保護ハンドラを実行せずにリダイレクトする。
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := g.artifact.Read(c)
		d := g.Decide(c.Request.URL.Path, token, present)

		switch d.Transition {
		case TransitionUnprotected:
			c.Next()
		case TransitionAuthorized:
			c.Set(contextKeyClaims, d.Result.Claims())
			c.Next()
		case TransitionRedirectToDashboard:
			c.Redirect(http.StatusTemporaryRedirect, g.paths.DashboardPath)
			c.Abort()
		case TransitionInvalidCredential:
			g.artifact.Clear(c)
			g.deny(c, d)
		default:
			g.deny(c, d)
		}
	}
}

// deny はフックを呼んだうえでログイン画面へ転送する。
func (g *Gate) deny(c *gin.Context, d Decision) {
	if g.onDeny != nil {
		g.onDeny(c, d)
	}
	c.Redirect(http.StatusTemporaryRedirect, g.paths.LoginPath)
	c.Abort()
}

// ClaimsFrom はゲートを通過したリクエストのクレームを取り出す。
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}
