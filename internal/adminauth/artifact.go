package adminauth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultCookieName はセッショントークンを運ぶCookieの既定名。
const DefaultCookieName = "admin_token"

// Artifact はセッショントークンを運ぶCookieを扱う。
// サイト全体（Path=/）に対して HttpOnly・SameSite=Lax で発行し、
// Secure は本番環境でのみ付与する。
type Artifact struct {
	// Name はCookie名。
	Name string
	// Secure はHTTPS接続でのみ送信させるかどうか。
	Secure bool
}

// Set はトークンをCookieとしてレスポンスに設定する。Max-Age は TokenTTL。
func (a Artifact) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.Name, token, int(TokenTTL.Seconds()), "/", "", a.Secure, true)
}

// Clear はクライアントのCookieを削除する。Cookieが無い場合に呼んでも問題ない。
func (a Artifact) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.Name, "", -1, "/", "", a.Secure, true)
}

// Read はリクエストからトークンを取り出す。空値はCookie無しとして扱う。
func (a Artifact) Read(c *gin.Context) (string, bool) {
	value, err := c.Cookie(a.Name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
