package site

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/catalogsite/internal/adminauth"
	"github.com/nao1215/catalogsite/pkg/event"
	"github.com/nao1215/catalogsite/pkg/middleware"
)

// maxRequestBodyBytes はJSONリクエストボディの上限バイト数。
const maxRequestBodyBytes = 4 << 10

// limitBody はリクエストボディをmaxRequestBodyBytesまでに制限する。超えた分を読むと読み取りエラーになる。
func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)
}

// loginRequest はログインAPIのリクエストボディ。
type loginRequest struct {
	// Email は管理者の識別子。
	Email string `json:"email" binding:"required"`
	// Password は管理者のパスワード。
	Password string `json:"password" binding:"required"`
}

// handleLogin は管理者ログインを処理するハンドラを返す。
// 成功時はトークンをCookieにのみ設定し、レスポンスボディには含めない。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		limitBody(c)
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.record(c, event.TypeAdminLoginFailed, "", event.LoginFailedData{Reason: "bad_request"})
			c.JSON(http.StatusBadRequest, gin.H{"error": adminauth.ErrBadRequest.Error()})
			return
		}

		token, claims, err := s.issuer.AttemptLogin(req.Email, req.Password)
		switch {
		case err == nil:
		case errors.Is(err, adminauth.ErrBadRequest):
			s.record(c, event.TypeAdminLoginFailed, "", event.LoginFailedData{Reason: "bad_request"})
			c.JSON(http.StatusBadRequest, gin.H{"error": adminauth.ErrBadRequest.Error()})
			return
		case errors.Is(err, adminauth.ErrUnauthorized):
			// どちらの項目が誤っていたかは応答にもログにも出さない
			s.record(c, event.TypeAdminLoginFailed, "", event.LoginFailedData{Reason: "invalid_credentials"})
			c.JSON(http.StatusUnauthorized, gin.H{"error": adminauth.ErrUnauthorized.Error()})
			return
		default:
			log.Printf("トークン発行エラー: request_id=%s, error=%v", middleware.GetRequestID(c), err)
			s.record(c, event.TypeAdminLoginFailed, "", event.LoginFailedData{Reason: "internal"})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログイン処理に失敗しました"})
			return
		}

		s.artifact.Set(c, token)
		s.record(c, event.TypeAdminLoginSucceeded, claims.Subject, event.LoginSucceededData{
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		})
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleLogout はセッションCookieを削除するハンドラを返す。
// Cookieが無い場合も成功として扱う。発行済みトークン自体は有効期限まで失効しない。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, hadSession := s.artifact.Read(c)
		s.artifact.Clear(c)
		s.record(c, event.TypeAdminLoggedOut, "", event.LoggedOutData{HadSession: hadSession})
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// loginPageTemplate はログイン画面。フォームの内容をログインAPIにJSONで送信する。
var loginPageTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex">
<title>管理者ログイン</title>
</head>
<body data-dashboard="{{.Dashboard}}">
<main>
<h1>管理者ログイン</h1>
<form id="login">
<label>メールアドレス <input type="email" name="email" autocomplete="username" required></label>
<label>パスワード <input type="password" name="password" autocomplete="current-password" required></label>
<button type="submit">ログイン</button>
<p id="message" role="alert"></p>
</form>
</main>
<script>
document.getElementById("login").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const form = new FormData(ev.target);
  const res = await fetch({{.LoginAPI}}, {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({email: form.get("email"), password: form.get("password")}),
  });
  if (res.ok) {
    window.location.href = document.body.dataset.dashboard;
    return;
  }
  const body = await res.json().catch(() => ({}));
  document.getElementById("message").textContent = body.error || "ログインに失敗しました";
});
</script>
</body>
</html>
`))

// handleLoginPage はログイン画面を返すハンドラを返す。
func (s *Server) handleLoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.HTML(http.StatusOK, "login", gin.H{
			"Dashboard": s.cfg.AdminDashboardPath,
			"LoginAPI":  "/api/admin/login",
		})
	}
}
