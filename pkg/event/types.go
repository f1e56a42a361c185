package event

import (
	"encoding/json"
	"time"
)

// Type は監査イベントの種類を表す。
type Type string

const (
	// TypeAdminLoginSucceeded は管理者ログインに成功しトークンを発行したことを表す。
	TypeAdminLoginSucceeded Type = "AdminLoginSucceeded"
	// TypeAdminLoginFailed は管理者ログインに失敗したことを表す。
	TypeAdminLoginFailed Type = "AdminLoginFailed"
	// TypeAdminLoggedOut はログアウトによりセッションCookieを削除したことを表す。
	TypeAdminLoggedOut Type = "AdminLoggedOut"
	// TypeAdminAccessDenied は保護パスへのアクセスをゲートが拒否したことを表す。
	TypeAdminAccessDenied Type = "AdminAccessDenied"
)

// Event は認証ゲートウェイで発生した監査イベントを表す。
// 送信されたIDやパスワードなどの認証情報は一切含めない。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// Type はイベントの種類。
	Type Type `json:"type"`
	// Subject は認証済みの管理者ID。ログイン失敗時など未認証の場合は空。
	Subject string `json:"subject,omitempty"`
	// RemoteAddr はリクエスト元のアドレス。
	RemoteAddr string `json:"remote_addr,omitempty"`
	// RequestID はリクエストID（X-Request-ID）。
	RequestID string `json:"request_id,omitempty"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// LoginSucceededData はAdminLoginSucceededイベントのデータ。
type LoginSucceededData struct {
	// TokenID は発行したトークンのjti。
	TokenID string `json:"token_id"`
	// ExpiresAt はトークンの有効期限。
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginFailedData はAdminLoginFailedイベントのデータ。
type LoginFailedData struct {
	// Reason は失敗の分類（"bad_request" / "invalid_credentials" / "internal"）。
	Reason string `json:"reason"`
}

// LoggedOutData はAdminLoggedOutイベントのデータ。
type LoggedOutData struct {
	// HadSession はログアウト時にセッションCookieが送られてきたかどうか。
	HadSession bool `json:"had_session"`
}

// AccessDeniedData はAdminAccessDeniedイベントのデータ。
type AccessDeniedData struct {
	// Path はアクセスされたパス。
	Path string `json:"path"`
	// Transition はゲートの判定（"missing_credential" / "invalid_credential"）。
	Transition string `json:"transition"`
	// Reason はトークン検証の失敗理由。Cookie無しの場合は空。
	Reason string `json:"reason,omitempty"`
}
