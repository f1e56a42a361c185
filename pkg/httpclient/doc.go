// Package httpclient は管理API用のHTTPクライアントを提供する。
//
// Cookie Jar でセッションCookieを保持し、ログイン後の呼び出しに自動で付与する。
// リダイレクトは追跡せず、ゲートによるログイン画面への転送を
// Location 付きの *StatusError として呼び出し元に返す。
package httpclient
