// Package middleware はサイト全体で使う共通のGinミドルウェアを提供する。
//
// パニックリカバリ、リクエストIDの付与、管理APIを別オリジンから
// Cookie付きで呼び出すためのCORS設定を含む。
// 管理画面のアクセスゲートは internal/adminauth にある。
package middleware
