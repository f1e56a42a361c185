// Package site はカタログサイトのHTTPサーバーを提供する。
// 管理者ログイン/ログアウトAPI、保護された管理画面、
// 公開のサイトマップとrobots.txtを1つのGinエンジンで配信する。
//
// 管理領域へのアクセスはすべてアクセスゲート（adminauth.Gate）を経由する。
package site
