// Package adminauth は管理画面のセッション認証ゲートウェイを提供する。
//
// 構成要素は次の3つ:
//   - Issuer: 設定済みの管理者IDと照合し、署名付きセッショントークンを発行する
//   - Gate: 保護パス配下へのリクエストごとにトークンを検証し、通過かリダイレクトかを決める
//   - Artifact: トークンを運ぶCookieの設定・読み取り・削除
//
// トークンはステートレスであり、サーバー側にセッションテーブルは持たない。
// ログアウトはクライアント側のCookieを削除するだけなので、ログアウト前に
// 持ち出されたトークンは有効期限まで有効なままである。早期に無効化する手段は
// 署名鍵のローテーションのみ。
package adminauth
