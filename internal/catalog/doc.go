// Package catalog は公開カタログ（ナビバーカテゴリ、カテゴリ、サブカテゴリ、商品）の
// 読み書きと、それを元にしたサイトマップおよびrobots.txtの生成を担う。
//
// 管理者認証とは独立しており、公開ページは認証なしで参照される。
package catalog
