// カタログサイトのエントリポイント。
// 管理者ログイン、管理画面のアクセスゲート、サイトマップ配信を担当する。
package main

import (
	"context"
	"log"

	"github.com/nao1215/catalogsite/internal/config"
	"github.com/nao1215/catalogsite/internal/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := site.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("サイトサーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("カタログサイトを起動します: :%s (env=%s)", cfg.Port, cfg.Env)
	if err := server.Run(); err != nil {
		log.Fatalf("カタログサイトの起動に失敗: %v", err)
	}
}
