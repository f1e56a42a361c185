// Package store はサイトが使うSQLiteデータベースの接続とスキーマ管理を提供する。
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/nao1215/catalogsite/pkg/migration"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryPath はインメモリDBを指定するパス。テストで使う。
const MemoryPath = ":memory:"

// Open はSQLiteデータベースを開き、未適用のマイグレーションを適用する。
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if path == MemoryPath {
		// :memory: は接続ごとに別のDBになる
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベース接続の確認に失敗: %w", err)
	}
	if _, err := migration.Run(ctx, db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return db, nil
}

// dsn はmodernc.org/sqlite向けの接続文字列を組み立てる。
func dsn(path string) string {
	if path == MemoryPath {
		return path + "?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
