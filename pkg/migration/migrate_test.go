package migration

import (
	"context"
	"database/sql"
	"slices"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// openTestDB はインメモリSQLiteを開く。
// :memory: は接続ごとに別のDBになるため接続数を1に制限する。
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRun はRun関数を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/000002_add_index.up.sql":      {Data: []byte("CREATE INDEX idx_items_name ON items(name);")},
		"migrations/000001_create_items.up.sql":   {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT NOT NULL);\nCREATE TABLE tags (id TEXT PRIMARY KEY);")},
		"migrations/000001_create_items.down.sql": {Data: []byte("DROP TABLE items;")},
		"migrations/README.md":                    {Data: []byte("ignored")},
	}

	t.Run("バージョン順に適用され2回目は何も適用しないこと", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := openTestDB(t)

		done, err := Run(ctx, db, fsys, "migrations")
		if err != nil {
			t.Fatalf("Run()でエラーが発生: %v", err)
		}
		if !slices.Equal(done, []int{1, 2}) {
			t.Errorf("適用したバージョン = %v, want [1 2]", done)
		}

		if _, err := db.Exec("INSERT INTO tags (id) VALUES ('t1')"); err != nil {
			t.Errorf("複数文のマイグレーションが適用されていない: %v", err)
		}

		again, err := Run(ctx, db, fsys, "migrations")
		if err != nil {
			t.Fatalf("2回目のRun()でエラーが発生: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("2回目に適用したバージョン = %v, want []", again)
		}
	})

	t.Run("失敗したマイグレーションは記録されないこと", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db := openTestDB(t)
		broken := fstest.MapFS{
			"m/000001_ok.up.sql":     {Data: []byte("CREATE TABLE a (id INTEGER);")},
			"m/000002_broken.up.sql": {Data: []byte("CREATE TABLE;")},
		}

		done, err := Run(ctx, db, broken, "m")
		if err == nil {
			t.Fatal("Run()がエラーを返すべきだが、nilが返った")
		}
		if !slices.Equal(done, []int{1}) {
			t.Errorf("適用したバージョン = %v, want [1]", done)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = 2").Scan(&count); err != nil {
			t.Fatalf("schema_migrationsの参照に失敗: %v", err)
		}
		if count != 0 {
			t.Error("失敗したマイグレーションが記録された")
		}
	})

	t.Run("同じバージョンが重複している場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		dup := fstest.MapFS{
			"m/000001_a.up.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
			"m/000001_b.up.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		}
		if _, err := Run(context.Background(), openTestDB(t), dup, "m"); err == nil {
			t.Error("Run()がエラーを返すべきだが、nilが返った")
		}
	})
}
