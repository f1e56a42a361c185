package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/catalogsite/internal/store"
)

// testNow はテストで使う固定時刻。
var testNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

// newTestStore はマイグレーション済みのインメモリDBを使うStoreを生成する。
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := store.Open(context.Background(), store.MemoryPath)
	if err != nil {
		t.Fatalf("インメモリDBの初期化に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewStore(db)
	s.now = func() time.Time { return testNow }
	return s
}

// mustCreate はカタログ要素を作成し、失敗した場合はテストを中断する。
func mustCreate(t *testing.T, s *Store, level Level, parentID string, item Item) string {
	t.Helper()

	id, err := s.Create(context.Background(), level, parentID, item)
	if err != nil {
		t.Fatalf("Create(%d, %q)でエラーが発生: %v", level, item.Title, err)
	}
	return id
}

// pageURLs はページのスラッグ経路を / 区切りで返す。
func pageURLs(pages []Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, strings.Join(p.Slugs, "/"))
	}
	return out
}

// TestStoreCreate はCreate関数を検証する。
func TestStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("スラッグ未指定の場合はタイトルから生成すること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		mustCreate(t, s, LevelNavbar, "", Item{Title: "Video Surveillance"})

		pages, err := s.ActivePages(context.Background(), LevelNavbar)
		if err != nil {
			t.Fatalf("ActivePages()でエラーが発生: %v", err)
		}
		if got := pageURLs(pages); !slices.Equal(got, []string{"video-surveillance"}) {
			t.Errorf("スラッグ = %v, want [video-surveillance]", got)
		}
		if !pages[0].UpdatedAt.Equal(testNow) {
			t.Errorf("UpdatedAt = %v, want %v", pages[0].UpdatedAt, testNow)
		}
	})

	t.Run("存在しない親を指定した場合はErrNotFoundを返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		_, err := s.Create(context.Background(), LevelCategory, "missing", Item{Title: "Cameras"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("同じ親の下でスラッグが重複する場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		nav := mustCreate(t, s, LevelNavbar, "", Item{Title: "Security"})
		mustCreate(t, s, LevelCategory, nav, Item{Title: "Cameras"})

		_, err := s.Create(context.Background(), LevelCategory, nav, Item{Title: "cameras"})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("タイトルが空の場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		_, err := s.Create(context.Background(), LevelNavbar, "", Item{Title: "  "})
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("err = %v, want ErrInvalid", err)
		}
	})

	t.Run("不正なスラッグや公開状態はErrInvalidを返すこと", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		items := []Item{
			{Title: "Security", Slug: "Security Cameras"},
			{Title: "Security", Status: "Draft"},
		}
		for _, item := range items {
			if _, err := s.Create(context.Background(), LevelNavbar, "", item); !errors.Is(err, ErrInvalid) {
				t.Errorf("Create(%+v): err = %v, want ErrInvalid", item, err)
			}
		}
	})
}

// TestParseLevel はParseLevel関数を検証する。
func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []Level{LevelNavbar, LevelCategory, LevelSubCategory, LevelProduct} {
		got, err := ParseLevel(level.String())
		if err != nil {
			t.Errorf("ParseLevel(%q)でエラーが発生: %v", level, err)
			continue
		}
		if got != level {
			t.Errorf("ParseLevel(%q) = %d, want %d", level, got, level)
		}
	}

	if _, err := ParseLevel("brands"); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

// TestStoreActivePages はActivePages関数を検証する。
func TestStoreActivePages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	security := mustCreate(t, s, LevelNavbar, "", Item{Title: "Security"})
	hidden := mustCreate(t, s, LevelNavbar, "", Item{Title: "Hidden", Status: StatusInactive})

	cameras := mustCreate(t, s, LevelCategory, security, Item{Title: "Cameras"})
	legacy := mustCreate(t, s, LevelCategory, security, Item{Title: "Legacy", Status: StatusInactive})
	orphan := mustCreate(t, s, LevelCategory, hidden, Item{Title: "Orphan"})

	dome := mustCreate(t, s, LevelSubCategory, cameras, Item{Title: "Dome"})
	mustCreate(t, s, LevelSubCategory, legacy, Item{Title: "Analog"})
	orphanSub := mustCreate(t, s, LevelSubCategory, orphan, Item{Title: "Lost"})

	mustCreate(t, s, LevelProduct, dome, Item{Title: "DC-200", UpdatedAt: testNow.Add(-48 * time.Hour)})
	mustCreate(t, s, LevelProduct, dome, Item{Title: "DC-100", Status: StatusInactive})
	mustCreate(t, s, LevelProduct, orphanSub, Item{Title: "Ghost"})

	tests := []struct {
		level Level
		want  []string
	}{
		{LevelNavbar, []string{"security"}},
		{LevelCategory, []string{"security/cameras"}},
		{LevelSubCategory, []string{"security/cameras/dome"}},
		{LevelProduct, []string{"security/cameras/dome/dc-200"}},
	}
	for _, tt := range tests {
		pages, err := s.ActivePages(ctx, tt.level)
		if err != nil {
			t.Fatalf("ActivePages(%d)でエラーが発生: %v", tt.level, err)
		}
		if got := pageURLs(pages); !slices.Equal(got, tt.want) {
			t.Errorf("ActivePages(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}

	products, err := s.ActivePages(ctx, LevelProduct)
	if err != nil {
		t.Fatalf("ActivePages()でエラーが発生: %v", err)
	}
	if want := testNow.Add(-48 * time.Hour); !products[0].UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", products[0].UpdatedAt, want)
	}

	t.Run("親を非公開にすると子孫も除外されること", func(t *testing.T) {
		if err := s.SetStatus(ctx, LevelCategory, cameras, StatusInactive); err != nil {
			t.Fatalf("SetStatus()でエラーが発生: %v", err)
		}
		pages, err := s.ActivePages(ctx, LevelProduct)
		if err != nil {
			t.Fatalf("ActivePages()でエラーが発生: %v", err)
		}
		if len(pages) != 0 {
			t.Errorf("ActivePages(LevelProduct) = %v, want []", pageURLs(pages))
		}
	})

	t.Run("不明な階層はエラーになること", func(t *testing.T) {
		if _, err := s.ActivePages(ctx, Level(9)); err == nil {
			t.Error("ActivePages()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestStoreSetStatus はSetStatus関数を検証する。
func TestStoreSetStatus(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.SetStatus(context.Background(), LevelProduct, "missing", StatusInactive)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := s.SetStatus(context.Background(), LevelProduct, "missing", "Archived"); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

// TestStoreStats はStats関数を検証する。
func TestStoreStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats()でエラーが発生: %v", err)
	}
	if empty != (Stats{}) {
		t.Errorf("空のカタログの集計 = %+v, want zero", empty)
	}

	nav := mustCreate(t, s, LevelNavbar, "", Item{Title: "Security"})
	mustCreate(t, s, LevelNavbar, "", Item{Title: "Archive", Status: StatusInactive})
	cat := mustCreate(t, s, LevelCategory, nav, Item{Title: "Cameras"})
	sub := mustCreate(t, s, LevelSubCategory, cat, Item{Title: "Dome"})
	mustCreate(t, s, LevelProduct, sub, Item{Title: "DC-200"})
	mustCreate(t, s, LevelProduct, sub, Item{Title: "DC-100", Status: StatusInactive})
	mustCreate(t, s, LevelProduct, sub, Item{Title: "DC-300", Status: StatusInactive})

	got, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats()でエラーが発生: %v", err)
	}
	want := Stats{
		NavbarCategories: LevelStats{Active: 1, Inactive: 1},
		Categories:       LevelStats{Active: 1},
		SubCategories:    LevelStats{Active: 1},
		Products:         LevelStats{Active: 1, Inactive: 2},
	}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

// TestSlugify はSlugify関数を検証する。
func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Cameras", "cameras"},
		{"Smart Home & Office", "smart-home-office"},
		{"  DC-200 (4K)  ", "dc-200-4k"},
		{"***", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
