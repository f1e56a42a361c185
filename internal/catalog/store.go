package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Status はカタログ要素の公開状態。
type Status string

const (
	// StatusActive は公開中。
	StatusActive Status = "Active"
	// StatusInactive は非公開。
	StatusInactive Status = "Inactive"
)

// Level はカタログ階層の深さ。
type Level int

const (
	// LevelNavbar はナビバーカテゴリ。
	LevelNavbar Level = iota + 1
	// LevelCategory はカテゴリ。
	LevelCategory
	// LevelSubCategory はサブカテゴリ。
	LevelSubCategory
	// LevelProduct は商品。
	LevelProduct
)

// Valid は公開状態が既知の値かどうかを返す。
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

var (
	// ErrNotFound は対象または親の要素が存在しない場合のエラー。
	ErrNotFound = errors.New("カタログ要素が見つかりません")
	// ErrInvalid は作成・更新内容が不正な場合のエラー。
	ErrInvalid = errors.New("カタログ要素の内容が不正です")
	// ErrConflict は同じ親の下でスラッグが重複した場合のエラー。
	ErrConflict = errors.New("スラッグが重複しています")
)

// timeLayout はupdated_at列の保存形式。
const timeLayout = "2006-01-02T15:04:05Z"

// levelTable は階層ごとのテーブル名と親を参照する列名。
var levelTable = map[Level]struct{ table, parentColumn string }{
	LevelNavbar:      {"navbar_categories", ""},
	LevelCategory:    {"categories", "navbar_category_id"},
	LevelSubCategory: {"sub_categories", "category_id"},
	LevelProduct:     {"products", "sub_category_id"},
}

// ParseLevel はテーブル名（navbar_categories など）から階層を返す。
func ParseLevel(name string) (Level, error) {
	for level, meta := range levelTable {
		if meta.table == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: 不明な階層 %q", ErrInvalid, name)
}

// String は階層のテーブル名を返す。
func (l Level) String() string {
	if meta, ok := levelTable[l]; ok {
		return meta.table
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// activePagesQuery は祖先がすべて公開中の要素だけをスラッグの経路付きで返すクエリ。
var activePagesQuery = map[Level]string{
	LevelNavbar: `
		SELECT n.slug, '', '', '', n.updated_at
		FROM navbar_categories n
		WHERE n.status = 'Active'
		ORDER BY n.slug`,
	LevelCategory: `
		SELECT n.slug, c.slug, '', '', c.updated_at
		FROM categories c
		JOIN navbar_categories n ON n.id = c.navbar_category_id AND n.status = 'Active'
		WHERE c.status = 'Active'
		ORDER BY n.slug, c.slug`,
	LevelSubCategory: `
		SELECT n.slug, c.slug, s.slug, '', s.updated_at
		FROM sub_categories s
		JOIN categories c ON c.id = s.category_id AND c.status = 'Active'
		JOIN navbar_categories n ON n.id = c.navbar_category_id AND n.status = 'Active'
		WHERE s.status = 'Active'
		ORDER BY n.slug, c.slug, s.slug`,
	LevelProduct: `
		SELECT n.slug, c.slug, s.slug, p.slug, p.updated_at
		FROM products p
		JOIN sub_categories s ON s.id = p.sub_category_id AND s.status = 'Active'
		JOIN categories c ON c.id = s.category_id AND c.status = 'Active'
		JOIN navbar_categories n ON n.id = c.navbar_category_id AND n.status = 'Active'
		WHERE p.status = 'Active'
		ORDER BY n.slug, c.slug, s.slug, p.slug`,
}

// Item は新規作成するカタログ要素。
type Item struct {
	Title string
	// Slug が空の場合はTitleから生成する。
	Slug   string
	Status Status
	// UpdatedAt がゼロ値の場合は作成時刻になる。
	UpdatedAt time.Time
}

// Page は公開ページとして辿れるカタログ要素。
type Page struct {
	Level Level
	// Slugs はナビバーカテゴリから自身までのスラッグ。
	Slugs     []string
	UpdatedAt time.Time
}

// LevelStats は1階層分の公開状態ごとの件数。
type LevelStats struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Stats はダッシュボードに表示するカタログの件数。
type Stats struct {
	NavbarCategories LevelStats `json:"navbar_categories"`
	Categories       LevelStats `json:"categories"`
	SubCategories    LevelStats `json:"sub_categories"`
	Products         LevelStats `json:"products"`
}

// Store はSQLite上のカタログを扱う。
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore は新しいStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create は指定階層に要素を作成してIDを返す。
// ナビバーカテゴリ以外はparentIDに親要素のIDを指定する。
func (s *Store) Create(ctx context.Context, level Level, parentID string, item Item) (string, error) {
	meta, ok := levelTable[level]
	if !ok {
		return "", fmt.Errorf("%w: 不明な階層 %d", ErrInvalid, level)
	}
	if meta.parentColumn != "" && parentID == "" {
		return "", fmt.Errorf("%w: 親要素のIDが必要です", ErrInvalid)
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return "", fmt.Errorf("%w: タイトルが空です", ErrInvalid)
	}
	if item.Slug == "" {
		item.Slug = Slugify(item.Title)
	} else if item.Slug != Slugify(item.Slug) {
		return "", fmt.Errorf("%w: スラッグは英小文字・数字・ハイフンのみ使用できます: %q", ErrInvalid, item.Slug)
	}
	if item.Slug == "" {
		return "", fmt.Errorf("%w: タイトルからスラッグを生成できません: %q", ErrInvalid, item.Title)
	}
	if item.Status == "" {
		item.Status = StatusActive
	}
	if !item.Status.Valid() {
		return "", fmt.Errorf("%w: 不明な公開状態 %q", ErrInvalid, item.Status)
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = s.now()
	}

	id := uuid.New().String()
	updatedAt := item.UpdatedAt.UTC().Format(timeLayout)

	var err error
	if meta.parentColumn == "" {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO "+meta.table+" (id, title, slug, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			id, item.Title, item.Slug, string(item.Status), updatedAt, updatedAt)
	} else {
		if err := s.ensureParent(ctx, level-1, parentID); err != nil {
			return "", err
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO "+meta.table+" (id, "+meta.parentColumn+", title, slug, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, parentID, item.Title, item.Slug, string(item.Status), updatedAt, updatedAt)
	}
	if isConstraintError(err) {
		return "", fmt.Errorf("%w: %s", ErrConflict, item.Slug)
	}
	if err != nil {
		return "", fmt.Errorf("%sへの追加に失敗: %w", meta.table, err)
	}
	return id, nil
}

// isConstraintError はSQLiteの制約違反エラーかどうかを返す。
// 親の存在と公開状態は事前に検査しているため、残るのは一意制約のみ。
func isConstraintError(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// ensureParent は親要素が存在することを確認する。
func (s *Store) ensureParent(ctx context.Context, level Level, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+levelTable[level].table+" WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("親要素の確認に失敗: %w", err)
	}
	return nil
}

// SetStatus は要素の公開状態を変更し、更新日時を進める。
func (s *Store) SetStatus(ctx context.Context, level Level, id string, status Status) error {
	meta, ok := levelTable[level]
	if !ok {
		return fmt.Errorf("%w: 不明な階層 %d", ErrInvalid, level)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: 不明な公開状態 %q", ErrInvalid, status)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE "+meta.table+" SET status = ?, updated_at = ? WHERE id = ?",
		string(status), s.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("%sの更新に失敗: %w", meta.table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ActivePages は指定階層の公開ページを返す。
// 祖先のいずれかが非公開の要素は含めない。
func (s *Store) ActivePages(ctx context.Context, level Level) ([]Page, error) {
	query, ok := activePagesQuery[level]
	if !ok {
		return nil, fmt.Errorf("不明な階層: %d", level)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("公開ページの取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pages []Page
	for rows.Next() {
		var slugs [4]string
		var updatedAt string
		if err := rows.Scan(&slugs[0], &slugs[1], &slugs[2], &slugs[3], &updatedAt); err != nil {
			return nil, fmt.Errorf("公開ページの読み取りに失敗: %w", err)
		}
		t, err := time.Parse(timeLayout, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("更新日時の解析に失敗: %q: %w", updatedAt, err)
		}
		pages = append(pages, Page{
			Level:     level,
			Slugs:     append([]string(nil), slugs[:level]...),
			UpdatedAt: t,
		})
	}
	return pages, rows.Err()
}

// Stats は階層ごとの公開・非公開の件数を返す。
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	targets := map[Level]*LevelStats{
		LevelNavbar:      &st.NavbarCategories,
		LevelCategory:    &st.Categories,
		LevelSubCategory: &st.SubCategories,
		LevelProduct:     &st.Products,
	}
	for level, dst := range targets {
		err := s.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(status = 'Active'), 0), COALESCE(SUM(status = 'Inactive'), 0) FROM "+levelTable[level].table,
		).Scan(&dst.Active, &dst.Inactive)
		if err != nil {
			return Stats{}, fmt.Errorf("%sの集計に失敗: %w", levelTable[level].table, err)
		}
	}
	return st, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify はタイトルをURL用のスラッグに変換する。
// 英小文字と数字以外はハイフンにまとめる。
func Slugify(title string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
}
