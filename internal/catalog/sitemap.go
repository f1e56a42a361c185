package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ChangeFrequency はサイトマップのchangefreq値。
type ChangeFrequency string

const (
	// ChangeDaily は毎日更新されるページ。
	ChangeDaily ChangeFrequency = "daily"
	// ChangeWeekly は毎週更新されるページ。
	ChangeWeekly ChangeFrequency = "weekly"
	// ChangeMonthly は毎月更新されるページ。
	ChangeMonthly ChangeFrequency = "monthly"
)

// Entry はサイトマップの1行。
type Entry struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency ChangeFrequency
	Priority        float64
}

// staticRoute はDBに依存しない固定ページ。
type staticRoute struct {
	path      string
	frequency ChangeFrequency
	priority  float64
}

// staticRoutes はトップ、会社情報、業種別ソリューション、規約類のページ。
var staticRoutes = []staticRoute{
	{"", ChangeDaily, 1.0},
	{"/about", ChangeMonthly, 0.8},
	{"/contact", ChangeMonthly, 0.8},
	{"/building", ChangeWeekly, 0.8},
	{"/retail", ChangeWeekly, 0.8},
	{"/bank", ChangeWeekly, 0.8},
	{"/school", ChangeWeekly, 0.8},
	{"/shopping-mall", ChangeWeekly, 0.8},
	{"/hospital", ChangeWeekly, 0.8},
	{"/warehouse", ChangeWeekly, 0.8},
	{"/stadium", ChangeWeekly, 0.8},
	{"/hotel", ChangeWeekly, 0.8},
	{"/solutions", ChangeWeekly, 0.8},
	{"/smart-Intrusion-Prevention", ChangeWeekly, 0.8},
	{"/privacy", ChangeMonthly, 0.5},
	{"/terms", ChangeMonthly, 0.5},
	{"/cookies", ChangeMonthly, 0.5},
}

// levelRoutes は階層ごとの更新頻度と優先度。上の階層から順に並べる。
var levelRoutes = []struct {
	level     Level
	frequency ChangeFrequency
	priority  float64
}{
	{LevelNavbar, ChangeWeekly, 0.7},
	{LevelCategory, ChangeWeekly, 0.6},
	{LevelSubCategory, ChangeWeekly, 0.5},
	{LevelProduct, ChangeMonthly, 0.4},
}

// PageLister は公開ページを階層ごとに列挙する。
type PageLister interface {
	ActivePages(ctx context.Context, level Level) ([]Page, error)
}

// BuildSitemap は固定ページと公開中のカタログページからサイトマップを組み立てる。
// 固定ページの最終更新日時はnowになる。
func BuildSitemap(ctx context.Context, pages PageLister, baseURL string, now time.Time) ([]Entry, error) {
	base := strings.TrimRight(baseURL, "/")

	entries := make([]Entry, 0, len(staticRoutes))
	for _, r := range staticRoutes {
		entries = append(entries, Entry{
			URL:             base + r.path,
			LastModified:    now,
			ChangeFrequency: r.frequency,
			Priority:        r.priority,
		})
	}

	for _, lr := range levelRoutes {
		list, err := pages.ActivePages(ctx, lr.level)
		if err != nil {
			return nil, fmt.Errorf("サイトマップの生成に失敗: %w", err)
		}
		for _, p := range list {
			lastModified := p.UpdatedAt
			if lastModified.IsZero() {
				lastModified = now
			}
			entries = append(entries, Entry{
				URL:             base + slugPath(p.Slugs),
				LastModified:    lastModified,
				ChangeFrequency: lr.frequency,
				Priority:        lr.priority,
			})
		}
	}
	return entries, nil
}

// slugPath はスラッグを / 区切りのエスケープ済みパスにする。
func slugPath(slugs []string) string {
	var b strings.Builder
	for _, s := range slugs {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// sitemapNamespace はsitemaps.orgのスキーマ。
const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// WriteSitemapXML はサイトマップをXMLとして書き出す。
func WriteSitemapXML(w io.Writer, entries []Entry) error {
	set := xmlURLSet{Xmlns: sitemapNamespace, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		u := xmlURL{
			Loc:        e.URL,
			ChangeFreq: string(e.ChangeFrequency),
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
		if !e.LastModified.IsZero() {
			u.LastMod = e.LastModified.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("サイトマップのXML出力に失敗: %w", err)
	}
	return enc.Close()
}
