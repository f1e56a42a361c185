package catalog

import (
	"strings"
)

// Robots はrobots.txtの本文を返す。
// 全クローラーに公開領域を許可し、disallowのパスを除外してサイトマップの場所を示す。
func Robots(baseURL string, disallow []string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range disallow {
		b.WriteString("Disallow: ")
		b.WriteString(p)
		b.WriteByte('\n')
	}
	b.WriteString("\nSitemap: ")
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/sitemap.xml\n")
	return b.String()
}
