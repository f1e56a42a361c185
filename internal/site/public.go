package site

import (
	"bytes"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/catalogsite/internal/catalog"
)

// handleSitemap は公開ページのサイトマップXMLを返すハンドラを返す。
// 認証とは無関係で、ゲートの保護対象にもならない。
func (s *Server) handleSitemap() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := catalog.BuildSitemap(c.Request.Context(), s.catalog, s.cfg.BaseURL, s.now())
		if err != nil {
			log.Printf("サイトマップ生成エラー: %v", err)
			c.String(http.StatusInternalServerError, "サイトマップの生成に失敗しました")
			return
		}

		var buf bytes.Buffer
		if err := catalog.WriteSitemapXML(&buf, entries); err != nil {
			log.Printf("サイトマップ出力エラー: %v", err)
			c.String(http.StatusInternalServerError, "サイトマップの生成に失敗しました")
			return
		}
		c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
	}
}

// handleRobots はrobots.txtを返すハンドラを返す。
// 管理領域とログイン画面をクロール対象から外す。
func (s *Server) handleRobots() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := catalog.Robots(s.cfg.BaseURL, []string{
			s.cfg.AdminPrefix + "/",
			s.cfg.AdminLoginPath + "/",
		})
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
	}
}
