package site

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/catalogsite/internal/adminauth"
	"github.com/nao1215/catalogsite/pkg/event"
)

const (
	// defaultEventLimit は監査イベント一覧の既定の取得件数。
	defaultEventLimit = 50
	// maxEventLimit は監査イベント一覧の最大取得件数。
	maxEventLimit = 200
)

// handleDashboard は管理画面のトップに表示する情報を返すハンドラを返す。
func (s *Server) handleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := adminauth.ClaimsFrom(c)
		if !ok {
			// ゲートを通過していれば必ず存在する
			c.JSON(http.StatusUnauthorized, gin.H{"error": adminauth.ErrUnauthorized.Error()})
			return
		}

		stats, err := s.catalog.Stats(c.Request.Context())
		if err != nil {
			log.Printf("カタログ集計エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "カタログの集計に失敗しました"})
			return
		}

		auditEvents, err := s.audit.Count(c.Request.Context())
		if err != nil {
			log.Printf("監査イベント集計エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "監査イベントの集計に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"subject":      claims.Subject,
			"role":         claims.Role,
			"expires_at":   claims.ExpiresAt.Time,
			"catalog":      stats,
			"audit_events": auditEvents,
		})
	}
}

// handleListEvents は監査イベントを新しい順に返すハンドラを返す。
// クエリパラメータ type で種類を、limit で件数を指定できる。
func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultEventLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitは1以上の整数で指定してください"})
				return
			}
			limit = min(n, maxEventLimit)
		}

		events, err := s.audit.Recent(c.Request.Context(), event.Type(c.Query("type")), limit)
		if err != nil {
			log.Printf("監査イベント取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "監査イベントの取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
