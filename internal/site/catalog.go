package site

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/catalogsite/internal/adminauth"
	"github.com/nao1215/catalogsite/internal/catalog"
)

// createCatalogItemRequest はカタログ要素作成APIのリクエストボディ。
type createCatalogItemRequest struct {
	// ParentID は親要素のID。ナビバーカテゴリでは空。
	ParentID string `json:"parent_id"`
	Title    string `json:"title" binding:"required"`
	// Slug が空の場合はタイトルから生成する。
	Slug   string         `json:"slug"`
	Status catalog.Status `json:"status"`
}

// updateCatalogStatusRequest は公開状態変更APIのリクエストボディ。
type updateCatalogStatusRequest struct {
	Status catalog.Status `json:"status" binding:"required"`
}

// handleCreateCatalogItem はパスで指定した階層にカタログ要素を作成するハンドラを返す。
func (s *Server) handleCreateCatalogItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		level, err := catalog.ParseLevel(c.Param("level"))
		if err != nil {
			respondCatalogError(c, err)
			return
		}

		limitBody(c)
		var req createCatalogItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が不正です"})
			return
		}

		id, err := s.catalog.Create(c.Request.Context(), level, req.ParentID, catalog.Item{
			Title:  req.Title,
			Slug:   req.Slug,
			Status: req.Status,
		})
		if err != nil {
			respondCatalogError(c, err)
			return
		}

		log.Printf("カタログ要素を作成: level=%s, id=%s, by=%s", level, id, subjectOf(c))
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

// handleUpdateCatalogStatus はカタログ要素の公開状態を変更するハンドラを返す。
func (s *Server) handleUpdateCatalogStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		level, err := catalog.ParseLevel(c.Param("level"))
		if err != nil {
			respondCatalogError(c, err)
			return
		}

		limitBody(c)
		var req updateCatalogStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が不正です"})
			return
		}

		id := c.Param("id")
		if err := s.catalog.SetStatus(c.Request.Context(), level, id, req.Status); err != nil {
			respondCatalogError(c, err)
			return
		}

		log.Printf("公開状態を変更: level=%s, id=%s, status=%s, by=%s", level, id, req.Status, subjectOf(c))
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// respondCatalogError はカタログ操作のエラーをHTTPステータスに変換して返す。
func respondCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": catalog.ErrNotFound.Error()})
	case errors.Is(err, catalog.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("カタログ操作エラー: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "カタログの更新に失敗しました"})
	}
}

// subjectOf はゲートが検証した管理者IDを返す。
func subjectOf(c *gin.Context) string {
	if claims, ok := adminauth.ClaimsFrom(c); ok {
		return claims.Subject
	}
	return ""
}
