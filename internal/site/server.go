package site

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/catalogsite/internal/adminauth"
	"github.com/nao1215/catalogsite/internal/catalog"
	"github.com/nao1215/catalogsite/internal/config"
	"github.com/nao1215/catalogsite/internal/store"
	"github.com/nao1215/catalogsite/pkg/event"
	"github.com/nao1215/catalogsite/pkg/middleware"
)

// Server はカタログサイトのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時に読み込んだ設定。
	cfg config.Config
	// db はSQLiteデータベース接続。
	db *sql.DB
	// catalog は公開カタログのストア。
	catalog *catalog.Store
	// issuer はログイン試行を検証してトークンを発行する。
	issuer *adminauth.Issuer
	// gate は管理領域へのアクセスを検査する。
	gate *adminauth.Gate
	// artifact はセッションCookieを扱う。
	artifact adminauth.Artifact
	// audit は監査イベントの保存先。
	audit *auditStore
	// recorder は監査イベントをDBとログの両方に記録する。
	recorder event.Recorder
	// now は現在時刻を返す。
	now func() time.Time
}

// NewServer は設定を検証し、データベースを開いて新しいサーバーを生成する。
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	s, err := newServer(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// newServer は開いたデータベースを使ってサーバーを組み立てる。
// signerOptsはテストで時刻を固定するために使う。
func newServer(cfg config.Config, db *sql.DB, signerOpts ...adminauth.SignerOption) (*Server, error) {
	identity := cfg.Identity()
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	signer, err := adminauth.NewSigner([]byte(cfg.JWTSecret), signerOpts...)
	if err != nil {
		return nil, fmt.Errorf("署名鍵の初期化に失敗: %w", err)
	}

	audit := &auditStore{db: db, maxEvents: defaultMaxAuditEvents}
	s := &Server{
		cfg:      cfg,
		db:       db,
		catalog:  catalog.NewStore(db),
		issuer:   adminauth.NewIssuer(identity, signer),
		artifact: adminauth.Artifact{Name: cfg.CookieName, Secure: cfg.Production()},
		audit:    audit,
		recorder: event.MultiRecorder{audit, event.LogRecorder{}},
		now:      time.Now,
	}
	s.gate = adminauth.NewGate(cfg.Paths(), signer, s.artifact, adminauth.WithDenyHook(s.recordDenied))

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	// 404となるパスにも適用されるようにグローバルに登録する
	router.Use(s.gate.Middleware())
	router.SetHTMLTemplate(loginPageTemplate)
	s.router = router

	s.setupRoutes()
	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// Handler はサーバーのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	// 管理者認証API（ゲート対象外）
	auth := s.router.Group("/api/admin")
	{
		auth.POST("/login", s.handleLogin())
		auth.POST("/logout", s.handleLogout())
	}
	s.router.GET(s.cfg.AdminLoginPath, s.handleLoginPage())

	// 管理画面（ゲートで保護される）
	admin := s.router.Group(s.cfg.AdminPrefix)
	{
		admin.GET(s.dashboardRoute(), s.handleDashboard())
		admin.GET("/api/events", s.handleListEvents())
		admin.POST("/api/catalog/:level", s.handleCreateCatalogItem())
		admin.PATCH("/api/catalog/:level/:id/status", s.handleUpdateCatalogStatus())
	}

	// 公開エンドポイント
	s.router.GET("/sitemap.xml", s.handleSitemap())
	s.router.GET("/robots.txt", s.handleRobots())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "catalogsite"})
	})
}

// dashboardRoute はダッシュボードのパスを管理領域からの相対パスで返す。
func (s *Server) dashboardRoute() string {
	return s.cfg.AdminDashboardPath[len(s.cfg.AdminPrefix):]
}

// record は監査イベントを記録する。記録の失敗はログに残すだけで応答には影響させない。
func (s *Server) record(c *gin.Context, eventType event.Type, subject string, data any) {
	e, err := event.New(eventType, subject, data)
	if err != nil {
		log.Printf("監査イベントの生成に失敗: type=%s, error=%v", eventType, err)
		return
	}
	e.RemoteAddr = c.ClientIP()
	e.RequestID = middleware.GetRequestID(c)

	if err := s.recorder.Record(c.Request.Context(), e); err != nil {
		log.Printf("監査イベントの記録に失敗: type=%s, error=%v", eventType, err)
	}
}

// recordDenied はゲートがログイン画面へ転送したリクエストを記録する。
func (s *Server) recordDenied(c *gin.Context, d adminauth.Decision) {
	data := event.AccessDeniedData{
		Path:       c.Request.URL.Path,
		Transition: d.Transition.String(),
	}
	if d.Transition == adminauth.TransitionInvalidCredential {
		data.Reason = d.Result.Reason().String()
	}
	s.record(c, event.TypeAdminAccessDenied, "", data)
}
