// Package config はサイトの起動設定を読み込む。
// 既定値、CONFIG_FILE で指定したYAMLファイル、環境変数の順に上書きする。
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/catalogsite/internal/adminauth"
)

const (
	// EnvProduction は本番環境を表すAPP_ENVの値。
	EnvProduction = "production"
	// EnvDevelopment は開発環境を表すAPP_ENVの値。
	EnvDevelopment = "development"

	// DevJWTSecret は開発環境でJWT_SECRET未設定時に使う署名鍵。本番では拒否する。
	DevJWTSecret = "dev-secret-key"

	// minProductionSecretLen は本番環境で要求する署名鍵の最小バイト数。
	minProductionSecretLen = 32
)

// Config はサイト全体の設定値。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `yaml:"port"`
	// Env は実行環境。production の場合のみCookieにSecure属性を付ける。
	Env string `yaml:"env"`
	// DatabasePath はSQLiteファイルのパス。
	DatabasePath string `yaml:"database_path"`

	// AdminEmail は唯一の管理者の識別子。
	AdminEmail string `yaml:"admin_email"`
	// AdminPassword は管理者のパスワード。
	AdminPassword string `yaml:"admin_password"`
	// JWTSecret はセッショントークンの署名鍵。
	JWTSecret string `yaml:"jwt_secret"`

	// AdminPrefix はゲートで保護する管理領域のパス接頭辞。
	AdminPrefix string `yaml:"admin_prefix"`
	// AdminLoginPath はログイン画面のパス。管理領域内でもゲートの対象外。
	AdminLoginPath string `yaml:"admin_login_path"`
	// AdminDashboardPath はログイン済みで管理領域の入口を開いた際の転送先。
	AdminDashboardPath string `yaml:"admin_dashboard_path"`
	// CookieName はセッショントークンを運ぶCookieの名前。
	CookieName string `yaml:"cookie_name"`

	// BaseURL はサイトマップとrobots.txtに出力する公開URL。
	BaseURL string `yaml:"base_url"`
	// AllowedOrigins はCookie付きのクロスオリジン呼び出しを許可するオリジン。
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default は既定値の設定を返す。管理者情報と署名鍵は含まない。
func Default() Config {
	paths := adminauth.DefaultPaths()
	return Config{
		Port:               "8080",
		Env:                EnvDevelopment,
		DatabasePath:       "/data/site.db",
		AdminPrefix:        paths.ProtectedPrefix,
		AdminLoginPath:     paths.LoginPath,
		AdminDashboardPath: paths.DashboardPath,
		CookieName:         adminauth.DefaultCookieName,
		BaseURL:            "http://localhost:8080",
	}
}

// Load はプロセスの環境から設定を読み込む。
func Load() (Config, error) {
	return load(os.Getenv)
}

// load は環境変数の参照関数を受け取って設定を組み立てる。
func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.mergeEnv(getenv)

	if cfg.JWTSecret == "" && !cfg.Production() {
		log.Printf("[Config] JWT_SECRET が未設定のため開発用の署名鍵を使用します")
		cfg.JWTSecret = DevJWTSecret
	}
	return cfg, nil
}

// mergeFile はYAMLファイルの値で設定を上書きする。ファイルに無い項目は変更しない。
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗: %s: %w", path, err)
	}
	return nil
}

// mergeEnv は設定されている環境変数の値で設定を上書きする。
func (c *Config) mergeEnv(getenv func(string) string) {
	c.Port = getEnvOr(getenv, "PORT", c.Port)
	c.Env = getEnvOr(getenv, "APP_ENV", c.Env)
	c.DatabasePath = getEnvOr(getenv, "DATABASE_PATH", c.DatabasePath)
	c.AdminEmail = getEnvOr(getenv, "ADMIN_EMAIL", c.AdminEmail)
	c.AdminPassword = getEnvOr(getenv, "ADMIN_PASSWORD", c.AdminPassword)
	c.JWTSecret = getEnvOr(getenv, "JWT_SECRET", c.JWTSecret)
	c.AdminPrefix = getEnvOr(getenv, "ADMIN_PREFIX", c.AdminPrefix)
	c.AdminLoginPath = getEnvOr(getenv, "ADMIN_LOGIN_PATH", c.AdminLoginPath)
	c.AdminDashboardPath = getEnvOr(getenv, "ADMIN_DASHBOARD_PATH", c.AdminDashboardPath)
	c.CookieName = getEnvOr(getenv, "ADMIN_COOKIE_NAME", c.CookieName)
	c.BaseURL = getEnvOr(getenv, "SITE_BASE_URL", c.BaseURL)

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
}

// Production は本番環境かどうかを返す。
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// Validate は起動前に設定の整合性を検査する。問題はすべてまとめて返す。
func (c Config) Validate() error {
	var errs []error

	if c.AdminEmail == "" {
		errs = append(errs, errors.New("ADMIN_EMAIL が設定されていません"))
	}
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD が設定されていません"))
	}

	switch {
	case c.JWTSecret == "":
		errs = append(errs, errors.New("JWT_SECRET が設定されていません"))
	case c.Production() && c.JWTSecret == DevJWTSecret:
		errs = append(errs, errors.New("本番環境で開発用の JWT_SECRET は使用できません"))
	case c.Production() && len(c.JWTSecret) < minProductionSecretLen:
		errs = append(errs, fmt.Errorf("本番環境の JWT_SECRET は %d バイト以上必要です", minProductionSecretLen))
	}

	if c.CookieName == "" {
		errs = append(errs, errors.New("ADMIN_COOKIE_NAME が空です"))
	}
	if err := validatePaths(c.Paths()); err != nil {
		errs = append(errs, err)
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("SITE_BASE_URL が絶対URLではありません: %q", c.BaseURL))
	}

	return errors.Join(errs...)
}

// Identity は管理者の認証情報を返す。
func (c Config) Identity() adminauth.Identity {
	return adminauth.Identity{Identifier: c.AdminEmail, Secret: c.AdminPassword}
}

// Paths はアクセスゲートが使うパス設定を返す。
func (c Config) Paths() adminauth.Paths {
	return adminauth.Paths{
		ProtectedPrefix: c.AdminPrefix,
		LoginPath:       c.AdminLoginPath,
		DashboardPath:   c.AdminDashboardPath,
	}
}

// validatePaths はゲートのパス設定を検査する。
// ダッシュボードは保護領域の内側かつログインページの外側に置く。
func validatePaths(p adminauth.Paths) error {
	for name, v := range map[string]string{
		"ADMIN_PREFIX":         p.ProtectedPrefix,
		"ADMIN_LOGIN_PATH":     p.LoginPath,
		"ADMIN_DASHBOARD_PATH": p.DashboardPath,
	} {
		if !strings.HasPrefix(v, "/") || v == "/" || strings.HasSuffix(v, "/") {
			return fmt.Errorf("%s は / で始まり / で終わらないパスである必要があります: %q", name, v)
		}
	}
	if !strings.HasPrefix(p.DashboardPath, p.ProtectedPrefix+"/") {
		return fmt.Errorf("ADMIN_DASHBOARD_PATH は %s の配下である必要があります: %q", p.ProtectedPrefix, p.DashboardPath)
	}
	if p.LoginPath == p.ProtectedPrefix {
		return fmt.Errorf("ADMIN_LOGIN_PATH と ADMIN_PREFIX が同じです: %q", p.LoginPath)
	}
	if p.DashboardPath == p.LoginPath || strings.HasPrefix(p.DashboardPath, p.LoginPath+"/") {
		return fmt.Errorf("ADMIN_DASHBOARD_PATH がログインページ配下にあります: %q", p.DashboardPath)
	}
	return nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(getenv func(string) string, key, defaultValue string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// splitList はカンマ区切りの値を空要素を除いて分割する。
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
