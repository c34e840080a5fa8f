package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fitpulse/identity/internal/app"
	"github.com/fitpulse/identity/internal/auth"
	"github.com/fitpulse/identity/internal/bootstrap"
	"github.com/fitpulse/identity/internal/cache"
	cachemem "github.com/fitpulse/identity/internal/cache/memory"
	cacheredis "github.com/fitpulse/identity/internal/cache/redis"
	"github.com/fitpulse/identity/internal/config"
	"github.com/fitpulse/identity/internal/email"
	httpx "github.com/fitpulse/identity/internal/http"
	"github.com/fitpulse/identity/internal/http/router"
	jwtx "github.com/fitpulse/identity/internal/jwt"
	"github.com/fitpulse/identity/internal/oauth"
	"github.com/fitpulse/identity/internal/oauth/github"
	"github.com/fitpulse/identity/internal/oauth/google"
	"github.com/fitpulse/identity/internal/observability/logger"
	"github.com/fitpulse/identity/internal/rate"
	"github.com/fitpulse/identity/internal/security/password"
	"github.com/fitpulse/identity/internal/store"
	storemem "github.com/fitpulse/identity/internal/store/memory"
	storepg "github.com/fitpulse/identity/internal/store/pg"
	pgmigrations "github.com/fitpulse/identity/migrations/postgres"
)

func main() {
	// .env es best-effort: en prod las vars vienen del entorno.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "identity",
		Short: "FitPulse identity: cuentas, sesiones y verificación de email",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.example.yaml", "path al YAML de config")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down] [steps]",
		Short: "Aplica las migraciones embebidas de Postgres",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			steps := 0
			if len(args) >= 1 && args[0] != "" {
				action = strings.ToLower(args[0])
			}
			if len(args) >= 2 {
				if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
					steps = n
				}
			}
			return runMigrate(configPath, action, steps)
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "identity"})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	ctx := context.Background()

	// Store
	var (
		st      store.CredentialStore
		pgPool  func() *pgxpool.Pool
		cleanup []func()
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pg, err := storepg.New(ctx, cfg.Storage.DSN, cfg.Storage.MaxConns)
		if err != nil {
			return fmt.Errorf("pg store: %w", err)
		}
		st = pg
		pgPool = pg.Pool
		cleanup = append(cleanup, pg.Close)
	default:
		log.Warn("using in-memory store, data is volatile")
		st = storemem.New()
	}

	// Cache
	var ch cache.Cache
	switch cfg.Cache.Kind {
	case "redis":
		r := cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		if err := r.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		ch = r
	default:
		ch = cachemem.New()
	}
	cleanup = append(cleanup, func() { _ = ch.Close() })

	// Mailer
	var snd email.Sender
	if cfg.SMTP.Host != "" {
		s := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		s.TLSMode = cfg.SMTP.TLS
		s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		snd = s
	} else {
		log.Warn("smtp not configured, mails go to the log")
		snd = email.LogSender{}
	}

	// Core
	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret))
	if cfg.JWT.AccessTTL > 0 {
		issuer.AccessTTL = cfg.JWT.AccessTTL.Std()
	}
	if cfg.JWT.RefreshTTL > 0 {
		issuer.RefreshTTL = cfg.JWT.RefreshTTL.Std()
	}
	hasher := password.New(password.DefaultCost)
	if err := bootstrap.EnsureAdmin(ctx, st, hasher); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	svc := auth.NewService(st, hasher, issuer, snd, ch, cfg.Auth.BaseURL)
	if cfg.Auth.VerifyTTL > 0 {
		svc.VerifyTTL = cfg.Auth.VerifyTTL.Std()
	}
	if cfg.Auth.ResetTTL > 0 {
		svc.ResetTTL = cfg.Auth.ResetTTL.Std()
	}

	// Providers sociales
	providers := map[string]oauth.Provider{}
	if p := cfg.Providers.Google; p.Enabled {
		providers["google"] = google.New(p.ClientID, p.ClientSecret, p.RedirectURL, p.Scopes)
	}
	if p := cfg.Providers.GitHub; p.Enabled {
		providers["github"] = github.New(p.ClientID, p.ClientSecret, p.RedirectURL)
	}

	// Rate limiting
	var loginLimiter, forgotLimiter rate.Limiter = rate.Noop{}, rate.Noop{}
	if cfg.Rate.Enabled {
		loginLimiter = rate.NewFixedWindow(ch, "rl:login:", cfg.Rate.Login.Limit, cfg.Rate.Login.Window.Std())
		forgotLimiter = rate.NewFixedWindow(ch, "rl:forgot:", cfg.Rate.Forgot.Limit, cfg.Rate.Forgot.Window.Std())
	}

	container := &app.Container{
		Cfg:           cfg,
		Store:         st,
		Cache:         ch,
		Issuer:        issuer,
		Auth:          svc,
		Providers:     providers,
		LoginLimiter:  loginLimiter,
		ForgotLimiter: forgotLimiter,
	}

	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: pgPool})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	srv := httpx.NewServer(cfg.Server.Addr, router.New(container, metricsHandler))

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutting down", logger.String("signal", sig.String()))
		if err := httpx.Shutdown(srv, 15*time.Second); err != nil {
			log.Error("shutdown", logger.Err(err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
	}

	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
	return nil
}

// runMigrate aplica las migraciones embebidas en orden ascendente (up) o
// descendente (down). steps=0 aplica todas.
func runMigrate(configPath, action string, steps int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if cfg.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn requerido para migrar")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	var suffix string
	switch action {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		return fmt.Errorf("acción desconocida %q (up | down [steps])", action)
	}

	files, err := listEmbeddedSQL(suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("nada para aplicar")
		return nil
	}
	sort.Strings(files)
	if action == "down" {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	for _, f := range files {
		b, err := fs.ReadFile(pgmigrations.FS, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		start := time.Now()
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		fmt.Printf("OK %s (%s)\n", f, time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

func listEmbeddedSQL(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(pgmigrations.FS, pgmigrations.Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, pgmigrations.Dir+"/"+e.Name())
		}
	}
	return out, nil
}
