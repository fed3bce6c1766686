package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/RBoekdrukker/imc-frontend/internal/cms"
	"github.com/RBoekdrukker/imc-frontend/internal/config"
	"github.com/RBoekdrukker/imc-frontend/internal/format"
	"github.com/RBoekdrukker/imc-frontend/internal/handlers"
	"github.com/RBoekdrukker/imc-frontend/internal/i18n"
	"github.com/RBoekdrukker/imc-frontend/internal/lang"
	mw "github.com/RBoekdrukker/imc-frontend/internal/middleware"
	"github.com/RBoekdrukker/imc-frontend/internal/observability"
	"github.com/RBoekdrukker/imc-frontend/internal/render"
	"github.com/RBoekdrukker/imc-frontend/internal/seo"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

// hreflangTags lists canonical codes whose BCP 47 tag differs from the URL code.
var hreflangTags = map[string]string{"ua": "uk"}

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "dotenv file with local overrides")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx, config.WithEnvFile(envFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	router, err := newRouter(cfg, logger)
	if err != nil {
		logger.Fatal("build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("web listening",
			zap.Bool("dev", cfg.Server.Dev),
			zap.Strings("languages", cfg.Site.Languages),
			zap.Bool("remote_content", cfg.CMS.BaseURL != ""),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := <-shutdown
	serverLogger.Info("shutdown signal received; draining requests", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		serverLogger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	serverLogger.Info("server stopped")
}

// newRouter wires the site from cfg: language tables, translations, content client and
// templates, behind the shared middleware stack.
func newRouter(cfg config.Config, logger *zap.Logger) (http.Handler, error) {
	tables, err := lang.LoadTables(cfg.Site.File)
	if err != nil {
		return nil, err
	}
	supported := tables.Aliases.Set(cfg.Site.Languages...)
	if supported.Len() == 0 {
		return nil, errors.New("no supported languages configured")
	}
	def := tables.Aliases.Canonical(cfg.Site.DefaultLanguage)

	bundle, err := i18n.Load(cfg.Paths.Locales, def, supported, tables.Aliases)
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	pages, err := render.New(render.Config{FS: os.DirFS(cfg.Paths.Templates), Dev: cfg.Server.Dev})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	content := cms.NewClient(cms.Config{
		BaseURL:    cfg.CMS.BaseURL,
		Token:      cfg.CMS.Token,
		Timeout:    cfg.CMS.Timeout,
		ContentDir: cfg.Paths.Content,
	})

	site := handlers.NewSite(handlers.Options{
		Content:   content,
		Tables:    tables,
		Supported: supported,
		Default:   def,
		Bundle:    bundle,
		SEO: seo.Site{
			Name:      bundle.T(def, "site.name"),
			BaseURL:   cfg.Site.BaseURL,
			Aliases:   tables.Aliases,
			Supported: supported,
			Default:   def,
			Hreflang:  hreflangTags,
		},
		Pages:  pages,
		Format: format.NewRenderer(),
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(mw.InjectLogger(logger))
	r.Use(mw.RequestLogger)
	r.Use(mw.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(cfg.Paths.Public, "assets"), "/assets", cfg.Server.Dev))

	site.Register(r)
	return r, nil
}
