// cmd/api/main.go
//
// FieldTrak – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (YAML + env overlay, Vault-resolved secrets).
//
//  4. Open the MySQL pool, ensure the schema, and seed the open-checkins
//     gauge.
//
//  5. Optionally open the GeoLite2 database for request audit logs.
//
//  6. Assemble the chi router: security headers → request info → public
//     routes (/healthz, /metrics, login) → bearer-gated API.
//
//  7. Serve with hardened timeouts; drain gracefully on SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/fieldtrak/fieldtrak/internal/auth"
	"github.com/fieldtrak/fieldtrak/internal/checkin"
	"github.com/fieldtrak/fieldtrak/internal/clientsite"
	"github.com/fieldtrak/fieldtrak/internal/config"
	"github.com/fieldtrak/fieldtrak/internal/database"
	"github.com/fieldtrak/fieldtrak/internal/logger"
	"github.com/fieldtrak/fieldtrak/internal/metrics"
	"github.com/fieldtrak/fieldtrak/internal/middleware"
	"github.com/fieldtrak/fieldtrak/internal/report"
	"github.com/fieldtrak/fieldtrak/internal/requestinfo"
	"github.com/fieldtrak/fieldtrak/internal/server"
)

const serverEnvPath = "/usr/local/etc/fieldtrak/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config (may consult Vault) ─────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Database connect + schema ──────────────────────────────────
	//
	logOut.Infow("connecting to database")
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		logOut.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logOut.Fatalf("ensure schema: %v", err)
	}
	logOut.Infow("database online")

	checkinRepo := checkin.NewRepository(db)

	// Seed the gauge so restarts don't zero it out.
	if open, err := checkinRepo.CountOpen(ctx); err == nil {
		metrics.OpenCheckins.Set(float64(open))
		logOut.Infow("open check-ins at boot", "count", open)
	}

	//
	// ── 3.  Optional GeoIP for audit logs ──────────────────────────────
	//
	if p := cfg.Geo.CityDBPath; p != "" {
		if err := requestinfo.InitGeo(p); err != nil {
			logOut.Warnw("geoip disabled", "path", p, "err", err)
		}
	}

	//
	// ── 4.  Wiring ─────────────────────────────────────────────────────
	//
	sites := clientsite.NewDirectory(db)
	lifecycle := checkin.NewService(checkinRepo, sites)

	accessTTL := time.Duration(cfg.Auth.AccessTTLMins) * time.Minute
	authHandler := auth.NewHandler(db, cfg.Auth.JWTSecret, accessTTL)
	checkinHandler := checkin.NewHandler(lifecycle)
	siteHandler := clientsite.NewHandler(db)
	reportHandler := report.NewHandler(db)

	//
	// ── 5.  Router ─────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			http.Error(w, "degraded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(cfg.Auth.JWTSecret))

			r.Get("/me", authHandler.HandleMe)
			r.Mount("/checkin", checkinHandler.Routes())
			r.Get("/sites", siteHandler.HandleList)

			r.Route("/reports", func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleManager))
				r.Mount("/", reportHandler.Routes())
			})
		})
	})

	//
	// ── 6.  Serve + graceful drain ─────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr,
		middleware.ForceHTTPS(func() bool { return config.Get().HTTP.ForceHTTPS }, r))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(),
			server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(drainCtx)
	})
	g.Go(func() error {
		// SIGHUP re-reads YAML + env + Vault.  The listen address is bound
		// once at boot; changing it takes effect on restart.
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := config.Reload(gctx); err != nil {
					logOut.Errorw("config reload failed", "err", err)
					continue
				}
				logOut.Infow("config reloaded",
					"force_https", config.Get().HTTP.ForceHTTPS)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
	logOut.Infow("shutdown complete")
}
