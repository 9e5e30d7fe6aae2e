// CLAUDE:SUMMARY Entry point for the moorage HTTP service — chi router, optional Basic Auth, optional MCP stdio.
package main

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/mooragehq/moorage/history"
	"github.com/mooragehq/moorage/probe"
	"github.com/mooragehq/moorage/resolve"
)

func main() {
	port := env("PORT", "8090")
	configPath := env("CONFIG", "")
	historyPath := env("HISTORY_DB", "db/history.db")
	probeURL := env("PROBE_URL", "")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Config.
	var cfg resolve.Config
	if configPath != "" {
		loaded, err := resolve.LoadConfigFile(configPath)
		if err != nil {
			slog.Error("load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	// Resolution history DB.
	var hist *history.Store
	if historyPath != "" {
		var err error
		hist, err = history.Open(historyPath)
		if err != nil {
			slog.Error("history db", "path", historyPath, "error", err)
			os.Exit(1)
		}
		defer hist.Close()
	}

	// Resolver.
	var opts []resolve.Option
	if hist != nil {
		opts = append(opts, resolve.WithSink(hist))
	}
	resolver := resolve.New(cfg, logger, opts...)

	// Optional webhook probe — liveness checks go through an external runner.
	var pr probe.Probe
	if probeURL != "" {
		pr = probe.NewWebhook(probeURL, probe.WithLogger(logger))
	}

	svc := resolve.NewService(resolver, pr, hist)

	// MCP over stdio: serve tools and exit when the client disconnects.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "moorage",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		slog.Info("MCP stdio starting")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// Router.
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		if mw := basicAuth(); mw != nil {
			r.Use(mw)
		}
		svc.RegisterHTTP(r)
	})

	// HTTP server.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// basicAuth builds a Basic Auth middleware from AUTH_USER and
// AUTH_PASSWORD_HASH (bcrypt). Returns nil when auth is not configured.
func basicAuth() func(http.Handler) http.Handler {
	user := os.Getenv("AUTH_USER")
	hash := os.Getenv("AUTH_PASSWORD_HASH")
	if user == "" || hash == "" {
		return nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
				bcrypt.CompareHashAndPassword([]byte(hash), []byte(p)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="moorage"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
