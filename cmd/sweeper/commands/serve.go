package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/sweeplab/sweeper/internal/config"
	"github.com/sweeplab/sweeper/internal/printer"
	"github.com/sweeplab/sweeper/internal/server"
	"github.com/sweeplab/sweeper/internal/session"
)

var (
	serveConfigPath string
	serveListen     string
	serveRedisURL   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over HTTP with Redis-backed sessions",
	Long: `Start the game server. Games are created, revealed, and flagged over a
JSON HTTP API, with each game persisted as a Redis session so it survives
restarts. The /hint endpoint runs the inference engine against a game's
revealed tiles and suggests the next move.

Settings come from the config file's server section; --listen and --redis-url
override it.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to sweeper.yml")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Bind address (default :8080)")
	serveCmd.Flags().StringVar(&serveRedisURL, "redis-url", "", "Redis URL (default redis://localhost:6379)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if serveConfigPath != "" {
		loaded, err := config.Load(serveConfigPath)
		if err != nil {
			return printer.Error("Invalid configuration", err.Error(), nil)
		}
		cfg = loaded
	}
	if cfg.Server == nil {
		cfg.Server = &config.ServerConfig{}
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	if serveRedisURL != "" {
		cfg.Server.RedisURL = serveRedisURL
	}

	redisOpts, err := redis.ParseURL(cfg.Server.RedisAddr())
	if err != nil {
		return printer.ErrorWithContext("Invalid Redis URL", err.Error(),
			map[string]string{"url": cfg.Server.RedisAddr()},
			[]string{"Use the redis://host:port form"})
	}

	store := session.NewStore(redisOpts, cfg.Server.TTL())
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = store.Ping(pingCtx)
	cancel()
	if err != nil {
		return printer.ErrorWithContext("Redis not accessible", err.Error(),
			map[string]string{"address": redisOpts.Addr},
			[]string{"Check that Redis is running and reachable"})
	}

	srv := server.New(store, cfg.Board)
	httpSrv := &http.Server{
		Addr:    cfg.Server.ListenAddr(),
		Handler: srv.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on %s (redis %s, session TTL %s)",
			cfg.Server.ListenAddr(), redisOpts.Addr, cfg.Server.TTL())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return printer.Error("Server failed", err.Error(), nil)
		}
	case <-ctx.Done():
		log.Printf("[Server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return printer.Error("Shutdown failed", err.Error(), nil)
		}
	}
	return nil
}
