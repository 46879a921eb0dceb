package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typrr/internal/api"
	"github.com/verte-zerg/typrr/internal/auth"
	"github.com/verte-zerg/typrr/internal/config"
	"github.com/verte-zerg/typrr/internal/snippet"
	"github.com/verte-zerg/typrr/internal/store"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr       string
	serveDBDriver   string
	serveDBDSN      string
	serveJWTSecret  string
	serveTokenTTL   string
	serveCORSOrigin string
	serveSnippets   string
	serveEnvFile    string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the accounts and leaderboard server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveDBDriver, "db-driver", store.DriverSQLite, "database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&serveDBDSN, "db-dsn", "", "database DSN (default: SQLite file in the data dir)")
	cmd.Flags().StringVar(&serveJWTSecret, "jwt-secret", "", "secret used to sign tokens")
	cmd.Flags().StringVar(&serveTokenTTL, "token-ttl", defaultTokenTTL, "token lifetime")
	cmd.Flags().StringVar(&serveCORSOrigin, "cors-origin", defaultCORSOrigin, "allowed CORS origin")
	cmd.Flags().StringVar(&serveSnippets, "snippets", "", "extra TOML snippet file for live sessions")
	cmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "dotenv file to load")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(serveEnvFile); err != nil {
		return err
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	applyStringConfig(cmd, "db-driver", &serveDBDriver, fileCfg.Server.DBDriver)
	applyStringConfig(cmd, "db-dsn", &serveDBDSN, fileCfg.Server.DBDSN)
	applyStringConfig(cmd, "jwt-secret", &serveJWTSecret, fileCfg.Server.JWTSecret)
	applyStringConfig(cmd, "token-ttl", &serveTokenTTL, fileCfg.Server.TokenTTL)
	applyStringConfig(cmd, "cors-origin", &serveCORSOrigin, fileCfg.Server.CORSOrigin)
	applyStringConfig(cmd, "snippets", &serveSnippets, fileCfg.Practice.Snippets)

	if serveJWTSecret == "" {
		return fmt.Errorf("--jwt-secret (or TYPRR_JWT_SECRET) is required")
	}
	ttl, err := time.ParseDuration(serveTokenTTL)
	if err != nil {
		return fmt.Errorf("invalid --token-ttl: %w", err)
	}

	var st *store.Store
	if serveDBDSN == "" && serveDBDriver == store.DriverSQLite {
		st, err = store.OpenFile(config.DefaultServerDBPath())
	} else {
		st, err = store.Open(serveDBDriver, serveDBDSN)
	}
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)
	log.Printf("using %s database", st.Driver())

	issuer, err := auth.NewIssuer(serveJWTSecret, ttl)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	catalog, err := loadCatalog(serveSnippets)
	if err != nil {
		return err
	}
	srv, err := api.New(st, issuer, catalog, api.WithCORSOrigin(serveCORSOrigin))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, serveAddr, srv.Handler(), catalog)
}

func serve(ctx context.Context, addr string, handler http.Handler, catalog *snippet.Catalog) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("typrr server listening on %s (%d snippets)", addr, catalog.Len())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	logErrln("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
