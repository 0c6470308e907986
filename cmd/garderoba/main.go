package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/garderoba/internal/api"
	"github.com/erazemk/garderoba/internal/auth"
	"github.com/erazemk/garderoba/internal/blob"
	"github.com/erazemk/garderoba/internal/canvas"
	"github.com/erazemk/garderoba/internal/closet"
	"github.com/erazemk/garderoba/internal/config"
	"github.com/erazemk/garderoba/internal/db"
	"github.com/erazemk/garderoba/internal/imaging"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
	"github.com/erazemk/garderoba/internal/web"
)

// loaderCacheSize bounds the per-user list loaders kept by the API.
const loaderCacheSize = 4096

func main() {
	fs := flag.NewFlagSet("garderoba", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var dbPath, blobDir, addr, adminUser, logPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")
	fs.StringVar(&blobDir, "blobs", "", "")
	fs.StringVar(&blobDir, "b", "", "")
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")
	fs.StringVar(&adminUser, "user", "", "")
	fs.StringVar(&adminUser, "u", "", "")
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: garderoba [flags]

Flags:
  -c, -config <path>      TOML config file (default: ./garderoba.toml if present)
  -d, -db <path>          SQLite database path (default: garderoba.sqlite3)
  -b, -blobs <dir>        photo store directory (default: garderoba-blobs)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Every setting can also be set with GARDEROBA_* environment variables,
e.g. GARDEROBA_SERVER_PUBLIC_URL. Flags take precedence.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	override(&cfg.Storage.DBPath, dbPath)
	override(&cfg.Storage.BlobDir, blobDir)
	override(&cfg.Server.Addr, addr)
	override(&cfg.Admin.Username, adminUser)
	override(&cfg.Log.Path, logPath)

	closeLog, err := setupLogger(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// override replaces *dst with a flag value when the flag was given.
func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.Storage.DBPath); errors.Is(err, os.ErrNotExist) {
		password, err := initDatabase(cfg.Storage.DBPath, cfg.Admin.Username)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		printInitResult(cfg.Storage.DBPath, cfg.Admin.Username, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	version, _ := db.Version(database)
	slog.Info("database ready", "path", cfg.Storage.DBPath, "schema", version)

	objects, err := blob.Open(cfg.Storage.BlobDir)
	if err != nil {
		return fmt.Errorf("opening photo store: %w", err)
	}
	defer objects.Close()
	slog.Info("photo store ready", "dir", cfg.Storage.BlobDir)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	repo := &closet.Repository{
		DB:        database,
		Objects:   objects,
		PublicURL: cfg.Server.PublicURL,
		Imaging:   imaging.Options{MaxDimension: cfg.Images.MaxDimension, Quality: cfg.Images.Quality},
	}

	cleanup(ctx, database, repo, cfg.Storage.PendingTTL)

	sessions, err := canvas.NewSessions(cfg.Canvas.MaxSessions)
	if err != nil {
		return err
	}
	loaders, err := api.NewLoaderCache(loaderCacheSize)
	if err != nil {
		return err
	}

	apiRouter := api.NewRouter(api.Deps{
		DB:        database,
		JWTSecret: jwtSecret,
		Closet:    repo,
		Objects:   objects,
		Sessions:  sessions,
		Loaders:   loaders,
		Now:       time.Now,
	})
	webRouter, err := web.NewRouter(&web.Server{
		DB:           database,
		JWTSecret:    jwtSecret,
		Closet:       repo,
		SecureCookie: cfg.Server.SecureCookie,
		Now:          time.Now,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API and photo routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/blobs/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "public_url", cfg.Server.PublicURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing stores")
	return nil
}

// cleanup removes items whose create flow never finished and revocations of
// tokens that have expired anyway. Failures are logged and do not stop startup.
func cleanup(ctx context.Context, database *sql.DB, repo *closet.Repository, pendingTTL time.Duration) {
	now := time.Now()

	purged, err := repo.PurgePending(ctx, now.Add(-pendingTTL))
	if err != nil {
		slog.Error("failed to purge pending items", "error", err)
	} else if purged > 0 {
		slog.Info("purged pending items", "count", purged)
	}

	expired, err := store.PurgeExpiredTokens(ctx, database, now)
	if err != nil {
		slog.Error("failed to purge expired tokens", "error", err)
	} else if expired > 0 {
		slog.Info("purged expired token revocations", "count", expired)
	}
}

// initDatabase creates a new database, applies migrations, and creates the
// admin user. The file is removed again if any step fails.
func initDatabase(path, adminUsername string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}

	password, err := func() (string, error) {
		if err := db.Migrate(database); err != nil {
			return "", fmt.Errorf("migrating: %w", err)
		}

		password, err := generatePassword(16)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return "", fmt.Errorf("hashing password: %w", err)
		}

		if _, err := store.CreateUser(context.Background(), database, adminUsername, hash, model.RoleAdmin); err != nil {
			return "", fmt.Errorf("creating admin user: %w", err)
		}
		return password, nil
	}()

	database.Close()
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema migrated.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
