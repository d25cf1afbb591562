package foodlog

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saadjs/foodlog/internal/app"
	"github.com/saadjs/foodlog/internal/config"
	"github.com/saadjs/foodlog/internal/db"
	"github.com/saadjs/foodlog/internal/logger"
	"github.com/saadjs/foodlog/internal/provider/openfoodfacts"
	"github.com/saadjs/foodlog/internal/service"
)

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

func withLedger(run func(*sql.DB, *service.Ledger) error) error {
	return withDB(func(sqldb *sql.DB) error {
		ledger, err := service.OpenLedger(service.NewSQLStore(sqldb))
		if err != nil {
			return err
		}
		return run(sqldb, ledger)
	})
}

func loadConfig() (config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

func newLogger(stderr io.Writer) *logger.Logger {
	level := logger.LevelNormal
	if verbose {
		level = logger.LevelVerbose
	}
	return logger.New(level, stderr)
}

func newProductLookup(sqldb *sql.DB, ledger *service.Ledger, cfg config.Config, log *logger.Logger) *service.ProductLookup {
	provider := &openfoodfacts.Client{BaseURL: cfg.Lookup.BaseURL}
	opts := []service.LookupOption{
		service.WithLookupTimeout(cfg.LookupTimeout()),
		service.WithLookupLogger(log),
	}
	if cfg.Lookup.UseCache {
		opts = append(opts, service.WithProductCache(service.NewSQLProductCache(sqldb)))
	}
	return service.NewProductLookup(ledger, provider, opts...)
}

// parseDateOrToday reads a YYYY-MM-DD flag in local time.
func parseDateOrToday(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func formatGrams(v float64) string {
	return fmt.Sprintf("%.1f g", v)
}
