package foodlog

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "foodlog",
	Short: "foodlog logs what you eat and tracks calories against a daily goal",
	Long:  "foodlog is a local-first food diary: log entries by meal, look up products by barcode, and compute calorie goals from your body metrics.",
}

func Execute() {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print lookup and storage diagnostics to stderr")
}
