// Command server runs the narocila API.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/narocila/internal/api"
	"github.com/erazemk/narocila/internal/auth"
	"github.com/erazemk/narocila/internal/datastore"
)

// Config keys; overridable by flags, narocila.yaml, or NAROCILA_* env vars.
const (
	cfgKeyAddr      = "addr"
	cfgKeyDB        = "db"
	cfgKeyJWTSecret = "jwt_secret"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "Multi-tenant items and orders API",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("db", "narocila.sqlite3", "path to SQLite database file")
	cmd.Flags().String("jwt-secret", "", "bearer token verification key (auto-generated if empty)")

	viper.BindPFlag(cfgKeyAddr, cmd.Flags().Lookup("addr"))
	viper.BindPFlag(cfgKeyDB, cmd.Flags().Lookup("db"))
	viper.BindPFlag(cfgKeyJWTSecret, cmd.Flags().Lookup("jwt-secret"))

	return cmd
}

// loadConfig reads narocila.yaml from the working directory, if present,
// and binds NAROCILA_* environment variables. A missing config file is
// not an error.
func loadConfig() error {
	viper.SetConfigName("narocila")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("narocila")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	secret := viper.GetString(cfgKeyJWTSecret)
	if secret == "" {
		generated, err := generateSecret(32)
		if err != nil {
			return fmt.Errorf("generating verification key: %w", err)
		}
		secret = generated
		slog.Warn("verification key auto-generated, existing tokens will not validate after restart")
	}

	store, err := datastore.Open(viper.GetString(cfgKeyDB))
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(); err != nil {
		return fmt.Errorf("preparing datastore: %w", err)
	}

	verifier := auth.NewHMACVerifier(secret)
	handler := api.LoggingMiddleware(api.NewRouter(store, verifier))

	addr := viper.GetString(cfgKeyAddr)
	slog.Info("server listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// generateSecret creates a random hex key of the given byte length.
func generateSecret(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
