package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jengzang/greenguardian-backend-go/internal/app"
	"github.com/jengzang/greenguardian-backend-go/internal/config"
	"github.com/jengzang/greenguardian-backend-go/internal/logger"
	"github.com/jengzang/greenguardian-backend-go/internal/spatial"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg *config.Config
	log *zap.Logger

	verbose bool
	timeout time.Duration
	asUser  string
)

var rootCmd = &cobra.Command{
	Use:   "greenguardian",
	Short: "Green Guardian backend: air quality, pollution reports and green-living content",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log, err = logger.New(level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every report to a timestamped JSON file in the blob store",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge reports from a JSON export file (matching ids are overwritten)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var aqiCmd = &cobra.Command{
	Use:   "aqi <lat> <lon>",
	Short: "Print the current AQI for a location",
	Args:  cobra.ExactArgs(2),
	RunE:  runAQI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Timeout for one-shot commands")
	importCmd.Flags().StringVar(&asUser, "uid", "", "Import as this user: rows without a uid get it and rows owned by others are skipped (default: system import, guest owner)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(aqiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Reports.ExportToFile(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Reports.Import(ctx, asUser, f)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

// parseCoords reads a latitude/longitude pair in degrees
func parseCoords(latArg, lonArg string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latArg)
	}
	lon, err := strconv.ParseFloat(lonArg, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonArg)
	}
	if !spatial.ValidLatLon(lat, lon) {
		return 0, 0, fmt.Errorf("coordinates out of range: %s %s", latArg, lonArg)
	}
	return lat, lon, nil
}

func runAQI(cmd *cobra.Command, args []string) error {
	lat, lon, err := parseCoords(args[0], args[1])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	result, sample, err := a.Air.Current(ctx, lat, lon)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]interface{}{
		"aqi":    result,
		"sample": sample,
	})
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
