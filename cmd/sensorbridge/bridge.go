package sensorbridge

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/edgehem/sensorbridge/pkg/bridge"
	"github.com/edgehem/sensorbridge/pkg/config"
	"github.com/edgehem/sensorbridge/pkg/hem"
	"github.com/edgehem/sensorbridge/pkg/metrics"
	"github.com/edgehem/sensorbridge/pkg/mqtt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	metricsEnabled bool
	metricsAddr    string
	hemURL         string
	brokerURL      string
)

var bridgeCmd = &cobra.Command{
	Use:     "bridge",
	Aliases: []string{"b"},
	Short:   "Run the telemetry bridge",
	Long:    `Bootstrap device and sensor identities against the hem store, subscribe to the configured topics, and forward readings until terminated.`,
	RunE:    runBridge,
}

// applyFlagOverrides merges command-line flag values into the loaded config.
// Flags win over the config file, but boolean/default-carrying flags only
// count when the user actually set them.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = metricsEnabled
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if hemURL != "" {
		cfg.Hem.BaseURL = hemURL
	}
	if brokerURL != "" {
		cfg.MQTT.Servers = []string{brokerURL}
	}
}

func runBridge(cmd *cobra.Command, args []string) error {
	applyFlagOverrides(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	doneChan := make(chan struct{})

	var wg sync.WaitGroup

	if cfg.Metrics.Enabled {
		metrics.StartPrometheusServer(ctx, &wg, &metrics.PromServerOpts{Addr: cfg.Metrics.Addr})
	}

	store := hem.NewClient(cfg.Hem.BaseURL, logger)
	resolver := hem.NewResolver(store, logger)

	logger.Info("bootstrapping device routes", zap.Int("devices", len(cfg.Devices)))
	routes, err := bridge.Bootstrap(ctx, resolver, cfg.Devices, logger)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	client, err := mqtt.NewClient(cfg.MQTT, logger)
	if err != nil {
		return fmt.Errorf("failed to create MQTT client: %w", err)
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	if err := client.Subscribe(routes.Topics()); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	forwarder := bridge.NewForwarder(store, routes, logger)
	dispatcher := bridge.NewDispatcher(forwarder, logger)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := dispatcher.Run(ctx, client.Events()); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	runErr := waitForShutdown(sigChan, errChan, cancel)

	client.Disconnect()

	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Shutdown complete")
	case <-time.After(10 * time.Second):
		log.Println("Shutdown timed out after 10 seconds")
	}

	// A dispatcher failure must surface as a non-zero exit.
	return runErr
}

// waitForShutdown blocks until a termination signal or a dispatcher error,
// cancels the run context, and returns the error (nil on signal).
func waitForShutdown(sigChan <-chan os.Signal, errChan <-chan error, cancel context.CancelFunc) error {
	select {
	case <-sigChan:
		log.Println("Received termination signal, shutting down gracefully...")
		cancel()
		return nil
	case err := <-errChan:
		log.Printf("Dispatcher error: %v", err)
		cancel()
		return err
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func init() {
	f := bridgeCmd.Flags()
	f.BoolVar(&metricsEnabled, "metrics", true, "Enable Prometheus metrics server")
	f.StringVar(&metricsAddr, "metrics-addr", ":9100", "Prometheus metrics server address")
	f.StringVar(&hemURL, "hem-url", "", "Base URL of the hem store")
	f.StringVar(&brokerURL, "broker", "", "MQTT broker URL (e.g. tcp://127.0.0.1:1883)")
}
