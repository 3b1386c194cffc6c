package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/USA-RedDragon/ota-server/internal/config"
	"github.com/USA-RedDragon/ota-server/internal/db"
	"github.com/USA-RedDragon/ota-server/internal/metrics"
	"github.com/USA-RedDragon/ota-server/internal/server"
	"github.com/USA-RedDragon/ota-server/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"golang.org/x/sync/errgroup"
)

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ota-server",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(cmd)
	cmd.AddCommand(newAPIKeyCommand())
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	slog.Info("ota-server", "version", cmd.Annotations["version"], "commit", cmd.Annotations["commit"])

	config, err := config.LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	database, err := db.MakeDB(config)
	if err != nil {
		return fmt.Errorf("failed to make database: %w", err)
	}
	slog.Info("Database connection established")

	metrics := metrics.NewMetrics(nil)

	var emitter telemetry.Emitter = telemetry.Discard{}
	var asyncEmitter *telemetry.AsyncEmitter
	sink, err := telemetry.NewSink(config)
	if err != nil {
		return fmt.Errorf("failed to create telemetry sink: %w", err)
	}
	if sink != nil {
		asyncEmitter = telemetry.NewAsyncEmitter(sink, config.Telemetry.QueueDepth, config.Telemetry.Workers, config.Telemetry.Timeout, metrics)
		emitter = asyncEmitter
		slog.Info("Telemetry enabled", "sink", sink.Name())
	}

	engine := channels.NewEngine(
		db.NewStore(database),
		channels.WithStoreTimeout(config.Engine.StoreTimeout),
		channels.WithEmitter(emitter),
		channels.WithMetrics(metrics),
	)

	slog.Info("Starting HTTP server")
	server := server.NewServer(config, database, engine)
	err = server.Start()
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	stop := func(_ os.Signal) {
		slog.Info("Shutting down")

		errGrp := errgroup.Group{}

		errGrp.Go(func() error {
			return server.Stop()
		})

		err := errGrp.Wait()
		if err != nil {
			slog.Error("Shutdown error", "error", err.Error())
		}

		// Handlers are done, so nothing emits past this point.
		if asyncEmitter != nil {
			if err := asyncEmitter.Close(); err != nil {
				slog.Error("Telemetry shutdown error", "error", err.Error())
			}
		}
		slog.Info("Shutdown complete")
	}

	if cmd.Annotations["version"] == "testing" {
		doneChannel := make(chan struct{})
		go func() {
			slog.Info("Sleeping for 5 seconds")
			time.Sleep(5 * time.Second)
			slog.Info("Sending SIGTERM")
			stop(syscall.SIGTERM)
			doneChannel <- struct{}{}
		}()
		<-doneChannel
	} else {
		shutdown.AddWithParam(stop)
		shutdown.Listen(syscall.SIGINT, syscall.SIGKILL, syscall.SIGTERM, syscall.SIGQUIT)
	}

	return nil
}
