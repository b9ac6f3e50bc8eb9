package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotv/coordinate-validator/internal/adapter/httpadapter"
	kafkaadapter "github.com/rotv/coordinate-validator/internal/adapter/kafka"
	"github.com/rotv/coordinate-validator/internal/domain"
	"github.com/rotv/coordinate-validator/internal/pipeline"
	"github.com/rotv/coordinate-validator/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Validate every destination and write the CSV report",
	Long: `Validate every destination and write the CSV report.

The report has one row per destination in input order with the columns
Name, Latitude, Longitude, Status, Issues, Suggestions. Summary counts and
the flagged destinations are printed to stderr.

When KAFKA_RESULTS_TOPIC is set, every result is also published to Kafka.
When HTTP_ADDR is set, /healthz, /readyz, /metrics and /summary are served
during the run and afterwards until the process is interrupted.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	logger := a.logger

	geocoder, err := a.geocoder()
	if err != nil {
		return err
	}
	validator := domain.NewValidator(a.rules, a.hydrology(), geocoder, logger)

	var loaders []pipeline.ResultLoader
	if a.cfg.KafkaResultsTopic != "" {
		writer := kafkaadapter.NewWriter(a.cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("publishing results", "topic", a.cfg.KafkaResultsTopic)
	}

	p := pipeline.New(a.source, validator, logger, a.metrics, loaders...)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if a.cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(a.cfg.HTTPAddr, p, p, logger)
	}
	return runAndServe(ctx, p, srv, writeReport, a.cfg.ShutdownTimeout, logger)
}

// runAndServe runs the pipeline and hands the report to emit. When srv is
// set it serves for the whole run and keeps serving the finished report
// until ctx is done, then shuts down within shutdownTimeout.
func runAndServe(ctx context.Context, p *pipeline.Pipeline, srv *httpadapter.Server, emit func(report.Report) error, shutdownTimeout time.Duration, logger *slog.Logger) error {
	if srv != nil {
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	rep, runErr := p.Run(ctx)
	if rep.RunID == "" {
		return runErr
	}
	if err := emit(rep); err != nil {
		return errors.Join(runErr, err)
	}

	if srv != nil && ctx.Err() == nil {
		logger.Info("report written, serving results until interrupted", "run_id", rep.RunID)
		<-ctx.Done()
		logger.Info("shutting down")
	}
	return runErr
}

func writeReport(rep report.Report) error {
	w, closeOut, err := output()
	if err != nil {
		return err
	}
	if err := rep.WriteCSV(w); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	summary, err := report.RenderSummary(rep)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, summary)

	flagged, err := report.RenderFlagged(rep)
	if err != nil {
		return err
	}
	if flagged != "" {
		fmt.Fprintln(os.Stderr, flagged)
	}
	return nil
}
