package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"shelf/api/grpcserver"
	"shelf/api/httpserver"
	"shelf/infra/config"
	"shelf/infra/kafka"
	"shelf/infra/logging"
	exitwal "shelf/infra/wal/exit"
	"shelf/jobs/broadcaster"
)

var (
	serveGRPCAddr string
	serveHTTPAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over gRPC and HTTP",
	Long: `Serve restores the catalog from its snapshot and WAL (or the base library),
then serves it over gRPC and HTTP until interrupted. Committed borrows and
returns are published to Kafka when a broker client is configured.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "gRPC listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "", "HTTP listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if serveGRPCAddr != "" {
		cfg.Server.GRPCAddr = serveGRPCAddr
	}
	if serveHTTPAddr != "" {
		cfg.Server.HTTPAddr = serveHTTPAddr
	}

	rt, err := openRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------- Background Jobs ----------------

	bc, err := newBroadcaster(cfg, rt.exitWAL, logger)
	if err != nil {
		return err
	}
	bcDone := make(chan struct{})
	if bc != nil {
		defer bc.Close()
		go func() {
			defer close(bcDone)
			bc.Run(ctx)
		}()
	} else {
		close(bcDone)
	}

	snapDone := rt.svc.StartSnapshotJob(ctx, cfg.Library.SnapshotDir, cfg.Library.SnapshotInterval)

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", cfg.Server.GRPCAddr)
	}
	grpcSrv := grpcserver.New(rt.svc, logging.Component(logger, "grpc"))

	// ---------------- HTTP ----------------

	httpSrv := httpserver.New(cfg.Server.HTTPAddr, rt.svc, logging.Component(logger, "http"))

	errc := make(chan error, 2)
	go func() { errc <- grpcSrv.Serve(lis) }()
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	logger.WithFields(logrus.Fields{
		"grpc": cfg.Server.GRPCAddr,
		"http": cfg.Server.HTTPAddr,
	}).Info("shelf running")

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errc:
		logger.WithError(err).Error("server exited")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	grpcSrv.GracefulStop()

	// jobs must be gone before the journals close
	stop()
	<-bcDone
	<-snapDone
	return err
}

// newBroadcaster returns nil when no broker client is configured.
func newBroadcaster(cfg *config.Config, outbox *exitwal.ExitWAL, logger logrus.FieldLogger) (*broadcaster.Broadcaster, error) {
	var pub broadcaster.Publisher
	switch cfg.Broker.Client {
	case config.BrokerSarama:
		p, err := broadcaster.NewSaramaPublisher(cfg.Broker.Brokers, cfg.Broker.Topic)
		if err != nil {
			return nil, err
		}
		pub = p
	case config.BrokerKafkaGo:
		p, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.Broker.Brokers,
			Topic:   cfg.Broker.Topic,
		}, logging.Component(logger, "kafka"))
		if err != nil {
			return nil, err
		}
		pub = p
	default:
		logger.Info("no broker client configured, events stay in the outbox")
		return nil, nil
	}

	return broadcaster.New(outbox, pub, broadcaster.Config{
		Interval:   cfg.Broker.Interval,
		MaxRetries: cfg.Broker.MaxRetries,
	}, logging.Component(logger, "broadcaster")), nil
}
