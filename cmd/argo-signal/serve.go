package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve indicator analysis and metrics over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, defaults to the configured one",
			},
		},
		Action: a.serveAction,
	}
}

func (a *app) serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg := a.cfg.Server
	if addr := cmd.String("addr"); addr != "" {
		cfg.Addr = addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	analyzer, err := a.newAnalyzer(m)
	if err != nil {
		return err
	}

	srv := server.New(analyzer, cfg, server.WithLogger(a.logger), server.WithMetrics(m, reg))
	if err := srv.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	a.logger.Info("shutting down http server", zap.String("addr", srv.Address()))

	return srv.Stop(context.Background())
}
