package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/httpapi"
)

func newServeRunner(version string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		addr, err := OptionalStringFlag(cmd, "addr")
		if err != nil {
			return err
		}
		sess, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		if addr == "" {
			addr = sess.cfg.Server.Addr
		}
		logger := sess.logger
		logger.Info("family data loaded",
			zap.String("source", string(sess.source)),
			zap.String("store", sess.cfg.Store.Backend),
			zap.Strings("config", sess.cfg.LoadedFrom),
		)

		cancelSub := sess.svc.Subscribe(func(tree *graph.Tree) {
			logger.Debug("tree rebuilt", zap.Int("members", tree.Len()))
		})
		defer cancelSub()

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := httpapi.NewRouter(sess.svc, httpapi.Options{
			CORSOrigins: sess.cfg.Server.CORSOrigins,
			Metrics:     sess.metrics.Handler(),
			Version:     version,
		}, logger)

		return httpapi.Serve(ctx, httpapi.ServerConfig{
			Addr:            addr,
			ReadTimeout:     sess.cfg.Server.ReadTimeout,
			WriteTimeout:    sess.cfg.Server.WriteTimeout,
			ShutdownTimeout: sess.cfg.Server.ShutdownTimeout,
		}, router, logger, nil)
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
