package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/cli/config"
	httpctrl "github.com/secmon-lab/leetwatch/pkg/controller/http"
	"github.com/secmon-lab/leetwatch/pkg/repository"
	"github.com/secmon-lab/leetwatch/pkg/service/worker"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"github.com/secmon-lab/leetwatch/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var appFile config.AppConfigFile
	var leetcodeCfg config.LeetCode
	var repoCfg config.Repository
	var identityCfg config.Identity

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LEETWATCH_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, appFile.Flags()...)
	flags = append(flags, leetcodeCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, identityCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start polling tracked users and serve the HTTP API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appCfg, err := appFile.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app config")
			}

			client, err := leetcodeCfg.Configure()
			if err != nil {
				return err
			}

			store, err := repoCfg.ConfigureLocal(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize local store")
			}
			defer safe.Close(ctx, store)

			cloud, err := repoCfg.ConfigureCloud(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize cloud store")
			}
			if cloud != nil {
				defer safe.Close(ctx, cloud)
			}

			provider, err := identityCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure identity")
			}

			if err := seedUsers(ctx, store, appCfg.Users); err != nil {
				return err
			}

			ucOpts := appCfg.UseCaseOptions()
			if provider != nil {
				ucOpts = append(ucOpts, usecase.WithIdentity(provider), usecase.WithCloudStore(cloud))
				if cloud == nil {
					logging.Default().Warn("Sign-in enabled without a cloud store, tracked lists will not sync")
				}
			} else if cloud != nil {
				logging.Default().Warn("Cloud store configured without an identity provider, sync is disabled")
			}

			uc := usecase.New(client, store, ucOpts...)
			if err := uc.Tracker.Load(ctx); err != nil {
				return goerr.Wrap(err, "failed to restore tracker state")
			}

			if uc.Sync != nil {
				uc.Sync.Start(ctx)
				defer uc.Sync.Stop()
			}
			stopDaily := uc.Daily.Start(ctx)
			defer stopDaily()

			statsWorker := worker.NewStatsRefreshWorker(uc.Tracker, appCfg.Tracker.Interval())
			if err := statsWorker.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start stats refresh worker")
			}
			rolloverWorker := worker.NewDailyRolloverWorker(uc.Daily)
			if err := rolloverWorker.Start(ctx); err != nil {
				statsWorker.Stop()
				return goerr.Wrap(err, "failed to start daily rollover worker")
			}

			server := newHTTPServer(ctx, addr, httpctrl.New(uc))

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"poll_interval", appCfg.Tracker.Interval().String(),
					"sync", uc.Sync != nil,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				statsWorker.Stop()
				rolloverWorker.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop workers first so no fetch starts during shutdown
				statsWorker.Stop()
				rolloverWorker.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// newHTTPServer builds the server. Request contexts are cancelled when
// Shutdown starts so long-lived event streams return.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	baseCtx, cancel := context.WithCancel(ctx)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancel)
	return server
}

// seedUsers writes the configured users into an empty local store
func seedUsers(ctx context.Context, store *repository.LocalStore, users []string) error {
	if len(users) == 0 {
		return nil
	}

	tracked, err := store.LoadTrackedUsers(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load tracked users")
	}
	if len(tracked) > 0 {
		return nil
	}

	if err := store.SaveTrackedUsers(ctx, users); err != nil {
		return goerr.Wrap(err, "failed to seed tracked users")
	}
	logging.Default().Info("Seeded tracked users from config", "count", len(users))
	return nil
}
