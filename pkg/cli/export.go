package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/cli/config"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"github.com/secmon-lab/leetwatch/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var output string
	var skipDaily bool
	var appFile config.AppConfigFile
	var leetcodeCfg config.LeetCode
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Destination workbook",
			Value:       "leetwatch.xlsx",
			Destination: &output,
		},
		&cli.BoolFlag{
			Name:        "skip-daily",
			Usage:       "Do not include the daily challenge sheet",
			Destination: &skipDaily,
		},
	}
	flags = append(flags, appFile.Flags()...)
	flags = append(flags, leetcodeCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Fetch every tracked user once and write a spreadsheet",
		Flags: flags,
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

			uc := usecase.New(client, store, appCfg.UseCaseOptions()...)
			if err := uc.Tracker.Load(ctx); err != nil {
				return goerr.Wrap(err, "failed to restore tracker state")
			}
			if err := uc.Tracker.InitialLoad(ctx); err != nil {
				return goerr.Wrap(err, "failed to load tracked users")
			}

			var daily *usecase.DailyStatus
			if !skipDaily {
				if daily, err = uc.Daily.Refresh(ctx); err != nil {
					_ = errutil.Handle(ctx, err, "daily challenge omitted from export")
				}
			}

			f, err := os.Create(filepath.Clean(output))
			if err != nil {
				return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
			}
			defer safe.Close(ctx, f)

			snap := uc.Tracker.Snapshot()
			if err := uc.Export.WriteXLSX(f, snap, daily); err != nil {
				return goerr.Wrap(err, "failed to write workbook", goerr.V("path", output))
			}

			logging.From(ctx).Info("Exported workbook", "path", output, "users", len(snap.Users))
			return nil
		},
	}
}
