package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/cli/config"
	"github.com/secmon-lab/leetwatch/pkg/domain/types"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

func cmdStats() *cli.Command {
	var mode string
	var appFile config.AppConfigFile
	var leetcodeCfg config.LeetCode

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "Recent window [24hours|today]",
			Value:       string(types.DefaultFilterMode),
			Sources:     cli.EnvVars("LEETWATCH_STATS_MODE"),
			Destination: &mode,
		},
	}
	flags = append(flags, appFile.Flags()...)
	flags = append(flags, leetcodeCfg.Flags()...)

	return &cli.Command{
		Name:      "stats",
		Usage:     "Fetch and print stats of users once",
		ArgsUsage: "<username>...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			usernames := c.Args().Slice()
			if len(usernames) == 0 {
				return goerr.New("at least one username is required")
			}

			filterMode, err := types.ParseFilterMode(mode)
			if err != nil {
				return goerr.Wrap(usecase.ErrInvalidFilterMode, "invalid --mode", goerr.V("mode", mode))
			}

			appCfg, err := appFile.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app config")
			}
			client, err := leetcodeCfg.Configure()
			if err != nil {
				return err
			}

			loc := appCfg.Tracker.Location()
			stats := usecase.NewStatsUseCase(client,
				usecase.WithSubmissionLimit(appCfg.Tracker.SubmissionLimit),
				usecase.WithLocation(loc),
			)

			var failed int
			for _, name := range usernames {
				s, err := stats.Fetch(ctx, name, filterMode)
				if err != nil {
					_ = errutil.Handle(ctx, err, "failed to fetch stats")
					failed++
					continue
				}
				printStats(c.Root().Writer, name, s, filterMode, loc)
			}

			if failed > 0 {
				return goerr.New("failed to fetch some users", goerr.V("failed", failed), goerr.V("total", len(usernames)))
			}
			return nil
		},
	}
}
