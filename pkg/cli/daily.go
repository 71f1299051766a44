package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/cli/config"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/secmon-lab/leetwatch/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdDaily() *cli.Command {
	var appFile config.AppConfigFile
	var leetcodeCfg config.LeetCode
	var repoCfg config.Repository

	var flags []cli.Flag
	flags = append(flags, appFile.Flags()...)
	flags = append(flags, leetcodeCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:      "daily",
		Usage:     "Print today's daily challenge and who solved it",
		ArgsUsage: "[username...]",
		Flags:     flags,
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

			usernames := c.Args().Slice()
			if len(usernames) == 0 {
				if usernames, err = store.LoadTrackedUsers(ctx); err != nil {
					return goerr.Wrap(err, "failed to load tracked users")
				}
			}

			challenge, err := uc.Daily.GetChallenge(ctx)
			if err != nil {
				return err
			}

			printDaily(c.Root().Writer, challenge, uc.Daily.CheckSolved(ctx, challenge, usernames))
			return nil
		},
	}
}
