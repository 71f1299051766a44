package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/service/leetcode"
	"github.com/urfave/cli/v3"
)

// LeetCode holds CLI flags for the platform client
type LeetCode struct {
	endpoint  string
	timeout   time.Duration
	rateLimit float64
	burst     int
	userAgent string
}

func (x *LeetCode) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "leetcode-endpoint",
			Category:    "LeetCode",
			Usage:       "GraphQL endpoint of the platform",
			Value:       leetcode.DefaultEndpoint,
			Sources:     cli.EnvVars("LEETWATCH_LEETCODE_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.DurationFlag{
			Name:        "leetcode-timeout",
			Category:    "LeetCode",
			Usage:       "Timeout of one platform request",
			Value:       leetcode.DefaultTimeout,
			Sources:     cli.EnvVars("LEETWATCH_LEETCODE_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.FloatFlag{
			Name:        "leetcode-rate-limit",
			Category:    "LeetCode",
			Usage:       "Requests per second to the platform (0 disables the limiter)",
			Value:       leetcode.DefaultRateLimit,
			Sources:     cli.EnvVars("LEETWATCH_LEETCODE_RATE_LIMIT"),
			Destination: &x.rateLimit,
		},
		&cli.IntFlag{
			Name:        "leetcode-burst",
			Category:    "LeetCode",
			Usage:       "Burst size of the request limiter",
			Value:       leetcode.DefaultBurst,
			Sources:     cli.EnvVars("LEETWATCH_LEETCODE_BURST"),
			Destination: &x.burst,
		},
		&cli.StringFlag{
			Name:        "leetcode-user-agent",
			Category:    "LeetCode",
			Usage:       "User-Agent header sent to the platform",
			Sources:     cli.EnvVars("LEETWATCH_LEETCODE_USER_AGENT"),
			Destination: &x.userAgent,
		},
	}
}

func (x LeetCode) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", x.endpoint),
		slog.Duration("timeout", x.timeout),
		slog.Float64("rate_limit", x.rateLimit),
		slog.Int("burst", x.burst),
	)
}

func (x *LeetCode) Configure() (leetcode.Service, error) {
	opts := []leetcode.Option{
		leetcode.WithRateLimit(x.rateLimit, x.burst),
	}
	if x.endpoint != "" {
		opts = append(opts, leetcode.WithEndpoint(x.endpoint))
	}
	if x.timeout > 0 {
		opts = append(opts, leetcode.WithTimeout(x.timeout))
	}
	if x.userAgent != "" {
		opts = append(opts, leetcode.WithUserAgent(x.userAgent))
	}

	client, err := leetcode.New(opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create leetcode client")
	}
	return client, nil
}
