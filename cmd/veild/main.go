package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "veild",
		Usage:   "anonymous post moderation daemon",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "rules-dir",
			Usage:   "directory of plain-text moderation rule files",
			Value:   "data/veild/rules",
			EnvVars: []string{"VEILD_RULES_DIR"},
		},
		&cli.BoolFlag{
			Name:    "moderation-enabled",
			Usage:   "run submissions through the moderation pipeline",
			Value:   true,
			EnvVars: []string{"VEILD_MODERATION_ENABLED"},
		},
		&cli.StringFlag{
			Name:    "openai-host",
			Usage:   "method, hostname, and port of OpenAI-compatible API",
			Value:   "https://api.openai.com",
			EnvVars: []string{"VEILD_OPENAI_HOST", "OPENAI_HOST"},
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			Usage:   "API key for the OpenAI-compatible backends",
			EnvVars: []string{"VEILD_OPENAI_API_KEY", "OPENAI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "classifier-model",
			Usage:   "model name for the omni content classifier",
			Value:   "omni-moderation-latest",
			EnvVars: []string{"VEILD_CLASSIFIER_MODEL"},
		},
		&cli.StringFlag{
			Name:    "completion-model",
			Usage:   "model name for the completion planner backend",
			Value:   "gpt-4o-mini",
			EnvVars: []string{"VEILD_COMPLETION_MODEL"},
		},
		&cli.StringSliceFlag{
			Name:    "backends",
			Usage:   "planner backends to enable (omni, gpt)",
			Value:   cli.NewStringSlice("omni", "gpt"),
			EnvVars: []string{"VEILD_BACKENDS"},
		},
		&cli.IntFlag{
			Name:    "plan-max-retries",
			Usage:   "max parse retries for completion plans",
			Value:   2,
			EnvVars: []string{"VEILD_PLAN_MAX_RETRIES"},
		},
		&cli.Int64SliceFlag{
			Name:    "moderation-chat-ids",
			Usage:   "chats that receive every prepared post for review",
			EnvVars: []string{"VEILD_MODERATION_CHAT_IDS"},
		},
		&cli.Int64SliceFlag{
			Name:    "publication-channel-ids",
			Usage:   "channels that receive approved posts",
			EnvVars: []string{"VEILD_PUBLICATION_CHANNEL_IDS"},
		},
		&cli.StringSliceFlag{
			Name:    "forwarding-types",
			Usage:   "content types accepted for forwarding (text, photo, video)",
			Value:   cli.NewStringSlice("text", "photo", "video"),
			EnvVars: []string{"VEILD_FORWARDING_TYPES"},
		},
		&cli.DurationFlag{
			Name:    "throttle-delay",
			Usage:   "per-user cooldown between submissions; zero disables throttling",
			Value:   30 * time.Second,
			EnvVars: []string{"VEILD_THROTTLE_DELAY"},
		},
		&cli.DurationFlag{
			Name:    "media-group-delay",
			Usage:   "quiet period before a buffered media group is flushed",
			Value:   2 * time.Second,
			EnvVars: []string{"VEILD_MEDIA_GROUP_DELAY"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "path of the sqlite accounts database",
			Value:   "data/veild/accounts.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for decision counters; empty keeps counts in memory",
			EnvVars: []string{"VEILD_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3899",
			EnvVars: []string{"VEILD_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3898",
			EnvVars: []string{"VEILD_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(Config{
			Logger:                logger,
			RulesDir:              cctx.String("rules-dir"),
			ModerationEnabled:     cctx.Bool("moderation-enabled"),
			OpenAIHost:            cctx.String("openai-host"),
			OpenAIAPIKey:          cctx.String("openai-api-key"),
			ClassifierModel:       cctx.String("classifier-model"),
			CompletionModel:       cctx.String("completion-model"),
			Backends:              cctx.StringSlice("backends"),
			PlanMaxRetries:        cctx.Int("plan-max-retries"),
			ModerationChatIDs:     cctx.Int64Slice("moderation-chat-ids"),
			PublicationChannelIDs: cctx.Int64Slice("publication-channel-ids"),
			ForwardingTypes:       cctx.StringSlice("forwarding-types"),
			ThrottleDelay:         cctx.Duration("throttle-delay"),
			MediaGroupDelay:       cctx.Duration("media-group-delay"),
			DatabaseURL:           cctx.String("database-url"),
			RedisURL:              cctx.String("redis-url"),
			Bind:                  cctx.String("bind"),
			MetricsListen:         cctx.String("metrics-listen"),
		})
		if err != nil {
			return err
		}

		return srv.RunAll(cctx.Context)
	},
}
