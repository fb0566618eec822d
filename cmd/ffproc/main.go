package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ffkit/ffproc/proc"
	"github.com/ffkit/ffproc/progress"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:      "ffproc",
		Usage:     "run a command under supervision, with an optional timeout and ffmpeg progress decoding",
		ArgsUsage: "command [args...]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Kill the command if it runs longer than this. Zero means no limit.",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Working directory for the command.",
			},
			&cli.StringSliceFlag{
				Name:  "env",
				Usage: "KEY=VALUE environment override, repeatable.",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Decode the command's stderr as ffmpeg progress lines and log each snapshot.",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging.",
			},
		},
		Action: run,
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return cli.Exit("no command given", 125)
	}

	var logger *zap.Logger
	var err error
	if c.Bool("verbose") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar().Named("ffproc")

	cfg := proc.New(c.Args().First()).
		WithDir(c.String("dir")).
		WithTimeout(c.Duration("timeout")).
		WithLogger(sugar)
	for _, kv := range c.StringSlice("env") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return cli.Exit(fmt.Sprintf("invalid env override %q", kv), 125)
		}
		cfg.WithEnv(parts[0], parts[1])
	}

	args := c.Args().Tail()

	var out *proc.Output
	if c.Bool("progress") {
		out, err = proc.RunWithProgress(c.Context, cfg, args, func(snap progress.Snapshot) {
			sugar.Infow("progress", "snapshot", snap.String())
		})
	} else {
		out, err = proc.Run(c.Context, cfg, args)
	}
	if err != nil {
		// exit codes follow shell conventions: 124 timeout, 127 not found
		var timeoutErr *proc.TimeoutError
		if errors.As(err, &timeoutErr) {
			return cli.Exit(err.Error(), 124)
		}
		var notFound *proc.NotFoundError
		if errors.As(err, &notFound) {
			return cli.Exit(err.Error(), 127)
		}
		return cli.Exit(err.Error(), 125)
	}

	os.Stdout.Write(out.Stdout)
	os.Stderr.Write(out.Stderr)
	if !out.Success() {
		return cli.Exit("", out.State.ExitCode())
	}
	return nil
}
