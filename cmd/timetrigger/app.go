package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/ngicks/timetrigger/internal/jobfile"
	"github.com/ngicks/timetrigger/internal/works"
	"github.com/ngicks/timetrigger/journal"
	"github.com/ngicks/timetrigger/middleware/deadline"
	logmw "github.com/ngicks/timetrigger/middleware/log"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const consoleTimeFormat = "15:04:05.000"

type runConfig struct {
	file          string
	journal       string
	logLevel      string
	poll          time.Duration
	maxConcurrent int
	lateness      time.Duration
}

func newApp(stdout, stderr io.Writer) *cli.App {
	var cfg runConfig

	app := cli.NewApp()
	app.Name = "timetrigger"
	app.HelpName = "timetrigger"
	app.Usage = "fire one-shot jobs at their scheduled time"
	app.UsageText = "timetrigger run --file jobs.yaml [options]"
	app.Version = version
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Aliases:   []string{"r"},
			Usage:     "schedule every job in a job file and wait for all of them",
			UsageText: "timetrigger run --file jobs.yaml [--journal path] [--log-level info] [--poll 1s] [--max-concurrent 0]",
			Action: func(c *cli.Context) error {
				return run(c, cfg)
			},
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "file, f",
					Usage:       "path to the job file (yaml)",
					Destination: &cfg.file,
				},
				cli.StringFlag{
					Name:        "journal, j",
					Usage:       "sqlite file to record outcomes into (disabled if empty)",
					Destination: &cfg.journal,
				},
				cli.StringFlag{
					Name:        "log-level, l",
					Usage:       "trace, debug, info, warn or error",
					Value:       "info",
					Destination: &cfg.logLevel,
				},
				cli.DurationFlag{
					Name:        "poll",
					Usage:       "polling interval, overrides poll_interval of the job file",
					Value:       timetrigger.DefaultPollInterval,
					Destination: &cfg.poll,
				},
				cli.IntFlag{
					Name:        "max-concurrent",
					Usage:       "max works executing at once, 0 for unbounded. overrides max_concurrent of the job file",
					Destination: &cfg.maxConcurrent,
				},
				cli.DurationFlag{
					Name:        "lateness",
					Usage:       "skip jobs firing later than this past their scheduled time, 0 to never skip",
					Destination: &cfg.lateness,
				},
				cli.StringSliceFlag{
					Name:  "exec-allow",
					Usage: "only allow these commands for exec jobs, repeatable",
				},
				cli.StringSliceFlag{
					Name:  "exec-deny",
					Usage: "never allow these commands for exec jobs, repeatable",
				},
			},
		},
	}
	return app
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger(), nil
}

func run(c *cli.Context, cfg runConfig) error {
	if cfg.file == "" {
		return cli.NewExitError("--file is required", 1)
	}

	logger, err := newLogger(c.App.ErrWriter, cfg.logLevel)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid log level: %v", err), 1)
	}

	file, err := jobfile.Load(cfg.file)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	poll := file.Poll(timetrigger.DefaultPollInterval)
	if c.IsSet("poll") {
		poll = cfg.poll
	}
	maxConcurrent := file.MaxConcurrent
	if c.IsSet("max-concurrent") {
		maxConcurrent = cfg.maxConcurrent
	}

	scheduler := timetrigger.New(
		timetrigger.WithPollInterval(poll),
		timetrigger.WithMaxConcurrent(maxConcurrent),
		timetrigger.WithLogger(logger),
	)
	scheduler.Use(logmw.New(logger).Middleware)
	if cfg.lateness > 0 {
		scheduler.Use(deadline.New(cfg.lateness, nil).Middleware)
	}

	registry := timetrigger.NewWorkRegistry()
	works.Register(
		registry,
		logger,
		works.ExecAllowList(c.StringSlice("exec-allow")),
		works.ExecDenyList(c.StringSlice("exec-deny")),
	)

	if err := scheduleJobs(scheduler, registry, file.Jobs, time.Now()); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if cfg.journal != "" {
		j, err := journal.Open(
			cfg.journal,
			[]gorm.Option{&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}},
			journal.WithLogger(logger),
			journal.WithMeta(map[string]any{"job_file": cfg.file}),
		)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		defer j.Close()
		scheduler.AddOnTaskDone(j.Hook())
		logger.Debug().Str("run_id", j.RunId()).Str("path", cfg.journal).Msg("journal opened")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info().
		Int("jobs", scheduler.Len()).
		Dur("poll_interval", poll).
		Int("max_concurrent", maxConcurrent).
		Msg("scheduler started")

	report, err := scheduler.Start(ctx)

	logger.Info().
		Int("completed", len(report.Completed())).
		Int("failed", len(report.Failed())).
		Int("cancelled", len(report.Cancelled())).
		Msg("scheduler finished")

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return cli.NewExitError("interrupted", 1)
		}
		return cli.NewExitError(fmt.Sprintf("%d job(s) failed", len(report.Failed())), 1)
	}
	return nil
}

func scheduleJobs(
	scheduler *timetrigger.Scheduler,
	registry *timetrigger.WorkRegistry,
	jobs []jobfile.Job,
	now time.Time,
) error {
	for i, job := range jobs {
		target, err := job.Target(now)
		if err != nil {
			return fmt.Errorf("jobs[%d] %s: %w", i, job.Name, err)
		}
		work, err := registry.Build(job.Kind, job.Param)
		if err != nil {
			return fmt.Errorf("jobs[%d] %s: %w", i, job.Name, err)
		}
		if _, err := scheduler.Schedule(target, work, timetrigger.WithLabel(job.Name)); err != nil {
			return fmt.Errorf("jobs[%d] %s: %w", i, job.Name, err)
		}
	}
	return nil
}
