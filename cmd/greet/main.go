// Command greet runs the hello plugin: three people are spawned at startup and
// greeted on stdout every time the greet timer fires.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/plus3/greet/ecs"
	"github.com/plus3/greet/hello"
	"github.com/plus3/greet/internal/config"
	"github.com/plus3/greet/internal/logging"
	"github.com/plus3/greet/internal/roster"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", os.Getenv("GREET_CONFIG"), "Path to a TOML config file.")
	rosterPath := flag.String("roster", "", "Path to a YAML roster; overrides the config file.")
	ticks := flag.Uint64("ticks", 0, "Stop after this many ticks; overrides the config file.")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *rosterPath != "" {
		cfg.Roster.Path = *rosterPath
	}
	if *ticks > 0 {
		cfg.Loop.MaxTicks = *ticks
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	var people []string
	if cfg.Roster.Path != "" {
		if people, err = roster.Load(cfg.Roster.Path); err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		log.Info("roster loaded", zap.String("path", cfg.Roster.Path), zap.Int("people", len(people)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := ecs.NewApp(ecs.WithLogger(log)).
		AddPlugin(&hello.Plugin{
			People:   people,
			Interval: cfg.Interval(),
			OneShot:  !cfg.Timer.Repeating,
			Out:      os.Stdout,
		})

	if cfg.Loop.MaxTicks > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		app.AddSystem(&tickLimit{Max: cfg.Loop.MaxTicks, stop: cancel})
	}

	log.Info("starting",
		zap.Strings("plugins", app.Plugins()),
		zap.Duration("interval", cfg.Interval()),
		zap.Duration("tick_rate", cfg.Loop.TickRate),
	)

	if err := app.Run(ctx, cfg.Loop.TickRate); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// tickLimit stops the loop once Max frames have run.
type tickLimit struct {
	Time ecs.Singleton[ecs.Time]
	Max  uint64

	stop context.CancelFunc
}

func (s *tickLimit) Execute(frame *ecs.UpdateFrame) {
	if s.Time.Get().Frame >= s.Max {
		s.stop()
	}
}
