// Command greet-stress drives the hello plugin with a large roster as fast as
// the scheduler allows and prints a timing report.
//
// Profiling:
//
//	go run ./cmd/greet-stress -profile cpu
//	go tool pprof -http=":8000" cpu.pprof
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/greet/ecs"
	"github.com/plus3/greet/hello"
	"github.com/plus3/greet/internal/config"
	"github.com/plus3/greet/internal/logging"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The number of people to spawn at startup.")
	interval := flag.Duration("interval", 100*time.Millisecond, "Greet timer interval.")
	profileMode := flag.String("profile", "", "Write a profile to the working directory: cpu or mem.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	logLevel := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	log, err := logging.New(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profileMode)
	}

	log.Info("starting greet stress test", zap.Duration("duration", *duration), zap.Int("entities", *entityCount))

	people := make([]string, *entityCount)
	for i := range people {
		people[i] = fmt.Sprintf("Person %05d", i)
	}

	plugin := &hello.Plugin{People: people, Interval: *interval, Out: io.Discard}
	app := ecs.NewApp(ecs.WithLogger(log)).AddPlugin(plugin)

	if err := app.Startup(); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	log.Info("startup complete", zap.Int("entities", app.Storage().EntityCount()))

	report := &Report{
		Duration:       *duration,
		Entities:       app.Storage().EntityCount(),
		Interval:       *interval,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := app.Tick(deltaTime); err != nil {
				return fmt.Errorf("tick %d: %w", report.TotalUpdates+1, err)
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			report.TotalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.Greetings = plugin.Greeted()
	report.UpdateTime.Finalize()
	report.Storage = app.Storage().CollectStats()
	report.Scheduler = app.Scheduler().GetStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished", zap.Int64("updates", report.TotalUpdates), zap.Int("greetings", report.Greetings))

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}
