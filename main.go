package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/robmorgan/cliptile/batch"
	"github.com/robmorgan/cliptile/config"
	"github.com/robmorgan/cliptile/journal"
	"github.com/robmorgan/cliptile/logger"
	"github.com/robmorgan/cliptile/render"
	"github.com/robmorgan/cliptile/tiling"
	"k8s.io/utils/clock"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	arrangementPath := flag.String("arrangement", "", "YAML arrangement with tracks, clips and resizes")
	journalPath := flag.String("journal", "", "SQLite journal to record results in (overrides the config)")
	noColor := flag.Bool("no-color", false, "draw tracks without terminal colors")
	flag.Parse()

	if *arrangementPath == "" {
		fmt.Fprintln(os.Stderr, "usage: cliptile -arrangement FILE [-config FILE] [-journal FILE]")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// CTRL+C stops the batch before its next request
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	go func() {
		<-quit
		cancel()
	}()

	if err := Run(ctx, *configPath, *arrangementPath, *journalPath, !*noColor); err != nil {
		logger.GetProjectLogger().Fatalf("cliptile failed. err='%v'", err)
	}
}

// Run loads an arrangement into a simulated host, applies its resizes in order and prints every track
// before and after.
func Run(ctx context.Context, configPath, arrangementPath, journalPath string, color bool) error {
	logger := logger.GetProjectLogger()

	logger.Info("Initializing config...")
	cfg := config.NewTilerConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadTilerConfig(configPath); err != nil {
			return err
		}
	}
	if err := setLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if journalPath != "" {
		cfg.JournalPath = journalPath
	}

	logger.Info("Loading arrangement...")
	arr, err := config.LoadArrangement(arrangementPath)
	if err != nil {
		return err
	}
	if arr.Tempo == 0 {
		arr.Tempo = cfg.Tempo
	}
	patched, err := PatchArrangement(arr)
	if err != nil {
		return err
	}

	opts := render.DefaultOptions()
	opts.Color = color
	if err := patched.Print(os.Stdout, "before", opts); err != nil {
		return err
	}

	engine := tiling.New(patched.Session, cfg)

	queueOpts := []batch.Option{}
	if cfg.DeadlineSeconds > 0 {
		queueOpts = append(queueOpts, batch.WithDeadline(time.Duration(cfg.DeadlineSeconds*float64(time.Second))))
	}
	if cfg.JournalPath != "" {
		logger.Infof("Opening journal %s...", cfg.JournalPath)
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		queueOpts = append(queueOpts, batch.WithRecorder(j))
	}

	queue := batch.NewQueue(engine, clock.RealClock{}, queueOpts...)
	for _, req := range patched.Requests {
		queue.Enqueue(req)
	}

	logger.Infof("Processing %d resizes...", queue.Pending())
	items := queue.Run(ctx)
	tempo := patched.Session.Tempo()
	for _, item := range items {
		fmt.Fprintf(os.Stdout, "resize #%d clip %d -> %.3f beats: %s, achieved %.3f (%.2fs), clips %v\n  %s\n",
			item.ID, item.Request.Clip, item.Request.Length, item.Status, item.Result.Achieved,
			tempo.BeatsToSeconds(item.Result.Achieved), item.Result.Clips,
			render.Achievement(item.Request.Length, item.Result.Achieved, opts))
		for _, w := range item.Warnings {
			fmt.Fprintf(os.Stdout, "  warning: %s\n", w)
		}
	}

	return patched.Print(os.Stdout, "after", opts)
}

func setLogLevel(level string) error {
	if level == "" {
		return nil
	}
	return logger.SetLevel(level)
}
