package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/soerenschneider/stately/internal"
	"github.com/soerenschneider/stately/internal/conf"
	"github.com/soerenschneider/stately/internal/driver"
	"github.com/soerenschneider/stately/internal/metrics"
)

var (
	flagConfigFile   string
	flagMachine      string
	flagInitial      string
	flagDebug        bool
	flagPrintVersion bool

	BuildVersion string
	CommitHash   string
)

func parseFlags() {
	flag.StringVar(&flagConfigFile, "config", "", "Config file, built-in defaults are used if empty")
	flag.StringVar(&flagMachine, "machine", "", "Machine to run, overrides the config (reader, cycle)")
	flag.StringVar(&flagInitial, "initial", "", "Initial state, overrides the config")
	flag.BoolVar(&flagDebug, "debug", false, "Print debug logs")
	flag.BoolVar(&flagPrintVersion, "version", false, "Print version and exit")
	flag.Parse()
}

func main() {
	parseFlags()

	if flagPrintVersion {
		//nolint forbidigo
		fmt.Printf("%s %s\n", BuildVersion, CommitHash)
		os.Exit(0)
	}

	setupLogging()
	slog.Info("Starting stately", "version", BuildVersion)

	conf, err := readConfig()
	if err != nil {
		log.Fatalf("could not read config: %v", err)
	}

	if err := conf.Validate(); err != nil {
		log.Fatalf("validating config failed: %v", err)
	}

	initial, err := conf.InitialState()
	if err != nil {
		log.Fatalf("could not build initial state: %v", err)
	}

	holder, err := internal.NewHolder(conf.Machine, initial)
	if err != nil {
		log.Fatalf("could not create state holder: %v", err)
	}

	trigger, err := driver.Build(conf.Driver)
	if err != nil {
		log.Fatalf("could not build driver: %v", err)
	}

	run(holder, trigger, conf)
}

func readConfig() (*conf.Config, error) {
	config := conf.Default()
	if flagConfigFile != "" {
		var err error
		config, err = conf.ReadFromFile(flagConfigFile)
		if err != nil {
			return nil, err
		}
	}

	if flagMachine != "" && flagMachine != config.Machine {
		config.Machine = flagMachine
		// the configured initial state belongs to the other machine
		config.Initial = ""
	}
	if flagInitial != "" {
		config.Initial = flagInitial
	}

	return config, nil
}

func run(holder *internal.Holder, trigger driver.Driver, conf *conf.Config) {
	ctx, cancel := context.WithCancel(context.Background())

	wg := &sync.WaitGroup{}
	metricsErrChan := make(chan error, 1)
	if conf.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			metricsServer, err := metrics.New(conf.MetricsAddr)
			if err != nil {
				wg.Done()
				metricsErrChan <- err
				return
			}
			if err := metricsServer.StartServer(ctx, wg); err != nil {
				metricsErrChan <- err
			}
		}()
	} else if conf.MetricsFile != "" {
		wg.Add(1)
		go metrics.StartMetricsWriter(ctx, wg, conf.MetricsFile)
	}

	driverDone := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		driverDone <- trigger.Run(ctx, holder)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	var exitCode int
	select {
	case <-sigc:
		slog.Info("Received signal")
		exitCode = 0
	case err := <-driverDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			metrics.Errors.WithLabelValues(holder.Name(), "driver").Inc()
			slog.Error("driver failed", "err", err)
			exitCode = 1
		} else {
			slog.Info("Driver finished", "state", holder.State().Name(), "transitions", holder.Transitions())
		}
	case err := <-metricsErrChan:
		slog.Error("could not start metrics subsystem", "err", err)
		exitCode = 1
	}

	cancel()
	gracefulExitDone := make(chan struct{})

	go func() {
		slog.Info("Waiting for components to shut down gracefully")
		wg.Wait()
		close(gracefulExitDone)
	}()

	select {
	case <-gracefulExitDone:
		slog.Debug("All components shut down gracefully within the timeout")
	case <-time.After(30 * time.Second):
		slog.Error("Killing process forcefully")
	}
	os.Exit(exitCode)
}

func setupLogging() {
	var level slog.Leveler = slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
}
