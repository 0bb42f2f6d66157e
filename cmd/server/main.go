package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mcdsl/watercarry/internal/api"
	"github.com/mcdsl/watercarry/internal/config"
	"github.com/mcdsl/watercarry/internal/persist"
	"github.com/mcdsl/watercarry/internal/sim"
	"github.com/mcdsl/watercarry/internal/treatment"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

func main() {
	var (
		sessionPath = flag.String("session", "", "session YAML file")
		planPath    = flag.String("plan", "", "simulation configuration file")
		outDir      = flag.String("out", "", "directory for CSV logs")
		httpAddr    = flag.String("addr", "", "HTTP listen address")
		grpcAddr    = flag.String("grpc-addr", "", "gRPC health listen address")
		participant = flag.String("participant", "", "participant name")
		seed        = flag.Uint64("seed", 0, "seed for treatment outcomes")
		debug       = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	lg := logrus.New()
	lg.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true}
	if *debug {
		lg.Level = logrus.DebugLevel
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		lg.WithError(err).Warn("could not read .env")
	}
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			lg.WithError(err).Warn("sentry disabled")
		}
		defer sentry.Flush(time.Second * 5)
	}

	o := config.Overrides{
		Participant: participant,
		PlanPath:    planPath,
		OutputDir:   outDir,
		HTTPAddr:    httpAddr,
		GRPCAddr:    grpcAddr,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.Seed = seed
		}
	})

	loader := config.NewLoader()
	cfg, err := loader.LoadSession(*sessionPath, o)
	if err != nil {
		fatal(lg, err, "session")
	}

	parseOpts := []config.ParseOption{config.WithLogger(lg)}
	if cfg.Seed != nil {
		parseOpts = append(parseOpts, config.WithRNG(treatment.NewSeededRNG(*cfg.Seed)))
	}
	// a broken plan still yields a session, parked in ERROR
	plan, err := loader.LoadPlan(cfg.PlanPath, parseOpts...)
	if err == nil {
		err = config.ValidatePlan(plan)
	}
	if err != nil {
		lg.WithError(err).Error("plan rejected")
		plan = nil
	}

	id := uuid.NewString()
	opts := sim.Options{Logger: lg}
	if cfg.PersistInterval != nil {
		opts.PersistInterval = *cfg.PersistInterval
	}
	if plan != nil {
		out, err := persist.NewCSV(cfg.OutputDir, persist.HeaderFor(id, cfg.Participant, plan, time.Now()))
		if err != nil {
			fatal(lg, err, "log file")
		}
		lg.Infof("logging to %s", out.Path())
		opts.Persister = out
	}

	var gs *grpc.Server
	if cfg.GRPCAddr != "" {
		gs = grpc.NewServer()
	}
	hs := api.NewHealthServer(gs)
	if gs != nil {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			fatal(lg, err, "grpc listen")
		}
		go func() {
			if err := gs.Serve(lis); err != nil {
				lg.WithError(err).Error("grpc server stopped")
			}
		}()
	}

	session := api.NewSession(id, plan, opts, hs)

	watcher := config.NewFileWatcher([]string{cfg.PlanPath}, 2*time.Second, func(path string) {
		loader.Invalidate()
		lg.WithField("path", path).Info("plan changed on disk; it applies to the next session")
	})
	watcher.Start()
	defer watcher.Stop()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Router(session)}
	go func() {
		lg.WithField("session", id).Infof("listening on %s ...", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(lg, err, "http")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdown)
	if gs != nil {
		gs.GracefulStop()
	}
	lg.Info("bye")
}

// fatal reports err to Sentry before exiting; os.Exit skips deferred flushes.
func fatal(lg *logrus.Logger, err error, what string) {
	sentry.CaptureException(fmt.Errorf("%s: %w", what, err))
	sentry.Flush(time.Second * 5)
	lg.WithError(err).Fatal(what)
}
