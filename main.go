package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"github.com/javierwelch/challenge-latam/src/config"
	"github.com/javierwelch/challenge-latam/src/datasource/email"
	"github.com/javierwelch/challenge-latam/src/datasource/file"
	"github.com/javierwelch/challenge-latam/src/logger"
	"github.com/javierwelch/challenge-latam/src/processor"
	"github.com/javierwelch/challenge-latam/src/server"
	"github.com/javierwelch/challenge-latam/src/storage"
)

func main() {
	var (
		mode      = flag.String("mode", "analyze", "analyze (one-shot) or serve (API + periodic refresh)")
		configDir = flag.String("config", "./config", "directory holding config.json and dataconfig.json")
	)
	flag.Parse()

	cfg, dcfg, err := config.LoadConfig(*configDir, "config.json", "dataconfig.json")
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logg.Sync()

	var store *storage.RunStore
	if cfg.DBPath != "" {
		store, err = storage.Open(cfg.DBPath, logg)
		if err != nil {
			logg.Fatal("failed to open run store", logger.Error(err))
		}
		defer store.Close()
	}

	pipe := processor.New(cfg, dcfg, store, logg)

	switch *mode {
	case "analyze":
		if err := runOnce(pipe, cfg, logg); err != nil {
			logg.Fatal("analysis failed", logger.Error(err))
		}
	case "serve":
		serve(pipe, cfg, store, logg)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runOnce(pipe *processor.Pipeline, cfg *config.Config, logg *logger.Logger) error {
	df, err := pipe.LoadDataset()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	res, err := pipe.Run(df, cfg.Data.Path)
	if err != nil {
		return err
	}

	for _, path := range res.ChartPaths {
		logg.Info("chart written", logger.String("path", path))
	}
	return nil
}

func serve(pipe *processor.Pipeline, cfg *config.Config, store *storage.RunStore, logg *logger.Logger) {
	router := server.NewRouter(cfg.ChartsDir, store, logg)
	handler := router.Handler()

	refresh := func(path string) {
		df, err := pipe.LoadDatasetFrom(path)
		if err != nil {
			logg.Error("load dataset", logger.String("path", path), logger.Error(err))
			return
		}
		res, err := pipe.Run(df, path)
		if err != nil {
			logg.Error("analysis run", logger.String("path", path), logger.Error(err))
			return
		}
		handler.SetResult(res)
	}
	refresh(cfg.Data.Path)

	// Periodic refresh of the on-disk dataset.
	c := cron.New()
	interval := time.Duration(cfg.RefreshInterval)
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		refresh(cfg.Data.Path)
	})
	if err != nil {
		logg.Fatal("failed to schedule refresh", logger.Error(err))
	}

	// Mailbox polling runs on its own interval when enabled.
	if cfg.Email.Enabled {
		mailClient := email.NewClient(cfg.Email.Server, cfg.Email.Username, cfg.Email.Password)
		mailHandler := email.NewAttachmentHandler(filepath.Dir(cfg.Data.Path), logg)
		defer mailClient.Disconnect()

		mailInterval := time.Duration(cfg.Email.CheckInterval)
		if mailInterval <= 0 {
			mailInterval = interval
		}
		err := c.AddFunc(fmt.Sprintf("@every %s", mailInterval), func() {
			att, err := mailClient.FetchLatestDataset(cfg.Email.TargetSubject)
			if err != nil {
				logg.Error("fetch dataset mail", logger.Error(err))
				return
			}
			path, err := mailHandler.Handle(att)
			if err != nil {
				logg.Error("save dataset mail", logger.Error(err))
				return
			}
			if path != "" {
				refresh(path)
			}
		})
		if err != nil {
			logg.Fatal("failed to schedule mail polling", logger.Error(err))
		}
	}
	c.Start()
	defer c.Stop()

	// Re-run on dataset writes.
	monitor, err := file.NewMonitor(filepath.Dir(cfg.Data.Path))
	if err != nil {
		logg.Warn("file monitoring disabled", logger.Error(err))
	} else {
		defer monitor.Close()
		go func() {
			if err := monitor.Watch(refresh); err != nil {
				logg.Error("file monitor stopped", logger.Error(err))
			}
		}()
	}

	go func() {
		logg.Info("API listening", logger.String("addr", cfg.Server.Addr))
		if err := http.ListenAndServe(cfg.Server.Addr, router.Routes()); err != nil {
			logg.Fatal("http server", logger.Error(err))
		}
	}()

	waitForShutdown(logg)
}

func waitForShutdown(logg *logger.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logg.Info("received signal, shutting down", logger.String("signal", sig.String()))
}
