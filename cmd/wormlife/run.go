package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wormlife/wormlife/internal/config"
	"github.com/wormlife/wormlife/internal/core/event"
	coresys "github.com/wormlife/wormlife/internal/core/system"
	"github.com/wormlife/wormlife/internal/data"
	"github.com/wormlife/wormlife/internal/economy"
	"github.com/wormlife/wormlife/internal/lifecycle"
	"github.com/wormlife/wormlife/internal/metrics"
	"github.com/wormlife/wormlife/internal/persist"
	"github.com/wormlife/wormlife/internal/scripting"
	"github.com/wormlife/wormlife/internal/system"
	"github.com/wormlife/wormlife/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const heartbeatEvery = 10 * time.Second

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the simulation until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return run(cfgPath)
		},
	}
}

func run(cfgPath string) error {
	// 1. Load config
	cfg, err := config.Load(cfgPath, true)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Lifecycle tables and hooks
	printSection("lifecycle")
	table, err := data.LoadLifecycleTable(cfg.Lifecycle.Table)
	if err != nil {
		return fmt.Errorf("lifecycle table: %w", err)
	}
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var breeder lifecycle.Breeder = data.NewBreeder(table, rand.New(rand.NewSource(seed)))
	if cfg.Lifecycle.Scripts != "" {
		lua, err := scripting.NewEngine(cfg.Lifecycle.Scripts, log)
		if err != nil {
			return fmt.Errorf("lua: %w", err)
		}
		defer lua.Close()
		breeder = scripting.NewBreeder(lua, breeder)
		printOK("lua hooks loaded from " + cfg.Lifecycle.Scripts)
	}
	printOK(fmt.Sprintf("lifespan %.0f–%.0f min", table.Lifespan.MinMinutes, table.Lifespan.MaxMinutes))

	// 4. Core state
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	bus := event.NewBus()
	store := world.NewStore(bus, log)
	engine := lifecycle.NewEngine(store, bus, breeder, lifecycle.Config{
		Thresholds:     table.Thresholds(),
		TimeMultiplier: cfg.Game.TimeMultiplier,
	}, m, log)

	// 5. Load the save; collaborators seed themselves from the Loaded event
	printSection("save")
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(cfg.Save.Dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	wallet := economy.NewWallet(log)
	inventory := economy.NewInventory(store, log)
	achievements := economy.NewAchievements()
	defer system.SeedFromSave(bus, engine, wallet, inventory, achievements, log)()

	gateway := persist.NewGateway(osFs, cfg.Save.Dir, bus, m, log)
	gateway.Load()
	bus.Flush()
	gateway.Bind(persist.Sources{
		Worms:        store,
		Resources:    wallet,
		Inventory:    inventory,
		Achievements: achievements,
	})
	printOK(fmt.Sprintf("loaded from %s", gateway.Source()))
	printStat("worms restored", store.Len())
	if w, ok := store.Active(); ok {
		printOK(fmt.Sprintf("%s is active (generation %d)", w.Name, w.Generation))
	}
	printStat("acorns", wallet.Balance(economy.Acorn))
	printStat("diamonds", wallet.Balance(economy.Diamond))

	// 6. Lineage archive
	if cfg.Archive.Path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		archive, err := persist.OpenArchive(ctx, cfg.Archive.Path, log)
		cancel()
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		defer archive.Close()
		defer system.RecordDeaths(bus, archive, time.Now, log)()
		printOK("lineage archive " + cfg.Archive.Path)
	}

	// 7. Metrics endpoint
	if cfg.Metrics.BindAddress != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.BindAddress,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		printOK("metrics on " + cfg.Metrics.BindAddress)
	}
	fmt.Println()

	// 8. Systems
	runner := coresys.NewRunner()
	persistSys := system.NewPersistenceSystem(gateway, cfg.Save.AutosaveInterval, log)
	status := system.NewStatusSystem(os.Stdout, bus, store, heartbeatEvery)
	defer status.Close()
	runner.Register(system.NewLifecycleSystem(engine))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(status)
	runner.Register(persistSys)

	// 9. Game loop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("tick %s · time ×%g · autosave %s", cfg.Game.TickRate, cfg.Game.TimeMultiplier, cfg.Save.AutosaveInterval))
	fmt.Println()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			runner.Tick(now.Sub(last))
			last = now
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGUSR1:
				_ = persistSys.OnHost(system.HostPause)
			case syscall.SIGUSR2:
				_ = persistSys.OnHost(system.HostFocusLost)
			case syscall.SIGHUP:
				// Reseed before the next save can write the old live state back.
				if _, err := gateway.ReloadFromBackup(); err == nil {
					bus.Flush()
				}
			default:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				err := persistSys.OnHost(system.HostQuit)
				bus.Flush()
				if err != nil {
					log.Error("final save failed", zap.Error(err))
				}
				log.Info("stopped")
				return nil
			}
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
