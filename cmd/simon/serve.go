package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/simon/pkg/api"
	"github.com/cbodonnell/simon/pkg/config"
	"github.com/cbodonnell/simon/pkg/difficulty"
	"github.com/cbodonnell/simon/pkg/game"
	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware"
	"github.com/cbodonnell/simon/pkg/hardware/audio"
	"github.com/cbodonnell/simon/pkg/hardware/gpio"
	"github.com/cbodonnell/simon/pkg/hardware/memory"
	"github.com/cbodonnell/simon/pkg/hardware/terminal"
	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/metrics"
	"github.com/cbodonnell/simon/pkg/network"
	"github.com/cbodonnell/simon/pkg/presentation"
	"github.com/cbodonnell/simon/pkg/repositories"
	"github.com/cbodonnell/simon/pkg/version"
	"github.com/cbodonnell/simon/pkg/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// ShutdownTimeout bounds the graceful shutdown of the API server
const ShutdownTimeout = 5 * time.Second

var logFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game on the configured board and serve the web API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stdout (defaults to simon.log with the terminal driver)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out, closeLog, err := logOutput(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	if err := setupLogger(cfg, out); err != nil {
		return err
	}

	log.Info("Starting simon version %s", version.Get())

	palette, err := cfg.Palette()
	if err != nil {
		return fmt.Errorf("failed to build palette: %v", err)
	}

	repository, err := repositories.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open repository: %v", err)
	}
	defer repository.Close(context.Background())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	registry := presentation.NewRegistry(presentation.NewRegistryOptions{
		OnDrop: func(presentation.Event) {
			m.EventDropped()
		},
	})

	board, panel, err := newBoard(cfg, palette, stop)
	if err != nil {
		return err
	}
	if cfg.Peripheral.Audio {
		board = audio.WithSpeaker(board)
	}
	defer board.Close()

	difficultyController, err := difficulty.NewController(difficulty.NewControllerOptions{
		Presets: cfg.Difficulty.Presets,
		Level:   cfg.Difficulty.Default,
	})
	if err != nil {
		return fmt.Errorf("failed to create difficulty controller: %v", err)
	}

	engine := game.NewEngine(game.NewEngineOptions{
		Palette:     palette,
		Board:       board,
		Repository:  repository,
		Sink:        registry,
		Difficulty:  difficultyController,
		Metrics:     m,
		NameTimeout: cfg.NameTimeout,
	})

	clientManager := network.NewClientManager()
	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		ClientManager:  clientManager,
		Game:           engine,
		Sink:           registry,
		OriginPatterns: cfg.AllowedOrigins,
	})

	connectionEventWorker := workers.NewConnectionEventWorker(workers.NewConnectionEventWorkerOptions{
		ClientEventChan: clientManager.GetClientEventChan(),
		Metrics:         m,
	})
	go connectionEventWorker.Start(ctx)

	broadcastMessageWorker := workers.NewBroadcastMessageWorker(workers.NewBroadcastMessageWorkerOptions{
		Broadcaster:  networkManager,
		Subscription: registry.Subscribe(),
	})
	go broadcastMessageWorker.Start(ctx)

	if panel != nil {
		go panel.Observe(ctx, registry.Subscribe())
		go panel.Run(ctx)
	}

	var tlsConfig *api.TLSConfig
	if cfg.TLS.Enabled() {
		tlsConfig = &api.TLSConfig{CertFile: cfg.TLS.CertFile, KeyFile: cfg.TLS.KeyFile}
	}
	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Addr:           cfg.ListenAddr,
		TLS:            tlsConfig,
		Repository:     repository,
		Game:           engine,
		NetworkManager: networkManager,
		Sink:           registry,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ControlToken:   cfg.ControlToken,
		HighscoreLimit: cfg.HighscoreLimit,
	})
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error("API server error: %v", err)
			stop()
		}
	}()

	engineErr := engine.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
	log.Info("Shut down")

	return engineErr
}

// newBoard selects the peripheral driver. The terminal panel is returned
// separately so its event loop can be started.
func newBoard(cfg *config.Config, palette *types.Palette, quit func()) (hardware.Board, *terminal.Board, error) {
	switch cfg.Peripheral.Driver {
	case config.DriverGPIO:
		pins := make([]gpio.PinMapping, 0, len(cfg.Colors))
		for i, c := range cfg.Colors {
			pins = append(pins, gpio.PinMapping{
				Color:  palette.At(i),
				LED:    c.LED,
				Button: c.Button,
			})
		}
		board, err := gpio.NewBoard(gpio.NewBoardOptions{
			Pins:      pins,
			BuzzerPin: cfg.BuzzerPin,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create GPIO board: %v", err)
		}
		return board, nil, nil
	case config.DriverTerminal:
		panel, err := terminal.NewBoard(terminal.NewBoardOptions{
			Palette: palette,
			OnQuit:  quit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create terminal board: %v", err)
		}
		return panel, panel, nil
	default:
		log.Info("Running without a physical board, play through the web client")
		return memory.NewBoard(palette), nil, nil
	}
}

// logOutput keeps log lines off the screen when the terminal panel owns it.
func logOutput(cfg *config.Config) (io.Writer, func(), error) {
	path := logFile
	if path == "" && cfg.Peripheral.Driver == config.DriverTerminal {
		path = "simon.log"
	}
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %v", err)
	}
	return f, func() { f.Close() }, nil
}
