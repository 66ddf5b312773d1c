package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	conndisplay "periph.io/x/conn/v3/display"

	"github.com/stvenmobile/sparky/internal/bus"
	"github.com/stvenmobile/sparky/internal/command"
	"github.com/stvenmobile/sparky/internal/config"
	"github.com/stvenmobile/sparky/internal/face"
	"github.com/stvenmobile/sparky/internal/logging"
	"github.com/stvenmobile/sparky/internal/loop"
	"github.com/stvenmobile/sparky/internal/metrics"
	"github.com/stvenmobile/sparky/internal/panel"
	"github.com/stvenmobile/sparky/internal/surface"
	"github.com/stvenmobile/sparky/internal/terminal"
)

func runFace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal preview owns the tty, so logs go to the file only.
	if cfg.Display.Backend == config.BackendTerminal {
		cfg.Logging.Console = false
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	log := logger.Zerolog()
	log.Info().
		Str("version", version).
		Str("config", cfg.Source).
		Str("display", cfg.Display.Backend).
		Msg("Starting sparky")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	fb := surface.NewFramebuffer(cfg.Display.Width, cfg.Display.Height)
	displayLog := logger.Component("display")
	fb.OnError(func(err error) {
		displayLog.Warn().Err(err).Msg("Display flush failed")
	})

	var screen tcell.Screen
	if cfg.Display.Backend == config.BackendTerminal {
		screen, err = terminal.Open()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		defer screen.Fini()
		fb.AddSink(terminal.NewSink(screen, cfg.Display.TerminalScale))
	}
	if cfg.Display.Backend == config.BackendPanel {
		dev, err := attachPanel(fb, cfg.Display.Panel)
		if err != nil {
			return err
		}
		defer dev.Close()
		displayLog.Info().
			Str("driver", cfg.Display.Panel.Driver).
			Str("bus", cfg.Display.Panel.Bus).
			Str("device", dev.String()).
			Msg("Panel attached")
	}

	opts := []face.Option{
		face.WithLogger(logger.Component("face")),
		face.WithObserver(m),
	}
	if cfg.Animation.Seed != 0 {
		opts = append(opts, face.WithRand(rand.New(rand.NewSource(cfg.Animation.Seed))))
	}
	f := face.New(cfg.Layout, metrics.InstrumentSurface(fb, m), opts...)

	runner := loop.New(f, cfg.Animation,
		loop.WithLogger(logger.Component("loop")),
		loop.WithFrameObserver(m),
	)

	eventBus := bus.NewEventBus()
	subscribeLogging(eventBus, logger.Component("bus"))
	dispatcher := command.NewDispatcher(runner, eventBus, m, logger.Component("command"))

	if cfg.Source != "" {
		watcher, err := config.NewWatcher(cfg.Source, logger.Component("config"), func(c *config.Config) {
			if err := logger.SetLevel(c.Logging.Level); err != nil {
				log.Warn().Err(err).Msg("Ignoring log level from reloaded config")
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("Config hot reload disabled")
		} else {
			defer watcher.Close()
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(ctx) })

	if cfg.Metrics.Listen != "" {
		g.Go(func() error { return metrics.Serve(ctx, cfg.Metrics.Listen, reg, logger.Component("metrics")) })
	}

	if cfg.Commands.WebSocketURL != "" {
		ws := command.NewWSClient(cfg.Commands, dispatcher, eventBus, logger.Component("command"))
		ws.OnConnState(m.SetConnected)
		g.Go(func() error { return ws.Run(ctx) })
	}

	if cfg.Commands.Stdin {
		// stdin may never close, so the reader is not part of the group
		go func() {
			if err := command.ReadLines(ctx, os.Stdin, dispatcher); err != nil {
				log.Warn().Err(err).Msg("Stdin reader stopped")
			}
		}()
	}

	if screen != nil {
		g.Go(func() error {
			err := terminal.RunInput(ctx, screen, dispatcher, logger.Component("display"))
			stop()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Uint64("frames", runner.Frames()).Msg("Sparky stopped")
	return nil
}

// panelDevice is an open panel driver.
type panelDevice interface {
	conndisplay.Drawer
	io.Closer
}

var openPanel = func(cfg panel.Config) (panelDevice, error) { return panel.Open(cfg) }

// attachPanel opens the configured panel and feeds it the framebuffer's
// dirty regions.
func attachPanel(fb *surface.Framebuffer, cfg panel.Config) (panelDevice, error) {
	dev, err := openPanel(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open panel: %w", err)
	}
	fb.AddSink(surface.NewDrawerSink(dev))
	return dev, nil
}

// subscribeLogging records bus traffic. The LED ring and other listeners
// live outside this process and read the same events.
func subscribeLogging(b *bus.EventBus, log zerolog.Logger) {
	b.SubscribeAll(func(e bus.Event) {
		ev := log.Debug()
		if e.Type == bus.EventTypeLEDState || e.Type == bus.EventTypeCommandRejected {
			ev = log.Info()
		}
		ev.Str("event", string(e.Type)).Interface("data", e.Data).Msg("Event")
	})
}
