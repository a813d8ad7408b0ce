// Command raycar drives a raycast-suspension car in the terminal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/raycar/audio"
	"github.com/lixenwraith/raycar/config"
	"github.com/lixenwraith/raycar/engine"
	"github.com/lixenwraith/raycar/input"
	"github.com/lixenwraith/raycar/service"
	"github.com/lixenwraith/raycar/status"
	"github.com/lixenwraith/raycar/telemetry"
)

var (
	configFlag    = flag.String("config", "", "YAML config file layered over defaults")
	dumpFlag      = flag.Bool("dump-config", false, "Print the effective config as YAML and exit")
	telemetryFlag = flag.String("telemetry", "", "Telemetry store: off, memory, sqlite (overrides config)")
	dsnFlag       = flag.String("dsn", "", "SQLite DSN for -telemetry=sqlite")
	logFlag       = flag.String("log", "", "Log file; empty keeps logging off the terminal")
	headlessFlag  = flag.Duration("headless", 0, "Run without a terminal for this long with throttle held, then print a summary")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "raycar: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *dumpFlag {
		out, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	fp, err := config.Fingerprint(cfg)
	if err != nil {
		return err
	}
	log.Info("raycar starting", zap.String("config_fingerprint", fmt.Sprintf("%016x", fp)))

	recorder, err := openRecorder(cfg, log)
	if err != nil {
		return err
	}

	hub := service.NewHub(log)
	defer func() {
		if err := hub.StopAll(); err != nil {
			log.Warn("shutdown incomplete", zap.Error(err))
		}
	}()
	if recorder != nil {
		if err := hub.Register(service.Func{ID: "telemetry", OnStop: recorder.Close}); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headlessFlag > 0 {
		return runHeadless(ctx, cfg, log, hub, recorder, *headlessFlag)
	}
	return runTerminal(ctx, cfg, log, hub, recorder)
}

// registerEngine stops the engine before the services it feeds
func registerEngine(hub *service.Hub, e *engine.Engine) error {
	var deps []string
	for _, name := range []string{"audio", "telemetry"} {
		if _, ok := hub.Get(name); ok {
			deps = append(deps, name)
		}
	}
	return hub.Register(service.Func{
		ID:        "engine",
		DependsOn: deps,
		OnStop:    func() error { return e.Close(context.Background()) },
	})
}

func applyFlags(cfg *config.Config) {
	switch *telemetryFlag {
	case "":
	case "off":
		cfg.Telemetry.Enabled = false
	default:
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Store = *telemetryFlag
	}
	if *dsnFlag != "" {
		cfg.Telemetry.DSN = *dsnFlag
	}
	if *logFlag != "" {
		cfg.Log.File = *logFlag
	}
}

// newLogger writes JSON logs to the configured file, or discards them
// The terminal is in raw mode while driving, so nothing goes to stderr
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	if lc.File == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	zc.OutputPaths = []string{lc.File}
	zc.ErrorOutputPaths = []string{lc.File}
	return zc.Build()
}

func openRecorder(cfg config.Config, log *zap.Logger) (telemetry.Recorder, error) {
	t := cfg.Telemetry
	if !t.Enabled {
		return nil, nil
	}
	switch t.Store {
	case config.StoreSQLite:
		return telemetry.OpenSQLite(t.DSN, t.BatchSize, log)
	default:
		return telemetry.NewMemoryRecorder(t.RingSize), nil
	}
}

func spawnPlayer(e *engine.Engine, cfg config.Config) (engine.Handle, error) {
	return e.Spawn(engine.SpawnOptions{
		Name:             "player",
		Position:         cfg.Spawn.Position,
		Orientation:      headingQuat(cfg.Spawn.Heading),
		PlayerControlled: true,
	})
}

func runTerminal(ctx context.Context, cfg config.Config, log *zap.Logger, hub *service.Hub, recorder telemetry.Recorder) error {
	keys, err := cfg.KeyTable()
	if err != nil {
		return err
	}

	horn, err := audio.NewHorn(cfg.Audio, log)
	if err != nil {
		return err
	}
	err = hub.Register(service.Func{
		ID:      "audio",
		OnStart: horn.Init,
		OnStop:  func() error { horn.Close(); return nil },
	})
	if err != nil {
		return err
	}

	reg := status.NewRegistry()
	e, err := engine.New(cfg, engine.Options{Log: log, Status: reg, Recorder: recorder, Horn: horn})
	if err != nil {
		return err
	}
	if err := registerEngine(hub, e); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	if _, err := spawnPlayer(e, cfg); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	engine.OnCrash(screen.Fini)
	defer screen.Fini()

	view := newView(screen)
	receiver := input.NewReceiver(keys, input.DefaultHoldTimeout)
	scheduler := engine.NewClockScheduler(e, nil, receiver, 0, view.draw)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(engine.Guard(func() error {
		err := scheduler.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}))

	g.Go(engine.Guard(func() error {
		defer cancel()
		for {
			ev := screen.PollEvent()
			switch ev := ev.(type) {
			case nil, *tcell.EventInterrupt:
				return nil
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
					return nil
				case ev.Rune() == 'p':
					view.setPaused(scheduler.TogglePause())
				case ev.Rune() == 'm':
					horn.SetMuted(!horn.Muted())
				default:
					receiver.HandleKey(ev, time.Now())
				}
			}
		}
	}))

	g.Go(func() error {
		<-ctx.Done()
		// Unblocks PollEvent
		screen.PostEvent(tcell.NewEventInterrupt(nil))
		return nil
	})

	err = g.Wait()
	log.Info("raycar stopped", zap.Uint64("steps", e.Steps()), zap.Uint64("frames", scheduler.Frames()))
	return err
}
