package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/okzk/sdnotify"

	"akhor/internal/config"
	"akhor/internal/engine"
	"akhor/internal/keymap"
	"akhor/internal/session"
	"akhor/internal/watch"
)

// NewSession builds the key map named by cfg and a session around it.
func NewSession(cfg config.Config, surface session.Surface, logger *slog.Logger) (*session.Session, error) {
	table, err := keymap.LoadFile(cfg.Keymap.Overrides)
	if err != nil {
		return nil, err
	}
	eng, err := engine.NewEngine(table)
	if err != nil {
		return nil, err
	}
	return session.New(eng, surface, logger), nil
}

// StartWatch hands each reload of the override file to reload while ctx is
// live. It returns nil when there is nothing to watch.
func StartWatch(ctx context.Context, cfg config.Config, reload watch.ReloadFunc, logger *slog.Logger) (*watch.Watcher, error) {
	if cfg.Keymap.Overrides == "" || !cfg.Keymap.Watch {
		return nil, nil
	}
	w := watch.New(cfg.Keymap.Overrides, reload, logger)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Runtime runs the network surfaces until a signal arrives or one of them
// fails.
type Runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	cleanups []func()
}

func NewRuntime(cfg config.Config, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{cfg: cfg, logger: logger}
}

func (rt *Runtime) Run(ctx context.Context) error {
	defer rt.cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess, err := NewSession(rt.cfg, session.Discard, rt.logger)
	if err != nil {
		return err
	}
	watcher, err := StartWatch(ctx, rt.cfg, sess.SetTable, rt.logger.With("component", "watch"))
	if err != nil {
		return err
	}
	if watcher != nil {
		rt.registerCleanup(func() {
			cancel()
			watcher.Wait()
		})
	}

	server, err := StartTranslationServer(rt.cfg.Server.Socket, sess, rt.logger.With("component", "socket"))
	if err != nil {
		return err
	}
	if server != nil {
		rt.registerCleanup(server.Close)
	}

	var wsErrCh <-chan error
	if addr := rt.cfg.Server.Websocket; addr != "" {
		ws := NewWebsocketServer(sess, rt.cfg.Server.Origins, rt.logger.With("component", "websocket"))
		if err := ws.Start(addr); err != nil {
			return err
		}
		rt.registerCleanup(ws.Close)
		wsErrCh = ws.Err()
	}

	notify(rt.logger, sdnotify.Ready)
	defer notify(rt.logger, sdnotify.Stopping)
	return rt.runEventLoop(ctx, server, wsErrCh)
}

// notify reports service state to systemd when running under a unit with
// NOTIFY_SOCKET set; elsewhere it does nothing.
func notify(logger *slog.Logger, fn func() error) {
	if err := fn(); err != nil && !errors.Is(err, sdnotify.ErrSdNotifyNoSocket) {
		logger.Warn("sd_notify failed", "error", err)
	}
}

func (rt *Runtime) runEventLoop(ctx context.Context, server *TranslationServer, wsErrCh <-chan error) error {
	serverErrCh := server.Err()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serverErrCh:
			if !ok {
				serverErrCh = nil
				continue
			}
			if err != nil {
				return fmt.Errorf("translation server: %w", err)
			}
			serverErrCh = nil
		case err, ok := <-wsErrCh:
			if !ok {
				wsErrCh = nil
				continue
			}
			if err != nil {
				return fmt.Errorf("websocket server: %w", err)
			}
			wsErrCh = nil
		case sig := <-sigs:
			rt.logger.Info("shutting down", "signal", sig.String())
			return nil
		}
	}
}

func (rt *Runtime) registerCleanup(fn func()) {
	if fn == nil {
		return
	}
	rt.cleanups = append([]func(){fn}, rt.cleanups...)
}

func (rt *Runtime) cleanup() {
	for _, fn := range rt.cleanups {
		fn()
	}
	rt.cleanups = nil
}
