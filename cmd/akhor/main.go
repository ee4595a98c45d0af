package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"akhor/internal/app"
	"akhor/internal/board"
	"akhor/internal/cli"
	"akhor/internal/config"
	"akhor/internal/engine"
	"akhor/internal/export"
	"akhor/internal/keymap"
	"akhor/internal/logging"
	"akhor/internal/term"
	"akhor/internal/tui"
)

const version = "0.3.0"

func main() {
	opts, err := cli.Parse(os.Args[1:], version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "akhor: %v\n\n%s\n", err, cli.Usage())
		os.Exit(1)
	}
	if opts.ShowHelp {
		fmt.Println(cli.Usage())
		return
	}
	if opts.ShowVersion {
		fmt.Println(version)
		return
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "akhor: %v\n", err)
		os.Exit(1)
	}
}

func run(opts cli.Options) error {
	if opts.Command == cli.CmdCheck {
		return runCheck(os.Stdout, opts.CheckPath)
	}

	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg, opts)

	logger, err := openLogger(cfg, opts.Command)
	if err != nil {
		return err
	}
	defer logger.Close()

	switch opts.Command {
	case cli.CmdType:
		return runType(cfg, logger)
	case cli.CmdTranslate:
		return runTranslate(cfg, opts, logger)
	case cli.CmdServe:
		return app.NewRuntime(cfg, logger.Logger).Run(context.Background())
	case cli.CmdKeys:
		return runKeys(os.Stdout, cfg, opts.Class)
	default:
		return runEdit(cfg, logger)
	}
}

func applyFlags(cfg *config.Config, opts cli.Options) {
	if opts.KeysPath != "" {
		cfg.Keymap.Overrides = opts.KeysPath
	}
	if opts.OutDir != "" {
		cfg.Export.Dir = opts.OutDir
	}
	if opts.SocketPath != "" {
		cfg.Server.Socket = opts.SocketPath
	}
	switch strings.ToLower(opts.Websocket) {
	case "":
	case "off", "none":
		cfg.Server.Websocket = ""
	default:
		cfg.Server.Websocket = opts.Websocket
	}
}

// openLogger keeps the interactive commands off the terminal unless a log
// file is configured.
func openLogger(cfg config.Config, command string) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	lc := &logging.Config{Level: level, Format: format, Output: "stderr", Component: "akhor"}
	switch {
	case cfg.Log.File != "":
		lc.Output = "file"
		lc.FilePath = cfg.Log.File
	case command == cli.CmdEdit || command == cli.CmdType:
		lc.Output = "discard"
	}
	return logging.New(lc)
}

func runEdit(cfg config.Config, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	ed := tui.New(screen, tui.Options{
		Flash:    cfg.Editor.Flash,
		Labels:   cfg.Editor.Labels,
		Exporter: export.Exporter{Dir: cfg.Export.Dir, Norm: cfg.Export.Normalize},
		Logger:   logger.WithComponent("tui"),
	})
	sess, err := app.NewSession(cfg, ed, logger.WithComponent("session"))
	if err != nil {
		return err
	}
	ed.Attach(sess)

	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reload := func(table *keymap.Table) error {
		if err := sess.SetTable(table); err != nil {
			return err
		}
		ed.Reloaded()
		return nil
	}
	watcher, err := app.StartWatch(ctx, cfg, reload, logger.WithComponent("watch"))
	if err != nil {
		return err
	}
	if watcher != nil {
		defer func() {
			cancel()
			watcher.Wait()
		}()
	}
	return ed.Run(ctx)
}

func runType(cfg config.Config, logger *logging.Logger) error {
	typer := term.New(os.Stderr, os.Stdout, logger.WithComponent("term"))
	sess, err := app.NewSession(cfg, typer, logger.WithComponent("session"))
	if err != nil {
		return err
	}
	typer.Attach(sess)

	keys, restore, err := term.OpenKeyboard()
	if err != nil {
		return err
	}
	defer restore()
	fmt.Fprintln(os.Stderr, "akhor: type Latin keys, Esc to finish")
	return typer.Run(keys)
}

func runTranslate(cfg config.Config, opts cli.Options, logger *logging.Logger) error {
	sess, err := app.NewSession(cfg, nil, logger.WithComponent("session"))
	if err != nil {
		return err
	}
	var in io.Reader = os.Stdin
	if len(opts.Text) > 0 {
		in = strings.NewReader(strings.Join(opts.Text, "\n") + "\n")
	}
	socket := ""
	if opts.Remote {
		socket = cfg.Server.Socket
	}
	return app.TranslateStream(in, os.Stdout, sess, socket, logger.WithComponent("translate"))
}

func runKeys(w io.Writer, cfg config.Config, class string) error {
	table, err := keymap.LoadFile(cfg.Keymap.Overrides)
	if err != nil {
		return err
	}
	only := keymap.ClassKind(-1)
	if class != "" {
		if only, err = keymap.ParseClassKind(class); err != nil {
			return err
		}
	}
	for _, row := range board.New(table).Rows() {
		for _, key := range row {
			if only >= 0 && key.Class != only {
				continue
			}
			fmt.Fprintf(w, "%-11s %-6s %-8s %-16s %s\n", key.Class, key.Token, key.Label, codepoints(key.Glyph), key.Glyph)
		}
	}
	return nil
}

func codepoints(s string) string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	return strings.Join(parts, " ")
}

func runCheck(w io.Writer, path string) error {
	table, err := keymap.LoadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if _, err := engine.NewEngine(table); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(w, "%s: ok (%d tokens)\n", path, table.Len())
	return nil
}
