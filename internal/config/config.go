package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"akhor/internal/export"
)

const (
	DefaultFileName = "akhor.ini"
	DefaultFlash    = 150 * time.Millisecond
	socketEnv       = "AKHOR_SOCKET"
)

type KeymapConfig struct {
	Overrides string
	Watch     bool
}

type EditorConfig struct {
	Flash  time.Duration
	Labels bool
}

type ExportConfig struct {
	Dir       string
	Normalize export.Normalization
}

// Origins lists the browser origins allowed on the websocket. Empty means
// same-host pages only; "*" allows any origin.
type ServerConfig struct {
	Socket    string
	Websocket string
	Origins   []string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type Config struct {
	Path   string
	Keymap KeymapConfig
	Editor EditorConfig
	Export ExportConfig
	Server ServerConfig
	Log    LogConfig
}

type ConfigError struct {
	msg string
}

func (e ConfigError) Error() string { return e.msg }

func Default() Config {
	return Config{
		Keymap: KeymapConfig{Watch: true},
		Editor: EditorConfig{Flash: DefaultFlash, Labels: true},
		Export: ExportConfig{Dir: ".", Normalize: export.NormNone},
		Server: ServerConfig{Socket: DefaultSocketPath(), Websocket: "127.0.0.1:7300"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads an INI file. Keys that are absent keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	info, err := os.Stat(path)
	if err != nil {
		return cfg, ConfigError{msg: fmt.Sprintf("failed to open config: %v", err)}
	}
	if info.IsDir() {
		return cfg, ConfigError{msg: fmt.Sprintf("config %s is a directory", path)}
	}

	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filepath.Clean(path))
	if err != nil {
		return cfg, ConfigError{msg: fmt.Sprintf("failed to parse %s: %v", path, err)}
	}
	cfg.Path = path
	base := filepath.Dir(path)

	keymap := file.Section("keymap")
	cfg.Keymap.Overrides = relativeTo(base, keymap.Key("overrides").MustString(""))
	if cfg.Keymap.Watch, err = boolKey(keymap, "watch", cfg.Keymap.Watch); err != nil {
		return cfg, err
	}

	editor := file.Section("editor")
	if editor.HasKey("flash") {
		flash, err := editor.Key("flash").Duration()
		if err != nil || flash <= 0 {
			return cfg, ConfigError{msg: fmt.Sprintf("invalid flash duration '%s' in %s", editor.Key("flash").String(), path)}
		}
		cfg.Editor.Flash = flash
	}
	if cfg.Editor.Labels, err = boolKey(editor, "labels", cfg.Editor.Labels); err != nil {
		return cfg, err
	}

	exp := file.Section("export")
	cfg.Export.Dir = relativeTo(base, exp.Key("dir").MustString(cfg.Export.Dir))
	if exp.HasKey("normalize") {
		n, err := export.ParseNormalization(exp.Key("normalize").String())
		if err != nil {
			return cfg, ConfigError{msg: fmt.Sprintf("invalid normalize '%s' in %s", exp.Key("normalize").String(), path)}
		}
		cfg.Export.Normalize = n
	}

	server := file.Section("server")
	cfg.Server.Socket = server.Key("socket").MustString(cfg.Server.Socket)
	cfg.Server.Websocket = server.Key("websocket").MustString(cfg.Server.Websocket)
	if server.HasKey("origins") {
		cfg.Server.Origins = nil
		for _, origin := range server.Key("origins").Strings(",") {
			if origin != "" {
				cfg.Server.Origins = append(cfg.Server.Origins, origin)
			}
		}
	}

	logSec := file.Section("log")
	cfg.Log.Level = strings.ToLower(logSec.Key("level").MustString(cfg.Log.Level))
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return cfg, ConfigError{msg: fmt.Sprintf("invalid log level '%s' in %s", cfg.Log.Level, path)}
	}
	cfg.Log.Format = strings.ToLower(logSec.Key("format").MustString(cfg.Log.Format))
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return cfg, ConfigError{msg: fmt.Sprintf("invalid log format '%s' in %s", cfg.Log.Format, path)}
	}
	cfg.Log.File = relativeTo(base, logSec.Key("file").MustString(""))

	return cfg, nil
}

func boolKey(sec *ini.Section, name string, def bool) (bool, error) {
	if !sec.HasKey(name) {
		return def, nil
	}
	v, err := sec.Key(name).Bool()
	if err != nil {
		return def, ConfigError{msg: fmt.Sprintf("invalid %s.%s '%s'", sec.Name(), name, sec.Key(name).String())}
	}
	return v, nil
}

func relativeTo(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Resolve loads the file named on the command line, or akhor.ini from the
// working directory when it exists, or falls back to defaults.
func Resolve(cliPath string) (Config, error) {
	if cliPath != "" {
		return Load(cliPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return Default(), nil
	}
	defaultPath := filepath.Join(cwd, DefaultFileName)
	if _, statErr := os.Stat(defaultPath); statErr == nil {
		return Load(defaultPath)
	} else if errors.Is(statErr, os.ErrNotExist) {
		return Default(), nil
	}
	return Default(), nil
}

// DefaultSocketPath returns the unix socket the translation server listens on.
func DefaultSocketPath() string {
	if env := os.Getenv(socketEnv); env != "" {
		return env
	}
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "akhor.sock")
	}
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		return filepath.Join(stateDir, "akhor", "akhor.sock")
	}
	return filepath.Join(os.TempDir(), "akhor.sock")
}

// EnsureSocketDir ensures that the directory containing the unix socket exists.
func EnsureSocketDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" || dir == string(filepath.Separator) {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
