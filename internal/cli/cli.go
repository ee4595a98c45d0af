package cli

import (
	"fmt"
	"strings"

	"github.com/docopt/docopt-go"
)

const (
	CmdEdit      = "edit"
	CmdType      = "type"
	CmdTranslate = "translate"
	CmdServe     = "serve"
	CmdKeys      = "keys"
	CmdCheck     = "check"
)

type Options struct {
	Command     string
	ConfigPath  string
	KeysPath    string
	OutDir      string
	SocketPath  string
	Websocket   string
	Class       string
	CheckPath   string
	Remote      bool
	Text        []string
	ShowHelp    bool
	ShowVersion bool
}

// Parse reads argv without the program name.
func Parse(argv []string, version string) (Options, error) {
	for _, arg := range argv {
		switch arg {
		case "-h", "--help":
			return Options{ShowHelp: true}, nil
		case "--version":
			return Options{ShowVersion: true}, nil
		}
	}

	if argv == nil {
		argv = []string{}
	}
	parser := &docopt.Parser{HelpHandler: docopt.NoHelpHandler}
	arguments, err := parser.ParseArgs(Usage(), argv, version)
	if err != nil {
		return Options{}, fmt.Errorf("invalid arguments: %w", err)
	}

	opts := Options{
		Command:    CmdEdit,
		ConfigPath: stringArg(arguments, "--config"),
		KeysPath:   stringArg(arguments, "--keys"),
		OutDir:     stringArg(arguments, "--out"),
		SocketPath: stringArg(arguments, "--socket"),
		Websocket:  stringArg(arguments, "--websocket"),
		Class:      stringArg(arguments, "--class"),
		CheckPath:  stringArg(arguments, "<file>"),
		Remote:     boolArg(arguments, "--remote"),
	}
	for _, cmd := range []string{CmdType, CmdTranslate, CmdServe, CmdKeys, CmdCheck} {
		if boolArg(arguments, cmd) {
			opts.Command = cmd
		}
	}
	if text, ok := arguments["<text>"].([]string); ok {
		opts.Text = text
	}
	return opts, nil
}

func stringArg(arguments map[string]interface{}, key string) string {
	if v, ok := arguments[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func boolArg(arguments map[string]interface{}, key string) bool {
	v, _ := arguments[key].(bool)
	return v
}

func Usage() string {
	return `akhor - phonetic Assamese keyboard.

Usage:
  akhor [edit] [--config=<file>] [--keys=<file>] [--out=<dir>]
  akhor type [--config=<file>] [--keys=<file>]
  akhor translate [--config=<file>] [--keys=<file>] [--remote] [--socket=<path>] [<text>...]
  akhor serve [--config=<file>] [--keys=<file>] [--socket=<path>] [--websocket=<addr>]
  akhor keys [--config=<file>] [--keys=<file>] [--class=<name>]
  akhor check <file>
  akhor -h | --help
  akhor --version

Commands:
  edit        Full-screen editor with the on-screen keyboard (default).
  type        Line-mode typer; finished lines go to stdout.
  translate   Convert Latin keystroke scripts from the arguments or stdin.
  serve       Run the unix socket and websocket translation servers.
  keys        List the key map.
  check       Validate a key map override file.

Options:
  --config=<file>     INI settings (default: ./akhor.ini if present).
  --keys=<file>       Key map override file (.toml, .json or .yaml).
  --out=<dir>         Directory for exported files.
  --remote            Ask a running server first, fall back to local conversion.
  --socket=<path>     Unix socket of the translation server.
  --websocket=<addr>  Websocket listen address, or "off".
  --class=<name>      Only list one class (digits, consonants, symbols, vowels).
  -h --help           Show this screen.
  --version           Show version.`
}
