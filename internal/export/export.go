// Package export writes the buffer out as files. It never touches the
// session, only the text it is handed.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type Format int

const (
	FormatText Format = iota
	FormatRTF
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatRTF:
		return "rtf"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FileName is the name a file of this format is saved under.
func (f Format) FileName() string {
	switch f {
	case FormatRTF:
		return "document.rtf"
	default:
		return "text.txt"
	}
}

func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "txt", "text", "plain":
		return FormatText, nil
	case "rtf", "doc", "document":
		return FormatRTF, nil
	default:
		return FormatText, fmt.Errorf("export: unknown format %q", name)
	}
}

type Normalization int

const (
	NormNone Normalization = iota
	NormNFC
)

func ParseNormalization(name string) (Normalization, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "off":
		return NormNone, nil
	case "nfc":
		return NormNFC, nil
	default:
		return NormNone, fmt.Errorf("export: unknown normalization %q", name)
	}
}

func (n Normalization) Apply(text string) string {
	if n == NormNFC {
		return norm.NFC.String(text)
	}
	return text
}

type Exporter struct {
	Dir  string
	Norm Normalization
}

// Encode writes text to w in the given format.
func (e Exporter) Encode(w io.Writer, f Format, text string) error {
	text = e.Norm.Apply(text)
	switch f {
	case FormatRTF:
		return WriteRTF(w, text)
	default:
		_, err := io.WriteString(w, text)
		return err
	}
}

// Save writes text into Dir under the format's file name and returns the
// path. The file is replaced atomically.
func (e Exporter) Save(f Format, text string) (string, error) {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, f.FileName())

	tmp, err := os.CreateTemp(dir, "."+f.FileName()+".*")
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := e.Encode(tmp, f, text); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	return path, nil
}
