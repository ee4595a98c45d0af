package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
)

// TranslateViaSocket asks a running translation server for one line.
func TranslateViaSocket(socketPath, text string) (string, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, text); err != nil {
		return "", err
	}
	response, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(response, "\n"), nil
}

// TranslateStream converts r line by line. With a socket path it asks the
// server first and falls back to the local engine, once and for good, on the
// first failure.
func TranslateStream(r io.Reader, w io.Writer, src EngineSource, socketPath string, logger *slog.Logger) error {
	if socketPath == "" {
		return Translate(r, w, src)
	}
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	writer := bufio.NewWriter(w)
	defer writer.Flush()

	remote := true
	for scanner.Scan() {
		line := scanner.Text()
		var converted string
		if remote {
			var err error
			converted, err = TranslateViaSocket(socketPath, line)
			if err != nil {
				logger.Warn("falling back to local conversion", "socket", socketPath, "error", err)
				remote = false
			}
		}
		if !remote {
			converted = Replay(src.Engine(), line)
		}
		if _, err := writer.WriteString(converted); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	return scanner.Err()
}
