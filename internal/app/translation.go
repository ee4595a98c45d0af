package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/gofrs/flock"

	"akhor/internal/config"
)

var ErrServerRunning = errors.New("translation server already running (socket lock held)")

// TranslationServer answers newline-delimited Latin scripts on a unix socket
// with their transliteration, one line back per line in.
type TranslationServer struct {
	listener net.Listener
	socket   string
	lock     *flock.Flock
	errCh    chan error
}

func StartTranslationServer(path string, src EngineSource, logger *slog.Logger) (*TranslationServer, error) {
	if path == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.EnsureSocketDir(path); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}

	// The lock guards the socket path; a socket file left behind by a dead
	// server is only removed once the lock is ours.
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock socket: %w", err)
	}
	if !locked {
		return nil, ErrServerRunning
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = lock.Unlock()
		return nil, err
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o660); err != nil && !errors.Is(err, os.ErrNotExist) {
		listener.Close()
		_ = os.Remove(path)
		_ = lock.Unlock()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	srv := &TranslationServer{listener: listener, socket: path, lock: lock, errCh: make(chan error, 1)}
	go func() {
		srv.errCh <- serveTranslations(listener, src, logger)
		close(srv.errCh)
	}()
	logger.Info("translation server listening", "socket", path)
	return srv, nil
}

func (s *TranslationServer) Close() {
	if s == nil {
		return
	}
	s.listener.Close()
	for range s.errCh {
	}
	_ = os.Remove(s.socket)
	_ = s.lock.Unlock()
}

func (s *TranslationServer) Err() <-chan error {
	if s == nil {
		return nil
	}
	return s.errCh
}

func serveTranslations(listener net.Listener, src EngineSource, logger *slog.Logger) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		go func(c net.Conn) {
			defer c.Close()
			if err := Translate(c, c, src); err != nil {
				logger.Warn("translation error", "error", err)
			}
		}(conn)
	}
}

// Translate reads lines from r and writes each line's transliteration to w.
func Translate(r io.Reader, w io.Writer, src EngineSource) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	writer := bufio.NewWriter(w)
	for scanner.Scan() {
		response := Replay(src.Engine(), scanner.Text())
		if _, err := writer.WriteString(response); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	}
	return nil
}
