// Package viewer exposes a finished output log to the web-based visualizer
// through a short-lived loopback HTTP server.
package viewer

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/marketreplay/backtester/pkg/logger"
)

// visualizerURL is the hosted visualizer the results are opened in.
const visualizerURL = "https://jmerle.github.io/imc-prosperity-2-visualizer/"

// requestBudget is how many requests the server answers before shutting
// down: the CORS preflight and the actual fetch.
const requestBudget = 2

// Server serves one output file to the visualizer and exits.
type Server struct {
	log     logger.Interface
	console io.Writer
}

// NewServer creates a viewer server. Progress lines go to console.
func NewServer(log logger.Interface, console io.Writer) *Server {
	return &Server{log: log, console: console}
}

// Open serves the file on an ephemeral loopback port, opens the visualizer
// pointed at it and returns once the file has been fetched. The visualizer
// runs in the browser; the file never leaves the machine.
func (s *Server) Open(ctx context.Context, path string) error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return errors.Wrap(err, "listen on loopback")
	}

	fileName := filepath.Base(path)
	port := listener.Addr().(*net.TCPAddr).Port
	fileURL := fmt.Sprintf("http://localhost:%d/%s", port, fileName)

	done := make(chan struct{})
	var served atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/"+fileName, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method != http.MethodOptions {
			http.ServeFile(w, r, path)
		}

		if served.Add(1) == requestBudget {
			close(done)
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error(errors.Wrap(err, "viewer server"))
		}
	}()

	openURL := visualizerURL + "?open=" + fileURL
	fmt.Fprintf(s.console, "Opening %s\n", openURL)
	if err := openBrowser(openURL); err != nil {
		s.log.Warn("could not open browser, open the URL manually",
			logger.NewField("url", openURL),
		)
	}

	select {
	case <-done:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Wrap(server.Shutdown(shutdownCtx), "shut down viewer server")
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
