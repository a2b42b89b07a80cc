package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/config"
	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/content"
	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/middleware"
	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/templates"
	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/app"
	"github.com/go-drift/pagelayout/pkg/breakpoint"
	"github.com/go-drift/pagelayout/pkg/metrics"
)

const socketPath = "/layout"

func init() {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured page with live breakpoint updates",
		Long: `Serve the configured page over HTTP.

The index page opens a websocket to /layout and reports the viewport width
on load and on every resize. Each connection runs its own page session; the
server re-renders it when the breakpoint changes and pushes the new markup.

Endpoints:
  /          the page
  /layout    websocket, receives {"width": N} or {"layout": "M"}
  /metrics   Prometheus metrics
  /debug/tree  the element tree as JSON, ?width=N picks the viewport
  /healthz   health check

The listen address comes from --addr, $PAGELAYOUT_ADDR or server.addr in
the config, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolve()
			if err != nil {
				return err
			}
			if addr != "" {
				resolved.Addr = addr
			}
			return runServe(resolved, slog.Default())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	RegisterCommand(cmd)
}

func runServe(resolved *config.Resolved, logger *slog.Logger) error {
	srv, err := newServer(resolved.Page, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:        resolved.Addr,
		Handler:     srv.routes(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", resolved.Addr, "page", resolved.Page.ID)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-shutdown:
	}
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// server serves one page configuration.
type server struct {
	page     config.PageConfig
	logger   *slog.Logger
	index    *template.Template
	upgrader websocket.Upgrader
	// frameTimeout bounds a single render, ad initialization included.
	frameTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func newServer(page config.PageConfig, logger *slog.Logger) (*server, error) {
	index, err := templates.Index()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &server{
		page:   page,
		logger: logger,
		index:  index,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		frameTimeout: 10 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/debug/tree", s.handleTree)
	r.Get("/", s.handleIndex)
	r.Get(socketPath, s.handleLayout)

	return r
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.frameTimeout)
	defer cancel()

	result, err := renderPage(ctx, s.page, 0, "")
	if err != nil {
		s.logger.Error("render failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	title := s.page.ID
	if headline, ok := s.page.Props["headline"].(string); ok && headline != "" {
		title = headline
	}

	var buf bytes.Buffer
	err = s.index.Execute(&buf, templates.IndexPage{
		Title:      title,
		Breakpoint: result.breakpoint,
		Body:       template.HTML(result.html),
		SocketPath: socketPath,
	})
	if err != nil {
		s.logger.Error("index template failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleTree returns the element tree of a fresh render as JSON.
func (s *server) handleTree(w http.ResponseWriter, r *http.Request) {
	width := 0
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid width", http.StatusBadRequest)
			return
		}
		width = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.frameTimeout)
	defer cancel()
	result, err := renderPage(ctx, s.page, width, "")
	if err != nil {
		s.logger.Error("render failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data, err := json.MarshalIndent(result.tree, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// viewportMessage is sent by the client.
type viewportMessage struct {
	Width  int    `json:"width,omitempty"`
	Layout string `json:"layout,omitempty"`
}

// frame is sent to the client whenever the page markup changes.
type frame struct {
	HTML       string `json:"html"`
	Breakpoint string `json:"breakpoint"`
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	live := &liveSession{
		conn:     conn,
		source:   breakpoint.NewService(),
		registry: ads.NewRegistry(),
		session:  app.NewSession(),
		logger:   s.logger.With("request_id", chimiddleware.GetReqID(r.Context())),
	}
	if err := live.run(s.ctx, s.page); err != nil {
		live.logger.Debug("layout connection closed", "err", err)
	}
}

// liveSession is one websocket client's page. The goroutine running run is
// the session's UI thread; the reader goroutine only talks to the
// breakpoint service.
type liveSession struct {
	conn     *websocket.Conn
	source   *breakpoint.Service
	registry *ads.Registry
	session  *app.Session
	logger   *slog.Logger
	last     frame
}

func (l *liveSession) run(ctx context.Context, page config.PageConfig) error {
	defer l.source.Close()
	defer l.session.Close()

	if err := l.session.Mount(content.Layout(page, l.source, l.registry)); err != nil {
		return err
	}
	l.session.Pump()
	if err := l.send(); err != nil {
		return err
	}

	readErr := make(chan error, 1)
	go l.read(readErr)

	for {
		select {
		case <-ctx.Done():
			l.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-l.session.Wake():
			l.session.Pump()
			if err := l.send(); err != nil {
				return err
			}
		}
	}
}

func (l *liveSession) read(errc chan<- error) {
	for {
		var msg viewportMessage
		if err := l.conn.ReadJSON(&msg); err != nil {
			errc <- err
			return
		}
		switch {
		case msg.Layout != "":
			l.source.Publish(msg.Layout)
		case msg.Width > 0:
			l.source.SetViewportWidth(msg.Width)
		}
	}
}

// send writes the current markup if it changed since the last frame.
func (l *liveSession) send() error {
	html, err := l.session.HTML()
	if err != nil {
		return err
	}
	next := frame{HTML: html, Breakpoint: l.source.Current()}
	if next == l.last {
		return nil
	}
	l.last = next
	return l.conn.WriteJSON(next)
}
