// Package preview serves a live HTML rendering of a Creole document and
// pushes re-rendered markup to connected browsers over a websocket.
package preview

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeebo/blake3"

	"github.com/open-cli-collective/creole-cli/internal/logging"
)

// DefaultInterval is how often Watch polls the source file.
const DefaultInterval = 500 * time.Millisecond

// RenderFunc converts Creole source to an HTML fragment.
type RenderFunc func(source string) (string, error)

// Message is pushed to browsers whenever the document changes.
type Message struct {
	Type   string `json:"type"` // "update" or "error"
	HTML   string `json:"html,omitempty"`
	Error  string `json:"error,omitempty"`
	Digest string `json:"digest,omitempty"`
}

// Server renders one source file and keeps connected browsers current.
type Server struct {
	path     string
	render   RenderFunc
	hub      *Hub
	log      *logging.Logger
	interval time.Duration

	mu     sync.RWMutex
	digest [32]byte
	last   Message
}

// Option configures a Server.
type Option func(*Server)

// WithInterval sets the polling interval used by Watch.
func WithInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a preview server for the file at path.
func NewServer(path string, render RenderFunc, opts ...Option) *Server {
	s := &Server{
		path:     path,
		render:   render,
		log:      logging.Discard(),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.log)
	return s
}

// Hub returns the server's websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Current returns the most recent rendering.
func (s *Server) Current() Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Refresh re-reads the source and re-renders it when its content hash
// changed. It reports whether a new message was broadcast.
func (s *Server) Refresh() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	sum := blake3.Sum256(data)
	s.mu.RLock()
	unchanged := sum == s.digest && s.last.Type != ""
	s.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	digest := hex.EncodeToString(sum[:8])
	msg := Message{Type: "update", Digest: digest}
	html, renderErr := s.render(string(data))
	if renderErr != nil {
		msg = Message{Type: "error", Error: renderErr.Error(), Digest: digest}
	} else {
		msg.HTML = html
	}

	s.mu.Lock()
	s.digest = sum
	s.last = msg
	s.mu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("failed to encode preview message: %w", err)
	}
	s.hub.Broadcast(payload)
	s.log.PreviewReloaded(s.path, digest)

	if renderErr != nil {
		return true, fmt.Errorf("failed to render %s: %w", s.path, renderErr)
	}
	return true, nil
}

// Watch polls the source until ctx is done. Read and render failures are
// logged and pushed to clients; polling continues.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(); err != nil {
				s.log.Error("preview refresh failed", "error", err)
			}
		}
	}
}

// Handler returns the HTTP routes: the page at "/", the current fragment at
// "/content" and the websocket at "/ws".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/content", s.handleContent)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe runs the hub, the watcher and the HTTP server until ctx is
// done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if _, err := s.Refresh(); err != nil && s.Current().Type == "" {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	go s.Watch(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.PreviewServing(addr, s.path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="content">{{.Body}}</div>
<script>
(function() {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function(ev) {
    var msg = JSON.parse(ev.data);
    var el = document.getElementById("content");
    if (msg.type === "update") {
      el.innerHTML = msg.html;
    } else if (msg.type === "error") {
      el.innerHTML = "<pre>" + msg.error.replace(/</g, "&lt;") + "</pre>";
    }
  };
})();
</script>
</body>
</html>
`))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	cur := s.Current()
	body := template.HTML(cur.HTML)
	if cur.Type == "error" {
		body = template.HTML("<pre>" + template.HTMLEscapeString(cur.Error) + "</pre>")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, struct {
		Title string
		Body  template.HTML
	}{Title: s.path, Body: body}); err != nil {
		s.log.Error("failed to write preview page", "error", err)
	}
}

func (s *Server) handleContent(w http.ResponseWriter, _ *http.Request) {
	cur := s.Current()
	w.Header().Set("Content-Type", "application/json")
	if cur.Type == "error" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	_ = json.NewEncoder(w).Encode(cur)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and requests whose
// Origin host matches the served host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	// Queue the current rendering before registering so it precedes any
	// broadcast the client receives.
	if cur := s.Current(); cur.Type != "" {
		if payload, err := json.Marshal(cur); err == nil {
			c.send <- payload
		}
	}

	if !s.hub.join(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
