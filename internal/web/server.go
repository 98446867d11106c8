package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ivanzxc/go-vitals-stream/internal/analysis"
	"github.com/ivanzxc/go-vitals-stream/internal/monitor"
)

// Controller is the control surface of the connection lifecycle manager.
type Controller interface {
	Start(host string, port int) error
	Stop()
	Clear()
	State() monitor.State
	Stats() monitor.Stats
	History() []analysis.Point
}

// Server exposes the controller and the event hub over HTTP.
type Server struct {
	ctl         Controller
	hub         *Hub
	logger      *zap.Logger
	defaultHost string
	defaultPort int
	mux         *http.ServeMux
}

type stateResponse struct {
	State string         `json:"state"`
	Stats *monitor.Stats `json:"stats,omitempty"`
	Error string         `json:"error,omitempty"`
}

// NewServer serves ctl; start requests without host or port fall back to
// defaultHost and defaultPort.
func NewServer(ctl Controller, hub *Hub, defaultHost string, defaultPort int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ctl:         ctl,
		hub:         hub,
		logger:      logger,
		defaultHost: defaultHost,
		defaultPort: defaultPort,
		mux:         http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/start", s.handleStart)
	s.mux.HandleFunc("POST /api/stop", s.handleStop)
	s.mux.HandleFunc("POST /api/clear", s.handleClear)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)
	s.mux.Handle("GET /ws", hub)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if host == "" {
		host = s.defaultHost
	}
	port := s.defaultPort
	if p := r.URL.Query().Get("port"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 65535 {
			s.writeState(w, http.StatusBadRequest, fmt.Errorf("invalid port %q", p))
			return
		}
		port = n
	}

	err := s.ctl.Start(host, port)
	var berr *monitor.BindError
	switch {
	case err == nil:
		s.writeState(w, http.StatusOK, nil)
	case errors.Is(err, monitor.ErrAlreadyRunning):
		s.writeState(w, http.StatusConflict, err)
	case errors.As(err, &berr):
		s.writeState(w, http.StatusServiceUnavailable, err)
	default:
		s.writeState(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.ctl.Stop()
	s.writeState(w, http.StatusOK, nil)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.ctl.Clear()
	s.writeState(w, http.StatusOK, nil)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	stats := s.ctl.Stats()
	writeJSON(w, http.StatusOK, stateResponse{State: s.ctl.State().String(), Stats: &stats})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctl.History())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	st := s.ctl.Stats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "records %d\n", st.Records)
	fmt.Fprintf(w, "samples %d\n", st.Samples)
	fmt.Fprintf(w, "field_blocks %d\n", st.FieldBlocks)
	fmt.Fprintf(w, "peaks %d\n", st.Peaks)
	fmt.Fprintf(w, "decode_errors %d\n", st.DecodeErrors)
	fmt.Fprintf(w, "parse_errors %d\n", st.ParseErrors)
	fmt.Fprintf(w, "connections %d\n", st.Connections)
	fmt.Fprintf(w, "ws_clients %d\n", s.hub.Clients())
	fmt.Fprintf(w, "messages %d\n", s.hub.Sent())
}

func (s *Server) writeState(w http.ResponseWriter, status int, err error) {
	resp := stateResponse{State: s.ctl.State().String()}
	if err != nil {
		s.logger.Warn("Control request failed", zap.Error(err))
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
