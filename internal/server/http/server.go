package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rzbill/streamlat/internal/runtime"
	timesvc "github.com/rzbill/streamlat/internal/services/times"
	logpkg "github.com/rzbill/streamlat/pkg/log"
)

// SubscriptionLister reports live producer subscriptions.
type SubscriptionLister interface {
	Subscriptions() []timesvc.Subscription
}

type Server struct {
	rt   *runtime.Runtime
	srv  *http.Server
	lis  net.Listener
	subs SubscriptionLister
}

// Option configures a Server.
type Option func(*Server)

// WithSubscriptions enables /v1/subscriptions.
func WithSubscriptions(l SubscriptionLister) Option { return func(s *Server) { s.subs = l } }

func New(rt *runtime.Runtime, opts ...Option) *Server {
	s := &Server{rt: rt}
	for _, o := range opts {
		o(s)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.Registry(), promhttp.HandlerOpts{
		ErrorLog: logpkg.ToStdLogger(rt.Logger(), logpkg.ErrorLevel),
	}))
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	if s.subs != nil {
		mux.HandleFunc("/v1/subscriptions", s.handleSubscriptions)
	}
	s.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.rt.Logger().Info("listening", logpkg.Component("http"), logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_serving"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type subscriptionView struct {
	ID    string `json:"id"`
	Queue int    `json:"queue"`
	Sent  uint64 `json:"sent"`
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	subs := s.subs.Subscriptions()
	out := make([]subscriptionView, len(subs))
	for i, sub := range subs {
		out[i] = subscriptionView{ID: sub.ID, Queue: sub.Queue, Sent: sub.Sent}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"subscriptions": out})
}
