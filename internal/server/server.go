// Package server exposes the pricer over HTTP.
//
// Routes:
//
//	GET  /price    query parameters, missing values fall back to the config quote
//	POST /price    JSON body, every field required
//	GET  /health   liveness
//	GET  /metrics  Prometheus exposition
//
// Both /price routes answer with a JSON array of priced quotes. An unknown
// option type is a client error (400), never a default price.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

const shutdownTimeout = 5 * time.Second

var validate = validator.New()

// priceRequest is the POST /price body. Pointers let the validator tell a
// missing field from an explicit zero.
type priceRequest struct {
	Spot       *float64 `json:"spot" validate:"required"`
	Strike     *float64 `json:"strike" validate:"required"`
	Expiry     *float64 `json:"expiry" validate:"required"`
	Rate       *float64 `json:"rate" validate:"required"`
	Volatility *float64 `json:"volatility" validate:"required"`
	Type       string   `json:"type" validate:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server prices option quotes over HTTP.
type Server struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	router   *mux.Router
}

// New builds a server with its own collectors and metrics registry.
func New(cfg *config.Config) (*Server, error) {
	m := metrics.New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	s := &Server{cfg: cfg, metrics: m, registry: reg}

	r := mux.NewRouter()
	r.HandleFunc("/price", s.handleGetPrice).Methods(http.MethodGet)
	r.HandleFunc("/price", s.handlePostPrice).Methods(http.MethodPost)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler(reg)).Methods(http.MethodGet)
	s.router = r

	return s, nil
}

// Router returns the HTTP handler serving all routes.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting REST server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof("shutting down REST server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	quote := s.cfg.Quote

	fields := []struct {
		name string
		dst  *float64
	}{
		{"spot", &quote.Spot},
		{"strike", &quote.Strike},
		{"expiry", &quote.Expiry},
		{"rate", &quote.Rate},
		{"volatility", &quote.Volatility},
	}
	for _, f := range fields {
		raw := query.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid %s %q", f.name, raw))
			return
		}
		*f.dst = v
	}
	if query.Has("type") {
		quote.Type = query.Get("type")
	}

	s.price(w, quote)
}

func (s *Server) handlePostPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		s.fail(w, http.StatusBadRequest, validationError(err))
		return
	}

	s.price(w, config.QuoteConfig{
		Spot:       *req.Spot,
		Strike:     *req.Strike,
		Expiry:     *req.Expiry,
		Rate:       *req.Rate,
		Volatility: *req.Volatility,
		Type:       req.Type,
	})
}

// price evaluates quote for each requested option type and writes the results.
func (s *Server) price(w http.ResponseWriter, quote config.QuoteConfig) {
	timer := prometheus.NewTimer(s.metrics.Latency)
	defer timer.ObserveDuration()

	types, err := quote.Types()
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	results := make([]report.Result, 0, len(types))
	for _, t := range types {
		q := quote.OptionQuote(t)
		p, err := q.Price()
		if err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		s.metrics.Requests.WithLabelValues(t.String()).Inc()
		logger.Debugf("priced %s S=%.4f K=%.4f T=%.4f r=%.4f sigma=%.4f -> %.6f",
			t, q.Spot, q.Strike, q.TimeToExpiry, q.RiskFreeRate, q.Volatility, p)
		results = append(results, report.Result{Quote: q, Price: p})
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if errors.Is(err, pricing.ErrInvalidArgument) {
		s.metrics.Errors.WithLabelValues(metrics.ReasonInvalidArgument).Inc()
		logger.Debugf("rejected pricing request: %v", err)
	} else {
		s.metrics.Errors.WithLabelValues(metrics.ReasonBadRequest).Inc()
		logger.Tracef("bad pricing request: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeJSON encodes v before touching the response, so an encoding failure
// is reported as a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Errorf("encoding response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Errorf("writing response: %v", err)
	}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}
