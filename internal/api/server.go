package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"quotegateway/internal/provider"
)

// QuoteService resolves a raw comma-separated symbol parameter through one
// provider.
type QuoteService interface {
	GetQuotes(ctx context.Context, raw string, p provider.Adapter) ([]provider.Quote, error)
}

// Server holds the route dependencies. Stocks and Commodities are picked by
// configuration at startup and never change afterwards.
type Server struct {
	Quotes      QuoteService
	Stocks      provider.Adapter
	Commodities provider.Adapter
	Log         zerolog.Logger
	// Metrics, when set, is mounted at /metrics and wraps every route.
	Metrics interface {
		Middleware(http.Handler) http.Handler
		Handler() http.Handler
	}
}

// route describes how one quote endpoint names its parameter and failure.
type route struct {
	param   string
	missing string
	failure string
	name    string
}

var (
	stocksRoute = route{
		param:   "tickers",
		missing: "Missing tickers parameter",
		failure: "Failed to fetch stock data",
		name:    "stocks",
	}
	commoditiesRoute = route{
		param:   "symbols",
		missing: "Missing symbols parameter",
		failure: "Failed to fetch commodity data",
		name:    "commodities",
	}
)

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverPanic)
	r.Use(s.logRequest)
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware)
	}
	r.Use(withCORS)
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stocks", s.quoteHandler(stocksRoute, s.Stocks))
		r.Get("/commodities", s.quoteHandler(commoditiesRoute, s.Commodities))
	})
	return r
}

func (s *Server) quoteHandler(rt route, p provider.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get(rt.param)
		quotes, err := s.Quotes.GetQuotes(r.Context(), raw, p)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, quotes)
		case errors.Is(err, provider.ErrMissingSymbols):
			writeError(w, http.StatusBadRequest, rt.missing)
		case errors.Is(err, provider.ErrMissingCredential):
			s.Log.Error().Str("route", rt.name).Str("provider", p.Name()).Msg("API key not configured")
			writeError(w, http.StatusInternalServerError, provider.ErrMissingCredential.Error())
		default:
			s.Log.Error().Err(err).Str("route", rt.name).Str("provider", p.Name()).Msg("fetch failed")
			writeJSON(w, http.StatusInternalServerError, apiError{Error: rt.failure, Message: err.Error()})
		}
	}
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiError{Error: message})
}

// withCORS allows any browser origin and answers preflights itself.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.Log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
