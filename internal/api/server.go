package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/avaline-backend/internal/advisory"
	"github.com/kjannette/avaline-backend/internal/models"
	"github.com/kjannette/avaline-backend/internal/reply"
)

const (
	maxQueryLimit     = 1000
	maxBodyBytes      = 16 << 10
	maxQuestionLength = 500

	requestIDHeader = "X-Request-ID"
)

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ObservationSource is the price store behind the API.
type ObservationSource interface {
	Name() string
	FetchObservations(ctx context.Context) ([]models.Observation, error)
}

type SubscriberStore interface {
	AddSubscriber(ctx context.Context, email string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Source      ObservationSource
	Subscribers SubscriberStore
	Composer    *reply.Composer
	Thresholds  advisory.Thresholds
}

type Server struct {
	source      ObservationSource
	subscribers SubscriberStore
	composer    *reply.Composer
	thresholds  advisory.Thresholds
	handler     http.Handler
	httpServer  *http.Server
	apiKey      string
}

func NewServer(deps Deps, port int, apiKey, corsOrigin string) *Server {
	s := &Server{
		source:      deps.Source,
		subscribers: deps.Subscribers,
		composer:    deps.Composer,
		thresholds:  deps.Thresholds,
		apiKey:      apiKey,
	}

	mux := http.NewServeMux()

	// Price routes
	mux.HandleFunc("GET /api/prices", s.handlePrices)
	mux.HandleFunc("GET /api/prices/days", s.handleAvailableDays)
	mux.HandleFunc("GET /api/prices/day/{date}", s.handlePricesByDay)

	// Assistant routes
	mux.HandleFunc("POST /api/avaline", s.handleAvaline)
	mux.HandleFunc("GET /api/greeting", s.handleGreeting)

	// Subscriptions
	mux.HandleFunc("POST /api/subscribe", s.handleSubscribe)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = requestIDMiddleware(corsMiddleware(s.authMiddleware(mux), corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	fmt.Printf("[API] Price store: %s\n", s.source.Name())
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

// requestIDMiddleware reuses the caller's X-Request-ID or assigns one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// --- validation helpers ---

func validateDate(date string) bool {
	if !dateRegexp.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// decodeBody reads an optional JSON body into v. An empty body leaves v as is.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// loadObservations fetches from the store and logs failures with the request id.
func (s *Server) loadObservations(r *http.Request) ([]models.Observation, bool) {
	obs, err := s.source.FetchObservations(r.Context())
	if err != nil {
		fmt.Printf("[API] [%s] Error loading observations from %s: %v\n", requestID(r.Context()), s.source.Name(), err)
		return nil, false
	}
	return obs, true
}
