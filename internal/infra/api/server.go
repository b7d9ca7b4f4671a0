package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ai-content-scheduler/internal/domain"
	"ai-content-scheduler/internal/infra/logging"
	"ai-content-scheduler/internal/usecase"
)

// Server exposes the two pass entry points to the external trigger, plus
// health and metrics. Both entry points are safe to invoke repeatedly;
// overlapping invocations are rejected by the pass lock.
type Server struct {
	dispatchUC   usecase.DispatchUseCase
	completionUC usecase.CompletionUseCase
	auth         *ServiceAuth
	log          *zerolog.Logger
}

func NewServer(
	dispatchUC usecase.DispatchUseCase,
	completionUC usecase.CompletionUseCase,
	auth *ServiceAuth,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "api").Logger()
	return &Server{
		dispatchUC:   dispatchUC,
		completionUC: completionUC,
		auth:         auth,
		log:          &l,
	}
}

// Routes builds the router. A pass can legitimately take a while (provider
// calls per schedule), hence the generous timeout.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log), TraceID(), RequestLog(s.log), Timeout(5*time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/passes", func(r chi.Router) {
		r.Use(s.requireServiceToken)
		r.Post("/dispatch", s.handleDispatch)
		r.Post("/completion", s.handleCompletion)
	})
	return r
}

// requireServiceToken rejects trigger calls without a valid service JWT.
func (s *Server) requireServiceToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	res, err := s.dispatchUC.RunPass(r.Context())
	if err != nil {
		s.writePassError(w, r, "dispatch", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	res, err := s.completionUC.RunPass(r.Context())
	if err != nil {
		s.writePassError(w, r, "completion", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writePassError(w http.ResponseWriter, r *http.Request, pass string, err error) {
	if errors.Is(err, domain.ErrPassInProgress) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a pass is already in progress"})
		return
	}
	logging.With(r.Context(), s.log).Error().Err(err).Str("pass", pass).Msg("pass failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
