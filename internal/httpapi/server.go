package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vlpool/internal/engine"
	"vlpool/internal/fetch"
	"vlpool/internal/models"
	"vlpool/internal/runner"
	"vlpool/pkg/types"
)

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
}

// Deps wires the handler pipeline: image fetching for query building and
// the engine factory for the single call per request.
type Deps struct {
	Fetcher fetch.Fetcher
	Factory engine.Factory
}

// NewMux builds the HTTP facade over the same adapter pipeline the CLI
// uses: /embed and /score run one engine call each, /models lists the
// registered adapter keys.
func NewMux(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Log-Level"},
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ModelsResponse{Models: models.Names()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Post("/embed", func(w http.ResponseWriter, r *http.Request) {
		handlePool(w, r, d, runner.TaskEmbedding)
	})

	r.Post("/score", func(w http.ResponseWriter, r *http.Request) {
		handlePool(w, r, d, runner.TaskScoring)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Factory == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("no engine"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// handlePool decodes a PoolRequest, runs the task's driver core, and maps
// domain errors to status codes. Nothing streams; pooling responses are
// single JSON bodies.
func handlePool(w http.ResponseWriter, r *http.Request, d Deps, task string) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.PoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Model) == "" {
		writeJSONError(w, http.StatusBadRequest, "model is required")
		return
	}
	modality, err := types.ParseModality(req.Modality)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := runner.Options{
		Model:    req.Model,
		Modality: modality,
		Seed:     req.Seed,
		Fetcher:  d.Fetcher,
		Factory:  d.Factory,
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	if lvl >= LevelInfo && zlog != nil {
		z := zlog.Info().Str("task", task).Str("model", req.Model).Str("modality", req.Modality)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg("pool start")
	}

	var body any
	switch task {
	case runner.TaskEmbedding:
		var outputs []types.Embedding
		outputs, err = runner.Encode(r.Context(), opts)
		observeEngineCall(task, err)
		body = types.EmbedResponse{Model: req.Model, Embeddings: outputs}
	case runner.TaskScoring:
		var outputs []types.Score
		outputs, err = runner.ScoreDocuments(r.Context(), opts)
		observeEngineCall(task, err)
		body = types.ScoreResponse{Model: req.Model, Scores: outputs}
	default:
		writeJSONError(w, http.StatusBadRequest, "unsupported task: "+task)
		return
	}

	if err != nil {
		status := statusForError(err)
		writeJSONError(w, status, err.Error())
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Err(err).Msg("pool end")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	if lvl >= LevelInfo && zlog != nil {
		z := zlog.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg("pool end")
	}
}

// statusForError maps domain errors to HTTP status codes. Anything the
// pipeline does not recognize is treated as an upstream engine failure.
func statusForError(err error) int {
	switch {
	case types.IsUnsupportedModality(err):
		return http.StatusBadRequest
	case models.IsUnknownModel(err):
		return http.StatusNotFound
	case runner.IsTaskMismatch(err):
		return http.StatusBadRequest
	case engine.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
