package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/desertthunder/hlsx/internal/formatter"
	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/shared"
	"github.com/desertthunder/hlsx/internal/tasks"
)

// Runner runs a check. Implemented by [tasks.CheckEngine].
type Runner interface {
	Run(ctx context.Context, prog chan<- tasks.ProgressUpdate, urls []string, opts tasks.CheckOpts) (*tasks.CheckReport, error)
}

// ProfileSource looks up configured profiles. Implemented by [shared.Config].
type ProfileSource interface {
	Profile(name string) (models.Profile, error)
}

// CheckResponse is the body of a /check response.
type CheckResponse struct {
	RunID string `json:"run_id"`
	formatter.ResultDoc
}

type errorResponse struct {
	Error string `json:"error"`
}

// CheckHandler serves health and bandwidth check endpoints.
//
//	GET /health                          {"status":"ok"}
//	GET /check?url=<u>[&profile=<name>]  run a bandwidth check
//
// /check also accepts bandwidths, variance and unordered to check without a configured profile.
// The response is 200 for OK and WARNING results and 503 for CRITICAL and UNKNOWN.
type CheckHandler struct {
	runner         Runner
	profiles       ProfileSource
	defaultProfile string
}

// NewCheckHandler creates a CheckHandler. defaultProfile is used when the request names none.
func NewCheckHandler(runner Runner, profiles ProfileSource, defaultProfile string) *CheckHandler {
	if defaultProfile == "" {
		defaultProfile = "default"
	}
	return &CheckHandler{runner: runner, profiles: profiles, defaultProfile: defaultProfile}
}

// Routes returns the HTTP routes this handler serves.
func (h *CheckHandler) Routes() []string {
	return []string{"/health", "/check"}
}

// ServeHTTP dispatches on path.
func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	switch r.URL.Path {
	case "/health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case "/check":
		h.check(w, r)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	}
}

func (h *CheckHandler) check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target := q.Get("url")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	profile, status, err := h.profile(q.Get("profile"), q.Get("bandwidths"), q.Get("variance"), q.Get("unordered"))
	if err != nil {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	report, err := h.runner.Run(r.Context(), nil, []string{target}, tasks.CheckOpts{
		Kind:    models.KindBandwidths,
		Profile: profile,
		Workers: 1,
	})
	var cfgErr *ladder.ConfigError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, shared.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	case len(report.Results) != 1:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "no result"})
		return
	}

	res := report.Results[0]
	code := http.StatusOK
	if res.Severity >= ladder.Critical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, CheckResponse{RunID: report.RunID, ResultDoc: formatter.NewResultDoc(res)})
}

// profile resolves the request's profile, returning the HTTP status to use on failure.
func (h *CheckHandler) profile(name, bandwidths, variance, unordered string) (models.Profile, int, error) {
	var p models.Profile
	if bandwidths != "" {
		p = models.Profile{Name: "adhoc", Bandwidths: bandwidths}
	} else {
		if name == "" {
			name = h.defaultProfile
		}
		found, err := h.profiles.Profile(name)
		if err != nil {
			if errors.Is(err, shared.ErrProfileNotFound) {
				return p, http.StatusNotFound, err
			}
			return p, http.StatusInternalServerError, err
		}
		p = found
	}

	if variance != "" {
		v, err := strconv.ParseFloat(variance, 64)
		if err != nil || !ladder.ValidVariance(v) {
			return p, http.StatusBadRequest, errors.New("variance must be a finite non-negative number")
		}
		p.VariancePercent = v
	}
	if unordered != "" {
		u, err := strconv.ParseBool(unordered)
		if err != nil {
			return p, http.StatusBadRequest, errors.New("unordered must be a boolean")
		}
		p.Unordered = u
	}
	return p, http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
