package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
	"costmanager/internal/middleware/trace"
)

type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status and public kind.
func statusFor(err error) (int, string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, "InvalidRequest"
	}

	switch core.KindOf(err) {
	case core.KindInvalidCostInput, core.KindUnsupportedCurrency:
		return http.StatusBadRequest, string(core.KindOf(err))
	case core.KindInvalidSetting, core.KindInvalidRateValues:
		return http.StatusUnprocessableEntity, string(core.KindOf(err))
	case core.KindRatesUnavailable:
		return http.StatusBadGateway, string(core.KindOf(err))
	case core.KindStoreNotOpen, core.KindStoreUnavailable:
		return http.StatusServiceUnavailable, string(core.KindOf(err))
	}
	return http.StatusInternalServerError, "Internal"
}

// writeError logs err and writes it as a JSON error body. Internal errors
// are not echoed to the client. fields may be nil.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, component, op string, err error, fields applog.LogFields) {
	status, kind := statusFor(err)

	body := errorBody{
		Kind:      kind,
		Message:   err.Error(),
		RequestID: trace.GetRequestID(r.Context()),
	}
	var reqErr *requestError
	var domErr *core.Error
	switch {
	case errors.As(err, &reqErr):
		body.Field = reqErr.Field
	case errors.As(err, &domErr):
		body.Field = domErr.Field
	}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		body.Message = "internal error"
	}

	if fields == nil {
		fields = applog.NewFields()
	}
	applog.LogError(r.Context(), "Request failed", err, component, op,
		fields.WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, ""))

	writeJSON(w, status, map[string]errorBody{"error": body})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.NewFields().
			WithComponent(applog.ComponentRateLimit).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			ToSlice()...)
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
	writeJSON(w, http.StatusTooManyRequests, map[string]errorBody{"error": {
		Kind:      "RateLimited",
		Message:   "rate limit exceeded, try again later",
		RequestID: trace.GetRequestID(r.Context()),
	}})
}
