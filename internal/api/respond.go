package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/ctxlog"
	"github.com/vk/relaygrid/internal/descriptor"
)

// errBadRequest marks client errors detected by the handlers themselves.
var errBadRequest = errors.New("bad request")

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

type failure struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Traceback string `json:"traceback,omitempty"`
}

// handlerFunc is an API handler that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.status = code
		r.written = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.status = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// wrap attaches a request-scoped logger, converts returned errors to
// failure responses and recovers panics into 500s with a traceback.
func (s *Server) wrap(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlog.With(r.Context(), "method", r.Method, "path", r.URL.Path)
		r = r.WithContext(ctx)
		logger := ctxlog.FromContext(ctx)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				stack := string(debug.Stack())
				logger.Error("Request handler panicked.", "panic", p, "traceback", stack)
				if !rec.written {
					writeJSON(rec, http.StatusInternalServerError, failure{
						Status:    statusFailed,
						Message:   fmt.Sprint(p),
						Traceback: stack,
					})
				}
			}
			logger.Debug("Request served.", "status", rec.status, "duration", time.Since(start))
		}()

		if err := h(rec, r); err != nil {
			s.fail(rec, r, err)
		}
	})
}

// fail maps an error onto its HTTP status and writes the failure payload.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := ctxlog.FromContext(r.Context())
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		logger.Warn("Node not found.", "error", err)
		writeJSON(w, http.StatusNotFound, failure{Status: statusFailed, Message: err.Error()})
	case errors.Is(err, descriptor.ErrInvalidGroup),
		errors.Is(err, descriptor.ErrInvalidID),
		errors.Is(err, errBadRequest):
		logger.Warn("Rejected request.", "error", err)
		writeJSON(w, http.StatusBadRequest, failure{Status: statusFailed, Message: err.Error()})
	default:
		chain := errorChain(err)
		logger.Error("Request failed.", "error", err, "traceback", chain)
		writeJSON(w, http.StatusInternalServerError, failure{
			Status:    statusFailed,
			Message:   err.Error(),
			Traceback: chain,
		})
	}
}

// errorChain renders err and every error it wraps, outermost first, one
// per line.
func errorChain(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		fmt.Fprintf(&b, "%s%T: %v\n", strings.Repeat("  ", depth), err, err)
		err = errors.Unwrap(err)
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, `{"status":"failed","message":"response encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// groupOrDefault applies the "in" default to an omitted group.
func groupOrDefault(group string) string {
	if group == "" {
		return string(descriptor.GroupIn)
	}
	return group
}
