package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/matzehuels/regroup/pkg/buildinfo"
	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/pipeline"
	"github.com/matzehuels/regroup/pkg/regroup"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type hierarchyResponse struct {
	Source        meter.Kind       `json:"source"`
	Depth         int              `json:"depth"`
	MeasureLength meter.Offset     `json:"measure_length"`
	Levels        *meter.Hierarchy `json:"levels"`
	CacheHit      bool             `json:"cache_hit"`
}

type splitRequest struct {
	pipeline.Options
	Span *regroup.Span `json:"span"`
}

type batchRequest struct {
	pipeline.Options
	Spans []regroup.Span `json:"spans"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Current()})
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !s.decode(w, r, &opts) {
		return
	}
	s.withLogger(r, &opts)

	h, hit, err := s.runner.HierarchyWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, hierarchyResponse{
		Source:        opts.Source(),
		Depth:         h.Depth(),
		MeasureLength: h.MeasureLength(),
		Levels:        h,
		CacheHit:      hit,
	})
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Span == nil {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "span is required"))
		return
	}
	s.withLogger(r, &req.Options)

	res, err := s.runner.Split(r.Context(), req.Options, *req.Span)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, res)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Spans) == 0 {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidInput, "spans must not be empty"))
		return
	}
	s.withLogger(r, &req.Options)

	batch, err := s.runner.SplitAll(r.Context(), req.Options, req.Spans)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, batch)
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.respondError(w, r, http.StatusRequestEntityTooLarge, string(errs.ErrCodeInvalidInput), "request body too large")
		case errors.Is(err, io.EOF):
			s.fail(w, r, errs.New(errs.ErrCodeInvalidFormat, "request body is empty"))
		default:
			s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request"))
		}
		return false
	}
	return true
}

func (s *Server) withLogger(r *http.Request, opts *pipeline.Options) {
	opts.Logger = s.logger.With("request_id", RequestIDFromContext(r.Context()))
}

// fail maps err to a status via its error code. Errors without a code are
// internal and their text is not echoed to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	status := errs.HTTPStatus(code)
	msg := errs.UserMessage(err)
	if _, ok := err.(*errs.Error); !ok && code != "" {
		// Keep context added by wrapping, such as the failing span index.
		msg = err.Error()
	}
	if code == "" {
		code = errs.ErrCodeInternal
		msg = "internal error"
		s.logger.Error("request failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	s.respondError(w, r, status, string(code), msg)
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.respond(w, status, errorResponse{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFromContext(r.Context()),
	})
}
