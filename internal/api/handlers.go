package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/xmigraph/pkg/buildinfo"
	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/model"
	"github.com/matzehuels/xmigraph/pkg/pipeline"
)

var previewContentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatPDF: "application/pdf",
}

// =============================================================================
// Responses
// =============================================================================

// ExtractResponse is the body of POST /v1/diagrams.
type ExtractResponse struct {
	DocHash     string            `json:"doc_hash"`
	Diagrams    []model.Diagram   `json:"diagrams"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	CacheHit    bool              `json:"cache_hit"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.runner.Extract(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExtractResponse{
		DocHash:     res.DocHash,
		Diagrams:    nonNil(res.Diagrams),
		Diagnostics: nonNil(res.Diagnostics),
		CacheHit:    res.CacheHit,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	d, opts, ok := s.diagram(w, r)
	if !ok {
		return
	}
	g, err := s.runner.BuildGraph(r.Context(), d, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == pipeline.FormatJSON {
		writeJSON(w, http.StatusOK, g)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("X-Graph-Vertices", strconv.Itoa(g.Vertices))
	w.Header().Set("X-Graph-Edges", strconv.Itoa(g.Edges))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, g.XML)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	contentType, ok := previewContentTypes[format]
	if !ok {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "preview format must be one of dot, svg, png, pdf"))
		return
	}

	d, opts, ok := s.diagram(w, r)
	if !ok {
		return
	}
	opts.Formats = []string{format}
	out, err := s.runner.Preview(r.Context(), d, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(out[format])
}

// diagram extracts the request document and selects the diagram named in
// the path. It writes the error response itself and reports false on
// failure.
func (s *Server) diagram(w http.ResponseWriter, r *http.Request) (model.Diagram, pipeline.Options, bool) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, err)
		return model.Diagram{}, opts, false
	}
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	opts.Diagram = name

	doc, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return model.Diagram{}, opts, false
	}
	res, err := s.runner.Extract(r.Context(), doc, opts)
	if err != nil {
		writeError(w, r, err)
		return model.Diagram{}, opts, false
	}
	d, err := opts.SelectDiagram(res.Diagrams)
	if err != nil {
		writeError(w, r, err)
		return model.Diagram{}, opts, false
	}
	return d, opts, true
}

// options applies query parameters to the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	q := r.URL.Query()

	flags := []struct {
		name string
		dst  *bool
	}{
		{"include_unconnected", &opts.IncludeUnconnected},
		{"skip_unknown", &opts.SkipUnknown},
		{"absolute", &opts.AbsoluteGeometry},
		{"indent", &opts.Indent},
		{"detailed", &opts.Detailed},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: %q is not a boolean", f.name, v)
		}
		*f.dst = b
	}
	return opts, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errTooLarge{limit: tooLarge.Limit}
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body must be an XMI document")
	}
	return data, nil
}

// =============================================================================
// Writers
// =============================================================================

type errTooLarge struct{ limit int64 }

func (e errTooLarge) Error() string {
	return "request body exceeds " + strconv.FormatInt(e.limit, 10) + " bytes"
}

type errNotFound struct{ path string }

func (e errNotFound) Error() string { return "no route for " + e.path }

func notFound(r *http.Request) error { return errNotFound{path: r.URL.Path} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))

	var (
		tooLarge errTooLarge
		missing  errNotFound
	)
	switch {
	case stderrors.As(err, &tooLarge):
		status, code = http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput)
	case stderrors.As(err, &missing):
		status, code = http.StatusNotFound, string(errors.ErrCodeNotFound)
	}
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}

	msg := errors.UserMessage(err)
	if status >= 500 && code == string(errors.ErrCodeInternal) {
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFrom(r.Context()),
	}})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
