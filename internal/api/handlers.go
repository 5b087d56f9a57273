package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/davafons/dial/pkg/buildinfo"
	"github.com/davafons/dial/pkg/datasets"
	dialerrors "github.com/davafons/dial/pkg/errors"
	"github.com/davafons/dial/pkg/pipeline"
	"github.com/davafons/dial/pkg/project"
	"github.com/davafons/dial/pkg/script"
)

// Content types accepted for project bodies.
const (
	ContentJSON   = "application/json"
	ContentTOML   = "application/toml"
	ContentScript = "application/x-dial-script"

	contentNotebook = "application/x-ipynb+json"
)

// Response headers.
const (
	HeaderCache   = "X-Dial-Cache"
	HeaderSkipped = "X-Dial-Skipped"
	HeaderHash    = "X-Dial-Hash"
)

// =============================================================================
// Response types
// =============================================================================

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// NodeKind describes a buildable node kind.
type NodeKind struct {
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
	// Generates is false for kinds that have no transformer and are left
	// out of notebooks.
	Generates bool `json:"generates"`
}

// Dataset describes a predefined dataset.
type Dataset struct {
	Name       string   `json:"name"`
	Brief      string   `json:"brief"`
	Input      string   `json:"input"`
	Label      string   `json:"label"`
	Shape      []int    `json:"shape"`
	Categories []string `json:"categories,omitempty"`
}

type errorResponse struct {
	Code    dialerrors.Code `json:"code"`
	Message string          `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleNodeKinds(w http.ResponseWriter, r *http.Request) {
	specs := s.catalog.Specs()
	out := make([]NodeKind, 0, len(specs))
	for _, spec := range specs {
		out = append(out, NodeKind{
			Kind:      spec.Kind,
			Summary:   spec.Summary,
			Generates: s.runner.Registry.Has(spec.Kind),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNodeKind(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if err := dialerrors.ValidateNodeKind(kind); err != nil {
		writeError(w, err)
		return
	}
	spec, ok := s.catalog.Spec(kind)
	if !ok {
		writeError(w, dialerrors.New(dialerrors.ErrCodeUnknownNodeKind, "unknown node kind %q", kind))
		return
	}
	writeJSON(w, http.StatusOK, NodeKind{
		Kind:      spec.Kind,
		Summary:   spec.Summary,
		Generates: s.runner.Registry.Has(spec.Kind),
	})
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	all := datasets.All()
	out := make([]Dataset, 0, len(all))
	for _, d := range all {
		out = append(out, Dataset{
			Name:       d.Name,
			Brief:      d.Brief,
			Input:      d.X.Name(),
			Label:      d.Y.Name(),
			Shape:      d.Shape,
			Categories: d.Categories(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNotebook(w http.ResponseWriter, r *http.Request) {
	p, err := s.readProject(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	refresh, _ := strconv.ParseBool(q.Get("refresh"))
	filename := q.Get("filename")
	if filename != "" {
		if err := dialerrors.ValidatePath(filename); err != nil {
			writeError(w, err)
			return
		}
	}

	res, err := s.runner.Generate(r.Context(), p, pipeline.Options{Refresh: refresh})
	if err != nil {
		writeError(w, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentNotebook)
	w.Header().Set(HeaderCache, cacheStatus)
	w.Header().Set(HeaderHash, res.Hash)
	if len(res.Skipped) > 0 {
		w.Header().Set(HeaderSkipped, strings.Join(res.Skipped, ","))
	}
	if filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(filename)}))
	}
	if _, err := res.Notebook.WriteTo(w); err != nil {
		s.logger.Warn("write notebook response", "err", err)
	}
}

var graphContentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.GraphOptions{Format: q.Get("format")}
	if opts.Format == "" {
		opts.Format = pipeline.FormatSVG
	}
	if !pipeline.IsValidFormat(opts.Format) {
		writeError(w, dialerrors.New(dialerrors.ErrCodeInvalidFormat, "unknown graph format %q", opts.Format))
		return
	}
	opts.Detailed, _ = strconv.ParseBool(q.Get("detailed"))

	p, err := s.readProject(r)
	if err != nil {
		writeError(w, err)
		return
	}
	out, hit, err := s.runner.Graph(r.Context(), p, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", graphContentTypes[opts.Format])
	w.Header().Set(HeaderCache, cacheStatus)
	_, _ = w.Write(out)
}

// readProject decodes the request body according to its Content-Type.
func (s *Server) readProject(r *http.Request) (*project.Project, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = ContentJSON
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, dialerrors.Wrap(dialerrors.ErrCodeInvalidFormat, err, "bad Content-Type")
	}

	switch mediaType {
	case ContentScript:
		src, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, dialerrors.Wrap(dialerrors.ErrCodeInvalidInput, err, "read body")
		}
		p, err := script.Evaluate(r.Context(), string(src), s.catalog)
		if err != nil {
			return nil, err
		}
		return p, validateProject(p)
	case ContentJSON:
		return decodeProject(r.Body, project.JSON, s)
	case ContentTOML:
		return decodeProject(r.Body, project.TOML, s)
	}
	return nil, dialerrors.New(dialerrors.ErrCodeInvalidFormat, "unsupported Content-Type %q", mediaType)
}

// validateProject rejects node identifiers and kinds that would not
// survive a round trip through a project file.
func validateProject(p *project.Project) error {
	for _, n := range p.Scene().Nodes() {
		if err := dialerrors.ValidateNodeID(n.ID()); err != nil {
			return err
		}
		if err := dialerrors.ValidateNodeKind(n.Kind()); err != nil {
			return err
		}
	}
	return nil
}

func decodeProject(body io.Reader, format project.Format, s *Server) (*project.Project, error) {
	p, err := project.Decode(body, format, s.catalog)
	if err == nil {
		return p, validateProject(p)
	}
	// Scene rule violations keep their own code; anything else is a
	// malformed document.
	if dialerrors.GetCode(dialerrors.Classify(err)) == dialerrors.ErrCodeInternal {
		return nil, dialerrors.Wrap(dialerrors.ErrCodeInvalidProject, err, "invalid project")
	}
	return nil, err
}

// =============================================================================
// Response helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	err = dialerrors.Classify(err)
	msg := dialerrors.UserMessage(err)
	var e *dialerrors.Error
	if errors.As(err, &e) && e.Cause != nil && e.Cause.Error() != msg {
		msg += ": " + e.Cause.Error()
	}
	writeJSON(w, dialerrors.HTTPStatus(err), errorResponse{Code: dialerrors.GetCode(err), Message: msg})
}

func errNotFound(path string) error {
	return dialerrors.New(dialerrors.ErrCodeNotFound, "no route for %s", path)
}
