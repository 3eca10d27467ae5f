package server

import (
	"encoding/json"
	"net/http"

	"github.com/WhiteBite/diaflow/pkg/errors"
	"github.com/WhiteBite/diaflow/pkg/formats"
	"github.com/WhiteBite/diaflow/pkg/pipeline"
	"github.com/WhiteBite/diaflow/pkg/validate"
)

// maxRequestBytes caps request bodies well above any realistic diagram.
const maxRequestBytes = 10 << 20

// convertRequest is the body of POST /api/convert. The embedded pipeline
// options are accepted flat alongside source.
type convertRequest struct {
	Source string `json:"source"`
	pipeline.Options
}

type convertResponse struct {
	From        string           `json:"from"`
	To          string           `json:"to"`
	Output      string           `json:"output"`
	DiagramHash string           `json:"diagram_hash"`
	Nodes       int              `json:"nodes"`
	Edges       int              `json:"edges"`
	Cached      cacheInfo        `json:"cached"`
	Report      *validate.Report `json:"report,omitempty"`
}

type cacheInfo struct {
	Parse    bool `json:"parse"`
	Layout   bool `json:"layout"`
	Generate bool `json:"generate"`
}

type validateRequest struct {
	Source string `json:"source"`
	From   string `json:"from,omitempty"`
	Strict bool   `json:"strict,omitempty"`
}

type formatInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Extensions  []string `json:"extensions"`
	Description string   `json:"description"`
	Parse       bool     `json:"parse"`
	Generate    bool     `json:"generate"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error())
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "source is required")
		return
	}

	res, err := s.runner.Convert(r.Context(), []byte(req.Source), req.Options)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	resp := convertResponse{
		From:        res.FromFormat,
		To:          res.ToFormat,
		Output:      string(res.Output),
		DiagramHash: res.DiagramHash,
		Nodes:       res.Stats.NodeCount,
		Edges:       res.Stats.EdgeCount,
		Cached: cacheInfo{
			Parse:    res.CacheInfo.ParseHit,
			Layout:   res.CacheInfo.LayoutHit,
			Generate: res.CacheInfo.GenerateHit,
		},
	}
	if req.Options.ShouldValidate() {
		resp.Report = &res.Report
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error())
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "source is required")
		return
	}

	opts := pipeline.Options{From: req.From, Strict: req.Strict}
	d, err := s.runner.Parse(r.Context(), []byte(req.Source), opts)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	report := s.runner.Validate(d, opts)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	infos := make([]formatInfo, 0, len(formats.All))
	for _, f := range formats.All {
		infos = append(infos, formatInfo{
			Name:        f.Name,
			Aliases:     f.Aliases,
			Extensions:  f.Extensions,
			Description: f.Description,
			Parse:       f.CanParse(),
			Generate:    f.CanGenerate(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

// decodeJSON decodes a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(v)
}
