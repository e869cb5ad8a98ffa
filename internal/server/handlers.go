package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/buildinfo"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
	"github.com/blockprint/blockprint/pkg/pipeline"
	"github.com/blockprint/blockprint/pkg/render/styles"
	"github.com/blockprint/blockprint/pkg/store"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type recordResponse struct {
	*store.Record
	TotalBlocks int `json:"total_blocks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":  styles.DefaultName,
		"palettes": styles.Names(),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	bp, _, err := s.readBlueprint(w, r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := renderOptions(r, r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, bp, opts)
}

func (s *Server) handleCreateBlueprint(w http.ResponseWriter, r *http.Request) {
	normalize, _ := strconv.ParseBool(r.URL.Query().Get("normalize"))
	bp, warnings, err := s.readBlueprint(w, r, normalize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, created, err := s.store.Put(r.Context(), bp, warnings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/api/blueprints/"+rec.ID)
	}
	writeJSON(w, status, recordResponse{Record: rec, TotalBlocks: rec.Blueprint.BlockCount()})
}

func (s *Server) handleGetBlueprint(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Record: rec, TotalBlocks: rec.Blueprint.BlockCount()})
}

func (s *Server) handleDeleteBlueprint(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBlueprintPreview(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := renderOptions(r, chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Title == "" {
		opts.Title = rec.ID
	}
	s.render(w, r, rec.Blueprint, opts)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, bp *blueprint.Blueprint, opts pipeline.Options) {
	res, err := s.runner.Execute(r.Context(), bp, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	h := w.Header()
	h.Set("Content-Type", pipeline.ContentTypes[format])
	h.Set("X-Total-Blocks", strconv.Itoa(res.Stats.TotalBlocks))
	h.Set("X-Render-Time", res.Stats.RenderTime.Round(time.Microsecond).String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// readBlueprint decodes a JSON or YAML blueprint from the request body.
// With normalize set, the body is treated as loose generator output and
// repaired by [blueprint.Normalize].
func (s *Server) readBlueprint(w http.ResponseWriter, r *http.Request, normalize bool) (*blueprint.Blueprint, []string, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, bperrors.New(bperrors.ErrCodeInvalidBlueprint, "request body is empty")
	}
	if !normalize {
		bp, err := blueprint.Parse(data)
		return bp, nil, err
	}

	var raw map[string]any
	if isJSON(r, data) {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, nil, bperrors.Wrap(bperrors.ErrCodeInvalidBlueprint, err, "decode blueprint")
	}
	return blueprint.Normalize(raw)
}

func isJSON(r *http.Request, data []byte) bool {
	if strings.Contains(r.Header.Get("Content-Type"), "json") {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}

// renderOptions reads render options from the query string. Exactly one
// output format is rendered per request.
func renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		VizType: q.Get("viz_type"),
		Palette: q.Get("palette"),
		Title:   q.Get("title"),
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	for _, f := range []struct {
		name string
		dst  *float64
	}{{"width", &opts.Width}, {"height", &opts.Height}, {"density", &opts.Density}} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, bperrors.New(bperrors.ErrCodeInvalidViewport, "invalid %s: %q", f.name, v)
		}
		*f.dst = n
	}

	for _, f := range []struct {
		name string
		dst  *bool
	}{{"grid", &opts.HideGrid}, {"label", &opts.HideLabel}} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return opts, bperrors.New(bperrors.ErrCodeInvalidInput, "invalid %s: %q", f.name, v)
		}
		*f.dst = !on
	}
	return opts, nil
}
