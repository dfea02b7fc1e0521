package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/slicetopo/pkg/draft"
	"github.com/matzehuels/slicetopo/pkg/editor"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/layout"
	"github.com/matzehuels/slicetopo/pkg/render"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListDrafts handles GET /api/drafts
func (s *Server) ListDrafts(w http.ResponseWriter, r *http.Request) {
	infos, err := s.drafts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if infos == nil {
		infos = []draft.Info{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": infos, "count": len(infos)})
}

// CreateDraftRequest is the request body for creating a draft.
type CreateDraftRequest struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateDraft handles POST /api/drafts. An existing draft is a conflict.
func (s *Server) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := apperrors.ValidateDraftName(req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Title == "" {
		req.Title = req.Name
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.drafts.Load(r.Context(), req.Name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusConflict, errorResponse{Code: apperrors.ErrCodeInvalidInput, Message: "draft " + strconv.Quote(req.Name) + " already exists"})
		return
	case !apperrors.Is(err, apperrors.ErrCodeDraftNotFound):
		s.writeError(w, r, err)
		return
	}

	st := topology.New(req.Title)
	st.SetDescription(req.Description)
	d, err := s.drafts.Save(r.Context(), req.Name, serialize.Export(st.Snapshot(), time.Now()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDraft handles GET /api/drafts/{draft}
func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.Load(r.Context(), chi.URLParam(r, "draft"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteDraft handles DELETE /api/drafts/{draft}
func (s *Server) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.drafts.Delete(r.Context(), chi.URLParam(r, "draft")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportDraft handles PUT /api/drafts/{draft}/import. The body is an export
// document, legacy shapes included. The draft is created when missing.
func (s *Server) ImportDraft(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "draft")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	t, err := serialize.Parse(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.drafts.Save(r.Context(), name, serialize.Export(t, time.Now()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ClearDraft handles POST /api/drafts/{draft}/clear
func (s *Server) ClearDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.mutate(r.Context(), chi.URLParam(r, "draft"), func(_ *topology.Store, ctl *editor.Controller) error {
		ctl.Clear()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// NodeRequest is the request body for creating or patching a node. Absent
// fields keep their current (or default) value.
type NodeRequest struct {
	Name            *string            `json:"name,omitempty"`
	Kind            *string            `json:"kind,omitempty"`
	Image           *string            `json:"image,omitempty"`
	CPU             *int               `json:"cpu,omitempty"`
	MemoryGB        *int               `json:"memoryGB,omitempty"`
	DiskGB          *int               `json:"diskGB,omitempty"`
	InternetEnabled *bool              `json:"internetEnabled,omitempty"`
	Position        *topology.Position `json:"position,omitempty"`
}

func (req NodeRequest) patch() (topology.NodePatch, error) {
	p := topology.NodePatch{
		Name:            req.Name,
		Image:           req.Image,
		CPU:             req.CPU,
		MemoryGB:        req.MemoryGB,
		DiskGB:          req.DiskGB,
		InternetEnabled: req.InternetEnabled,
		Position:        req.Position,
	}
	if req.Kind != nil {
		k, err := topology.ParseKind(*req.Kind)
		if err != nil {
			return p, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "kind")
		}
		p.Kind = &k
	}
	return p, nil
}

// CreateNode handles POST /api/drafts/{draft}/nodes
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var node topology.Node
	_, err = s.mutate(r.Context(), chi.URLParam(r, "draft"), func(st *topology.Store, ctl *editor.Controller) error {
		var pos topology.Position
		if p.Position != nil {
			pos = *p.Position
		}
		node = ctl.AddNode(pos)
		if err := st.UpdateNode(node.ID, p); err != nil {
			return err
		}
		node, _ = st.Node(node.ID)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, serialize.ExportNode(node))
}

// UpdateNode handles PATCH /api/drafts/{draft}/nodes/{id}
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req NodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var node topology.Node
	_, err = s.mutate(r.Context(), chi.URLParam(r, "draft"), func(st *topology.Store, _ *editor.Controller) error {
		if err := st.UpdateNode(topology.NodeID(id), p); err != nil {
			return err
		}
		node, _ = st.Node(topology.NodeID(id))
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.ExportNode(node))
}

// DeleteNode handles DELETE /api/drafts/{draft}/nodes/{id}
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, err = s.mutate(r.Context(), chi.URLParam(r, "draft"), func(_ *topology.Store, ctl *editor.Controller) error {
		ctl.DeleteNode(topology.NodeID(id))
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConnectionRequest is the request body for creating a connection.
type ConnectionRequest struct {
	EndpointA topology.NodeID `json:"endpointA"`
	EndpointB topology.NodeID `json:"endpointB"`
}

// CreateConnection handles POST /api/drafts/{draft}/connections. Rejected
// pairs answer 409 with the reason.
func (s *Server) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var conn topology.Connection
	_, err := s.mutate(r.Context(), chi.URLParam(r, "draft"), func(st *topology.Store, ctl *editor.Controller) error {
		if err := st.CanConnect(req.EndpointA, req.EndpointB); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConnection, err, "cannot connect %d and %d", req.EndpointA, req.EndpointB)
		}
		ctl.ToggleLinkMode()
		ctl.Click(req.EndpointA)
		conn = ctl.Click(req.EndpointB).Connection
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, serialize.ExportConnection(conn))
}

// DeleteConnection handles DELETE /api/drafts/{draft}/connections/{id}
func (s *Server) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, err = s.mutate(r.Context(), chi.URLParam(r, "draft"), func(_ *topology.Store, ctl *editor.Controller) error {
		ctl.DeleteConnection(topology.ConnectionID(id))
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateRequest is the request body for adding a preset batch.
type GenerateRequest struct {
	Preset   string          `json:"preset"`
	Params   layout.Params   `json:"params"`
	Viewport layout.Viewport `json:"viewport"`
}

// GenerateResponse lists what a generation added.
type GenerateResponse struct {
	Nodes       []serialize.NodeDoc       `json:"nodes"`
	Connections []serialize.ConnectionDoc `json:"connections"`
}

// Generate handles POST /api/drafts/{draft}/generate
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	preset, err := layout.ParsePreset(req.Preset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Viewport.Width == 0 && req.Viewport.Height == 0 {
		req.Viewport.Width, req.Viewport.Height = topology.CanvasSize, topology.CanvasSize
	}

	var batch layout.Batch
	_, err = s.mutate(r.Context(), chi.URLParam(r, "draft"), func(_ *topology.Store, ctl *editor.Controller) error {
		b, err := ctl.Generate(preset, req.Params, req.Viewport)
		batch = b
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := GenerateResponse{
		Nodes:       make([]serialize.NodeDoc, 0, len(batch.Nodes)),
		Connections: make([]serialize.ConnectionDoc, 0, len(batch.Connections)),
	}
	for _, n := range batch.Nodes {
		resp.Nodes = append(resp.Nodes, serialize.ExportNode(n))
	}
	for _, c := range batch.Connections {
		resp.Connections = append(resp.Connections, serialize.ExportConnection(c))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Validate handles GET /api/drafts/{draft}/validate. ?isolated=warning
// downgrades isolated nodes. An invalid topology is still a 200: the report
// is the answer.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	rules := s.opts.Rules
	if q := r.URL.Query().Get("isolated"); q != "" {
		sev, err := validate.ParseSeverity(q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rules.IsolatedNodes = sev
	}
	t, err := s.snapshot(r.Context(), chi.URLParam(r, "draft"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validate.Validate(t, rules))
}

// Payload handles GET /api/drafts/{draft}/payload
func (s *Server) Payload(w http.ResponseWriter, r *http.Request) {
	t, err := s.snapshot(r.Context(), chi.URLParam(r, "draft"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, serialize.NewPayload(t))
}

var contentTypes = map[render.Format]string{
	render.FormatDOT: "text/vnd.graphviz",
	render.FormatSVG: "image/svg+xml",
	render.FormatPNG: "image/png",
	render.FormatPDF: "application/pdf",
}

// Render handles GET /api/drafts/{draft}/render?format=svg&detailed=1
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := render.Format(q.Get("format"))
	if format == "" {
		format = render.FormatSVG
	}
	ct, ok := contentTypes[format]
	if !ok {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "unsupported format %q (valid: dot, svg, png, pdf)", format))
		return
	}
	detailed, _ := strconv.ParseBool(q.Get("detailed"))

	t, err := s.snapshot(r.Context(), chi.URLParam(r, "draft"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := render.Render(r.Context(), render.ToDOT(t, render.Options{Detailed: detailed}), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Write(data)
}

// SendResponse is the body of a successful submission.
type SendResponse struct {
	StatusCode int      `json:"statusCode"`
	RequestID  string   `json:"requestId"`
	DurationMS int64    `json:"durationMs"`
	Warnings   []string `json:"warnings,omitempty"`
	Body       string   `json:"body,omitempty"`
}

// Send handles POST /api/drafts/{draft}/send. The snapshot is taken under
// the lock; the Slice Manager call is not.
func (s *Server) Send(w http.ResponseWriter, r *http.Request) {
	if s.opts.Submitter == nil {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidConfig, "no Slice Manager url configured"))
		return
	}
	t, err := s.snapshot(r.Context(), chi.URLParam(r, "draft"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.opts.Submitter.Send(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SendResponse{
		StatusCode: res.Response.StatusCode,
		RequestID:  res.Response.RequestID,
		DurationMS: res.Duration.Milliseconds(),
		Warnings:   res.Report.Warnings,
		Body:       string(res.Response.Body),
	})
}

func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid id %q", raw)
	}
	return id, nil
}
