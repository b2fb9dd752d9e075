package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadmap/pkg/buildinfo"
	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/render/nodelink"
	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/roadmap/layout"
	"github.com/matzehuels/roadmap/pkg/roadmap/viewport"
)

// nodeView is a node with its derived child ids.
type nodeView struct {
	roadmap.Node
	ChildIDs []string `json:"childIds"`
}

func viewNode(n roadmap.Node) nodeView {
	ids := n.Data.ChildIDs
	if ids == nil {
		ids = []string{}
	}
	return nodeView{Node: n, ChildIDs: ids}
}

// roadmapResponse is the visible graph plus view state.
type roadmapResponse struct {
	Nodes           []nodeView        `json:"nodes"`
	Edges           []roadmap.Edge    `json:"edges"`
	LayoutDirection roadmap.Direction `json:"layoutDirection"`
	HiddenNodeIDs   []string          `json:"hiddenNodeIds"`
	SelectedNodeID  string            `json:"selectedNodeId,omitempty"`
	Total           int               `json:"total"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// GET /healthz
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// GET /roadmap: visible nodes and edges.
func (h *Handler) getRoadmap(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	visible := snap.VisibleNodes()
	resp := roadmapResponse{
		Nodes:           make([]nodeView, len(visible)),
		Edges:           snap.VisibleEdges(),
		LayoutDirection: snap.LayoutDirection,
		HiddenNodeIDs:   snap.HiddenNodeIDs.Sorted(),
		SelectedNodeID:  snap.SelectedNodeID,
		Total:           len(snap.Nodes),
	}
	for i, n := range visible {
		resp.Nodes[i] = viewNode(n)
	}
	if resp.HiddenNodeIDs == nil {
		resp.HiddenNodeIDs = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /nodes: add a complete node.
func (h *Handler) addNode(w http.ResponseWriter, r *http.Request) {
	var n roadmap.Node
	if !h.decode(w, r, &n) {
		return
	}
	if err := errors.ValidateNode(n); err != nil {
		writeError(w, err)
		return
	}
	if _, exists := h.store.Node(n.ID); exists {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "node %q already exists", n.ID))
		return
	}
	h.store.AddNode(n)
	h.writeNode(w, http.StatusCreated, n.ID)
}

// GET /nodes/{id}
func (h *Handler) getNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := h.store.Node(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, viewNode(n))
}

// DELETE /nodes/{id}
func (h *Handler) deleteNode(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteNode(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type labelRequest struct {
	Label string `json:"label"`
}

type idResponse struct {
	ID string `json:"id"`
}

// POST /nodes/{id}/children
func (h *Handler) addChild(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Label != "" {
		if err := errors.ValidateLabel(req.Label); err != nil {
			writeError(w, err)
			return
		}
	}
	id, ok := h.store.AddChildNode(chi.URLParam(r, "id"), req.Label)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// PATCH /nodes/{id}: shallow-merge a NodePatch.
func (h *Handler) updateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch roadmap.NodePatch
	if !h.decode(w, r, &patch) {
		return
	}
	n, ok := h.store.Node(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := patch.Apply(n.Data).Validate(); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid update"))
		return
	}
	if patch.Resources != nil {
		for _, res := range *patch.Resources {
			if err := errors.ValidateURL(res.URL); err != nil {
				writeError(w, err)
				return
			}
		}
	}
	h.store.UpdateNodeData(id, patch)
	h.writeNode(w, http.StatusOK, id)
}

// POST /nodes/{id}/toggle-expanded
func (h *Handler) toggleExpanded(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleNodeExpanded(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// POST /nodes/{id}/toggle-collapse
func (h *Handler) toggleCollapse(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleNodeCollapse(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

// PUT /nodes/{id}/status
func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	status, err := errors.ValidateStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	h.store.SetNodeStatus(chi.URLParam(r, "id"), status)
	w.WriteHeader(http.StatusNoContent)
}

// PUT /nodes/{id}/position
func (h *Handler) setPosition(w http.ResponseWriter, r *http.Request) {
	var pos roadmap.Position
	if !h.decode(w, r, &pos) {
		return
	}
	h.store.UpdateNodePosition(chi.URLParam(r, "id"), pos)
	w.WriteHeader(http.StatusNoContent)
}

// POST /nodes/{id}/duplicate
func (h *Handler) duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.store.DuplicateNode(chi.URLParam(r, "id"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

type edgeRequest struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship"`
}

// POST /edges: relationship defaults to related, like the canvas connect gesture.
func (h *Handler) addEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if !h.decode(w, r, &req) {
		return
	}
	rel := roadmap.Related
	if req.Relationship != "" {
		var err error
		if rel, err = errors.ValidateRelationship(req.Relationship); err != nil {
			writeError(w, err)
			return
		}
	}
	id, err := h.store.ConnectWith(req.Source, req.Target, rel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// DELETE /edges/{id}
func (h *Handler) deleteEdge(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteEdge(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type directionRequest struct {
	Direction string `json:"direction"`
}

// PUT /direction
func (h *Handler) setDirection(w http.ResponseWriter, r *http.Request) {
	var req directionRequest
	if !h.decode(w, r, &req) {
		return
	}
	dir, err := errors.ValidateDirection(req.Direction)
	if err != nil {
		writeError(w, err)
		return
	}
	h.store.SetLayoutDirection(dir)
	w.WriteHeader(http.StatusNoContent)
}

type layoutRequest struct {
	Direction string  `json:"direction,omitempty"`
	NodeSep   float64 `json:"nodeSep,omitempty"`
	RankSep   float64 `json:"rankSep,omitempty"`
}

type layoutResponse struct {
	Direction roadmap.Direction `json:"direction"`
	Ranks     int               `json:"ranks"`
	Reversed  int               `json:"reversed"`
	Crossings int               `json:"crossings"`
}

// POST /layout: body optional; spacing falls back to the configuration.
func (h *Handler) applyLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	cfg := h.settings().Layout
	opts := layout.Options{NodeSep: cfg.NodeSep, RankSep: cfg.RankSep}
	if req.Direction != "" {
		dir, err := errors.ValidateDirection(req.Direction)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Direction = dir
	}
	if req.NodeSep > 0 {
		opts.NodeSep = req.NodeSep
	}
	if req.RankSep > 0 {
		opts.RankSep = req.RankSep
	}

	res := h.store.ApplyLayout(opts)
	dir := opts.Direction
	if dir == "" {
		dir = h.store.LayoutDirection()
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Direction: dir,
		Ranks:     res.Ranks,
		Reversed:  res.Reversed,
		Crossings: res.Crossings,
	})
}

// POST /reset
func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.store.ResetToDefault()
	w.WriteHeader(http.StatusNoContent)
}

// POST /import: replace the graph with a generated roadmap.
func (h *Handler) importRoadmap(w http.ResponseWriter, r *http.Request) {
	resp, err := roadmap.ReadAIRoadmap(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid roadmap"))
		return
	}
	res, err := h.store.ImportRoadmap(resp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /fit?width=&height=&padding=: viewport transform for the visible nodes.
func (h *Handler) fit(w http.ResponseWriter, r *http.Request) {
	vp := h.settings().Viewport
	q := r.URL.Query()
	width, err := floatParam(q.Get("width"), vp.Width)
	if err != nil {
		writeError(w, err)
		return
	}
	height, err := floatParam(q.Get("height"), vp.Height)
	if err != nil {
		writeError(w, err)
		return
	}
	padding, err := floatParam(q.Get("padding"), vp.Padding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewport.Fit(h.store.VisibleNodes(), width, height, padding))
}

// GET /export?format=dot|svg&detailed=true: static diagram of the visible roadmap.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	dot := nodelink.ToDOT(snap.VisibleNodes(), snap.VisibleEdges(), nodelink.Options{
		Direction: snap.LayoutDirection,
		Detailed:  detailed,
	})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "svg":
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (dot or svg)", format))
	}
}

type selectionRequest struct {
	ID string `json:"id"`
}

// PUT /selection
func (h *Handler) selectNode(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.store.SelectNode(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /selection
func (h *Handler) clearSelection(w http.ResponseWriter, r *http.Request) {
	h.store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeNode(w http.ResponseWriter, status int, id string) {
	n, ok := h.store.Node(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, viewNode(n))
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid number %q", s)
	}
	return v, nil
}
