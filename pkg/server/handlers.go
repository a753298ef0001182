package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/session"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// NodeJSON is the wire form of a card.
type NodeJSON struct {
	ID       string     `json:"id"`
	Kind     string     `json:"kind"`
	Parent   string     `json:"parent,omitempty"`
	Name     string     `json:"name"`
	Content  string     `json:"content,omitempty"`
	Position geom.Point `json:"position"`
	Size     geom.Size  `json:"size"`
	Children int        `json:"children"`
	Preview  string     `json:"preview"`
}

func nodeJSON(n *workspace.Node) NodeJSON {
	return NodeJSON{
		ID:       n.ID,
		Kind:     n.Kind.String(),
		Parent:   n.Parent(),
		Name:     n.Name,
		Content:  n.Content,
		Position: n.Position,
		Size:     n.Size,
		Children: n.ChildCount(),
		Preview:  workspace.Preview(n),
	}
}

// CurveJSON is a connection with its path in logical coordinates.
type CurveJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
	Path string `json:"path"`
}

// LayerJSON describes the active layer.
type LayerJSON struct {
	Active      string             `json:"active"`
	Depth       int                `json:"depth"`
	View        viewport.ViewState `json:"view"`
	Nodes       []NodeJSON         `json:"nodes"`
	Connections []CurveJSON        `json:"connections"`
}

// StateJSON is returned by navigation requests.
type StateJSON struct {
	Active      string             `json:"active"`
	View        viewport.ViewState `json:"view"`
	Breadcrumbs []session.Crumb    `json:"breadcrumbs"`
}

func state(sess *session.Session) StateJSON {
	return StateJSON{Active: sess.ActiveID(), View: sess.View(), Breadcrumbs: sess.Breadcrumbs()}
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.sess.View()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, v)
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	s.sess.Pan(req.DX, req.DY)
	v := s.sess.View()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, v)
}

// zoomRequest zooms around (X, Y), or the screen center when both are
// omitted. Scale sets an absolute scale; otherwise Delta is a wheel delta.
type zoomRequest struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Delta float64  `json:"delta"`
	Scale *float64 `json:"scale"`
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if (req.X == nil) != (req.Y == nil) {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "x and y must be given together"))
		return
	}
	if req.Scale != nil && !(*req.Scale > 0) {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "scale must be positive"))
		return
	}

	s.mu.Lock()
	screen := s.sess.Screen()
	x, y := screen.Width/2, screen.Height/2
	if req.X != nil {
		x, y = *req.X, *req.Y
	}
	if req.Scale != nil {
		s.sess.ZoomTo(x, y, *req.Scale)
	} else {
		s.sess.ZoomAt(x, y, req.Delta)
	}
	v := s.sess.View()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleResetView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.sess.ResetView()
	v := s.sess.View()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, v)
}

type fitRequest struct {
	Padding float64 `json:"padding"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	req := fitRequest{Padding: 40}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.mu.Lock()
	s.sess.FitLayer(req.Padding)
	v := s.sess.View()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req geom.Size
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !(req.Width > 0 && req.Height > 0) {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "screen size must be positive"))
		return
	}
	s.mu.Lock()
	s.sess.SetScreen(req)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetLayer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	layer := LayerJSON{
		Active:      s.sess.ActiveID(),
		Depth:       s.sess.Depth(),
		View:        s.sess.View(),
		Nodes:       []NodeJSON{},
		Connections: []CurveJSON{},
	}
	for _, n := range s.sess.Layer() {
		layer.Nodes = append(layer.Nodes, nodeJSON(n))
	}
	for _, c := range s.sess.Curves() {
		layer.Connections = append(layer.Connections, CurveJSON{
			From: c.Connection.From,
			To:   c.Connection.To,
			Path: c.Curve.Unshift().SVGPath(),
		})
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, layer)
}

type createRequest struct {
	Kind     string      `json:"kind"`
	Name     string      `json:"name"`
	Content  string      `json:"content"`
	Position *geom.Point `json:"position"`
	Size     geom.Size   `json:"size"`
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	kind, err := workspace.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	n, err := s.sess.CreateNode(kind, session.NodeOptions{
		Name:     req.Name,
		Content:  req.Content,
		Position: req.Position,
		Size:     req.Size,
	})
	var out NodeJSON
	if err == nil {
		out = nodeJSON(n)
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	n, ok := s.sess.Tree().Node(id)
	var out NodeJSON
	if ok {
		out = nodeJSON(n)
	}
	s.mu.Unlock()
	if !ok {
		s.writeError(w, r, errs.New(errs.ErrCodeNodeNotFound, "node %q does not exist", id))
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

type patchRequest struct {
	Name     *string     `json:"name"`
	Content  *string     `json:"content"`
	Position *geom.Point `json:"position"`
	Size     *geom.Size  `json:"size"`
}

func (s *Server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req patchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var out NodeJSON
	err := s.Do(func(sess *session.Session) error {
		if _, ok := sess.Tree().Node(id); !ok {
			return errs.New(errs.ErrCodeNodeNotFound, "node %q does not exist", id)
		}
		// Reject before any edit lands so a failed patch changes nothing.
		if id == workspace.RootID && (req.Content != nil || req.Position != nil || req.Size != nil) {
			return errs.New(errs.ErrCodeRootImmutable, "the root node only accepts a new name")
		}
		if req.Name != nil {
			if err := sess.Rename(id, *req.Name); err != nil {
				return err
			}
		}
		if req.Content != nil {
			if err := sess.SetContent(id, *req.Content); err != nil {
				return err
			}
		}
		if req.Position != nil {
			if err := sess.Move(id, *req.Position); err != nil {
				return err
			}
		}
		if req.Size != nil {
			if err := sess.Resize(id, *req.Size); err != nil {
				return err
			}
		}
		n, _ := sess.Tree().Node(id)
		out = nodeJSON(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	removed, err := s.sess.Delete(id)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"deleted": removed})
}

// navigation runs a session navigation and answers with the new state.
func (s *Server) navigation(w http.ResponseWriter, r *http.Request, nav func(*session.Session) error) {
	var out StateJSON
	err := s.Do(func(sess *session.Session) error {
		if err := nav(sess); err != nil {
			return err
		}
		out = state(sess)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.navigation(w, r, func(sess *session.Session) error { return sess.Enter(id) })
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.navigation(w, r, func(sess *session.Session) error { return sess.GoToAncestor(id) })
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.navigation(w, r, func(sess *session.Session) error { return sess.Open(id) })
}

func (s *Server) handleUp(w http.ResponseWriter, r *http.Request) {
	s.navigation(w, r, func(sess *session.Session) error { return sess.Up() })
}

func (s *Server) handleBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	crumbs := s.sess.Breadcrumbs()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, crumbs)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req workspace.Connection
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	c, err := s.sess.Connect(req.From, req.To)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "from and to are required"))
		return
	}
	s.mu.Lock()
	err := s.sess.Disconnect(from, to)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.Save(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"saved": s.name})
}
