package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/observability"
	"github.com/matzehuels/nestboard/pkg/session"
	"github.com/matzehuels/nestboard/pkg/store"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

func seqIDs() workspace.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	sess := session.New(workspace.New(workspace.WithIDGenerator(seqIDs())))
	s := New(sess, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorBody](t, rec).Error.Code
}

func TestViewEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/view", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/view = %d", rec.Code)
	}
	if v := decode[viewport.ViewState](t, rec); v != (viewport.ViewState{Scale: 1}) {
		t.Errorf("initial view = %+v", v)
	}

	rec = do(t, s, http.MethodPost, "/api/view/pan", map[string]float64{"dx": 30, "dy": -10})
	if v := decode[viewport.ViewState](t, rec); v.PanX != 30 || v.PanY != -10 {
		t.Errorf("after pan = %+v", v)
	}

	rec = do(t, s, http.MethodPost, "/api/view/zoom", map[string]float64{"x": 100, "y": 100, "scale": 2})
	v := decode[viewport.ViewState](t, rec)
	if v.Scale != 2 {
		t.Errorf("scale = %v, want 2", v.Scale)
	}
	world := viewport.ViewState{PanX: 30, PanY: -10, Scale: 1}.ScreenToWorld(geom.Point{X: 100, Y: 100})
	if got := v.WorldToScreen(world); got.Dist(geom.Point{X: 100, Y: 100}) > 1e-9 {
		t.Errorf("zoom moved the anchor to %+v", got)
	}

	rec = do(t, s, http.MethodPost, "/api/view/zoom", map[string]float64{"scale": 100})
	if v := decode[viewport.ViewState](t, rec); v.Scale != 5 {
		t.Errorf("scale = %v, want clamp to 5", v.Scale)
	}

	rec = do(t, s, http.MethodPost, "/api/view/zoom", map[string]float64{"x": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zoom with x only = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/view/reset", nil)
	if v := decode[viewport.ViewState](t, rec); v != (viewport.ViewState{Scale: 1}) {
		t.Errorf("after reset = %+v", v)
	}

	rec = do(t, s, http.MethodPut, "/api/screen", geom.Size{Width: 640, Height: 480})
	if rec.Code != http.StatusNoContent {
		t.Errorf("PUT /api/screen = %d", rec.Code)
	}
	_ = s.Do(func(sess *session.Session) error {
		if sess.Screen() != (geom.Size{Width: 640, Height: 480}) {
			t.Errorf("screen = %+v", sess.Screen())
		}
		return nil
	})
}

func TestBadBodies(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name, method, path string
		body               any
	}{
		{"empty pan", http.MethodPost, "/api/view/pan", nil},
		{"unknown field", http.MethodPost, "/api/view/pan", map[string]int{"dz": 1}},
		{"bad kind", http.MethodPost, "/api/nodes", map[string]string{"kind": "widget"}},
		{"zero screen", http.MethodPut, "/api/screen", geom.Size{}},
		{"disconnect without params", http.MethodDelete, "/api/connections", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", rec.Code, rec.Body)
			}
		})
	}
}

func TestNodeLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/nodes", map[string]any{
		"kind":     "canvas",
		"name":     "Ideas",
		"position": geom.Point{X: 10, Y: 20},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body)
	}
	n := decode[NodeJSON](t, rec)
	if n.ID != "n1" || n.Name != "Ideas" || n.Kind != "canvas" || n.Position != (geom.Point{X: 10, Y: 20}) {
		t.Errorf("created %+v", n)
	}
	if n.Size != workspace.DefaultSize {
		t.Errorf("size = %+v, want default", n.Size)
	}

	rec = do(t, s, http.MethodPost, "/api/nodes", map[string]any{"kind": "text"})
	note := decode[NodeJSON](t, rec)
	if note.Content != "Start typing..." {
		t.Errorf("text default content = %q", note.Content)
	}

	rec = do(t, s, http.MethodPatch, "/api/nodes/n2", map[string]any{
		"name": "Todo",
		"size": geom.Size{Width: 1, Height: 1},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch = %d %s", rec.Code, rec.Body)
	}
	note = decode[NodeJSON](t, rec)
	if note.Name != "Todo" || note.Size != workspace.MinSize {
		t.Errorf("patched %+v", note)
	}

	rec = do(t, s, http.MethodGet, "/api/nodes/n2", nil)
	if decode[NodeJSON](t, rec).Name != "Todo" {
		t.Error("GET node did not reflect patch")
	}

	rec = do(t, s, http.MethodGet, "/api/nodes/zzz", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NODE_NOT_FOUND" {
		t.Errorf("missing node = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodPost, "/api/connections", workspace.Connection{From: "n1", To: "n2"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("connect = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/api/connections", workspace.Connection{From: "n1", To: "n2"})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "DUPLICATE_CONNECTION" {
		t.Errorf("duplicate connect = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/api/connections", workspace.Connection{From: "n1", To: "n1"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("self connect = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/layer", nil)
	layer := decode[LayerJSON](t, rec)
	if layer.Active != workspace.RootID || len(layer.Nodes) != 2 || len(layer.Connections) != 1 {
		t.Fatalf("layer = %+v", layer)
	}
	if !strings.HasPrefix(layer.Connections[0].Path, "M ") {
		t.Errorf("curve path = %q", layer.Connections[0].Path)
	}

	rec = do(t, s, http.MethodGet, "/api/layer.svg", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Errorf("layer.svg = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), `id="card-n1"`) {
		t.Error("layer.svg missing card")
	}

	rec = do(t, s, http.MethodDelete, "/api/nodes/n1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d %s", rec.Code, rec.Body)
	}
	if got := decode[map[string][]string](t, rec)["deleted"]; len(got) != 1 || got[0] != "n1" {
		t.Errorf("deleted = %v", got)
	}
	rec = do(t, s, http.MethodGet, "/api/layer", nil)
	if layer := decode[LayerJSON](t, rec); len(layer.Connections) != 0 {
		t.Errorf("connection survived delete: %+v", layer.Connections)
	}

	rec = do(t, s, http.MethodDelete, "/api/nodes/root", nil)
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "ROOT_IMMUTABLE" {
		t.Errorf("delete root = %d %s", rec.Code, rec.Body)
	}
}

func TestPatchIsAtomic(t *testing.T) {
	s := newTestServer(t)
	before := decode[NodeJSON](t, do(t, s, http.MethodGet, "/api/nodes/root", nil))

	tests := []struct {
		name string
		body map[string]any
	}{
		{"name and position", map[string]any{"name": "renamed", "position": map[string]float64{"x": 10, "y": 20}}},
		{"name and size", map[string]any{"name": "renamed", "size": map[string]float64{"width": 300, "height": 200}}},
		{"name and content", map[string]any{"name": "renamed", "content": "body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPatch, "/api/nodes/root", tt.body)
			if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "ROOT_IMMUTABLE" {
				t.Fatalf("patch root = %d %s", rec.Code, rec.Body)
			}
			got := decode[NodeJSON](t, do(t, s, http.MethodGet, "/api/nodes/root", nil))
			if got.Name != before.Name {
				t.Errorf("failed patch renamed root to %q", got.Name)
			}
		})
	}

	rec := do(t, s, http.MethodPatch, "/api/nodes/root", map[string]any{"name": "Home"})
	if rec.Code != http.StatusOK || decode[NodeJSON](t, rec).Name != "Home" {
		t.Errorf("rename root = %d %s", rec.Code, rec.Body)
	}
}

func TestDisconnect(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/nodes", map[string]string{"kind": "canvas"})
	do(t, s, http.MethodPost, "/api/nodes", map[string]string{"kind": "canvas"})
	do(t, s, http.MethodPost, "/api/connections", workspace.Connection{From: "n1", To: "n2"})

	rec := do(t, s, http.MethodDelete, "/api/connections?from=n1&to=n2", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("disconnect = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodDelete, "/api/connections?from=n1&to=n2", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second disconnect = %d", rec.Code)
	}
}

func TestNavigation(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/nodes", map[string]string{"kind": "canvas", "name": "A"})
	do(t, s, http.MethodPost, "/api/view/pan", map[string]float64{"dx": 5, "dy": 5})

	rec := do(t, s, http.MethodPost, "/api/nodes/n1/enter", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("enter = %d %s", rec.Code, rec.Body)
	}
	st := decode[StateJSON](t, rec)
	if st.Active != "n1" || st.View != (viewport.ViewState{Scale: 1}) || len(st.Breadcrumbs) != 2 {
		t.Errorf("after enter %+v", st)
	}

	do(t, s, http.MethodPost, "/api/nodes", map[string]string{"kind": "canvas", "name": "B"})
	rec = do(t, s, http.MethodPost, "/api/nodes/n2/enter", nil)
	if decode[StateJSON](t, rec).Active != "n2" {
		t.Fatal("did not enter n2")
	}

	rec = do(t, s, http.MethodGet, "/api/breadcrumbs", nil)
	crumbs := decode[[]session.Crumb](t, rec)
	if len(crumbs) != 3 || crumbs[1].Title != "A" || crumbs[2].Title != "B" {
		t.Errorf("breadcrumbs = %+v", crumbs)
	}

	rec = do(t, s, http.MethodPost, "/api/navigate/root", nil)
	st = decode[StateJSON](t, rec)
	if st.Active != workspace.RootID || st.View.PanX != 5 {
		t.Errorf("root view not restored: %+v", st)
	}

	rec = do(t, s, http.MethodPost, "/api/navigate/n2", nil)
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "NOT_AN_ANCESTOR" {
		t.Errorf("navigate down = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodPost, "/api/open/n2", nil)
	if st := decode[StateJSON](t, rec); st.Active != "n2" || len(st.Breadcrumbs) != 3 {
		t.Errorf("open = %+v", st)
	}

	rec = do(t, s, http.MethodPost, "/api/up", nil)
	if decode[StateJSON](t, rec).Active != "n1" {
		t.Error("up did not go to n1")
	}

	rec = do(t, s, http.MethodPost, "/api/nodes/root/enter", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("enter non-child = %d", rec.Code)
	}
}

func TestSave(t *testing.T) {
	st := store.NewMemoryStore()
	s := newTestServer(t, WithStore(st, "demo"))
	do(t, s, http.MethodPost, "/api/nodes", map[string]string{"kind": "text", "name": "hello"})

	rec := do(t, s, http.MethodPost, "/api/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save = %d %s", rec.Code, rec.Body)
	}
	snap, err := st.Load(context.Background(), "demo")
	if err != nil {
		t.Fatal(err)
	}
	tr, _, err := snap.Tree()
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := tr.Node("n1"); !ok || n.Name != "hello" {
		t.Errorf("saved tree missing card")
	}

	bare := newTestServer(t)
	if rec := do(t, bare, http.MethodPost, "/api/save", nil); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("save without store = %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	if id := rec.Header().Get(RequestIDHeader); len(id) != 36 {
		t.Errorf("generated id = %q", id)
	}

	const id = "0190f1b4-5a3c-7c3e-9b7a-4f1d2e3c4b5a"
	req := httptest.NewRequest(http.MethodGet, "/api/nodes/missing", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != id {
		t.Errorf("id not propagated: %q", rec.Header().Get(RequestIDHeader))
	}
	if decode[errorBody](t, rec).Error.RequestID != id {
		t.Error("error body missing request id")
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	paths    []string
	statuses []int
}

func (h *httpRecorder) OnResponse(_ context.Context, _, path string, status int, _ time.Duration) {
	h.paths = append(h.paths, path)
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	h := &httpRecorder{}
	observability.SetHTTPHooks(h)
	defer observability.Reset()

	s := newTestServer(t)
	do(t, s, http.MethodGet, "/api/nodes/missing", nil)

	if len(h.paths) != 1 || !strings.HasPrefix(h.paths[0], "/api/nodes/{id}") || h.statuses[0] != http.StatusNotFound {
		t.Errorf("hooks saw %v %v", h.paths, h.statuses)
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor(fmt.Errorf("plain")) != http.StatusInternalServerError {
		t.Error("plain errors should map to 500")
	}
}

func TestEventsCoalesceViewChanges(t *testing.T) {
	s := newTestServer(t, WithFrame(50*time.Millisecond))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/events", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	const pans = 20
	var final viewport.ViewState
	_ = s.Do(func(sess *session.Session) error {
		for i := 0; i < pans; i++ {
			sess.Pan(1, 0)
		}
		final = sess.View()
		_, err := sess.CreateNode(workspace.KindText, session.NodeOptions{})
		return err
	})

	var views []session.Event
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var e struct {
			Kind string             `json:"kind"`
			Op   string             `json:"op"`
			View viewport.ViewState `json:"view"`
		}
		if err := json.Unmarshal(data, &e); err != nil {
			t.Fatal(err)
		}
		if e.Kind == "view" {
			views = append(views, session.Event{Kind: session.EventView, View: e.View})
			continue
		}
		if e.Kind != "layer" || e.Op != "create" {
			t.Fatalf("unexpected event %s", data)
		}
		break
	}

	if len(views) == 0 || len(views) >= pans {
		t.Fatalf("got %d view events for %d pans", len(views), pans)
	}
	if last := views[len(views)-1].View; last != final {
		t.Errorf("last view = %+v, want %+v", last, final)
	}
}
