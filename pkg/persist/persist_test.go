package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/storage"
)

func seedState() State {
	g := roadmap.DefaultGraph()
	return State{
		Nodes:           g.Nodes,
		Edges:           g.Edges,
		LayoutDirection: roadmap.LeftToRight,
		HiddenNodeIDs:   roadmap.NewIDSet("react", "html-css"),
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	in := seedState()
	data, err := Serialize(in)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	out, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if len(out.Nodes) != len(in.Nodes) || len(out.Edges) != len(in.Edges) {
		t.Fatalf("got %d nodes %d edges, want %d and %d", len(out.Nodes), len(out.Edges), len(in.Nodes), len(in.Edges))
	}
	for i := range in.Nodes {
		if out.Nodes[i].ID != in.Nodes[i].ID || out.Nodes[i].Data.Label != in.Nodes[i].Data.Label {
			t.Errorf("node %d = %+v", i, out.Nodes[i])
		}
	}
	if out.LayoutDirection != roadmap.LeftToRight {
		t.Errorf("LayoutDirection = %q", out.LayoutDirection)
	}
	if !out.HiddenNodeIDs.Equal(in.HiddenNodeIDs) {
		t.Errorf("HiddenNodeIDs = %v", out.HiddenNodeIDs.Sorted())
	}

	again, err := Serialize(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("serializing a decoded state should reproduce the same bytes")
	}
}

func TestSerialize_RoundTripIsStructural(t *testing.T) {
	in := seedState()
	in.Nodes[0].Data.Tags = []string{}
	in.Nodes[0].Data.Resources = []roadmap.Resource{}
	in.Nodes[1].Data.Tags = nil
	in.Nodes[1].Data.Resources = nil

	data, err := Serialize(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Nodes, in.Nodes) {
		t.Errorf("nodes differ after round trip:\n got %+v\nwant %+v", out.Nodes[:2], in.Nodes[:2])
	}
	if !reflect.DeepEqual(out.Edges, in.Edges) {
		t.Error("edges differ after round trip")
	}
}

func TestSerialize_HiddenIDsAsSortedArray(t *testing.T) {
	s := State{
		Nodes: []roadmap.Node{
			{ID: "a", Data: roadmap.NodeData{Label: "A", Status: roadmap.StatusPending, Category: roadmap.CategoryCore}},
			{ID: "b", Data: roadmap.NodeData{Label: "B", Status: roadmap.StatusPending, Category: roadmap.CategoryCore}},
		},
		HiddenNodeIDs: roadmap.NewIDSet("b", "a"),
	}
	data, err := Serialize(s)
	if err != nil {
		t.Fatal(err)
	}

	var raw struct {
		State struct {
			HiddenNodeIDs []string `json:"hiddenNodeIds"`
		} `json:"state"`
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(raw.State.HiddenNodeIDs, ","); got != "a,b" {
		t.Errorf("hiddenNodeIds = %q, want a,b", got)
	}
	if raw.Version != Version {
		t.Errorf("version = %d", raw.Version)
	}

	out, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if !out.HiddenNodeIDs.Has("a") || !out.HiddenNodeIDs.Has("b") || out.HiddenNodeIDs.Len() != 2 {
		t.Errorf("HiddenNodeIDs = %v", out.HiddenNodeIDs.Sorted())
	}
}

func TestSerialize_EmptyState(t *testing.T) {
	data, err := Serialize(State{})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"state":{"nodes":[],"edges":[],"layoutDirection":"TB","hiddenNodeIds":[]},"version":1}`
	if string(data) != want {
		t.Errorf("Serialize(State{}) = %s", data)
	}
}

func TestSerialize_OmitsChildIDs(t *testing.T) {
	s := seedState()
	s.Nodes[0].Data.ChildIDs = []string{"frontend"}
	data, _ := Serialize(s)
	if bytes.Contains(data, []byte("childIds")) {
		t.Error("childIds is derived and must not be persisted")
	}
}

func TestDeserialize_LegacyChildIDs(t *testing.T) {
	data := `{"state":{"nodes":[
		{"id":"a","position":{"x":0,"y":0},"data":{"label":"A","description":"","status":"pending","category":"core","isExpanded":false,"isCollapsed":false,"childIds":["b"]}},
		{"id":"b","position":{"x":0,"y":0},"data":{"label":"B","description":"","status":"completed","category":"core","isExpanded":false,"isCollapsed":false}}
	],"edges":[{"id":"e-a-b","source":"a","target":"b","data":{"relationship":"prerequisite"}}],
	"layoutDirection":"TB","hiddenNodeIds":["b"]},"version":1}`

	s, err := Deserialize([]byte(data))
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if s.Nodes[0].Data.ChildIDs != nil {
		t.Errorf("ChildIDs = %v, want nil", s.Nodes[0].Data.ChildIDs)
	}
	if !s.HiddenNodeIDs.Has("b") {
		t.Error("hidden id b lost")
	}
}

func TestDeserialize_DropsUnknownHiddenIDs(t *testing.T) {
	data := `{"state":{"nodes":[{"id":"a","position":{"x":0,"y":0},"data":{"label":"A","description":"","status":"pending","category":"core","isExpanded":false,"isCollapsed":false}}],
	"edges":[],"layoutDirection":"TB","hiddenNodeIds":["a","ghost"]},"version":1}`
	s, err := Deserialize([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if s.HiddenNodeIDs.Has("ghost") || !s.HiddenNodeIDs.Has("a") {
		t.Errorf("HiddenNodeIDs = %v", s.HiddenNodeIDs.Sorted())
	}
}

func TestDeserialize_Rejects(t *testing.T) {
	node := func(id, status string) string {
		return `{"id":"` + id + `","position":{"x":0,"y":0},"data":{"label":"L","description":"","status":"` + status + `","category":"core","isExpanded":false,"isCollapsed":false}}`
	}
	state := func(nodes, edges string, dir string) string {
		return `{"state":{"nodes":[` + nodes + `],"edges":[` + edges + `],"layoutDirection":"` + dir + `","hiddenNodeIds":[]},"version":1}`
	}

	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"not json", `{`, errors.ErrCodeMalformedState},
		{"array", `[]`, errors.ErrCodeMalformedState},
		{"missing state", `{"version":1}`, errors.ErrCodeMalformedState},
		{"empty state", `{"state":{},"version":1}`, errors.ErrCodeMalformedState},
		{"missing nodes", `{"state":{"edges":[],"layoutDirection":"TB","hiddenNodeIds":[]},"version":1}`, errors.ErrCodeMalformedState},
		{"null nodes", `{"state":{"nodes":null,"edges":[],"layoutDirection":"TB","hiddenNodeIds":[]},"version":1}`, errors.ErrCodeMalformedState},
		{"missing edges", `{"state":{"nodes":[],"layoutDirection":"TB","hiddenNodeIds":[]},"version":1}`, errors.ErrCodeMalformedState},
		{"missing version", `{"state":{"nodes":[],"edges":[],"layoutDirection":"TB","hiddenNodeIds":[]}}`, errors.ErrCodeUnsupportedVersion},
		{"future version", `{"state":{"nodes":[],"edges":[],"layoutDirection":"TB","hiddenNodeIds":[]},"version":2}`, errors.ErrCodeUnsupportedVersion},
		{"unknown field", `{"state":{"nodes":[],"edges":[],"layoutDirection":"TB","hiddenNodeIds":[],"selected":"a"},"version":1}`, errors.ErrCodeMalformedState},
		{"bad direction", state("", "", "RL"), errors.ErrCodeMalformedState},
		{"bad status", state(node("a", "done"), "", "TB"), errors.ErrCodeMalformedState},
		{"empty id", state(node("", "pending"), "", "TB"), errors.ErrCodeMalformedState},
		{"duplicate id", state(node("a", "pending")+","+node("a", "pending"), "", "TB"), errors.ErrCodeMalformedState},
		{"dangling edge", state(node("a", "pending"), `{"id":"e-a-x","source":"a","target":"x","data":{"relationship":"prerequisite"}}`, "TB"), errors.ErrCodeMalformedState},
		{"bad relationship", state(node("a", "pending")+","+node("b", "pending"), `{"id":"e-a-b","source":"a","target":"b","data":{"relationship":"blocks"}}`, "TB"), errors.ErrCodeMalformedState},
		{"trailing data", state("", "", "TB") + `{}`, errors.ErrCodeMalformedState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.data))
			if err == nil {
				t.Fatal("Deserialize() should fail")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestDeserialize_DefaultsDirection(t *testing.T) {
	s, err := Deserialize([]byte(`{"state":{"nodes":[],"edges":[],"hiddenNodeIds":[]},"version":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.LayoutDirection != roadmap.TopToBottom {
		t.Errorf("LayoutDirection = %q", s.LayoutDirection)
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestAdapter_SaveLoad(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemory()
	a := NewAdapter(b, "test", quietLogger())

	if _, ok := a.Load(ctx); ok {
		t.Fatal("Load on an empty backend should miss")
	}

	in := seedState()
	if err := a.Save(ctx, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	out, ok := a.Load(ctx)
	if !ok {
		t.Fatal("Load after Save should hit")
	}
	if len(out.Nodes) != len(in.Nodes) || !out.HiddenNodeIDs.Equal(in.HiddenNodeIDs) {
		t.Errorf("Load() = %d nodes, hidden %v", len(out.Nodes), out.HiddenNodeIDs.Sorted())
	}

	if err := a.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Load(ctx); ok {
		t.Error("Load after Clear should miss")
	}
}

func TestAdapter_LoadRejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemory()
	_ = b.Set(ctx, DefaultKey, []byte(`{"state":null,"version":1}`))

	a := &Adapter{Backend: b, Logger: quietLogger()}
	if _, ok := a.Load(ctx); ok {
		t.Error("Load should miss on a corrupt state")
	}
}

func TestAdapter_SaveClosedBackend(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemory()
	_ = b.Close()
	a := NewAdapter(b, "k", quietLogger())

	err := a.Save(ctx, seedState())
	if !errors.Is(err, errors.ErrCodeStorage) {
		t.Errorf("Save() = %v, want STORAGE_ERROR", err)
	}
}
