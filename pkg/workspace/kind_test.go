package workspace

import (
	"strings"
	"testing"
)

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindRoot, KindCanvas, KindText} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(b); err != nil || got != k {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, got, err)
		}
	}
	if _, err := Kind(9).MarshalText(); err == nil {
		t.Error("MarshalText(9) should fail")
	}
	if _, err := ParseKind("sticker"); err == nil {
		t.Error("ParseKind(sticker) should fail")
	}
}

func TestKindSpecs(t *testing.T) {
	if KindText.Spec().Expand != ExpandDocument {
		t.Error("text nodes should expand into a document")
	}
	if KindCanvas.Spec().Expand != ExpandCanvas {
		t.Error("canvas nodes should expand into a canvas")
	}
	for _, k := range Creatable() {
		if k == KindRoot {
			t.Error("root must not be creatable")
		}
	}
}

func TestPreviewEscapesAndIsPure(t *testing.T) {
	n := &Node{Kind: KindText, Name: "<b>Plan</b>", Content: "a & b"}
	got := Preview(n)
	if !strings.Contains(got, "&lt;b&gt;Plan&lt;/b&gt;") || !strings.Contains(got, "a &amp; b") {
		t.Errorf("Preview() = %q, want escaped markup", got)
	}
	if Preview(n) != got {
		t.Error("Preview should be deterministic")
	}

	folder := &Node{Kind: KindCanvas, Name: "F", children: []string{"x", "y"}}
	if !strings.Contains(Preview(folder), `<span class="count">2</span>`) {
		t.Errorf("canvas preview = %q", Preview(folder))
	}
}
