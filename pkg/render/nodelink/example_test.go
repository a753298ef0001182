package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/render/nodelink"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

func ExampleToDOT() {
	t := workspace.New()
	ideas, _ := t.Create(workspace.RootID, workspace.KindCanvas, geom.Point{})
	note, _ := t.Create(ideas.ID, workspace.KindText, geom.Point{})
	_ = t.Rename(note.ID, "Shopping list")

	dot := nodelink.ToDOT(t, nodelink.Options{})

	fmt.Println(strings.Contains(dot, "Shopping list"))
	// Output:
	// true
}
