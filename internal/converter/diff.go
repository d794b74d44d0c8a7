package converter

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff returns a unified diff turning want into got, or "" when they match.
func Diff(wantName, gotName, want, got string) string {
	if want == got {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(wantName), want, got)
	return fmt.Sprint(gotextdiff.ToUnified(wantName, gotName, want, edits))
}
