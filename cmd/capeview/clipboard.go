package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/milk9111/cape/cape"
	"golang.design/x/clipboard"
)

// snapshotCopier writes position snapshots to the system clipboard. It is a
// no-op when the platform clipboard is unavailable.
type snapshotCopier struct {
	ok bool
}

func newSnapshotCopier() *snapshotCopier {
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard: unavailable, snapshot copy disabled: %v", err)
		return &snapshotCopier{}
	}
	return &snapshotCopier{ok: true}
}

func (c *snapshotCopier) Copy(name string, tick int, positions []cape.Vec3) {
	if !c.ok {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(formatSnapshot(name, tick, positions)))
	log.Printf("Clipboard: copied %d positions at tick %d", len(positions), tick)
}

// formatSnapshot renders positions in the same column layout as capesim's
// CSV so a pasted snapshot can be appended to a recording.
func formatSnapshot(name string, tick int, positions []cape.Vec3) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\ntick,index,x,y,z\n", name)
	for i, p := range positions {
		fmt.Fprintf(&b, "%d,%d,%g,%g,%g\n", tick, i, p.X(), p.Y(), p.Z())
	}
	return b.String()
}
