package main

import (
	"bytes"

	"github.com/metcalfc/flip/internal/state"
	"github.com/metcalfc/flip/internal/viewer"
)

// documentHash identifies the loaded document for saved positions. It is
// empty when nothing readable is loaded.
func documentHash(v *viewer.Viewer) string {
	doc := v.Document()
	if doc == nil || v.Book().Failed() {
		return ""
	}
	hash, err := state.ComputeHash(bytes.NewReader(doc.Data))
	if err != nil {
		return ""
	}
	return hash
}

// resumePosition jumps to the page saved for hash, or forgets it when fresh
// is set.
func resumePosition(store *state.StateStore, v *viewer.Viewer, hash string, fresh bool) {
	if store == nil || hash == "" {
		return
	}
	if fresh {
		store.Clear(hash)
		return
	}
	if pos := store.GetPosition(hash); pos > 1 {
		v.GoTo(pos, "")
	}
}
