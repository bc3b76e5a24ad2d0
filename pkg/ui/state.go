package ui

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/xiaoyu12139/treegrid/pkg/grid"
)

// GridState is the persistent expand/collapse state, saved to
// .treegrid/grid-state.json so a session picks up where the last one left
// off.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "parent_001": true
//	  }
//	}
//
// Only explicitly expanded parents are stored; everything else starts
// collapsed, matching a fresh store's empty expansion set. A corrupted or
// missing file silently falls back to defaults.
type GridState struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
}

// GridStateVersion is the current schema version for state persistence.
const GridStateVersion = 1

const gridStateFileName = "grid-state.json"

// GridStatePath returns the state file path for a state directory.
func GridStatePath(stateDir string) string {
	return filepath.Join(stateDir, gridStateFileName)
}

// SaveGridState persists the store's expansion set. Errors are logged but
// never interrupt the user.
func SaveGridState(stateDir string, store *grid.Store) {
	if stateDir == "" {
		return
	}
	state := GridState{
		Version:  GridStateVersion,
		Expanded: make(map[string]bool),
	}
	for _, id := range store.Expanded() {
		state.Expanded[id] = true
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("warning: failed to marshal grid state: %v", err)
		return
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		log.Printf("warning: failed to create state directory %s: %v", stateDir, err)
		return
	}
	path := GridStatePath(stateDir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("warning: failed to write grid state to %s: %v", path, err)
	}
}

// LoadGridState applies persisted expansion state to the store. IDs that no
// longer exist or are no longer parents are stale and ignored.
func LoadGridState(stateDir string, store *grid.Store) {
	if stateDir == "" {
		return
	}
	data, err := os.ReadFile(GridStatePath(stateDir))
	if err != nil {
		// First run; use defaults.
		return
	}
	var state GridState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("warning: invalid grid state file, using defaults: %v", err)
		return
	}
	for id, expanded := range state.Expanded {
		if !expanded {
			continue
		}
		if err := store.SetExpanded(id, true); err != nil {
			// Stale ID; ignore.
			continue
		}
	}
}
