// Package loader reads row records from the supported data sources: JSONL
// files and SQLite databases.
package loader

import (
	"bufio"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/xiaoyu12139/treegrid/pkg/grid"
	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// maxLineSize bounds a single JSONL line. Rows are small; 1 MiB is generous.
const maxLineSize = 1 << 20

// LoadRows reads rows from a JSONL file, one row object per line. Blank
// lines are skipped. Rows are returned in file order; a file must list a
// parent before its children.
func LoadRows(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []model.Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row model.Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// SaveRows writes rows to a JSONL file, one row per line, in the given
// order. The write goes through a temp file and rename so a watcher never
// sees a half-written file.
func SaveRows(path string, rows []model.Row) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	w := bufio.NewWriter(f)
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("marshal row %s: %w", row.ID, err)
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// Populate appends rows to the store in slice order. The first error aborts
// and is returned with the offending row's ID; rows appended before the
// failure remain in the store.
func Populate(store *grid.Store, rows []model.Row) error {
	for _, row := range rows {
		if err := store.Append(row); err != nil {
			return fmt.Errorf("row %s: %w", row.ID, err)
		}
	}
	return nil
}
