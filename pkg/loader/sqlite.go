package loader

import (
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/xiaoyu12139/treegrid/pkg/model"
)

// rowsTableDDL is the schema LoadRowsFromDB expects. The fields column holds
// the JSON-encoded field array; position fixes stored order.
const rowsTableDDL = `
CREATE TABLE IF NOT EXISTS rows (
	position  INTEGER PRIMARY KEY,
	id        TEXT NOT NULL UNIQUE,
	kind      TEXT NOT NULL,
	parent_id TEXT NOT NULL DEFAULT '',
	fields    TEXT NOT NULL
)`

// LoadRowsFromDB reads all rows from a SQLite database in stored order.
func LoadRowsFromDB(path string) ([]model.Row, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	rs, err := db.Query(`SELECT id, kind, parent_id, fields FROM rows ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query rows from %s: %w", path, err)
	}
	defer rs.Close()

	var rows []model.Row
	for rs.Next() {
		var row model.Row
		var kind, fields string
		if err := rs.Scan(&row.ID, &kind, &row.ParentID, &fields); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row.Kind = model.RowKind(kind)
		if err := json.Unmarshal([]byte(fields), &row.Fields); err != nil {
			return nil, fmt.Errorf("row %s fields: %w", row.ID, err)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rows, nil
}

// SaveRowsToDB writes rows to a SQLite database, replacing any existing
// rows table. Used by tests and by the demo generator's --db output.
func SaveRowsToDB(path string, rows []model.Row) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(`DROP TABLE IF EXISTS rows`); err != nil {
		return fmt.Errorf("drop rows table: %w", err)
	}
	if _, err := db.Exec(rowsTableDDL); err != nil {
		return fmt.Errorf("create rows table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO rows (position, id, kind, parent_id, fields) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		fields, err := json.Marshal(row.Fields)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal row %s: %w", row.ID, err)
		}
		if _, err := stmt.Exec(i, row.ID, string(row.Kind), row.ParentID, string(fields)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert row %s: %w", row.ID, err)
		}
	}
	return tx.Commit()
}
