package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// batchCap bounds how many rows one batch holds. Results are drained
// eagerly, so this only shapes the in-memory layout.
const batchCap = 1024

type cellKind int

const (
	kindNull cellKind = iota
	kindInt
	kindFloat
	kindText
	kindBool
	kindBlob
	kindInvalid
)

// cell is one typed value. Exactly one of the payload fields is
// meaningful, selected by kind.
type cell struct {
	kind cellKind
	i    int64
	f    float64
	s    string
	b    bool
	raw  []byte
}

type column struct {
	name string
	typ  string // driver-declared type, informational
}

// batch is one group of rows sharing the result's schema.
type batch struct {
	schema []column
	rows   [][]cell
}

// resultSet is the fully drained output of one query. Replaced
// wholesale on every successful execution, never mutated in place.
type resultSet struct {
	batches []batch
}

func (rs *resultSet) empty() bool {
	return rs == nil || len(rs.batches) == 0
}

func (rs *resultSet) schema() []column {
	if rs.empty() {
		return nil
	}
	return rs.batches[0].schema
}

func (rs *resultSet) rowCount() int {
	n := 0
	if rs == nil {
		return 0
	}
	for _, b := range rs.batches {
		n += len(b.rows)
	}
	return n
}

// executor owns the embedded engine connection for the whole session.
type executor struct {
	db *sql.DB
}

func openExecutor() (*executor, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// database/sql pools by default; this session is one in-memory
	// connection, and a second one would see an empty database.
	db.SetMaxOpenConns(1)
	return &executor{db: db}, nil
}

func (e *executor) close() error {
	return e.db.Close()
}

// execute prepares and runs sqlText, draining every row before
// returning. On any failure the previous result set is untouched.
func (e *executor) execute(ctx context.Context, sqlText string) (*resultSet, error) {
	stmt, err := e.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return drainRows(rows)
}

func drainRows(rows *sql.Rows) (*resultSet, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	schema := make([]column, len(names))
	for i, name := range names {
		schema[i] = column{name: name, typ: types[i].DatabaseTypeName()}
	}

	rs := &resultSet{}
	cur := batch{schema: schema}
	for rows.Next() {
		ptrs := make([]any, len(names))
		for i := range ptrs {
			ptrs[i] = new(any)
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]cell, len(names))
		for i := range names {
			row[i] = toCell(*(ptrs[i].(*any)))
		}
		cur.rows = append(cur.rows, row)
		if len(cur.rows) == batchCap {
			rs.batches = append(rs.batches, cur)
			cur = batch{schema: schema}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("drain: %w", err)
	}
	if len(cur.rows) > 0 {
		rs.batches = append(rs.batches, cur)
	}
	return rs, nil
}

// toCell maps the sqlite driver's scalar set onto the tagged cell
// variants. The driver hands back int64, float64, string, []byte,
// bool or nil.
func toCell(v any) cell {
	switch v := v.(type) {
	case nil:
		return cell{kind: kindNull}
	case int64:
		return cell{kind: kindInt, i: v}
	case float64:
		return cell{kind: kindFloat, f: v}
	case string:
		return cell{kind: kindText, s: v}
	case bool:
		return cell{kind: kindBool, b: v}
	case []byte:
		return cell{kind: kindBlob, raw: v}
	default:
		// Unreachable with this driver. A future driver swap must
		// fail loudly at format time, not print garbage.
		return cell{kind: kindInvalid, s: fmt.Sprintf("%T", v)}
	}
}
