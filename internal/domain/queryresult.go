package domain

import (
	"bytes"
	"encoding/json"
)

// Row is one result row. Columns keep the order the engine returned them in.
type Row struct {
	Columns []string
	Values  []any
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// QueryResult is the single result of running a user query: either the selected rows
// in query order, or the number of rows a mutation affected.
type QueryResult struct {
	Rows         []Row
	AffectedRows *int64
}

func NewRowsResult(rows []Row) *QueryResult {
	if rows == nil {
		rows = []Row{}
	}
	return &QueryResult{Rows: rows}
}

func NewMutationResult(affected int64) *QueryResult {
	return &QueryResult{AffectedRows: &affected}
}

func (q QueryResult) MarshalJSON() ([]byte, error) {
	if q.AffectedRows != nil {
		return json.Marshal(map[string]int64{"affected_rows": *q.AffectedRows})
	}
	if q.Rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q.Rows)
}
