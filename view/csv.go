package view

import (
	"bytes"
	"encoding/csv"
)

// CSV is the parsed view over a CSV document. The first row is the
// header.
type CSV struct {
	header []string
	rows   [][]string
}

func ParseCSV(body []byte) (*CSV, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	v := &CSV{}
	if len(records) > 0 {
		v.header = records[0]
		v.rows = records[1:]
	}
	return v, nil
}

func (v *CSV) Kind() Kind {
	return KindCSV
}

func (v *CSV) Header() []string {
	return v.header
}

// Rows returns each data row keyed by header column. Short rows omit
// the missing columns.
func (v *CSV) Rows() []map[string]string {
	out := make([]map[string]string, 0, len(v.rows))
	for _, row := range v.rows {
		m := make(map[string]string, len(v.header))
		for i, col := range v.header {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}
