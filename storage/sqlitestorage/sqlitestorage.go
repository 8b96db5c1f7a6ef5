// Package sqlitestorage batches records into a sqlite table, creating
// the table lazily from the first record's fields.
package sqlitestorage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/storage"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

type Sink struct {
	mu      sync.Mutex
	db      *sql.DB
	columns []string
	buffer  []page.Record
	options
}

func New(opts ...Option) (*Sink, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", options.path)
	if err != nil {
		return nil, err
	}
	return &Sink{db: db, options: options}, nil
}

func (s *Sink) Emit(rec page.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.columns == nil {
		if err := s.createTable(rec); err != nil {
			return err
		}
	}
	s.buffer = append(s.buffer, rec)
	if len(s.buffer) >= s.batchCount {
		return s.flush()
	}
	return nil
}

func (s *Sink) Finalize(sum storage.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flush(); err != nil {
		return err
	}
	s.logger.Info("finalized sqlite output",
		zap.String("path", s.path),
		zap.String("table", s.table),
		zap.Int64("records", sum.Emitted))
	return s.db.Close()
}

// Column set is fixed by the first record; later records drop unknown
// fields and leave missing ones empty.
func (s *Sink) createTable(rec page.Record) error {
	columns := make([]string, 0, len(rec))
	for k := range rec {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, %s)",
		quoteIdent(s.table), strings.Join(defs, ", "))
	if _, err := s.db.Exec(stmt); err != nil {
		return err
	}
	s.columns = columns
	return nil
}

func (s *Sink) flush() error {
	if len(s.buffer) == 0 {
		return nil
	}
	defer func() {
		s.buffer = s.buffer[:0]
	}()

	quoted := make([]string, len(s.columns))
	holes := make([]string, len(s.columns))
	for i, c := range s.columns {
		quoted[i] = quoteIdent(c)
		holes[i] = "?"
	}
	row := "(" + strings.Join(holes, ", ") + ")"

	rows := make([]string, len(s.buffer))
	args := make([]any, 0, len(s.buffer)*len(s.columns))
	for i, rec := range s.buffer {
		rows[i] = row
		for _, c := range s.columns {
			args = append(args, columnValue(rec[c]))
		}
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(s.table), strings.Join(quoted, ", "), strings.Join(rows, ", "))
	_, err := s.db.Exec(stmt, args...)
	return err
}

func columnValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		j, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(j)
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

type options struct {
	path       string
	table      string
	batchCount int
	logger     *zap.Logger
}

var defaultOptions = options{
	table:      "records",
	batchCount: 64,
	logger:     zap.NewNop(),
}

type Option func(*options)

func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

func WithTable(table string) Option {
	return func(o *options) {
		o.table = table
	}
}

func WithBatchCount(n int) Option {
	return func(o *options) {
		o.batchCount = n
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
