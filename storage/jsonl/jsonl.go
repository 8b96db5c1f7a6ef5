// Package jsonl writes records as one JSON object per line, streamed
// as they arrive, with a summary file written at finalize.
package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/storage"
	"go.uber.org/zap"
)

type Sink struct {
	mu    sync.Mutex
	f     *os.File
	enc   *json.Encoder
	dir   string
	count int
	options
}

func New(dir string, opts ...Option) (*Sink, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(dir, options.fileName))
	if err != nil {
		return nil, err
	}
	return &Sink{f: f, enc: json.NewEncoder(f), dir: dir, options: options}, nil
}

// Dir reports where output is written.
func (s *Sink) Dir() string {
	return s.dir
}

func (s *Sink) Emit(rec page.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return err
	}
	s.count++
	return nil
}

func (s *Sink) Finalize(sum storage.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Close(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, "summary.json"), b, 0o644); err != nil {
		return err
	}
	s.logger.Info("finalized jsonl output",
		zap.String("dir", s.dir),
		zap.Int("records", s.count))
	return nil
}

// ScrapeDir picks a fresh auto-numbered output directory under base,
// laid out as base/YYYY-MM-DD/NNN.
func ScrapeDir(base string) (string, error) {
	today := time.Now().Format("2006-01-02")
	for n := 1; n < 1000; n++ {
		dir := filepath.Join(base, today, fmt.Sprintf("%03d", n))
		err := os.MkdirAll(filepath.Dir(dir), 0o755)
		if err != nil {
			return "", err
		}
		err = os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free scrape directory under %s/%s", base, today)
}

type options struct {
	fileName string
	logger   *zap.Logger
}

var defaultOptions = options{
	fileName: "records.jsonl",
	logger:   zap.NewNop(),
}

type Option func(*options)

func WithFileName(name string) Option {
	return func(o *options) {
		o.fileName = name
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
