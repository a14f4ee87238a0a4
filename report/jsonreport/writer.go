// Package jsonreport appends report rows to a JSON-lines file and reads them back.
package jsonreport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/concurrent-banking-go/report"
)

// DefaultPath is where reports go unless configured otherwise.
const DefaultPath = "reports/sim_results.jsonl"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Writer appends one JSON document per row.
type Writer struct {
	path string
	mu   sync.Mutex
}

// New returns a Writer for path. The file and its directory are created on the first write.
func New(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the target file.
func (w *Writer) Path() string {
	return w.path
}

// Write appends row as a single line.
func (w *Writer) Write(_ context.Context, row report.Row) (err error) {
	line, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encoding report row: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err = os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening json report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing json report: %w", closeErr)
		}
	}()

	if _, err = f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}

	return nil
}

// ReadAll decodes every row stored at path, in file order.
func ReadAll(path string) ([]report.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening json report: %w", err)
	}
	defer f.Close()

	decoder := json.NewDecoder(bufio.NewReader(f))
	rows := make([]report.Row, 0)

	for {
		var row report.Row

		err = decoder.Decode(&row)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding json report line %d: %w", len(rows)+1, err)
		}

		rows = append(rows, row)
	}
}

var _ report.Writer = (*Writer)(nil)
