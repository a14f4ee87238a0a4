// Package csvreport appends report rows to a CSV file, writing the header only when the file is new.
package csvreport

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AntonStoeckl/concurrent-banking-go/report"
)

// DefaultPath is where reports go unless configured otherwise.
const DefaultPath = "reports/sim_results.csv"

// Writer appends rows to one CSV file. It is safe for concurrent use within a process.
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

// Write appends row, preceded by the header if the file is empty.
func (w *Writer) Write(_ context.Context, row report.Row) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening csv report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing csv report: %w", closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("inspecting csv report: %w", err)
	}

	cw := csv.NewWriter(f)

	if info.Size() == 0 {
		if err = cw.Write(report.Header()); err != nil {
			return fmt.Errorf("writing csv header: %w", err)
		}
	}

	if err = cw.Write(row.Record()); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}

	cw.Flush()

	return cw.Error()
}

var _ report.Writer = (*Writer)(nil)
