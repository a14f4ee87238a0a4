package report

import (
	"context"
	"errors"
)

// Writer persists report rows.
type Writer interface {
	Write(ctx context.Context, row Row) error
}

// MultiWriter writes every row to all writers and joins their errors.
type MultiWriter []Writer

// Write implements Writer.
func (m MultiWriter) Write(ctx context.Context, row Row) error {
	var errs []error

	for _, w := range m {
		if err := w.Write(ctx, row); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
