package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Expected outcomes, not faults. Callers match them with errors.Is.
var (
	ErrNotFound     = errors.New("catalog: no book matches")
	ErrNotAvailable = errors.New("catalog: book is not available to borrow")
	ErrNotBorrowed  = errors.New("catalog: book has not been borrowed")
	ErrEmpty        = errors.New("catalog: no available books")

	// ErrInconsistentShapes rejects restored trees that disagree.
	ErrInconsistentShapes = errors.New("catalog: author and isbn trees hold different books")
)

// MalformedRecordError describes one skipped bulk-load record.
type MalformedRecordError struct {
	Line   int
	Fields []string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d (%s): %q",
		e.Line, e.Reason, strings.Join(e.Fields, "\t"))
}
