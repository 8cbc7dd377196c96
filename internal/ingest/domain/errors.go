package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalTransition = errors.New("illegal stage transition")
	ErrResetNotConfirmed = errors.New("clearing existing data requires an explicit reset confirmation")
	ErrDuplicateInvoice  = errors.New("duplicate invoice number")
	ErrNotAnObject       = errors.New("record is not an object")
	ErrRecordPanicked    = errors.New("record handling panicked")
)

// RecordError describes one source record, or one of its line items or payments, that
// could not be loaded.
type RecordError struct {
	Index    int    `json:"index"`
	SourceID string `json:"source_id,omitempty"`
	Stage    Stage  `json:"stage"`
	Entity   Entity `json:"entity"`
	Err      error  `json:"-"`
}

func (e RecordError) Error() string {
	id := e.SourceID
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("record %d (%s) %s %s: %v", e.Index, id, e.Stage, e.Entity, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}
