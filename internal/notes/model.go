package notes

import (
	"errors"
	"fmt"

	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
)

// StorageKey names the key-value entry holding the serialized note mapping.
const StorageKey = "@notes"

var errMissingStorage = errors.New("key-value storage is required")

// ServiceError carries a dotted operation code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opStoreNew = "notes.store.new"
	opLoad     = "notes.load"
	opPersist  = "notes.persist"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// Note is one dated entry of the mapping.
type Note struct {
	Date calendar.DateKey `json:"date"`
	Text string           `json:"text"`
}
