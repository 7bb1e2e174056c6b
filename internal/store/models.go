package store

import "time"

type BackendKind string

const (
	BackendSQLite   BackendKind = "sqlite"
	BackendBadger   BackendKind = "badger"
	BackendMemory   BackendKind = "memory"
	BackendDisabled BackendKind = "disabled"
)

type Entry struct {
	Key       string
	Value     []byte    // JSON-encoded
	UpdatedAt time.Time // Zero when the backend does not track it
}
