package core

import "time"

// Store persists mapping runs and their outputs.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Run operations
	CreateRun() (*Run, error)
	GetRun(id string) (*Run, error)
	GetLatestRun() (*Run, error)
	CompleteRun(id string, status RunStatus, stats RunStats, errMsg string) error

	// Document operations
	SaveDocument(doc *Document) error
	GetDocument(recordID string) (*Document, error)
	ListDocuments() ([]*Document, error)

	// Index field operations
	SaveIndexFields(recordID string, fields []IndexField) error
	GetIndexFields(recordID string) ([]IndexField, error)

	// Record error operations
	RecordError(runID, recordID, errMsg string) error
	ListErrors(runID string) ([]*RecordError, error)
}

// RunStatus represents the status of a mapping run.
type RunStatus string

// Run status values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run is one pass of the engine over the published records.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Stats       RunStats   `json:"stats" yaml:"stats"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunStats counts the outcome of a run.
type RunStats struct {
	Total  int `json:"total" yaml:"total"`
	Mapped int `json:"mapped" yaml:"mapped"`
	Failed int `json:"failed" yaml:"failed"`
}

// Document is the stored IDF output of one record.
type Document struct {
	RecordID       string    `json:"record_id" yaml:"record_id"`
	RunID          string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	FileIdentifier string    `json:"file_identifier" yaml:"file_identifier"`
	IDF            string    `json:"idf" yaml:"idf"`
	MappedAt       time.Time `json:"mapped_at" yaml:"mapped_at"`
}

// IndexField is one field/value pair of an index document.
type IndexField struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// RecordError is a per-record failure captured during a run.
type RecordError struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	RecordID  string    `json:"record_id" yaml:"record_id"`
	Error     string    `json:"error" yaml:"error"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
