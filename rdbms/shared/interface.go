package shared

// Connector abstracts all access to Go SQL functionality so pipeline components and tests
// can swap in mock connections.
type Connector interface {
	Begin() (Transacter, error)
	BeginReadOnly() (Transacter, error)
	Exec(query string, args ...interface{}) (Result, error)
	Close()
	GetType() string
}

// Transacter is held open by the orchestrator: the source read transaction spans every dump
// in a run and the warehouse transaction commits once after all loads succeed.
type Transacter interface {
	Exec(query string, args ...interface{}) (Result, error)
	Query(query string, args ...interface{}) (Rows, error)
	Commit() error
	Rollback() error
}

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Rows abstracts the Go SQL result set so mocks can supply scripted rows with column metadata.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Columns() ([]Column, error)
	Err() error
	Close() error
}

// Column carries the cursor-reported metadata the serializer needs.
type Column struct {
	Name         string
	DatabaseType string // driver DatabaseTypeName e.g. DATE, TIMESTAMP, INT4.
}
