package shared

import (
	"fmt"
	"strings"

	"github.com/relloyd/snappipe/logger"
)

// NewMockConnectionWithMockTx returns a mock Connector whose transactions record every SQL
// statement (and its args) onto the returned channel as alternating strings, in the style
// required by component tests.
func NewMockConnectionWithMockTx(log logger.Logger, dbType string) (*MockConnection, chan string) {
	resultChan := make(chan string, 100)
	tx := &MockTx{log: log, recorded: resultChan}
	return &MockConnection{log: log, dbType: dbType, Tx: tx}, resultChan
}

type MockConnection struct {
	log      logger.Logger
	dbType   string
	Tx       *MockTx
	BeginErr error
	Closed   bool
}

func (c *MockConnection) Begin() (Transacter, error) {
	if c.BeginErr != nil {
		return nil, c.BeginErr
	}
	return c.Tx, nil
}

func (c *MockConnection) BeginReadOnly() (Transacter, error) {
	return c.Begin()
}

func (c *MockConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.Tx.Exec(query, args...)
}

func (c *MockConnection) Close() {
	c.Closed = true
}

func (c *MockConnection) GetType() string {
	return c.dbType
}

// MockTx records SQL and serves scripted query results.
// QueryRows entries are consumed in order, one per Query() call.
// ExecErrBySql and QueryErrBySql return a scripted error when the SQL contains the map key.
type MockTx struct {
	log           logger.Logger
	recorded      chan string
	QueryRows     []*MockRows
	ExecErrBySql  map[string]error
	QueryErrBySql map[string]error
	CommitErr     error
	Committed     bool
	RolledBack    bool
	queryIdx      int
}

func (t *MockTx) record(query string, args ...interface{}) {
	t.recorded <- query
	t.recorded <- fmt.Sprintf("%v", args)
}

func errForSql(m map[string]error, query string) error {
	for k, v := range m {
		if k != "" && strings.Contains(query, k) {
			return v
		}
	}
	return nil
}

func (t *MockTx) Exec(query string, args ...interface{}) (Result, error) {
	t.record(query, args...)
	if err := errForSql(t.ExecErrBySql, query); err != nil {
		return nil, err
	}
	return &MockResult{}, nil
}

func (t *MockTx) Query(query string, args ...interface{}) (Rows, error) {
	t.record(query, args...)
	if err := errForSql(t.QueryErrBySql, query); err != nil {
		return nil, err
	}
	if t.queryIdx >= len(t.QueryRows) { // if the script ran out of result sets...
		return &MockRows{}, nil // empty result set.
	}
	rows := t.QueryRows[t.queryIdx]
	t.queryIdx++
	return rows, nil
}

func (t *MockTx) Commit() error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback() error {
	t.RolledBack = true
	return nil
}

type MockResult struct{}

func (r *MockResult) LastInsertId() (int64, error) { return 0, nil }
func (r *MockResult) RowsAffected() (int64, error) { return 0, nil }

// NewMockRows builds a scripted result set.
func NewMockRows(cols []Column, data [][]interface{}) *MockRows {
	return &MockRows{Cols: cols, Data: data}
}

// MockRows serves scripted rows.
// Set ErrAfterRows > 0 with RowsErr to simulate a connection drop mid-stream: Next()
// returns false once that many rows have been served and Err() surfaces RowsErr.
type MockRows struct {
	Cols         []Column
	Data         [][]interface{}
	ErrAfterRows int
	RowsErr      error
	idx          int
	closed       bool
}

func (r *MockRows) Next() bool {
	if r.ErrAfterRows > 0 && r.idx >= r.ErrAfterRows {
		return false
	}
	return r.idx < len(r.Data)
}

func (r *MockRows) Scan(dest ...interface{}) error {
	row := r.Data[r.idx]
	for i := range dest {
		p, ok := dest[i].(*interface{})
		if !ok {
			return fmt.Errorf("mock rows expected *interface{} scan targets")
		}
		*p = row[i]
	}
	r.idx++
	return nil
}

func (r *MockRows) Columns() ([]Column, error) {
	return r.Cols, nil
}

func (r *MockRows) Err() error {
	if r.ErrAfterRows > 0 && r.idx >= r.ErrAfterRows {
		return r.RowsErr
	}
	return nil
}

func (r *MockRows) Close() error {
	r.closed = true
	return nil
}
