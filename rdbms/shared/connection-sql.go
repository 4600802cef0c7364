package shared

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// SqlConnection is a wrapper around Go native sql.DB implementing Connector.
type SqlConnection struct {
	DbSql  *sql.DB
	DbType string
}

func (c *SqlConnection) Begin() (Transacter, error) {
	if c.DbSql == nil {
		return nil, errors.New("SqlConnection was not configured correctly: DbSql is missing")
	}
	tx, err := c.DbSql.Begin()
	return &SqlTx{tx: tx}, err
}

// BeginReadOnly starts a read-only transaction so every table dump in a run observes
// the same source snapshot.
func (c *SqlConnection) BeginReadOnly() (Transacter, error) {
	if c.DbSql == nil {
		return nil, errors.New("SqlConnection was not configured correctly: DbSql is missing")
	}
	tx, err := c.DbSql.BeginTx(context.Background(), &sql.TxOptions{ReadOnly: true})
	return &SqlTx{tx: tx}, err
}

func (c *SqlConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.DbSql.ExecContext(context.Background(), query, args...)
}

func (c *SqlConnection) Close() {
	_ = c.DbSql.Close()
}

func (c *SqlConnection) GetType() string {
	return c.DbType
}

// Transacter:

type SqlTx struct {
	tx *sql.Tx
}

func (t *SqlTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.tx.ExecContext(context.Background(), query, args...)
}

func (t *SqlTx) Query(query string, args ...interface{}) (Rows, error) {
	r, err := t.tx.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: r}, nil
}

func (t *SqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *SqlTx) Rollback() error {
	return t.tx.Rollback()
}

// Rows:

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

func (r *sqlRows) Columns() ([]Column, error) {
	colTypes, err := r.rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(colTypes))
	for idx, ct := range colTypes {
		cols[idx] = Column{Name: ct.Name(), DatabaseType: ct.DatabaseTypeName()}
	}
	return cols, nil
}

func (r *sqlRows) Err() error {
	return r.rows.Err()
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}
