package rdbms

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/relloyd/snappipe/constants"
	"github.com/relloyd/snappipe/logger"
	"github.com/relloyd/snappipe/rdbms/shared"
	_ "github.com/snowflakedb/gosnowflake"
	"github.com/xo/dburl"
)

const (
	snowflakeScheme = "snowflake://"
	redshiftScheme  = "redshift://"
)

// OpenDbConnection opens a database connection for the supplied DSN URL.
// postgres:// and redshift:// URLs use the pq driver (Redshift speaks the Postgres wire
// protocol); snowflake:// URLs use gosnowflake with the scheme stripped since that
// driver expects a bare user:pass@account/db DSN.
func OpenDbConnection(log logger.Logger, dsn string) (shared.Connector, error) {
	if strings.HasPrefix(dsn, snowflakeScheme) { // if the warehouse is Snowflake...
		return newConnection(log, "snowflake", strings.TrimPrefix(dsn, snowflakeScheme), constants.ConnectionTypeSnowflake)
	}
	dbType := constants.ConnectionTypePostgres
	if strings.HasPrefix(dsn, redshiftScheme) { // if the warehouse is Redshift...
		dbType = constants.ConnectionTypeRedshift
		dsn = "postgres://" + strings.TrimPrefix(dsn, redshiftScheme)
	}
	u, err := dburl.Parse(dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %q: %w", dsn, err)
	}
	if u.Driver != "postgres" { // else we have an unsupported database...
		return nil, fmt.Errorf("unsupported database type, %q", u.OriginalScheme)
	}
	return newConnection(log, u.Driver, u.DSN, dbType)
}

func newConnection(log logger.Logger, driver string, dsn string, dbType string) (shared.Connector, error) {
	log.Debug("opening connection type ", dbType) // don't log the DSN, it carries credentials.
	conn := &shared.SqlConnection{DbType: dbType}
	var err error
	conn.DbSql, err = sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// Test the connection.
	err = conn.DbSql.Ping()
	if err != nil {
		return nil, err
	}
	log.Info("successful connection to ", dbType, " database")
	return conn, nil
}
