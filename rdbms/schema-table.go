package rdbms

import (
	"fmt"
	"strings"
)

type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	} else {
		return SchemaTable{schema + "." + table}
	}
}

func (st SchemaTable) String() string {
	return st.SchemaTable
}

func (st *SchemaTable) GetSchema() string {
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 { // if we have just a table...
		return ""
	}
	return st.SchemaTable[:i]
}

func (st *SchemaTable) GetTable() string {
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 { // if we have just a table...
		return st.SchemaTable
	}
	return st.SchemaTable[i+1:]
}

// AsQuoted returns the schema-qualified name with each part double-quoted,
// e.g. "snapshots"."users", as required by the warehouse COPY statement.
func (st *SchemaTable) AsQuoted() string {
	if schema := st.GetSchema(); schema != "" {
		return fmt.Sprintf("%q.%q", schema, st.GetTable())
	}
	return fmt.Sprintf("%q", st.GetTable())
}
