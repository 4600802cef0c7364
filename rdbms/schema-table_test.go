package rdbms

import "testing"

func TestSchemaTable(t *testing.T) {
	st := NewSchemaTable("snapshots", "projects")
	if st.GetSchema() != "snapshots" {
		t.Fatal("unexpected schema: ", st.GetSchema())
	}
	if st.GetTable() != "projects" {
		t.Fatal("unexpected table: ", st.GetTable())
	}
	if st.AsQuoted() != `"snapshots"."projects"` {
		t.Fatal("unexpected quoted name: ", st.AsQuoted())
	}
}

func TestSchemaTableWithoutSchema(t *testing.T) {
	st := NewSchemaTable("", "users")
	if st.GetSchema() != "" {
		t.Fatal("expected empty schema, got: ", st.GetSchema())
	}
	if st.GetTable() != "users" {
		t.Fatal("unexpected table: ", st.GetTable())
	}
	if st.AsQuoted() != `"users"` {
		t.Fatal("unexpected quoted name: ", st.AsQuoted())
	}
}
