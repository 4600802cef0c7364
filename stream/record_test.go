package stream

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRecordFieldOrder(t *testing.T) {
	rec := NewRecord()
	rec.SetData("snapshot_date", "2023-03-05")
	rec.SetData("id", 1)
	rec.SetData("name", "bob")
	keys := rec.GetDataMapKeys()
	expected := []string{"snapshot_date", "id", "name"}
	if !reflect.DeepEqual(keys, expected) {
		t.Fatal("expected keys ", expected, " got ", keys)
	}
	line, err := rec.GetJson()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(line, `{"snapshot_date": `) {
		t.Fatal("snapshot_date must be the first serialized field, got: ", line)
	}
}

func TestRecordJsonRoundTrip(t *testing.T) {
	rec := NewRecord()
	rec.SetData("snapshot_date", "2023-03-05")
	rec.SetData("id", int64(7))
	rec.SetData("created_at", time.Date(2023, 3, 4, 10, 30, 0, 0, time.UTC))
	rec.SetData("deleted_at", nil)
	rec.SetData("name", "proj-x")
	line, err := rec.GetJson()
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(line), &parsed); err != nil {
		t.Fatal("record is not independently parseable: ", err)
	}
	expected := map[string]interface{}{
		"snapshot_date": "2023-03-05",
		"id":            float64(7),
		"created_at":    "2023-03-04T10:30:00",
		"deleted_at":    nil,
		"name":          "proj-x",
	}
	if !reflect.DeepEqual(parsed, expected) {
		t.Fatal("expected ", expected, " got ", parsed)
	}
}

func TestRecordCopyToPreservesOrder(t *testing.T) {
	src := NewRecord()
	src.SetData("id", 1)
	src.SetData("name", "a")
	tgt := NewRecord()
	tgt.SetData("snapshot_date", "2023-03-05")
	src.CopyTo(tgt)
	keys := tgt.GetDataMapKeys()
	expected := []string{"snapshot_date", "id", "name"}
	if !reflect.DeepEqual(keys, expected) {
		t.Fatal("expected keys ", expected, " got ", keys)
	}
}

func TestRecordGetJsonUnrepresentable(t *testing.T) {
	rec := NewRecord()
	rec.SetData("bad", struct{ X int }{1})
	if _, err := rec.GetJson(); err == nil {
		t.Fatal("expected serialization error")
	}
}
