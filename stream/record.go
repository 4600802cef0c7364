package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	h "github.com/relloyd/snappipe/helper"
)

// NewRecord creates a new Record and returns it by value as we expect these records to go over
// channels by value too. Apparently passing pointers to a channel is slower than by value, but I wonder if this
// is true when maps are pointers anyway.
// https://stackoverflow.com/questions/41178729/why-passing-pointers-to-channel-is-slower
func NewRecord() Record {
	return Record{
		data: om.NewOrderedMap(),
	}
}

func NewNilRecord() Record {
	return Record{}
}

// Record is used to communicate data between components.
// Field order is significant: records serialize with snapshot_date first followed by the
// source columns in cursor-reported order, so the data map preserves insertion order.
type Record struct {
	data *om.OrderedMap
}

func (sr Record) RecordIsNil() bool {
	return sr.data == nil
}

func (sr Record) SetData(name string, value interface{}) {
	sr.data.Set(name, value)
}

func (sr Record) GetData(name string) interface{} {
	val, ok := sr.data.Get(name)
	if !ok {
		panic(fmt.Sprintf("Invalid key name %q supplied while trying to fetch value from record", name))
	}
	return val
}

func (sr Record) HasData(name string) bool {
	_, ok := sr.data.Get(name)
	return ok
}

func (sr Record) GetDataLen() int {
	return sr.data.Len()
}

// GetDataMapKeys returns the record's field names in insertion order.
func (sr Record) GetDataMapKeys() []string {
	retval := make([]string, 0, sr.data.Len())
	iter := sr.data.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Key.(string))
	}
	return retval
}

// GetDataAsString converts the value of field name to a string.
func (sr Record) GetDataAsString(name string) (string, error) {
	v, ok := sr.data.Get(name)
	if !ok {
		return "", errors.Errorf("field %q does not exist in the input stream", name)
	}
	return h.GetStringFromInterface(v)
}

// CopyTo appends this record's fields to target t preserving field order.
func (sr Record) CopyTo(t Record) {
	iter := sr.data.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		t.SetData(kv.Key.(string), kv.Value)
	}
}

// GetJson returns the record as one self-describing JSON object preserving field order.
// NULL database values come out as JSON nulls; times as ISO strings (see helper.JsonSafeValue).
// The result carries no trailing newline; writers own the line termination.
func (sr Record) GetJson() (string, error) {
	out := make([]string, 0, sr.data.Len())
	iter := sr.data.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		v, err := h.JsonSafeValue(kv.Value)
		if err != nil {
			return "", errors.Wrapf(err, "field %q", kv.Key)
		}
		jsonValue, err := json.Marshal(v)
		if err != nil {
			return "", errors.Wrapf(err, "error marshalling the value of field %q to JSON", kv.Key)
		}
		out = append(out, fmt.Sprintf("%q: %s", kv.Key, string(jsonValue)))
	}
	return fmt.Sprintf("{%v}", strings.Join(out, ", ")), nil
}
