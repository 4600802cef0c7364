package helper

import (
	"fmt"
	"reflect"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/relloyd/snappipe/constants"
)

// GetStringFromInterface will convert interface{} value to a string.
// Times are formatted using the pipeline's ISO seconds format.
func GetStringFromInterface(input interface{}) (retval string, err error) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint8:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		retval = v.Format(constants.TimeFormatIsoSeconds)
	case []uint8:
		retval = string(v)
	case bool:
		retval = fmt.Sprintf("%v", v)
	case nil:
		retval = ""
	default:
		err = fmt.Errorf("unhandled type while fetching string from interface: type = %v; value = %v", reflect.TypeOf(input), input)
	}
	return
}

// JsonSafeValue converts a database value into something encoding/json can represent per the
// record contract: times become ISO strings, byte slices become strings and NULLs stay nil.
// An unrepresentable value is a serialization error for the run.
func JsonSafeValue(input interface{}) (interface{}, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v.Format(constants.TimeFormatIsoSeconds), nil
	case []uint8:
		return string(v), nil
	case int, int8, int16, int32, int64, uint, uint16, uint32, uint64, float32, float64, string, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("unrepresentable value of type %v: %v", reflect.TypeOf(input), input)
	}
}

// AtomBool is a bool updated atomically.
type AtomBool struct {
	flag int32
}

func (b *AtomBool) Set(value bool) {
	var i int32 = 0
	if value {
		i = 1
	}
	atomic.StoreInt32(&(b.flag), i)
}

func (b *AtomBool) Get() bool {
	return atomic.LoadInt32(&(b.flag)) != 0
}
