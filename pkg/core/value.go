package core

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// HasValue reports whether v carries a value worth mapping.
//
// A value is absent when it is nil (including typed nil pointers and invalid
// sql.Null* values), an empty string, an empty byte slice, or an object whose
// string form is empty. Everything else is present, numeric zero included.
func HasValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case []byte:
		return len(val) > 0
	case driver.Valuer:
		if isNilPointer(v) {
			return false
		}
		inner, err := val.Value()
		if err != nil || inner == nil {
			return false
		}
		if _, ok := inner.(driver.Valuer); ok {
			return true
		}
		return HasValue(inner)
	case fmt.Stringer:
		if isNilPointer(v) {
			return false
		}
		return val.String() != ""
	}
	return !isNilPointer(v)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ToString renders a scalar catalog value the way it appears in mapped output.
// Absent values render as the empty string.
func ToString(v any) string {
	if !HasValue(v) {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02T15:04:05")
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return ""
		}
		return ToString(inner)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// SQLKey normalizes a key value for use as a query argument. Numeric keys
// become int64 so typed drivers bind them against integer columns; anything
// else is passed as its trimmed string form.
func SQLKey(v any) any {
	s := strings.TrimSpace(ToString(v))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
