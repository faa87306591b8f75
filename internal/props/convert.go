package props

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// timeLayouts are tried in order when converting to time.Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// As resolves key and converts it to T. The boolean is false when the key is
// undefined, in which case no conversion is attempted.
func As[T any](r *Resolver, key string) (T, bool, error) {
	var zero T
	value, found, err := r.Get(key)
	if err != nil || !found {
		return zero, false, err
	}
	converted, err := convert[T](value)
	if err != nil {
		return zero, false, fmt.Errorf("property %s: %w", key, err)
	}
	return converted, true, nil
}

// AsOr is As with a fallback for undefined keys. Conversion errors are still
// reported.
func AsOr[T any](r *Resolver, key string, def T) (T, error) {
	value, found, err := As[T](r, key)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return value, nil
}

// RequiredAs is As that fails with pgscan.ErrPropertyNotFound for undefined
// keys.
func RequiredAs[T any](r *Resolver, key string) (T, error) {
	value, found, err := As[T](r, key)
	if err != nil {
		return value, err
	}
	if !found {
		return value, fmt.Errorf("%w: %s", pgscan.ErrPropertyNotFound, key)
	}
	return value, nil
}

func convert[T any](s string) (T, error) {
	var out T
	var err error

	switch p := any(&out).(type) {
	case *string:
		*p = s
	case *bool:
		*p, err = strconv.ParseBool(s)
	case *int:
		var v int64
		v, err = strconv.ParseInt(s, 10, strconv.IntSize)
		*p = int(v)
	case *int8:
		var v int64
		v, err = strconv.ParseInt(s, 10, 8)
		*p = int8(v)
	case *int16:
		var v int64
		v, err = strconv.ParseInt(s, 10, 16)
		*p = int16(v)
	case *int32:
		var v int64
		v, err = strconv.ParseInt(s, 10, 32)
		*p = int32(v)
	case *int64:
		*p, err = strconv.ParseInt(s, 10, 64)
	case *uint:
		var v uint64
		v, err = strconv.ParseUint(s, 10, strconv.IntSize)
		*p = uint(v)
	case *uint8:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 8)
		*p = uint8(v)
	case *uint16:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 16)
		*p = uint16(v)
	case *uint32:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 32)
		*p = uint32(v)
	case *uint64:
		*p, err = strconv.ParseUint(s, 10, 64)
	case *float32:
		var v float64
		v, err = strconv.ParseFloat(s, 32)
		*p = float32(v)
	case *float64:
		*p, err = strconv.ParseFloat(s, 64)
	case *time.Duration:
		*p, err = time.ParseDuration(s)
	case *time.Time:
		*p, err = parseTime(s)
	case **time.Location:
		*p, err = time.LoadLocation(s)
	default:
		return out, fmt.Errorf("%w: %T", pgscan.ErrUnsupportedType, out)
	}

	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: cannot convert %q to %T: %w", pgscan.ErrInvalidConfig, s, out, err)
	}
	return out, nil
}

func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
