package sprattus

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// collectRows drains rows and decodes each into a T via the descriptor's
// reverse mapping. A decode failure for any column aborts the whole
// operation; there are no partial results.
func collectRows[T any](d *TypeDescriptor, rows pgx.Rows) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := decodeRow[T](d, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeRow converts the current row into a T, assigning each result
// column to the struct field the descriptor maps it to.
func decodeRow[T any](d *TypeDescriptor, rows pgx.Rows) (T, error) {
	var zero T
	vals, err := rows.Values()
	if err != nil {
		return zero, &DecodeError{Type: d.goType.Name(), Err: err}
	}

	rv := reflect.New(d.goType).Elem()
	seen := make(map[string]struct{}, len(d.AllColumns))
	for i, fd := range rows.FieldDescriptions() {
		idx, ok := d.byColumn[fd.Name]
		if !ok {
			return zero, &DecodeError{
				Type:   d.goType.Name(),
				Column: fd.Name,
				Err:    errors.New("result column has no matching field"),
			}
		}
		col := d.AllColumns[idx]
		if err := assignColumn(rv.Field(col.index), vals[i]); err != nil {
			return zero, &DecodeError{Type: d.goType.Name(), Column: col.SQLName, Err: err}
		}
		seen[col.SQLName] = struct{}{}
	}
	// Every descriptor column must be present in the result: a partial
	// SELECT would otherwise leave fields silently zeroed.
	for _, c := range d.AllColumns {
		if _, ok := seen[c.SQLName]; !ok {
			return zero, &DecodeError{
				Type:   d.goType.Name(),
				Column: c.SQLName,
				Err:    errors.New("column absent from result"),
			}
		}
	}
	return rv.Interface().(T), nil
}

// assignColumn stores a decoded wire value into a struct field,
// allocating through one pointer level for nullable columns.
func assignColumn(fv reflect.Value, val any) error {
	if fv.Kind() == reflect.Pointer {
		if val == nil {
			fv.SetZero()
			return nil
		}
		p := reflect.New(fv.Type().Elem())
		if err := assignScalar(p.Elem(), val); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	}
	if val == nil {
		return errors.New("null value for non-nullable field")
	}
	return assignScalar(fv, val)
}

// assignScalar converts a value as decoded by pgx into the field's exact
// Go type. Conversions stay within a kind family (integer widths, float
// widths); anything else is a decode failure, never a silent default.
func assignScalar(fv reflect.Value, val any) error {
	rv := reflect.ValueOf(val)
	t := fv.Type()
	if rv.Type() == t {
		fv.Set(rv)
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		if b, ok := val.(bool); ok {
			fv.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.CanInt() {
			n := rv.Int()
			if fv.OverflowInt(n) {
				return fmt.Errorf("integer %d overflows %s", n, t)
			}
			fv.SetInt(n)
			return nil
		}
	case reflect.Uint32:
		if rv.CanUint() {
			fv.SetUint(rv.Uint())
			return nil
		}
		if rv.CanInt() && rv.Int() >= 0 {
			fv.SetUint(uint64(rv.Int()))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if rv.CanFloat() {
			f := rv.Float()
			if fv.OverflowFloat(f) {
				return fmt.Errorf("float %g overflows %s", f, t)
			}
			fv.SetFloat(f)
			return nil
		}
	case reflect.String:
		if s, ok := val.(string); ok {
			fv.SetString(s)
			return nil
		}
	default:
		if ok, err := assignNamed(fv, t, val); ok {
			return err
		}
	}
	return fmt.Errorf("cannot assign %T to %s", val, t)
}

// assignNamed handles the named wire types whose pgx decoding does not
// line up 1:1 with the field's Go type.
func assignNamed(fv reflect.Value, t reflect.Type, val any) (handled bool, err error) {
	switch t {
	case uuidType:
		// pgx decodes uuid columns to [16]byte; text protocol yields a string.
		switch v := val.(type) {
		case [16]byte:
			fv.Set(reflect.ValueOf(uuid.UUID(v)))
			return true, nil
		case string:
			u, perr := uuid.Parse(v)
			if perr != nil {
				return true, perr
			}
			fv.Set(reflect.ValueOf(u))
			return true, nil
		}
	case rawMessageType:
		// JSON columns decode to an arbitrary Go value; keep the raw form.
		switch v := val.(type) {
		case []byte:
			fv.Set(reflect.ValueOf(json.RawMessage(v)))
			return true, nil
		case string:
			fv.Set(reflect.ValueOf(json.RawMessage(v)))
			return true, nil
		default:
			b, merr := json.Marshal(val)
			if merr != nil {
				return true, merr
			}
			fv.Set(reflect.ValueOf(json.RawMessage(b)))
			return true, nil
		}
	case dateType:
		if v, ok := val.(time.Time); ok {
			fv.Set(reflect.ValueOf(pgtype.Date{Time: v, Valid: true}))
			return true, nil
		}
	case byteSliceType, hwAddrType:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			fv.Set(rv.Convert(t))
			return true, nil
		}
	}
	// Same-kind named types (e.g. pgtype.Time from pgtype.Time is handled
	// by the exact match above; a convertible struct stays rejected).
	return false, nil
}
