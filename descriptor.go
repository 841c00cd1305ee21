package sprattus

import (
	"log"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Tabler overrides the database table name for a record type. Types that
// do not implement it map to a table named after the struct type itself.
type Tabler interface {
	TableName() string
}

// ColumnRef describes one persisted column of a record type.
type ColumnRef struct {
	FieldName string   // Go field name
	SQLName   string   // unquoted column name in the database
	Quoted    string   // double-quoted rendering, safe for reserved words
	Wire      WireType // Postgres scalar category
	Nullable  bool     // pointer field, maps to a nullable column

	index int // struct field index for reflect access
}

// TypeDescriptor is the synthesized schema metadata for one record type.
// It is built once per type, immutable thereafter, and shared by every
// operation on that type.
type TypeDescriptor struct {
	TableName  string      // unquoted
	PrimaryKey ColumnRef   // exactly one per type
	Columns    []ColumnRef // non-key columns, field declaration order
	AllColumns []ColumnRef // primary key first, then Columns

	goType      reflect.Type
	quotedTable string

	// Precomputed SQL fragments shared by all statements on this type.
	fieldList    string // quoted non-key column names, comma separated
	allFieldList string // quoted all-column names, pk first
	argumentList string // "$1,..,$argc" over the non-key columns
	typedArgList string // "$1::INT,.." over AllColumns, pk first

	byColumn map[string]int // sql name -> index into AllColumns
}

// ArgumentCount is the number of non-key columns, i.e. the number of
// parameters a single-row INSERT binds.
func (d *TypeDescriptor) ArgumentCount() int { return len(d.Columns) }

// descriptors memoizes synthesis per record type for the process
// lifetime. Descriptors hold no external resource, so there is no
// teardown path.
var descriptors sync.Map // reflect.Type -> *TypeDescriptor

// Descriptor returns the memoized TypeDescriptor for T, synthesizing it
// on first use. All failure modes are *SynthesisError.
func Descriptor[T any]() (*TypeDescriptor, error) {
	return descriptorFor(reflect.TypeOf((*T)(nil)).Elem())
}

func descriptorFor(t reflect.Type) (*TypeDescriptor, error) {
	if d, ok := descriptors.Load(t); ok {
		return d.(*TypeDescriptor), nil
	}
	d, err := synthesize(t)
	if err != nil {
		return nil, err
	}
	actual, _ := descriptors.LoadOrStore(t, d)
	return actual.(*TypeDescriptor), nil
}

// synthesize inspects t's fields and sql tags and produces a descriptor.
// Pure and deterministic for a given field declaration set; every error
// is raised here, never later during query execution.
func synthesize(t reflect.Type) (*TypeDescriptor, error) {
	if t.Kind() != reflect.Struct {
		return nil, &SynthesisError{Kind: UnsupportedShape, Type: t.Name()}
	}

	tableName := t.Name()
	if tab, ok := reflect.New(t).Interface().(Tabler); ok {
		tableName = tab.TableName()
	}

	var (
		cols      []ColumnRef
		pkIndex   = -1 // index into cols of the explicit primary key
		candidate = -1 // first column whose sql name contains "id"
		seen      = map[string]struct{}{}
	)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opts := parseTag(f.Tag.Get("sql"))

		sqlName := f.Name
		if opts.name != "" {
			sqlName = opts.name
		}
		if _, dup := seen[sqlName]; dup {
			return nil, &SynthesisError{Kind: DuplicateColumnName, Type: t.Name(), Field: f.Name}
		}
		seen[sqlName] = struct{}{}

		ft := f.Type
		nullable := false
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
			nullable = true
		}
		wt, ok := wireTypeOf(ft)
		if !ok {
			return nil, &SynthesisError{Kind: UnsupportedType, Type: t.Name(), Field: f.Name}
		}

		col := ColumnRef{
			FieldName: f.Name,
			SQLName:   sqlName,
			Quoted:    quoteIdent(sqlName),
			Wire:      wt,
			Nullable:  nullable,
			index:     i,
		}
		if opts.primaryKey && pkIndex < 0 {
			pkIndex = len(cols)
		}
		if candidate < 0 && strings.Contains(sqlName, "id") {
			candidate = len(cols)
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, &SynthesisError{Kind: UnsupportedShape, Type: t.Name()}
	}
	if pkIndex < 0 {
		if candidate < 0 {
			return nil, &SynthesisError{Kind: MissingPrimaryKey, Type: t.Name()}
		}
		pkIndex = candidate
		log.Printf("sprattus: %s: no field tagged primary_key; falling back to column %q, tag the key explicitly",
			t.Name(), cols[pkIndex].SQLName)
	}

	d := &TypeDescriptor{
		TableName:   tableName,
		PrimaryKey:  cols[pkIndex],
		goType:      t,
		quotedTable: quoteIdent(tableName),
	}
	for i, c := range cols {
		if i != pkIndex {
			d.Columns = append(d.Columns, c)
		}
	}
	d.AllColumns = append([]ColumnRef{d.PrimaryKey}, d.Columns...)

	d.fieldList = joinQuoted(d.Columns)
	d.allFieldList = joinQuoted(d.AllColumns)
	if len(d.Columns) > 0 {
		d.argumentList = argList(len(d.Columns))
	}
	d.typedArgList = typedArgs(d.AllColumns)
	d.byColumn = make(map[string]int, len(d.AllColumns))
	for i, c := range d.AllColumns {
		d.byColumn[c.SQLName] = i
	}
	return d, nil
}

// tagOptions is the parsed form of a `sql:"..."` struct tag.
type tagOptions struct {
	primaryKey bool
	name       string
}

func parseTag(tag string) tagOptions {
	var opts tagOptions
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "primary_key":
			opts.primaryKey = true
		case strings.HasPrefix(part, "name="):
			opts.name = strings.TrimPrefix(part, "name=")
		}
	}
	return opts
}

// quoteIdent renders a single identifier double-quoted for Postgres,
// doubling embedded quotes. Reserved words stay legal column names.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func joinQuoted(cols []ColumnRef) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c.Quoted
	}
	return strings.Join(parts, ",")
}

// typedArgs renders "$1::INT,$2::VARCHAR,..." over cols in order.
func typedArgs(cols []ColumnRef) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("::")
		b.WriteString(string(c.Wire))
	}
	return b.String()
}

// bindValues extracts the non-key column values of rec in declaration
// order, the parameter order of INSERT.
func (d *TypeDescriptor) bindValues(rec reflect.Value) []any {
	out := make([]any, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = rec.Field(c.index).Interface()
	}
	return out
}

// bindAllValues extracts every column value of rec with the primary key
// first, the parameter order of UPDATE.
func (d *TypeDescriptor) bindAllValues(rec reflect.Value) []any {
	out := make([]any, len(d.AllColumns))
	for i, c := range d.AllColumns {
		out[i] = rec.Field(c.index).Interface()
	}
	return out
}

// primaryKeyValue extracts the key column's value. Keys are always
// passed by value to the binder.
func (d *TypeDescriptor) primaryKeyValue(rec reflect.Value) any {
	return rec.Field(d.PrimaryKey.index).Interface()
}
