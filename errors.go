package sprattus

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SynthesisKind identifies why descriptor synthesis failed for a record type.
type SynthesisKind string

const (
	// MissingPrimaryKey means no field was tagged primary_key and no
	// column name contained the "id" fallback substring.
	MissingPrimaryKey SynthesisKind = "missing primary key"
	// UnsupportedType means a field's Go type has no wire-type mapping.
	UnsupportedType SynthesisKind = "unsupported type"
	// UnsupportedShape means the record type is not a struct with named,
	// exported fields.
	UnsupportedShape SynthesisKind = "unsupported shape"
	// DuplicateColumnName means two fields resolved to the same SQL name.
	DuplicateColumnName SynthesisKind = "duplicate column name"
)

// SynthesisError reports a record type whose descriptor could not be
// built. It is raised once, on first use of the type, before any
// statement runs; it never surfaces mid-query.
type SynthesisError struct {
	Kind  SynthesisKind
	Type  string // Go type name of the record
	Field string // offending field, when one is to blame
}

func (e *SynthesisError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("sprattus: %s: %s.%s", e.Kind, e.Type, e.Field)
	}
	return fmt.Sprintf("sprattus: %s: %s", e.Kind, e.Type)
}

// ConnectionError reports a failure to establish or keep the underlying
// client connection. It is fatal to the Connection; there is no
// auto-reconnect.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "sprattus: connect: " + e.Err.Error() }

func (e *ConnectionError) Unwrap() error { return e.Err }

// StatementError reports SQL that the server rejected, including SQL this
// package generated itself. The server diagnostic is preserved verbatim.
type StatementError struct {
	SQL string
	Err error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("sprattus: statement failed: %v (sql: %s)", e.Err, e.SQL)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Diagnostic returns the Postgres server diagnostic text when the
// underlying error carries one, else the plain error text.
func (e *StatementError) Diagnostic() string {
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) {
		if pgErr.Detail != "" {
			return fmt.Sprintf("%s: %s (%s)", pgErr.Message, pgErr.Detail, pgErr.SQLState())
		}
		return fmt.Sprintf("%s (%s)", pgErr.Message, pgErr.SQLState())
	}
	return e.Err.Error()
}

// NotFoundError reports a single-row operation that returned zero rows.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sprattus: no row found in %q", e.Table)
}

// MultipleRowsError reports a single-row operation that returned more
// than one row, e.g. a Query whose filter matched several rows.
type MultipleRowsError struct {
	Table string
	Count int
}

func (e *MultipleRowsError) Error() string {
	return fmt.Sprintf("sprattus: expected one row from %q, got %d", e.Table, e.Count)
}

// DecodeError reports a returned row that could not be converted back
// into the target record shape. The whole row is rejected; no field is
// silently defaulted.
type DecodeError struct {
	Type   string // Go type name of the record
	Column string // SQL column that failed, when known
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("sprattus: decode %s: column %q: %v", e.Type, e.Column, e.Err)
	}
	return fmt.Sprintf("sprattus: decode %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// statementError wraps err as a StatementError unless it is already one
// of this package's typed errors, which propagate unmodified.
func statementError(sql string, err error) error {
	var (
		de *DecodeError
		nf *NotFoundError
		se *StatementError
	)
	if errors.As(err, &de) || errors.As(err, &nf) || errors.As(err, &se) {
		return err
	}
	return &StatementError{SQL: sql, Err: err}
}
