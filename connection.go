package sprattus

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/dutchmartin/sprattus/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxConn is the minimal subset of *pgx.Conn the Connection uses. The
// seam keeps tests hermetic: production code talks to *pgx.Conn, tests
// inject a fake satisfying the same surface.
type pgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close(ctx context.Context) error
}

// Connection owns one underlying wire-protocol connection for its
// lifetime. The handle is not safe for unsynchronized concurrent use, so
// every statement preparation/execution sequence holds mu; concurrent
// callers serialize through it. There is no reconnect or retry logic;
// a dropped connection surfaces as an error on the next call.
type Connection struct {
	mu   sync.Mutex
	conn pgxConn
}

// Connect establishes a new connection to the database.
//
//	conn, err := sprattus.Connect(ctx, "postgresql://localhost/shop?user=tg")
func Connect(ctx context.Context, connString string) (*Connection, error) {
	c, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return &Connection{conn: c}, nil
}

// newConnection wraps an existing pgxConn. Test seam; production callers
// use Connect.
func newConnection(c pgxConn) *Connection { return &Connection{conn: c} }

// Close closes the underlying connection. The Connection must not be
// used afterwards.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close(ctx)
}

// Execute runs a single statement, returning the number of rows
// modified. Statements that modify no rows (e.g. SELECT) return 0.
func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	start := time.Now()
	c.mu.Lock()
	tag, err := c.conn.Exec(ctx, sql, args...)
	c.mu.Unlock()
	metrics.RecordOp("execute", "", err, time.Since(start))
	if err != nil {
		return 0, statementError(sql, err)
	}
	return tag.RowsAffected(), nil
}

// BatchExecute executes a sequence of semicolon-separated SQL statements
// using the simple query protocol, stopping at the first error. Intended
// for schema setup and maintenance scripts; statements containing
// user-supplied data belong in Execute with bound parameters instead.
func (c *Connection) BatchExecute(ctx context.Context, script string) error {
	start := time.Now()
	c.mu.Lock()
	// No arguments, so pgx sends the script via the simple protocol,
	// which permits multiple statements per round trip.
	_, err := c.conn.Exec(ctx, script)
	c.mu.Unlock()
	metrics.RecordOp("batch_execute", "", err, time.Since(start))
	if err != nil {
		return statementError(script, err)
	}
	return nil
}

// queryRows runs sql under the connection mutex and decodes every
// returned row. The mutex is held until the rows are fully drained: pgx
// connections cannot interleave statements mid-result.
func queryRows[T any](ctx context.Context, c *Connection, op string, d *TypeDescriptor, sql string, args []any) ([]T, error) {
	start := time.Now()
	c.mu.Lock()
	rows, err := c.conn.Query(ctx, sql, args...)
	var out []T
	if err == nil {
		out, err = collectRows[T](d, rows)
	}
	c.mu.Unlock()
	metrics.RecordOp(op, d.TableName, err, time.Since(start))
	if err != nil {
		return nil, statementError(sql, err)
	}
	return out, nil
}

// exactlyOne unwraps a single-row result set.
func exactlyOne[T any](d *TypeDescriptor, out []T) (T, error) {
	var zero T
	switch len(out) {
	case 1:
		return out[0], nil
	case 0:
		return zero, &NotFoundError{Table: d.TableName}
	default:
		return zero, &MultipleRowsError{Table: d.TableName, Count: len(out)}
	}
}

// Create inserts item as a new row and returns the row as the server
// stored it, so serial keys and column defaults are filled in.
func Create[T any](ctx context.Context, c *Connection, item T) (T, error) {
	var zero T
	d, err := Descriptor[T]()
	if err != nil {
		return zero, err
	}
	sql := d.insertSQL()
	out, err := queryRows[T](ctx, c, "create", d, sql, d.bindValues(reflect.ValueOf(item)))
	if err != nil {
		return zero, err
	}
	return exactlyOne(d, out)
}

// CreateMultiple inserts items in one round trip and returns the stored
// rows in server-returned order. The statement either inserts all rows or
// fails entirely. An empty input performs no round trip.
func CreateMultiple[T any](ctx context.Context, c *Connection, items []T) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}
	d, err := Descriptor[T]()
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(items)*len(d.Columns))
	for _, item := range items {
		args = append(args, d.bindValues(reflect.ValueOf(item))...)
	}
	out, err := queryRows[T](ctx, c, "create_multiple", d, d.insertManySQL(len(items)), args)
	if err != nil {
		return nil, err
	}
	metrics.RecordRows("created", int64(len(out)))
	return out, nil
}

// Query runs caller-supplied SQL with bound args and decodes exactly one
// row into a T. Zero rows is a NotFoundError; more than one row is a
// MultipleRowsError.
func Query[T any](ctx context.Context, c *Connection, sql string, args ...any) (T, error) {
	var zero T
	d, err := Descriptor[T]()
	if err != nil {
		return zero, err
	}
	out, err := queryRows[T](ctx, c, "query", d, sql, args)
	if err != nil {
		return zero, err
	}
	return exactlyOne(d, out)
}

// QueryMultiple runs caller-supplied SQL with bound args and decodes all
// returned rows.
func QueryMultiple[T any](ctx context.Context, c *Connection, sql string, args ...any) ([]T, error) {
	d, err := Descriptor[T]()
	if err != nil {
		return nil, err
	}
	out, err := queryRows[T](ctx, c, "query_multiple", d, sql, args)
	if err != nil {
		return nil, err
	}
	metrics.RecordRows("queried", int64(len(out)))
	return out, nil
}

// Update rewrites the row whose primary key matches item's and returns
// the updated row. The key binds at $1; the value columns follow.
func Update[T any](ctx context.Context, c *Connection, item T) (T, error) {
	var zero T
	d, err := Descriptor[T]()
	if err != nil {
		return zero, err
	}
	out, err := queryRows[T](ctx, c, "update", d, d.updateSQL(), d.bindAllValues(reflect.ValueOf(item)))
	if err != nil {
		return zero, err
	}
	return exactlyOne(d, out)
}

// UpdateMultiple rewrites N rows in one round trip, matching each record
// to its row by primary key via a literal row-set join. Returns the
// updated rows; there is no partial-batch success.
func UpdateMultiple[T any](ctx context.Context, c *Connection, items []T) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}
	d, err := Descriptor[T]()
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(items)*len(d.AllColumns))
	for _, item := range items {
		args = append(args, d.bindAllValues(reflect.ValueOf(item))...)
	}
	out, err := queryRows[T](ctx, c, "update_multiple", d, d.updateManySQL(len(items)), args)
	if err != nil {
		return nil, err
	}
	metrics.RecordRows("updated", int64(len(out)))
	return out, nil
}

// Delete removes the row whose primary key matches item's and returns
// the deleted row.
func Delete[T any](ctx context.Context, c *Connection, item T) (T, error) {
	var zero T
	d, err := Descriptor[T]()
	if err != nil {
		return zero, err
	}
	args := []any{d.primaryKeyValue(reflect.ValueOf(item))}
	out, err := queryRows[T](ctx, c, "delete", d, d.deleteSQL(), args)
	if err != nil {
		return zero, err
	}
	return exactlyOne(d, out)
}

// DeleteMultiple removes N rows in one round trip, keyed by each item's
// primary-key value in input order. Returns the deleted rows.
func DeleteMultiple[T any](ctx context.Context, c *Connection, items []T) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}
	d, err := Descriptor[T]()
	if err != nil {
		return nil, err
	}
	args := make([]any, len(items))
	for i, item := range items {
		args[i] = d.primaryKeyValue(reflect.ValueOf(item))
	}
	out, err := queryRows[T](ctx, c, "delete_multiple", d, d.deleteManySQL(len(items)), args)
	if err != nil {
		return nil, err
	}
	metrics.RecordRows("deleted", int64(len(out)))
	return out, nil
}
