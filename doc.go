// Package sprattus is a typed data-mapping layer over Postgres built on
// pgx. Given a Go struct describing a table row, it synthesizes the
// metadata and SQL needed to create, read, update and delete rows,
// including batched multi-row variants, without the caller writing SQL
// by hand.
//
// # Getting started
//
// Create a table:
//
//	CREATE TABLE products (
//	    prod_id SERIAL PRIMARY KEY,
//	    title VARCHAR NOT NULL
//	);
//
// Declare a matching struct. The `sql` struct tag marks the primary key
// and renames columns; a TableName method overrides the table name
// (which otherwise defaults to the struct's type name):
//
//	type Product struct {
//	    ProdID int32  `sql:"primary_key,name=prod_id"`
//	    Title  string `sql:"name=title"`
//	}
//
//	func (Product) TableName() string { return "products" }
//
// Connect and go:
//
//	conn, err := sprattus.Connect(ctx, "postgresql://localhost/shop?user=tg")
//	if err != nil { ... }
//	created, err := sprattus.Create(ctx, conn, Product{Title: "apple"})
//
// Create returns the row as the server stored it, so serial keys and
// column defaults are filled in. CreateMultiple, UpdateMultiple and
// DeleteMultiple process N records in a single round trip.
//
// # Supported field types
//
// The mapping from Go field type to Postgres wire type is fixed:
//
//	bool              BOOL
//	int8              CHAR
//	int16             SMALLINT
//	int32, int        INT
//	uint32            OID
//	int64             BIGINT
//	float32           REAL
//	float64           DOUBLE PRECISION
//	string            VARCHAR
//	[]byte            BYTEA
//	pgtype.Date       DATE
//	pgtype.Time       TIME
//	time.Time         TIMESTAMP
//	uuid.UUID         UUID
//	json.RawMessage   JSON
//	net.HardwareAddr  MACADDR
//
// A pointer to any supported type represents a nullable column. Anything
// else fails descriptor synthesis with an UnsupportedType error on first
// use of the type, before any statement is sent.
//
// # Primary keys
//
// Every record type needs exactly one primary-key column. Tag it
// explicitly with `sql:"primary_key"`. When no field carries the tag,
// the first column whose SQL name contains the substring "id" is used as
// a fallback candidate and a warning is logged; prefer the explicit tag.
//
// # Identifier quoting
//
// Table and column names are always rendered double-quoted in generated
// SQL, so reserved words such as "desc" or "constraint" are legal column
// names. Values are never interpolated into statement text; they travel
// as bound parameters.
//
// # Concurrency
//
// A Connection owns a single underlying *pgx.Conn, which is not safe for
// unsynchronized concurrent use. All operations on one Connection
// serialize through an internal mutex: sequential calls from one
// goroutine execute in issue order, and concurrent callers interleave
// only at statement boundaries.
package sprattus
