package sprattus

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// ddlType maps a column's wire type to the DDL column type. The int8
// category needs the quoted spelling in DDL position.
func ddlType(c ColumnRef) string {
	if c.Wire == WireChar {
		return `"char"`
	}
	return string(c.Wire)
}

// CreateTableSQL emits CREATE TABLE IF NOT EXISTS DDL for d, suitable for
// Connection.BatchExecute during schema setup. Non-nullable fields get
// NOT NULL; the primary key column carries PRIMARY KEY. When serialKey is
// true and the key is an integer category, the key column is emitted as
// SERIAL/SMALLSERIAL/BIGSERIAL so the server assigns it.
func (d *TypeDescriptor) CreateTableSQL(serialKey bool) string {
	defs := make([]string, 0, len(d.AllColumns))
	for i, c := range d.AllColumns {
		typ := ddlType(c)
		if i == 0 && serialKey {
			switch c.Wire {
			case WireSmallInt:
				typ = "SMALLSERIAL"
			case WireInt:
				typ = "SERIAL"
			case WireBigInt:
				typ = "BIGSERIAL"
			}
		}
		def := fmt.Sprintf("%s %s", c.Quoted, typ)
		if i == 0 {
			def += " PRIMARY KEY"
		} else if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		d.quotedTable, strings.Join(defs, ",\n  "))
}

// Fingerprint is a stable hash of the descriptor's schema contract: table
// name plus each column's SQL name, wire type and nullability, in
// all-columns order. Two descriptors with the same fingerprint generate
// identical statements; a changed fingerprint signals schema drift
// between deployments.
func (d *TypeDescriptor) Fingerprint() uint64 {
	var b strings.Builder
	b.WriteString(d.TableName)
	for _, c := range d.AllColumns {
		b.WriteByte(0)
		b.WriteString(c.SQLName)
		b.WriteByte(0)
		b.WriteString(string(c.Wire))
		if c.Nullable {
			b.WriteString("?")
		}
	}
	return xxh3.HashString(b.String())
}
