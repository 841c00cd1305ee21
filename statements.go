package sprattus

import "fmt"

// Statement templates. Identifiers come pre-quoted from the descriptor;
// values are always bound parameters, never interpolated into the text.

// insertSQL builds the single-row INSERT. The primary key is excluded so
// server-assigned defaults (serial keys) apply; RETURNING * hands the
// stored row back for re-decoding.
func (d *TypeDescriptor) insertSQL() string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		d.quotedTable, d.fieldList, d.argumentList)
}

// insertManySQL builds the multi-row INSERT for rows records, with one
// placeholder group per record and global sequential numbering.
func (d *TypeDescriptor) insertManySQL(rows int) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s RETURNING *",
		d.quotedTable, d.fieldList, groupedArgList(len(d.Columns), rows))
}

// updateSQL builds the single-row UPDATE. The current primary-key value
// binds at $1; the value block follows at $2..$argc+1. A record with one
// non-key column uses the scalar SET form, since a single-element
// parenthesized tuple is a syntax edge case.
func (d *TypeDescriptor) updateSQL() string {
	values := argListFrom(2, len(d.Columns)+1)
	if len(d.Columns) == 1 {
		return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = $1 RETURNING *",
			d.quotedTable, d.fieldList, values, d.PrimaryKey.Quoted)
	}
	return fmt.Sprintf("UPDATE %s SET (%s) = (%s) WHERE %s = $1 RETURNING *",
		d.quotedTable, d.fieldList, values, d.PrimaryKey.Quoted)
}

// updateManySQL builds the multi-row UPDATE: a literal row set of all
// columns (primary key first) joined against the table by key.
func (d *TypeDescriptor) updateManySQL(rows int) string {
	// A type with zero non-key columns yields an empty SET list here; the
	// server rejects it and the failure surfaces as a StatementError.
	inner := ""
	for i, c := range d.Columns {
		if i > 0 {
			inner += ","
		}
		inner += "temp_table." + c.Quoted
	}
	groups := typedGroupedArgList(d, rows)
	if len(d.Columns) == 1 {
		return fmt.Sprintf(
			"UPDATE %s AS P SET %s = %s FROM (VALUES %s) AS temp_table(%s) WHERE P.%s = temp_table.%s RETURNING *",
			d.quotedTable, d.fieldList, inner, groups, d.allFieldList,
			d.PrimaryKey.Quoted, d.PrimaryKey.Quoted)
	}
	return fmt.Sprintf(
		"UPDATE %s AS P SET (%s) = (%s) FROM (VALUES %s) AS temp_table(%s) WHERE P.%s = temp_table.%s RETURNING *",
		d.quotedTable, d.fieldList, inner, groups, d.allFieldList,
		d.PrimaryKey.Quoted, d.PrimaryKey.Quoted)
}

// deleteSQL builds the single-row DELETE, keyed by primary key.
func (d *TypeDescriptor) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN ($1) RETURNING *",
		d.quotedTable, d.PrimaryKey.Quoted)
}

// deleteManySQL builds the multi-row DELETE with one key parameter per
// record, in input order.
func (d *TypeDescriptor) deleteManySQL(rows int) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s) RETURNING *",
		d.quotedTable, d.PrimaryKey.Quoted, argList(rows))
}
