package sprattus

import (
	"strconv"
	"strings"
)

// Placeholder generation. These are pure functions over integers and
// descriptor-derived strings; parameter numbering is always 1-based and
// contiguous within one statement.

// argList returns "$1,$2,...,$n". n must be >= 1.
func argList(n int) string {
	return argListFrom(1, n)
}

// argListFrom returns "$start,$start+1,...,$end". Used when a statement
// has leading fixed parameters before the generated block, e.g. the
// primary key bound at $1 in single-row UPDATE.
func argListFrom(start, end int) string {
	var b strings.Builder
	for i := start; i <= end; i++ {
		if i > start {
			b.WriteByte(',')
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// groupedArgList returns row-grouped placeholder tuples for a multi-row
// VALUES clause: "($1,..,$L),($L+1,..,$2L),...". Numbering runs globally
// across rows: row r's c-th column is parameter (r-1)*itemLen + c.
func groupedArgList(itemLen, rows int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for c := 0; c < itemLen; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// typedGroupedArgList returns the placeholder groups for a literal
// row set of all columns (primary key first), as used by the multi-row
// UPDATE's "FROM (VALUES ...) AS temp_table(...)" join. Only the first
// group carries ::TYPE casts; Postgres infers the remaining rows' types
// from the first VALUES row.
func typedGroupedArgList(d *TypeDescriptor, rows int) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(d.typedArgList)
	b.WriteByte(')')
	if rows == 1 {
		return b.String()
	}
	itemLen := len(d.AllColumns)
	n := itemLen + 1
	for r := 1; r < rows; r++ {
		b.WriteString(",(")
		for c := 0; c < itemLen; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}
