package sprattus

import (
	"strings"
	"testing"
)

// TestCreateTableSQL pins the emitted DDL: key first with PRIMARY KEY,
// NOT NULL on non-nullable columns, nothing on nullable ones.
func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	d := mustDescriptor[inspection](t)
	want := `CREATE TABLE IF NOT EXISTS "tech_inspections" (
  "inspection_id" BIGINT PRIMARY KEY,
  "station" VARCHAR NOT NULL,
  "passed" BOOL NOT NULL,
  "valid_until" TIMESTAMP
);`
	if got := d.CreateTableSQL(false); got != want {
		t.Errorf("CreateTableSQL(false):\n got %s\nwant %s", got, want)
	}
}

// TestCreateTableSQL_SerialKey verifies the integer key widths map to the
// matching serial pseudo-types.
func TestCreateTableSQL_SerialKey(t *testing.T) {
	t.Parallel()

	type small struct {
		RowID int16  `sql:"primary_key,name=row_id"`
		Name  string `sql:"name=name"`
	}
	type big struct {
		RowID int64  `sql:"primary_key,name=row_id"`
		Name  string `sql:"name=name"`
	}
	type keyed struct {
		RowID string `sql:"primary_key,name=row_id"`
		Name  string `sql:"name=name"`
	}

	tests := []struct {
		name string
		ddl  string
		want string
	}{
		{"int32", mustDescriptor[product](t).CreateTableSQL(true), `"prod_id" SERIAL PRIMARY KEY`},
		{"int16", mustDescriptor[small](t).CreateTableSQL(true), `"row_id" SMALLSERIAL PRIMARY KEY`},
		{"int64", mustDescriptor[big](t).CreateTableSQL(true), `"row_id" BIGSERIAL PRIMARY KEY`},
		// Non-integer keys cannot be serial; the wire type stays.
		{"string", mustDescriptor[keyed](t).CreateTableSQL(true), `"row_id" VARCHAR PRIMARY KEY`},
	}
	for _, tc := range tests {
		if !strings.Contains(tc.ddl, tc.want) {
			t.Errorf("%s: missing %q in:\n%s", tc.name, tc.want, tc.ddl)
		}
	}
}

// TestCreateTableSQL_CharSpelling verifies the int8 category uses the
// quoted "char" spelling, which in DDL position differs from CHAR(1).
func TestCreateTableSQL_CharSpelling(t *testing.T) {
	t.Parallel()

	type flags struct {
		FlagID int32 `sql:"primary_key,name=flag_id"`
		Level  int8  `sql:"name=level"`
	}
	ddl := mustDescriptor[flags](t).CreateTableSQL(false)
	if !strings.Contains(ddl, `"level" "char" NOT NULL`) {
		t.Errorf("int8 column spelled wrong:\n%s", ddl)
	}
}

// TestFingerprint verifies the schema hash is stable across synthesis and
// moves when the contract moves: name, type, nullability all count.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	type before struct {
		RowID int32  `sql:"primary_key,name=row_id"`
		Note  string `sql:"name=note"`
	}
	type renamed struct {
		RowID int32  `sql:"primary_key,name=row_id"`
		Note  string `sql:"name=notes"`
	}
	type retyped struct {
		RowID int32 `sql:"primary_key,name=row_id"`
		Note  int64 `sql:"name=note"`
	}
	type relaxed struct {
		RowID int32   `sql:"primary_key,name=row_id"`
		Note  *string `sql:"name=note"`
	}

	base := mustDescriptor[before](t).Fingerprint()
	if base != mustDescriptor[before](t).Fingerprint() {
		t.Fatalf("Fingerprint not stable")
	}
	for name, fp := range map[string]uint64{
		"renamed column":      mustDescriptor[renamed](t).Fingerprint(),
		"retyped column":      mustDescriptor[retyped](t).Fingerprint(),
		"relaxed nullability": mustDescriptor[relaxed](t).Fingerprint(),
		"other table":         mustDescriptor[inspection](t).Fingerprint(),
	} {
		if fp == base {
			t.Errorf("%s: fingerprint did not move", name)
		}
	}
}
