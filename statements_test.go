package sprattus

import (
	"strings"
	"testing"
)

// Product matches the canonical example: a serial key plus one column.
type product struct {
	ProdID int32  `sql:"primary_key,name=prod_id"`
	Title  string `sql:"name=title"`
}

func (product) TableName() string { return "Product" }

// collate uses reserved words as column names; every generated statement
// must keep them quoted.
type collate struct {
	ID          int32  `sql:"primary_key,name=id"`
	Column      bool   `sql:"name=column"`
	Desc        bool   `sql:"name=desc"`
	Constraint  *int32 `sql:"name=constraint"`
	CurrentUser string `sql:"name=current_user"`
	Fetch       string `sql:"name=fetch"`
}

func (collate) TableName() string { return "Collate" }

// TestInsertSQL pins the single-row INSERT template: key column omitted,
// identifiers quoted, RETURNING * so server-assigned defaults come back.
func TestInsertSQL(t *testing.T) {
	t.Parallel()

	d := mustDescriptor[product](t)
	want := `INSERT INTO "Product" ("title") VALUES ($1) RETURNING *`
	if got := d.insertSQL(); got != want {
		t.Errorf("insertSQL:\n got %q\nwant %q", got, want)
	}
}

// TestInsertManySQL verifies one group per record with global numbering;
// for a one-non-key-column type, three records yield ($1),($2),($3).
func TestInsertManySQL(t *testing.T) {
	t.Parallel()

	d := mustDescriptor[product](t)
	want := `INSERT INTO "Product" ("title") VALUES ($1),($2),($3) RETURNING *`
	if got := d.insertManySQL(3); got != want {
		t.Errorf("insertManySQL(3):\n got %q\nwant %q", got, want)
	}

	dc := mustDescriptor[collate](t)
	got := dc.insertManySQL(2)
	want = `INSERT INTO "Collate" ("column","desc","constraint","current_user","fetch") ` +
		`VALUES ($1,$2,$3,$4,$5),($6,$7,$8,$9,$10) RETURNING *`
	if got != want {
		t.Errorf("insertManySQL(2):\n got %q\nwant %q", got, want)
	}
}

// TestUpdateSQL covers both SET forms: scalar for a single non-key column
// (a one-element parenthesized tuple is a syntax edge case), tuple
// otherwise. The key always binds at $1, values from $2.
func TestUpdateSQL(t *testing.T) {
	t.Parallel()

	d := mustDescriptor[product](t)
	want := `UPDATE "Product" SET "title" = $2 WHERE "prod_id" = $1 RETURNING *`
	if got := d.updateSQL(); got != want {
		t.Errorf("scalar updateSQL:\n got %q\nwant %q", got, want)
	}

	dc := mustDescriptor[collate](t)
	want = `UPDATE "Collate" SET ("column","desc","constraint","current_user","fetch") = ($2,$3,$4,$5,$6) ` +
		`WHERE "id" = $1 RETURNING *`
	if got := dc.updateSQL(); got != want {
		t.Errorf("tuple updateSQL:\n got %q\nwant %q", got, want)
	}
}

// TestUpdateManySQL pins the literal row-set join template, including the
// typed first VALUES group in all-columns order (key first) and the
// scalar SET form for single-column types.
func TestUpdateManySQL(t *testing.T) {
	t.Parallel()

	d := mustDescriptor[product](t)
	want := `UPDATE "Product" AS P SET "title" = temp_table."title" ` +
		`FROM (VALUES ($1::INT,$2::VARCHAR),($3,$4)) AS temp_table("prod_id","title") ` +
		`WHERE P."prod_id" = temp_table."prod_id" RETURNING *`
	if got := d.updateManySQL(2); got != want {
		t.Errorf("scalar updateManySQL(2):\n got %q\nwant %q", got, want)
	}

	dc := mustDescriptor[collate](t)
	got := dc.updateManySQL(2)
	for _, frag := range []string{
		`UPDATE "Collate" AS P SET ("column","desc","constraint","current_user","fetch") = `,
		`(temp_table."column",temp_table."desc",temp_table."constraint",temp_table."current_user",temp_table."fetch")`,
		`FROM (VALUES ($1::INT,$2::BOOL,$3::BOOL,$4::INT,$5::VARCHAR,$6::VARCHAR),($7,$8,$9,$10,$11,$12))`,
		`AS temp_table("id","column","desc","constraint","current_user","fetch")`,
		`WHERE P."id" = temp_table."id" RETURNING *`,
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("updateManySQL(2) missing %q in:\n%s", frag, got)
		}
	}
}

// TestDeleteSQL pins both DELETE templates.
func TestDeleteSQL(t *testing.T) {
	t.Parallel()

	d := mustDescriptor[product](t)
	want := `DELETE FROM "Product" WHERE "prod_id" IN ($1) RETURNING *`
	if got := d.deleteSQL(); got != want {
		t.Errorf("deleteSQL:\n got %q\nwant %q", got, want)
	}
	want = `DELETE FROM "Product" WHERE "prod_id" IN ($1,$2,$3) RETURNING *`
	if got := d.deleteManySQL(3); got != want {
		t.Errorf("deleteManySQL(3):\n got %q\nwant %q", got, want)
	}
}

// TestReservedWordsAlwaysQuoted scans every template for a bare reserved
// column name; "desc" must never appear unquoted.
func TestReservedWordsAlwaysQuoted(t *testing.T) {
	t.Parallel()

	d := mustDescriptor[collate](t)
	statements := []string{
		d.insertSQL(),
		d.insertManySQL(2),
		d.updateSQL(),
		d.updateManySQL(2),
		d.deleteSQL(),
		d.deleteManySQL(2),
	}
	for _, sql := range statements {
		cleaned := strings.ReplaceAll(sql, `"desc"`, "")
		if strings.Contains(cleaned, "desc") {
			t.Errorf("bare reserved word in %q", sql)
		}
	}
}
