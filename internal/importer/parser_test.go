package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/aurumcrm/customer-import/internal/schema"
)

// ----------------------------------------------------------------------------
// Parse Tests
// ----------------------------------------------------------------------------

func TestParse_TemplateRoundTrip(t *testing.T) {
	// The generated template must parse back as a valid file with no data.
	batch, err := Parse(TemplateFileName, []byte(Template()), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse(template) error = %v", err)
	}
	if len(batch.Records) != 0 {
		t.Errorf("records = %d, want 0", len(batch.Records))
	}
	if len(batch.Errors) != 0 {
		t.Errorf("errors = %v, want none", batch.Errors)
	}
	if batch.Submittable() {
		t.Error("batch with no records should not be submittable")
	}
}

func TestParse_MixedValidAndInvalidRows(t *testing.T) {
	input := "name,phone,floor,status\n" +
		"Asha Rao,9998887776,2,lead\n" +
		",9991112223,3,lead\n" +
		"Kiran Shah,9994445556,12,customer\n"

	batch, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(batch.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(batch.Records))
	}
	if got := batch.Records[0].Name; got != "Asha Rao" {
		t.Errorf("record name = %q, want %q", got, "Asha Rao")
	}
	if got := batch.Records[0].Floor; got != 2 {
		t.Errorf("record floor = %d, want 2", got)
	}

	if len(batch.Errors) != 2 {
		t.Fatalf("errors = %d, want 2: %v", len(batch.Errors), batch.Errors)
	}
	if got := batch.Errors[0].Line; got != 3 {
		t.Errorf("first error line = %d, want 3", got)
	}
	if got := batch.Errors[0].Message; !strings.Contains(got, "Missing required fields") {
		t.Errorf("first error message = %q, want missing required fields", got)
	}
	if got := batch.Errors[1].Line; got != 4 {
		t.Errorf("second error line = %d, want 4", got)
	}
	if got := batch.Errors[1].Message; !strings.Contains(got, "Invalid floor number") {
		t.Errorf("second error message = %q, want invalid floor number", got)
	}

	if batch.Submittable() {
		t.Error("batch with row errors should not be submittable")
	}
}

func TestParse_BlankLinesDoNotShiftLineNumbers(t *testing.T) {
	input := "name,phone,floor\n" +
		"\n" +
		"Asha Rao,9998887776,2\n" +
		"\n" +
		",9991112223,3\n"

	batch, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(batch.Records))
	}
	if len(batch.Errors) != 1 {
		t.Fatalf("errors = %d, want 1: %v", len(batch.Errors), batch.Errors)
	}
	// The bad row sits on line 5 of the original file, blanks included.
	if got := batch.Errors[0].Line; got != 5 {
		t.Errorf("error line = %d, want 5", got)
	}
}

func TestParse_InsufficientColumns(t *testing.T) {
	input := "name,phone,floor\n" +
		"Asha Rao,9998887776\n"

	batch, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(batch.Errors) != 1 {
		t.Fatalf("errors = %d, want 1: %v", len(batch.Errors), batch.Errors)
	}
	want := "Insufficient columns (got 2, expected 3)"
	if got := batch.Errors[0].Message; got != want {
		t.Errorf("error message = %q, want %q", got, want)
	}
}

func TestParse_HeaderOrderAndCaseInsensitive(t *testing.T) {
	// Recognized columns bind by name, not position, and match
	// case-insensitively.
	input := "FLOOR,Name,phone\n" +
		"4,Asha Rao,9998887776\n"

	batch, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("records = %d, want 1, errors: %v", len(batch.Records), batch.Errors)
	}
	rec := batch.Records[0]
	if rec.Name != "Asha Rao" || rec.Phone != "9998887776" || rec.Floor != 4 {
		t.Errorf("record = %+v, want Asha Rao / 9998887776 / 4", rec)
	}
}

func TestParse_UnknownColumnsIgnored(t *testing.T) {
	input := "name,phone,floor,shoe_size\n" +
		"Asha Rao,9998887776,2,44\n"

	batch, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("records = %d, want 1, errors: %v", len(batch.Records), batch.Errors)
	}
}

func TestParse_StatusAndDateNormalization(t *testing.T) {
	input := "name,phone,floor,status,visited_date\n" +
		"Asha Rao,9998887776,2,VIP,01/05/2024\n"

	batch, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("records = %d, want 1, errors: %v", len(batch.Records), batch.Errors)
	}
	rec := batch.Records[0]
	if rec.Status != "vip" {
		t.Errorf("status = %q, want %q", rec.Status, "vip")
	}
	if rec.VisitedDate != "2024-01-05" {
		t.Errorf("visited_date = %q, want %q", rec.VisitedDate, "2024-01-05")
	}
}

func TestParse_ExcelFormulaCells(t *testing.T) {
	input := "name,phone,floor\n" +
		`Asha Rao,"=""9998887776""",2` + "\n"

	batch, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("records = %d, want 1, errors: %v", len(batch.Records), batch.Errors)
	}
	if got := batch.Records[0].Phone; got != "9998887776" {
		t.Errorf("phone = %q, want %q", got, "9998887776")
	}
}

func TestParse_EmptyFile(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "zero bytes", input: ""},
		{name: "only blank lines", input: "\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("customers.csv", []byte(tt.input), schema.CustomerFieldSpecs)
			if !errors.Is(err, ErrEmptyFile) {
				t.Errorf("Parse() error = %v, want ErrEmptyFile", err)
			}
		})
	}
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	input := "name,status\n" +
		"Asha Rao,lead\n"

	_, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err == nil {
		t.Fatal("Parse() error = nil, want missing column error")
	}
	if !strings.Contains(err.Error(), "missing required columns") {
		t.Errorf("error = %q, want missing required columns", err)
	}
	if !strings.Contains(err.Error(), "phone") || !strings.Contains(err.Error(), "floor") {
		t.Errorf("error = %q, want it to name phone and floor", err)
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	input := append([]byte("name,phone,floor\nAsha"), 0xff, 0xfe)
	input = append(input, []byte(",9998887776,2\n")...)

	batch, err := Parse("customers.csv", input, schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("records = %d, want 1, errors: %v", len(batch.Records), batch.Errors)
	}
}

func TestParse_AssignsBatchID(t *testing.T) {
	input := "name,phone,floor\nAsha Rao,9998887776,2\n"

	first, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := Parse("customers.csv", []byte(input), schema.CustomerFieldSpecs)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if first.ID == second.ID {
		t.Error("each parse should mint a distinct batch ID")
	}
	if first.FileName != "customers.csv" {
		t.Errorf("file name = %q, want %q", first.FileName, "customers.csv")
	}
}
