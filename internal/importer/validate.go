package importer

// validate.go applies row-level validation rules in a fixed order, stopping
// at the first failure: required fields, floor range, status enumeration,
// then date normalization. One error per failed row; the row is dropped.

import (
	"fmt"
	"strings"

	"github.com/aurumcrm/customer-import/internal/schema"
)

// validateRow validates one RawRow against the field catalog and, on
// success, builds the typed Customer with date fields normalized and the
// status canonicalized to lowercase. On failure it returns a single
// RowError for the given line and no record.
func validateRow(raw RawRow, line int, specs []schema.FieldSpec) (*Customer, *RowError) {
	// 1. Required fields
	for _, spec := range specs {
		if spec.Required && raw[spec.Name] == "" {
			rowsRejected.WithLabelValues("required_fields").Inc()
			return nil, &RowError{
				Line:    line,
				Message: fmt.Sprintf("Missing required fields (%s)", strings.Join(schema.RequiredColumns(specs), ", ")),
			}
		}
	}

	// 2. Floor range
	floorSpec := findSpec(specs, "floor")
	floor, ok := ParseFloor(raw["floor"], floorSpec.Min, floorSpec.Max)
	if !ok {
		rowsRejected.WithLabelValues("floor").Inc()
		return nil, &RowError{
			Line:    line,
			Message: fmt.Sprintf("Invalid floor number (must be %d-%d)", floorSpec.Min, floorSpec.Max),
		}
	}

	// 3. Status enumeration (empty is allowed, defaults downstream)
	status := raw["status"]
	if status != "" {
		if !schema.IsValidStatus(status) {
			rowsRejected.WithLabelValues("status").Inc()
			return nil, &RowError{
				Line:    line,
				Message: fmt.Sprintf("Invalid status (must be one of: %s)", strings.Join(schema.CustomerStatuses, ", ")),
			}
		}
		status = strings.ToLower(status)
	}

	// 4. Date fields, rewritten to canonical YYYY-MM-DD
	dates := make(map[string]string, 4)
	for _, field := range schema.DateColumns(specs) {
		value := raw[field]
		if value == "" {
			continue
		}
		normalized, ok := NormalizeDate(value)
		if !ok {
			rowsRejected.WithLabelValues("date").Inc()
			return nil, &RowError{
				Line:    line,
				Message: fmt.Sprintf("Invalid %s (expected a date like %s)", field, DateFormat),
			}
		}
		dates[field] = normalized
	}

	return &Customer{
		Name:              raw["name"],
		Phone:             raw["phone"],
		Interest:          raw["interest"],
		Floor:             floor,
		VisitedDate:       dates["visited_date"],
		Status:            status,
		Notes:             raw["notes"],
		AssignedTo:        raw["assigned_to"],
		Email:             raw["email"],
		Address:           raw["address"],
		City:              raw["city"],
		State:             raw["state"],
		Country:           raw["country"],
		PostalCode:        raw["postal_code"],
		DateOfBirth:       dates["date_of_birth"],
		AnniversaryDate:   dates["anniversary_date"],
		Community:         raw["community"],
		MotherTongue:      raw["mother_tongue"],
		ReasonForVisit:    raw["reason_for_visit"],
		AgeOfEndUser:      raw["age_of_end_user"],
		SavingScheme:      raw["saving_scheme"],
		CatchmentArea:     raw["catchment_area"],
		NextFollowUp:      dates["next_follow_up"],
		SummaryNotes:      raw["summary_notes"],
		RingSize:          raw["ring_size"],
		CustomerInterests: raw["customer_interests"],
	}, nil
}

func findSpec(specs []schema.FieldSpec, name string) schema.FieldSpec {
	for _, spec := range specs {
		if spec.Name == name {
			return spec
		}
	}
	return schema.FieldSpec{Name: name}
}
