// Package schema defines the static field catalog for the customer import.
//
// The catalog is read-only configuration consulted by both the parser and
// the validator. It is never mutated at runtime.
package schema

import "strings"

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldInt
	FieldDate
)

// FieldSpec defines validation rules for a single CSV column.
type FieldSpec struct {
	Name       string    // Column header name (lowercase, must match CSV header after cleaning)
	Type       FieldType // Expected data type
	Required   bool      // Value must be non-empty
	EnumValues []string  // Valid values for FieldEnum type (lowercase)
	Min, Max   int       // Closed range for FieldInt type
}

// CustomerStatuses is the closed set of legal customer status values.
// An empty status is accepted and defaults to "active" downstream.
var CustomerStatuses = []string{"active", "inactive", "lead", "prospect", "customer", "vip"}

// CustomerFieldSpecs defines the expected CSV columns for bulk customer
// imports, in canonical template order.
var CustomerFieldSpecs = []FieldSpec{
	{Name: "name", Type: FieldText, Required: true},
	{Name: "phone", Type: FieldText, Required: true},
	{Name: "interest", Type: FieldText},
	{Name: "floor", Type: FieldInt, Required: true, Min: 1, Max: 10},
	{Name: "visited_date", Type: FieldDate},
	{Name: "status", Type: FieldEnum, EnumValues: CustomerStatuses},
	{Name: "notes", Type: FieldText},
	{Name: "assigned_to", Type: FieldText},
	{Name: "email", Type: FieldText},
	{Name: "address", Type: FieldText},
	{Name: "city", Type: FieldText},
	{Name: "state", Type: FieldText},
	{Name: "country", Type: FieldText},
	{Name: "postal_code", Type: FieldText},
	{Name: "date_of_birth", Type: FieldDate},
	{Name: "anniversary_date", Type: FieldDate},
	{Name: "community", Type: FieldText},
	{Name: "mother_tongue", Type: FieldText},
	{Name: "reason_for_visit", Type: FieldText},
	{Name: "age_of_end_user", Type: FieldText},
	{Name: "saving_scheme", Type: FieldText},
	{Name: "catchment_area", Type: FieldText},
	{Name: "next_follow_up", Type: FieldDate},
	{Name: "summary_notes", Type: FieldText},
	{Name: "ring_size", Type: FieldText},
	{Name: "customer_interests", Type: FieldText},
}

// CustomerColumns returns the canonical column names in template order.
func CustomerColumns() []string {
	cols := make([]string, len(CustomerFieldSpecs))
	for i, spec := range CustomerFieldSpecs {
		cols[i] = spec.Name
	}
	return cols
}

// RequiredColumns returns the names of all required columns.
func RequiredColumns(specs []FieldSpec) []string {
	var required []string
	for _, spec := range specs {
		if spec.Required {
			required = append(required, spec.Name)
		}
	}
	return required
}

// DateColumns returns the names of all date-typed columns.
func DateColumns(specs []FieldSpec) []string {
	var dates []string
	for _, spec := range specs {
		if spec.Type == FieldDate {
			dates = append(dates, spec.Name)
		}
	}
	return dates
}

// IsValidStatus reports whether s is a legal customer status.
// Comparison is case-insensitive; empty is not valid (callers treat
// empty as "not supplied").
func IsValidStatus(s string) bool {
	for _, v := range CustomerStatuses {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
