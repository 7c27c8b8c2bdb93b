// Package importer provides the business logic for bulk customer CSV imports.
// This package has no HTTP dependencies and can be used by any frontend.
package importer

import (
	"fmt"

	"github.com/google/uuid"
)

// RawRow maps cleaned header column names to the raw string values of one
// data line. Ephemeral: it exists only between parsing and validation of
// that line.
type RawRow map[string]string

// Customer is the typed result of one fully validated data row.
// A Customer only exists for rows that passed every validation rule;
// it is never partially valid.
type Customer struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Interest          string `json:"interest,omitempty"`
	Floor             int    `json:"floor"`
	VisitedDate       string `json:"visited_date,omitempty"`
	Status            string `json:"status,omitempty"`
	Notes             string `json:"notes,omitempty"`
	AssignedTo        string `json:"assigned_to,omitempty"`
	Email             string `json:"email,omitempty"`
	Address           string `json:"address,omitempty"`
	City              string `json:"city,omitempty"`
	State             string `json:"state,omitempty"`
	Country           string `json:"country,omitempty"`
	PostalCode        string `json:"postal_code,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	AnniversaryDate   string `json:"anniversary_date,omitempty"`
	Community         string `json:"community,omitempty"`
	MotherTongue      string `json:"mother_tongue,omitempty"`
	ReasonForVisit    string `json:"reason_for_visit,omitempty"`
	AgeOfEndUser      string `json:"age_of_end_user,omitempty"`
	SavingScheme      string `json:"saving_scheme,omitempty"`
	CatchmentArea     string `json:"catchment_area,omitempty"`
	NextFollowUp      string `json:"next_follow_up,omitempty"`
	SummaryNotes      string `json:"summary_notes,omitempty"`
	RingSize          string `json:"ring_size,omitempty"`
	CustomerInterests string `json:"customer_interests,omitempty"`
}

// RowError describes why one data line was excluded from the importable set.
// Line numbers are 1-based and counted against the original file including
// the header, so messages map directly to what a user sees in a spreadsheet.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Batch is the in-memory result of parsing one uploaded file: the ordered
// list of validated customers plus the ordered list of row errors.
// A fresh Batch is created per file selection and replaced wholesale on
// re-selection. The ID doubles as the idempotency key for submission.
type Batch struct {
	ID       uuid.UUID  `json:"batch_id"`
	FileName string     `json:"file_name"`
	Records  []Customer `json:"records"`
	Errors   []RowError `json:"errors"`
}

// Submittable reports whether the batch may be handed to the bulk-create
// collaborator: no validation errors and at least one record. Any error
// blocks the whole batch; there is no per-row best-effort import.
func (b *Batch) Submittable() bool {
	return len(b.Errors) == 0 && len(b.Records) > 0
}
