package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/aurumcrm/customer-import/internal/history"
	"github.com/aurumcrm/customer-import/internal/importer"
	"github.com/aurumcrm/customer-import/internal/logging"
	"github.com/aurumcrm/customer-import/internal/schema"
)

// batchSummary is the JSON shape shared by preview and import rejections.
type batchSummary struct {
	BatchID     string              `json:"batch_id"`
	FileName    string              `json:"file_name"`
	TotalRows   int                 `json:"total_rows"`
	ValidRows   int                 `json:"valid_rows"`
	ErrorRows   int                 `json:"error_rows"`
	Submittable bool                `json:"submittable"`
	Records     []importer.Customer `json:"records"`
	Errors      []importer.RowError `json:"errors"`
}

func (s *Server) summarize(batch *importer.Batch) batchSummary {
	records := batch.Records
	if len(records) > s.cfg.Import.PreviewRows {
		records = records[:s.cfg.Import.PreviewRows]
	}
	// Empty slices rather than nulls in the JSON
	if records == nil {
		records = []importer.Customer{}
	}
	errs := batch.Errors
	if errs == nil {
		errs = []importer.RowError{}
	}
	return batchSummary{
		BatchID:     batch.ID.String(),
		FileName:    batch.FileName,
		TotalRows:   len(batch.Records) + len(batch.Errors),
		ValidRows:   len(batch.Records),
		ErrorRows:   len(batch.Errors),
		Submittable: batch.Submittable(),
		Records:     records,
		Errors:      errs,
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDownloadTemplate serves the header-only CSV import template.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", importer.TemplateFileName))
	io.WriteString(w, importer.Template())
}

// handlePreview parses and validates an uploaded file and reports what an
// import would do, without submitting anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.summarize(batch))
}

// handleImport parses, validates, and submits an uploaded file.
//
// Any validation error blocks the whole batch: nothing is submitted and the
// full error list is returned so the user can fix the spreadsheet in one
// pass. On upstream failure the upstream message is surfaced verbatim.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	log := logging.WithFields(r.Context(), "batch_id", batch.ID, "file", batch.FileName)

	if len(batch.Errors) > 0 {
		log.Info("import rejected by validation",
			"valid_rows", len(batch.Records),
			"error_rows", len(batch.Errors),
		)
		s.recordAttempt(r, batch, 0, history.OutcomeRejected, "validation errors")
		writeJSON(w, http.StatusUnprocessableEntity, s.summarize(batch))
		return
	}

	if len(batch.Records) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "file contains no data rows")
		return
	}

	imported, err := s.submitter.Submit(r.Context(), batch)
	if err != nil {
		log.Error("bulk create failed", "error", err)
		s.recordAttempt(r, batch, 0, history.OutcomeFailed, err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	log.Info("batch imported", "records", imported)
	s.recordAttempt(r, batch, imported, history.OutcomeImported, "")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": batch.ID.String(),
		"imported": imported,
	})
}

// handleListImports returns recent import attempts, newest first.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "import history is not configured")
		return
	}

	limit := s.cfg.Import.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	attempts, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if attempts == nil {
		attempts = []history.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

// parseUpload reads the multipart file from the request and runs it through
// the parser. On failure it writes the error response and returns ok=false.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*importer.Batch, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return nil, false
	}

	batch, err := importer.Parse(header.Filename, data, schema.CustomerFieldSpecs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return batch, true
}

// recordAttempt persists the outcome of an import attempt. Best-effort:
// a history failure never fails the request.
func (s *Server) recordAttempt(r *http.Request, batch *importer.Batch, imported int, outcome, errMsg string) {
	if s.history == nil {
		return
	}
	err := s.history.Record(r.Context(), history.Attempt{
		BatchID:  batch.ID,
		FileName: batch.FileName,
		Imported: imported,
		Rejected: len(batch.Errors),
		Outcome:  outcome,
		Error:    errMsg,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("record import attempt failed", "error", err)
	}
}
