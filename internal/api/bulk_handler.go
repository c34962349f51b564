package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"cv-intake/internal/bulk"
	"cv-intake/internal/status"
	"cv-intake/internal/storage"
)

// BulkUploadHandler creates one record per row of an uploaded Excel or
// CSV sheet. Row-level insert failures don't abort the rest of the
// sheet.
// @Summary Bulk-create records from a spreadsheet
// @Tags records
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel (.xlsx) or CSV file"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /records/bulk [post]
func (a *API) BulkUploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form (max 10MB)")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	var rows []bulk.Row
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx", ".xlsm":
		rows, err = bulk.ParseExcel(data)
	case ".csv":
		rows, err = bulk.ParseCSV(data)
	default:
		writeError(w, http.StatusBadRequest, "unsupported file type (supported: XLSX, CSV)")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created := make([]string, 0, len(rows))
	failed := 0
	for _, row := range rows {
		rec := &storage.CandidateRecord{
			KnownData: storage.KnownData{
				Name:        optional(row.Name),
				PhoneNumber: optional(row.PhoneNumber),
				Email:       optional(row.Email),
				Campaign:    optional(row.Campaign),
				Notes:       optional(row.Notes),
			},
		}
		id, err := a.store.Insert(r.Context(), rec, status.Submitted)
		if err != nil {
			a.logger.Errorw("bulk insert failed", "row_name", row.Name, "error", err)
			failed++
			continue
		}
		created = append(created, id)
	}

	a.logger.Infow("bulk upload completed", "filename", header.Filename,
		"rows", len(rows), "created", len(created), "failed", failed)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(rows),
		"created": len(created),
		"failed":  failed,
		"ids":     created,
	})
}
