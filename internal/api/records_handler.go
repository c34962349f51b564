package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"cv-intake/internal/status"
	"cv-intake/internal/storage"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateRecordHandler accepts a new candidate: a CV file, loose metadata
// fields, or both. Text extraction is best effort; a failure is recorded
// on the record, not returned to the uploader.
// @Summary Create candidate record
// @Description Upload a CV file and/or candidate metadata
// @Tags records
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "CV file (PDF/DOCX/TXT)"
// @Param name formData string false "Candidate name"
// @Param phone formData string false "Phone number"
// @Param notes formData string false "Free-form notes"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /records [post]
func (a *API) CreateRecordHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form (max 10MB)")
		return
	}

	name := r.FormValue("name")
	phone := r.FormValue("phone")
	notes := r.FormValue("notes")

	rec := &storage.CandidateRecord{
		KnownData: storage.KnownData{
			Name:        optional(name),
			PhoneNumber: optional(phone),
			Notes:       optional(notes),
		},
	}

	file, header, err := r.FormFile("file")
	hasFile := err == nil
	if !hasFile && name == "" && phone == "" && notes == "" {
		writeError(w, http.StatusBadRequest, "must provide either a CV file or metadata")
		return
	}

	if hasFile {
		defer file.Close()
		text, size, extractErr := a.parser.ExtractText(header.Filename, file)
		rec.FileMetadata = &storage.FileMetadata{
			Filename:    header.Filename,
			SizeBytes:   size,
			ContentType: header.Header.Get("Content-Type"),
			UploadedAt:  storage.NowTimestamp(),
		}
		rec.ExtractedText = text
		rec.Processing = &storage.Processing{ParseSuccess: extractErr == nil}
		if extractErr != nil {
			msg := extractErr.Error()
			rec.Processing.ErrorMessage = &msg
			a.logger.Warnw("text extraction failed", "filename", header.Filename, "error", extractErr)
		}
	}

	id, err := a.store.Insert(r.Context(), rec, status.Submitted)
	if err != nil {
		a.logger.Errorw("insert record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store record")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "stored"})
}

// ListRecordsHandler lists records. ?deleted=true switches to the
// deleted-only view.
func (a *API) ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	var deleted *bool
	if r.URL.Query().Get("deleted") == "true" {
		t := true
		deleted = &t
	}
	recs, err := a.store.FindAll(r.Context(), deleted)
	if err != nil {
		a.logger.Errorw("list records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if recs == nil {
		recs = []*storage.CandidateRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// GetRecordHandler returns one record by ID, deleted or not.
func (a *API) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := a.store.FindByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		a.logger.Errorw("get record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load record")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateRecordHandler merges the provided known_data fields into the
// record. Status fields and the phone number are protected and silently
// ignored.
func (a *API) UpdateRecordHandler(w http.ResponseWriter, r *http.Request) {
	var updates map[string]*string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ok, err := a.store.UpdateFieldsOnly(r.Context(), r.PathValue("id"), updates)
	if err != nil {
		a.logger.Errorw("update record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update record")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type setStatusRequest struct {
	StatusID int `json:"status_id"`
}

// SetStatusHandler moves a record to the lifecycle status with the given
// numeric ID, appending the matching history entry.
func (a *API) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name, ok := status.ByID(req.StatusID)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status_id")
		return
	}
	updated, err := a.store.UpdateStatus(r.Context(), r.PathValue("id"), name)
	if err != nil {
		a.logger.Errorw("set status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": name})
}

// DeleteRecordHandler soft-deletes a record; it stays retrievable by ID
// and through the deleted listing.
func (a *API) DeleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	ok, err := a.store.SoftDelete(r.Context(), r.PathValue("id"))
	if err != nil {
		a.logger.Errorw("delete record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RestoreRecordHandler clears the soft-delete flag.
func (a *API) RestoreRecordHandler(w http.ResponseWriter, r *http.Request) {
	ok, err := a.store.Restore(r.Context(), r.PathValue("id"))
	if err != nil {
		a.logger.Errorw("restore record failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to restore record")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// ListStatusesHandler returns the lifecycle statuses in ID order.
func (a *API) ListStatusesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, status.All())
}

// SearchRecordsHandler runs the advanced search. A request with zero
// criteria is rejected before the store is touched.
// @Summary Search candidate records
// @Tags records
// @Accept json
// @Produce json
// @Param criteria body storage.Criteria true "Search criteria (at least one required)"
// @Success 200 {array} storage.CandidateRecord
// @Failure 400 {object} map[string]string
// @Router /search [post]
func (a *API) SearchRecordsHandler(w http.ResponseWriter, r *http.Request) {
	var crit storage.Criteria
	if err := json.NewDecoder(r.Body).Decode(&crit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !crit.HasAny() {
		writeError(w, http.StatusBadRequest, "at least one search criterion is required")
		return
	}
	if crit.MatchScore != "" && !storage.ValidBucket(crit.MatchScore) {
		writeError(w, http.StatusBadRequest, "unrecognized match_score bucket")
		return
	}
	recs, err := a.store.Search(r.Context(), &crit)
	if errors.Is(err, storage.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		a.logger.Errorw("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search error")
		return
	}
	if recs == nil {
		recs = []*storage.CandidateRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
