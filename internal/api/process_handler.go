package api

import (
	"errors"
	"net/http"

	"cv-intake/internal/config"
	"cv-intake/internal/processor"
	"cv-intake/internal/storage"
)

// TriggerProcessorHandler runs a full batch of the named stage right
// now, independent of the schedule.
// @Summary Manually trigger a processor batch
// @Tags processors
// @Produce json
// @Param stage path string true "Stage name (bot_processor or classification_processor)"
// @Success 200 {object} processor.BatchResult
// @Failure 404 {object} map[string]string
// @Router /process/{stage} [post]
func (a *API) TriggerProcessorHandler(w http.ResponseWriter, r *http.Request) {
	stage, ok := a.stages[r.PathValue("stage")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown processor")
		return
	}
	result, err := stage.Run(r.Context(), "manual")
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			a.logger.Errorw("processor misconfigured", "stage", stage.Name(), "error", err)
			writeError(w, http.StatusInternalServerError, cfgErr.Error())
			return
		}
		a.logger.Errorw("batch run failed", "stage", stage.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, "processor run failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// TriggerSingleRecordHandler re-runs the named stage for one record.
func (a *API) TriggerSingleRecordHandler(w http.ResponseWriter, r *http.Request) {
	stage, ok := a.stages[r.PathValue("stage")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown processor")
		return
	}
	detail, err := stage.RunSingle(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	var statusErr *processor.InvalidStatusError
	if errors.As(err, &statusErr) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"detail":         "record is not in the trigger status",
			"current_status": statusErr.Actual,
			"expected":       statusErr.Expected,
		})
		return
	}
	if err != nil {
		a.logger.Errorw("single-record run failed", "stage", stage.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, "processor run failed")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
