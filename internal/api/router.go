package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler())

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Record lifecycle
	mux.HandleFunc("POST /api/records", a.CreateRecordHandler)
	mux.HandleFunc("POST /api/records/bulk", a.BulkUploadHandler)
	mux.HandleFunc("GET /api/records", a.ListRecordsHandler)
	mux.HandleFunc("GET /api/records/{id}", a.GetRecordHandler)
	mux.HandleFunc("PATCH /api/records/{id}", a.UpdateRecordHandler)
	mux.HandleFunc("PUT /api/records/{id}/status", a.SetStatusHandler)
	mux.HandleFunc("DELETE /api/records/{id}", a.DeleteRecordHandler)
	mux.HandleFunc("POST /api/records/{id}/restore", a.RestoreRecordHandler)

	// Search & status model
	mux.HandleFunc("POST /api/search", a.SearchRecordsHandler)
	mux.HandleFunc("GET /api/statuses", a.ListStatusesHandler)

	// Manual processor triggers
	mux.HandleFunc("POST /api/process/{stage}", a.TriggerProcessorHandler)
	mux.HandleFunc("POST /api/process/{stage}/{id}", a.TriggerSingleRecordHandler)

	return mux
}
