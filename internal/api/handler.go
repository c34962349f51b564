package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"cv-intake/internal/cv"
	"cv-intake/internal/processor"
	"cv-intake/internal/storage"
)

// RecordStore is everything the HTTP surface needs from the record
// store.
type RecordStore interface {
	Insert(ctx context.Context, rec *storage.CandidateRecord, initialStatus string) (string, error)
	FindByID(ctx context.Context, id string) (*storage.CandidateRecord, error)
	FindAll(ctx context.Context, deleted *bool) ([]*storage.CandidateRecord, error)
	Search(ctx context.Context, c *storage.Criteria) ([]*storage.CandidateRecord, error)
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
	UpdateFieldsOnly(ctx context.Context, id string, updates map[string]*string) (bool, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
	Restore(ctx context.Context, id string) (bool, error)
}

type API struct {
	store  RecordStore
	parser *cv.Parser
	stages map[string]*processor.Stage
	logger *zap.SugaredLogger
}

func NewAPI(store RecordStore, parser *cv.Parser, stages []*processor.Stage, logger *zap.SugaredLogger) *API {
	byName := make(map[string]*processor.Stage, len(stages))
	for _, st := range stages {
		byName[st.Name()] = st
	}
	return &API{
		store:  store,
		parser: parser,
		stages: byName,
		logger: logger.Named("api"),
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
