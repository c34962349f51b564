package processor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cv-intake/internal/storage"
	"cv-intake/internal/webhook"
)

// Store is the slice of the record store the processors need.
type Store interface {
	FindByStatus(ctx context.Context, status string) ([]*storage.CandidateRecord, error)
	FindByID(ctx context.Context, id string) (*storage.CandidateRecord, error)
	AppendHistory(ctx context.Context, id, status string) (bool, error)
	AdvanceStatus(ctx context.Context, id, from, to string) (bool, error)
}

// URLResolver returns the webhook URL for a stage. Resolution failure is
// a configuration error for the call path, never a guessed URL.
type URLResolver func() (string, error)

// Detail is one record's outcome inside a batch summary.
type Detail struct {
	ID     string `json:"id"`
	Status string `json:"status"` // success, failed or error
	Error  string `json:"error,omitempty"`
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Details []Detail `json:"details"`
}

// InvalidStatusError is returned by RunSingle when the record is not in
// the stage's trigger status. The actual status rides along for the
// caller's response.
type InvalidStatusError struct {
	Expected string
	Actual   string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("record is in status %q, expected %q", e.Actual, e.Expected)
}

// Stage runs one step of the candidate lifecycle: scan records in the
// trigger status, call the stage webhook per record, record the outcome
// in history, and advance successful records to the next status. Both
// stages share this skeleton and differ only in configuration.
type Stage struct {
	name            string
	trigger         string
	next            string
	useSuccessField bool
	resolveURL      URLResolver
	payload         func(*storage.CandidateRecord) map[string]interface{}

	store  Store
	client *webhook.Client
	logger *zap.SugaredLogger
}

// Name identifies the stage in logs, config and trigger endpoints.
func (s *Stage) Name() string { return s.name }

// Trigger is the current_status value this stage scans for.
func (s *Stage) Trigger() string { return s.trigger }

func (s *Stage) call(ctx context.Context, url string, payload map[string]interface{}) webhook.Result {
	if s.useSuccessField {
		return s.client.CallWithSuccessField(ctx, url, payload, s.name)
	}
	return s.client.Call(ctx, url, payload, s.name)
}

// processOne runs steps 2-5 of the stage for a single record: build the
// payload, call the webhook, append the outcome to history regardless of
// result, and advance the status only on success.
func (s *Stage) processOne(ctx context.Context, rec *storage.CandidateRecord) (bool, error) {
	url, err := s.resolveURL()
	if err != nil {
		return false, err
	}

	result := s.call(ctx, url, s.payload(rec))
	if _, err := s.store.AppendHistory(ctx, rec.ID, result.HistoryStatus()); err != nil {
		return false, fmt.Errorf("append history: %w", err)
	}
	if !result.Success {
		return false, nil
	}

	advanced, err := s.store.AdvanceStatus(ctx, rec.ID, s.trigger, s.next)
	if err != nil {
		return false, fmt.Errorf("advance status: %w", err)
	}
	if !advanced {
		// Another run advanced it first; the webhook outcome is already
		// in history, so treat this as done.
		s.logger.Infow("record already advanced", "id", rec.ID, "stage", s.name)
	} else {
		s.logger.Infow("record advanced", "id", rec.ID, "from", s.trigger, "to", s.next)
	}
	return true, nil
}

// Run processes every non-deleted record currently in the trigger
// status. Per-record faults are recorded in the summary and never abort
// the batch; only the initial store query can fail the run.
func (s *Stage) Run(ctx context.Context, triggerSource string) (*BatchResult, error) {
	s.logger.Infow("starting batch", "stage", s.name, "trigger_status", s.trigger, "source", triggerSource)

	records, err := s.store.FindByStatus(ctx, s.trigger)
	if err != nil {
		return nil, fmt.Errorf("query records in status %q: %w", s.trigger, err)
	}
	s.logger.Infow("found records", "stage", s.name, "count", len(records))

	result := &BatchResult{Total: len(records), Details: []Detail{}}
	for _, rec := range records {
		ok, err := s.processOne(ctx, rec)
		switch {
		case err != nil:
			s.logger.Errorw("error processing record", "stage", s.name, "id", rec.ID, "error", err)
			result.Failed++
			result.Details = append(result.Details, Detail{ID: rec.ID, Status: "error", Error: err.Error()})
		case ok:
			result.Success++
			result.Details = append(result.Details, Detail{ID: rec.ID, Status: "success"})
		default:
			result.Failed++
			result.Details = append(result.Details, Detail{ID: rec.ID, Status: "failed"})
		}
	}

	s.logger.Infow("batch completed", "stage", s.name, "source", triggerSource,
		"total", result.Total, "success", result.Success, "failed", result.Failed)
	return result, nil
}

// RunSingle re-triggers the stage for one record. It fails with
// storage.ErrNotFound when the ID does not exist or the record is
// soft-deleted, and with InvalidStatusError when the record is not in
// the trigger status.
func (s *Stage) RunSingle(ctx context.Context, id string) (*Detail, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsDeleted {
		// FindByID returns deleted records; processors never touch them
		return nil, storage.ErrNotFound
	}
	if rec.CurrentStatus != s.trigger {
		return nil, &InvalidStatusError{Expected: s.trigger, Actual: rec.CurrentStatus}
	}

	ok, err := s.processOne(ctx, rec)
	if err != nil {
		return &Detail{ID: id, Status: "error", Error: err.Error()}, nil
	}
	if !ok {
		return &Detail{ID: id, Status: "failed"}, nil
	}
	return &Detail{ID: id, Status: "success"}, nil
}
