package storage

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cv-intake/internal/status"
)

// testDB connects to the database named by TEST_DATABASE_URL. The suite
// is skipped when the variable is unset so unit runs stay hermetic.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping record store integration tests")
	}
	db, err := NewDB(dsn, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func insertTestRecord(t *testing.T, db *DB, kd KnownData) string {
	t.Helper()
	id, err := db.Insert(context.Background(), &CandidateRecord{KnownData: kd}, status.Submitted)
	require.NoError(t, err)
	return id
}

func TestInsertSeedsLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{Name: strPtr("Jane")})

	rec, err := db.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, status.Submitted, rec.CurrentStatus)
	require.Len(t, rec.StatusHistory, 1)
	assert.Equal(t, status.Submitted, rec.StatusHistory[0].Status)
	assert.NotEmpty(t, rec.StatusHistory[0].Timestamp)
	assert.False(t, rec.IsDeleted)
}

func TestFindByIDMalformedID(t *testing.T) {
	db := testDB(t)

	_, err := db.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{})

	ok, err := db.UpdateStatus(ctx, id, status.ReadyForBotInterview)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := db.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, status.ReadyForBotInterview, rec.CurrentStatus)
	require.Len(t, rec.StatusHistory, 2)
	assert.Equal(t, status.ReadyForBotInterview, rec.StatusHistory[1].Status)
}

func TestAppendHistoryLeavesStatusAlone(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{})

	ok, err := db.AppendHistory(ctx, id, status.WebhookStatus(200, "ok"))
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := db.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, status.Submitted, rec.CurrentStatus)
	require.Len(t, rec.StatusHistory, 2)
	assert.Equal(t, "webhook_status_200: ok", rec.StatusHistory[1].Status)
}

func TestAdvanceStatusIsConditional(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{})

	ok, err := db.AdvanceStatus(ctx, id, status.ReadyForBotInterview, status.BotInterview)
	require.NoError(t, err)
	assert.False(t, ok, "record is not in the expected status")

	ok, err = db.AdvanceStatus(ctx, id, status.Submitted, status.Extracting)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := db.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, status.Extracting, rec.CurrentStatus)
}

func TestUpdateFieldsOnlyProtectsPhoneAndStatus(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{PhoneNumber: strPtr("123456")})

	ok, err := db.UpdateFieldsOnly(ctx, id, map[string]*string{
		"phone_number":   strPtr("555"),
		"current_status": strPtr("Done"),
		"campaign":       strPtr("winter"),
		"match_score":    strPtr("unknown"),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := db.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "123456", *rec.KnownData.PhoneNumber)
	assert.Equal(t, status.Submitted, rec.CurrentStatus)
	assert.Equal(t, "winter", *rec.KnownData.Campaign)
	assert.Nil(t, rec.KnownData.MatchScore)
}

func TestKnownDataPatch(t *testing.T) {
	patch, count, err := knownDataPatch(map[string]*string{
		"campaign":       strPtr("winter"),
		"match_score":    strPtr("Unknown"),
		"phone_number":   strPtr("555"),
		"current_status": strPtr("Done"),
		"not_a_field":    strPtr("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count, "only schema keys outside the protected set survive")

	var decoded map[string]*string
	require.NoError(t, json.Unmarshal(patch, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "winter", *decoded["campaign"])
	score, present := decoded["match_score"]
	assert.True(t, present, `"unknown" merges as an explicit null, not an omission`)
	assert.Nil(t, score)
}

func TestUpdateFieldsOnlyConcurrentMergesKeepBothFields(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = db.UpdateFieldsOnly(ctx, id, map[string]*string{"email": strPtr("jane@example.com")})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = db.UpdateFieldsOnly(ctx, id, map[string]*string{"campaign": strPtr("winter")})
	}()
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	rec, err := db.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec.KnownData.Email)
	assert.Equal(t, "jane@example.com", *rec.KnownData.Email)
	require.NotNil(t, rec.KnownData.Campaign)
	assert.Equal(t, "winter", *rec.KnownData.Campaign)
}

func TestUpdateFieldsOnlyMissingOrDeleted(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	ok, err := db.UpdateFieldsOnly(ctx, "not-a-uuid", map[string]*string{"campaign": strPtr("x")})
	require.NoError(t, err)
	assert.False(t, ok)

	id := insertTestRecord(t, db, KnownData{})
	_, err = db.SoftDelete(ctx, id)
	require.NoError(t, err)

	ok, err = db.UpdateFieldsOnly(ctx, id, map[string]*string{"campaign": strPtr("x")})
	require.NoError(t, err)
	assert.False(t, ok, "deleted records are not updatable")
}

func TestSoftDeleteVisibility(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{Name: strPtr("ToDelete")})

	ok, err := db.SoftDelete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	listed, err := db.FindAll(ctx, nil)
	require.NoError(t, err)
	for _, rec := range listed {
		assert.NotEqual(t, id, rec.ID, "deleted record must not appear in default listing")
	}

	deleted := true
	listed, err = db.FindAll(ctx, &deleted)
	require.NoError(t, err)
	found := false
	for _, rec := range listed {
		if rec.ID == id {
			found = true
		}
	}
	assert.True(t, found, "deleted record must appear in deleted listing")

	rec, err := db.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, rec.IsDeleted)

	// restoring an already-restored record is a defined no-op
	ok, err = db.Restore(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.Restore(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err = db.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, rec.IsDeleted)
}

func TestSearchRequiresCriteria(t *testing.T) {
	db := testDB(t)

	_, err := db.Search(context.Background(), &Criteria{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = db.Search(context.Background(), &Criteria{MatchScore: "70+"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchBucketsAreNumeric(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	low := insertTestRecord(t, db, KnownData{MatchScore: strPtr("9"), Campaign: strPtr("bucket-test")})
	high := insertTestRecord(t, db, KnownData{MatchScore: strPtr("95"), Campaign: strPtr("bucket-test")})

	recs, err := db.Search(ctx, &Criteria{Campaign: "bucket-test", MatchScore: BucketBelow70})
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, rec := range recs {
		ids[rec.ID] = true
	}
	assert.True(t, ids[low], `"9" belongs below 70`)
	assert.False(t, ids[high])
}

func TestFindByStatusExcludesDeleted(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := insertTestRecord(t, db, KnownData{})
	_, err := db.SoftDelete(ctx, id)
	require.NoError(t, err)

	recs, err := db.FindByStatus(ctx, status.Submitted)
	require.NoError(t, err)
	for _, rec := range recs {
		assert.NotEqual(t, id, rec.ID)
	}
}
