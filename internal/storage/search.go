package storage

import (
	"context"
	"fmt"
	"strings"
)

// freeTextColumns are the textual fields a free-text search is OR'd
// across, matched case-insensitively as substrings.
var freeTextColumns = []string{
	"extracted_text",
	"file_metadata->>'filename'",
	"file_metadata->>'content_type'",
	"known_data->>'name'",
	"known_data->>'phone_number'",
	"known_data->>'email'",
	"known_data->>'campaign'",
	"known_data->>'notes'",
	"known_data->>'job_type'",
	"known_data->>'match_score'",
	"known_data->>'class_explain'",
	"known_data->>'latin_name'",
	"known_data->>'hebrew_name'",
	"known_data->>'nationality'",
	"current_status",
}

// Search runs the combinatorial filter: the free-text OR-set intersected
// with the exact/substring filters and the match-score bucket. Deleted
// records are always excluded. At least one criterion is required;
// calling with none is a contract violation rejected before any query.
//
// Bucket filtering is numeric. The SQL side only narrows to rows that
// have a score at all; the definitive bucket decision is InBucket on the
// parsed value, so "9" lands below 70 instead of matching a 9x pattern.
func (db *DB) Search(ctx context.Context, c *Criteria) ([]*CandidateRecord, error) {
	if c == nil || !c.HasAny() {
		return nil, fmt.Errorf("%w: at least one search criterion is required", ErrValidation)
	}
	if c.MatchScore != "" && !ValidBucket(c.MatchScore) {
		return nil, fmt.Errorf("%w: unrecognized match_score bucket %q", ErrValidation, c.MatchScore)
	}

	where := []string{"NOT is_deleted"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.FreeText != "" {
		ph := arg("%" + c.FreeText + "%")
		ors := make([]string, 0, len(freeTextColumns))
		for _, col := range freeTextColumns {
			ors = append(ors, fmt.Sprintf("%s ILIKE %s", col, ph))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if c.Status != "" {
		where = append(where, fmt.Sprintf("current_status = %s", arg(c.Status)))
	}
	if c.JobType != "" {
		where = append(where, fmt.Sprintf("known_data->>'job_type' ILIKE %s", arg("%"+c.JobType+"%")))
	}
	if c.Campaign != "" {
		where = append(where, fmt.Sprintf("known_data->>'campaign' ILIKE %s", arg("%"+c.Campaign+"%")))
	}
	if c.Country != "" {
		where = append(where, fmt.Sprintf("known_data->>'nationality' ILIKE %s", arg("%"+c.Country+"%")))
	}
	if c.MatchScore != "" {
		where = append(where, "known_data->>'match_score' IS NOT NULL")
	}

	q := `SELECT ` + recordColumns + ` FROM candidate_records WHERE ` + strings.Join(where, " AND ")
	recs, err := db.queryRecords(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	if c.MatchScore == "" {
		return recs, nil
	}
	filtered := recs[:0]
	for _, rec := range recs {
		if InBucket(rec.KnownData.MatchScore, c.MatchScore) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}
