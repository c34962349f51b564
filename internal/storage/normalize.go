package storage

import (
	"strconv"
	"strings"
)

// The sentinel string legacy writers used for "no value". It is folded
// to nil at every read and write boundary and must never leak out.
const unknownSentinel = "unknown"

func isUnknown(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), unknownSentinel)
}

// normalizeValue converts the "unknown" sentinel (any casing) to nil.
func normalizeValue(v *string) *string {
	if v != nil && isUnknown(*v) {
		return nil
	}
	return v
}

// NormalizeRecord applies the read-side normalization pass: every
// "unknown" value in known_data becomes nil. The required keys
// (job_type, match_score, class_explain) are always present in the
// serialized form because KnownData declares them without omitempty, so
// stored legacy inconsistencies never leak to callers.
func NormalizeRecord(rec *CandidateRecord) {
	for _, slot := range rec.KnownData.fields() {
		*slot = normalizeValue(*slot)
	}
}

// Match-score buckets used by Search. Matching is numeric: the stored
// score is parsed as a number, never compared lexicographically.
const (
	BucketBelow70  = "below 70"
	Bucket70to79   = "70-79"
	Bucket80to89   = "80-89"
	Bucket90to100  = "90-100"
	BucketAnyScore = "all match_score"
)

// ValidBucket reports whether label names a known match-score bucket.
func ValidBucket(label string) bool {
	switch label {
	case BucketBelow70, Bucket70to79, Bucket80to89, Bucket90to100, BucketAnyScore:
		return true
	}
	return false
}

// InBucket reports whether a stored match_score value falls in the named
// bucket. A nil score never matches. Non-numeric values are excluded
// from the range buckets; values parsing above 100 fall outside every
// range bucket and only match "all match_score".
func InBucket(score *string, label string) bool {
	if score == nil || isUnknown(*score) {
		return false
	}
	if label == BucketAnyScore {
		return true
	}
	raw := strings.TrimSpace(*score)
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false
	}
	switch label {
	case BucketBelow70:
		return n < 70
	case Bucket70to79:
		return n >= 70 && n < 80
	case Bucket80to89:
		return n >= 80 && n < 90
	case Bucket90to100:
		return n >= 90 && n <= 100
	}
	return false
}
