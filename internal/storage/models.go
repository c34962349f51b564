package storage

// CandidateRecord is the stored shape of one candidate's CV/metadata.
type CandidateRecord struct {
	ID            string        `json:"id"`
	KnownData     KnownData     `json:"known_data"`
	FileMetadata  *FileMetadata `json:"file_metadata,omitempty"`
	Processing    *Processing   `json:"processing,omitempty"`
	ExtractedText string        `json:"extracted_text"`
	CurrentStatus string        `json:"current_status"`
	StatusHistory []StatusEntry `json:"status_history"`
	IsDeleted     bool          `json:"is_deleted"`
}

// StatusEntry is one append-only audit trail entry. Timestamps are UTC
// ISO-8601 strings with an explicit Z suffix.
type StatusEntry struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// FileMetadata is present only when a file was uploaded at intake.
type FileMetadata struct {
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
	UploadedAt  string `json:"uploaded_at"`
}

// Processing records the text extraction outcome for an uploaded file.
type Processing struct {
	ParseSuccess bool    `json:"parse_success"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// KnownData holds the candidate attributes collected over the record's
// lifetime. All values are optional; nil means "not known". The
// job_type, match_score and class_explain keys are always serialized so
// readers can rely on their presence.
//
// PhoneNumber is immutable through the update path: once set at intake
// it can never be changed via UpdateFieldsOnly.
type KnownData struct {
	Name                    *string `json:"name,omitempty"`
	PhoneNumber             *string `json:"phone_number,omitempty"`
	Email                   *string `json:"email,omitempty"`
	Notes                   *string `json:"notes,omitempty"`
	Campaign                *string `json:"campaign,omitempty"`
	LatinName               *string `json:"latin_name,omitempty"`
	HebrewName              *string `json:"hebrew_name,omitempty"`
	Age                     *string `json:"age,omitempty"`
	Nationality             *string `json:"nationality,omitempty"`
	CanTravelEurope         *string `json:"can_travel_europe,omitempty"`
	CanVisitIsrael          *string `json:"can_visit_israel,omitempty"`
	LivesInEurope           *string `json:"lives_in_europe,omitempty"`
	NativeIsraeli           *string `json:"native_israeli,omitempty"`
	EnglishLevel            *string `json:"english_level,omitempty"`
	RemembersJobApplication *string `json:"remembers_job_application,omitempty"`
	SkillsSummary           *string `json:"skills_summary,omitempty"`
	JobType                 *string `json:"job_type"`
	MatchScore              *string `json:"match_score"`
	ClassExplain            *string `json:"class_explain"`
	RecruitNote             *string `json:"recruit_note,omitempty"`
}

// fields maps wire keys to their slot in KnownData. Keys absent here are
// silently dropped by UpdateFieldsOnly.
func (k *KnownData) fields() map[string]**string {
	return map[string]**string{
		"name":                      &k.Name,
		"phone_number":              &k.PhoneNumber,
		"email":                     &k.Email,
		"notes":                     &k.Notes,
		"campaign":                  &k.Campaign,
		"latin_name":                &k.LatinName,
		"hebrew_name":               &k.HebrewName,
		"age":                       &k.Age,
		"nationality":               &k.Nationality,
		"can_travel_europe":         &k.CanTravelEurope,
		"can_visit_israel":          &k.CanVisitIsrael,
		"lives_in_europe":           &k.LivesInEurope,
		"native_israeli":            &k.NativeIsraeli,
		"english_level":             &k.EnglishLevel,
		"remembers_job_application": &k.RemembersJobApplication,
		"skills_summary":            &k.SkillsSummary,
		"job_type":                  &k.JobType,
		"match_score":               &k.MatchScore,
		"class_explain":             &k.ClassExplain,
		"recruit_note":              &k.RecruitNote,
	}
}

// protectedFields may never be written through UpdateFieldsOnly. Status
// changes go through UpdateStatus/AppendHistory; the phone number is
// immutable once set.
var protectedFields = map[string]bool{
	"status":         true,
	"current_status": true,
	"status_history": true,
	"phone_number":   true,
	"phone":          true,
}

// Criteria describes an advanced search. At least one field must be set;
// FreeText is OR'd across the textual fields, everything else is AND'd.
type Criteria struct {
	FreeText   string `json:"free_text,omitempty"`
	Status     string `json:"current_status,omitempty"`
	JobType    string `json:"job_type,omitempty"`
	MatchScore string `json:"match_score,omitempty"`
	Campaign   string `json:"campaign,omitempty"`
	Country    string `json:"country,omitempty"`
}

// HasAny reports whether any criterion is set.
func (c *Criteria) HasAny() bool {
	return c.FreeText != "" || c.Status != "" || c.JobType != "" ||
		c.MatchScore != "" || c.Campaign != "" || c.Country != ""
}
