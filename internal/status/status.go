package status

import "fmt"

// Lifecycle statuses a record moves through. These are the only values
// allowed in current_status; auxiliary history strings live alongside
// them in status_history but never become the current status.
const (
	Submitted              = "Submitted"
	Extracting             = "Extracting"
	ReadyForBotInterview   = "Ready For Bot Interview"
	BotInterview           = "Bot Interview"
	ReadyForClassification = "Ready For Classification"
	InClassification       = "In Classification"
	ReadyForRecruit        = "Ready For Recruit"
)

// Status pairs a lifecycle status name with its stable numeric ID.
type Status struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var ordered = []Status{
	{1, Submitted},
	{2, Extracting},
	{3, ReadyForBotInterview},
	{4, BotInterview},
	{5, ReadyForClassification},
	{6, InClassification},
	{7, ReadyForRecruit},
}

var byID = func() map[int]string {
	m := make(map[int]string, len(ordered))
	for _, s := range ordered {
		m[s.ID] = s.Name
	}
	return m
}()

var byName = func() map[string]int {
	m := make(map[string]int, len(ordered))
	for _, s := range ordered {
		m[s.Name] = s.ID
	}
	return m
}()

// ByID returns the status name for a numeric ID.
func ByID(id int) (string, bool) {
	name, ok := byID[id]
	return name, ok
}

// IDFor returns the numeric ID for a status name.
func IDFor(name string) (int, bool) {
	id, ok := byName[name]
	return id, ok
}

// All returns every lifecycle status in ID order.
func All() []Status {
	out := make([]Status, len(ordered))
	copy(out, ordered)
	return out
}

// Valid reports whether name is a lifecycle status.
func Valid(name string) bool {
	_, ok := byName[name]
	return ok
}

// Auxiliary status strings recorded in status_history only.
const (
	ProcessingSuccess = "processing_success"
	ProcessingFailed  = "processing_failed"
	processingError   = "processing_error"
	webhookPrefix     = "webhook_status"
	webhookError      = "webhook_error"
)

// Free text embedded in auxiliary statuses is truncated so history
// entries stay bounded. Raw response bodies are captured up to
// ResponseTextMaxLen before being folded into a status string.
const (
	ErrorMessageMaxLen = 100
	ResponseTextMaxLen = 500
)

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// ProcessingError builds a "processing_error: <msg>" history entry.
func ProcessingError(msg string) string {
	return fmt.Sprintf("%s: %s", processingError, truncate(msg, ErrorMessageMaxLen))
}

// WebhookStatus builds a "webhook_status_<code>" history entry, with the
// response text appended when present.
func WebhookStatus(code int, text string) string {
	s := fmt.Sprintf("%s_%d", webhookPrefix, code)
	if text != "" {
		s += ": " + truncate(text, ErrorMessageMaxLen)
	}
	return s
}

// WebhookError builds a "webhook_error: <msg>" history entry for calls
// that never produced an HTTP response.
func WebhookError(msg string) string {
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("%s: %s", webhookError, truncate(msg, ErrorMessageMaxLen))
}
