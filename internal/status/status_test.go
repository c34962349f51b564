package status

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleLookupIsTotalAndInjective(t *testing.T) {
	all := All()
	require.Len(t, all, 7)

	seenNames := map[string]bool{}
	for i, s := range all {
		assert.Equal(t, i+1, s.ID, "statuses must be ordered by ID")

		name, ok := ByID(s.ID)
		require.True(t, ok)
		assert.Equal(t, s.Name, name)

		id, ok := IDFor(s.Name)
		require.True(t, ok)
		assert.Equal(t, s.ID, id)

		assert.False(t, seenNames[s.Name], "duplicate status name %q", s.Name)
		seenNames[s.Name] = true
	}

	_, ok := ByID(0)
	assert.False(t, ok)
	_, ok = ByID(8)
	assert.False(t, ok)
	_, ok = IDFor("Nope")
	assert.False(t, ok)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Submitted))
	assert.True(t, Valid(ReadyForRecruit))
	assert.False(t, Valid(ProcessingSuccess))
	assert.False(t, Valid("webhook_status_200"))
}

func TestWebhookStatus(t *testing.T) {
	assert.Equal(t, "webhook_status_200", WebhookStatus(200, ""))
	assert.Equal(t, "webhook_status_404: not found", WebhookStatus(404, "not found"))

	long := strings.Repeat("x", 300)
	got := WebhookStatus(500, long)
	assert.Equal(t, "webhook_status_500: "+long[:ErrorMessageMaxLen], got)
}

func TestWebhookError(t *testing.T) {
	assert.Equal(t, "webhook_error: connection refused", WebhookError("connection refused"))
	assert.Equal(t, "webhook_error: Unknown error", WebhookError(""))

	long := strings.Repeat("e", 150)
	assert.Equal(t, "webhook_error: "+long[:ErrorMessageMaxLen], WebhookError(long))
}

func TestProcessingError(t *testing.T) {
	assert.Equal(t, "processing_error: boom", ProcessingError("boom"))

	long := strings.Repeat("p", 101)
	assert.Len(t, ProcessingError(long), len("processing_error: ")+ErrorMessageMaxLen)
}
