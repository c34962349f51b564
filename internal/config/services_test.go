package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services_config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServicesComplete(t *testing.T) {
	path := writeConfig(t, `{
		"webhooks": {
			"base_url": "https://hooks.example.com/",
			"bot_processor": "/webhook/bot",
			"classification_processor": "webhook/classify",
			"upload_cv": "/webhook/upload"
		}
	}`)

	services, err := LoadServices(path)
	require.NoError(t, err)

	url, err := services.WebhookURL(WebhookBotProcessor)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/webhook/bot", url)

	// joining normalizes slashes on both sides
	url, err = services.WebhookURL(WebhookClassificationProcessor)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/webhook/classify", url)
}

func TestLoadServicesMissingFile(t *testing.T) {
	_, err := LoadServices(filepath.Join(t.TempDir(), "nope.json"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadServicesMissingSection(t *testing.T) {
	path := writeConfig(t, `{"other": {}}`)
	_, err := LoadServices(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "webhooks")
}

func TestLoadServicesMissingKeys(t *testing.T) {
	path := writeConfig(t, `{
		"webhooks": {
			"base_url": "https://hooks.example.com",
			"bot_processor": "/webhook/bot"
		}
	}`)
	_, err := LoadServices(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, WebhookClassificationProcessor)
	assert.Contains(t, cfgErr.Reason, WebhookUploadCV)
}

func TestWebhookURLUnknownName(t *testing.T) {
	path := writeConfig(t, `{
		"webhooks": {
			"base_url": "https://hooks.example.com",
			"bot_processor": "/a",
			"classification_processor": "/b",
			"upload_cv": "/c"
		}
	}`)
	services, err := LoadServices(path)
	require.NoError(t, err)

	_, err = services.WebhookURL("cv_enrichment")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
