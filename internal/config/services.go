package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ConfigError marks a missing or malformed external-service
// configuration. Call paths that hit one must fail rather than fall
// back to a guessed URL.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "services config: " + e.Reason
}

// Webhook names resolvable through the services config.
const (
	WebhookBotProcessor            = "bot_processor"
	WebhookClassificationProcessor = "classification_processor"
	WebhookUploadCV                = "upload_cv"
)

var requiredWebhookKeys = []string{
	"base_url",
	WebhookBotProcessor,
	WebhookClassificationProcessor,
	WebhookUploadCV,
}

// Services resolves named webhooks to full URLs.
type Services struct {
	baseURL string
	paths   map[string]string
}

// LoadServices reads the webhook URL mapping from a JSON config file.
// Every required key must be present; absence is a ConfigError, never a
// silent default.
func LoadServices(path string) (*Services, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}

	webhooks := v.GetStringMapString("webhooks")
	if len(webhooks) == 0 {
		return nil, &ConfigError{Reason: "missing 'webhooks' section"}
	}

	var missing []string
	for _, key := range requiredWebhookKeys {
		if webhooks[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Reason: "missing required webhook fields: " + strings.Join(missing, ", ")}
	}

	paths := make(map[string]string, len(webhooks))
	for name, p := range webhooks {
		if name == "base_url" {
			continue
		}
		paths[name] = p
	}
	return &Services{baseURL: webhooks["base_url"], paths: paths}, nil
}

// WebhookURL returns the full URL for a named webhook.
func (s *Services) WebhookURL(name string) (string, error) {
	path, ok := s.paths[name]
	if !ok || path == "" {
		return "", &ConfigError{Reason: fmt.Sprintf("webhook %q not configured", name)}
	}
	return strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(path, "/"), nil
}
