package processor

import (
	"go.uber.org/zap"

	"cv-intake/internal/config"
	"cv-intake/internal/status"
	"cv-intake/internal/storage"
	"cv-intake/internal/webhook"
)

// Stage names, used for manual trigger routing and webhook resolution.
const (
	StageBotInterview   = "bot_processor"
	StageClassification = "classification_processor"
)

// NewBotInterview builds the stage that sends candidates waiting for a
// bot interview to the interview bot. The bot replies asynchronously, so
// success is whatever its response body's "success" field says.
func NewBotInterview(store Store, client *webhook.Client, services *config.Services, logger *zap.SugaredLogger) *Stage {
	return &Stage{
		name:            StageBotInterview,
		trigger:         status.ReadyForBotInterview,
		next:            status.BotInterview,
		useSuccessField: true,
		resolveURL: func() (string, error) {
			return services.WebhookURL(config.WebhookBotProcessor)
		},
		payload: func(rec *storage.CandidateRecord) map[string]interface{} {
			return map[string]interface{}{
				"id":           rec.ID,
				"phone_number": rec.KnownData.PhoneNumber,
				"latin_name":   rec.KnownData.LatinName,
			}
		},
		store:  store,
		client: client,
		logger: logger.Named(StageBotInterview),
	}
}

// NewClassification builds the stage that hands candidates to the
// external classifier. The classifier only acknowledges receipt, so a
// 2xx response is success.
func NewClassification(store Store, client *webhook.Client, services *config.Services, logger *zap.SugaredLogger) *Stage {
	return &Stage{
		name:            StageClassification,
		trigger:         status.ReadyForClassification,
		next:            status.InClassification,
		useSuccessField: false,
		resolveURL: func() (string, error) {
			return services.WebhookURL(config.WebhookClassificationProcessor)
		},
		payload: func(rec *storage.CandidateRecord) map[string]interface{} {
			return map[string]interface{}{"id": rec.ID}
		},
		store:  store,
		client: client,
		logger: logger.Named(StageClassification),
	}
}
