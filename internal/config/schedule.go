package config

import (
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Schedule defaults, used when the config file is missing or a value is
// out of range.
const (
	DefaultBotHour            = 10
	DefaultBotMinute          = 0
	DefaultTimezone           = "UTC"
	DefaultClassifierInterval = 5 * time.Minute
	minClassifierIntervalSecs = 10
)

// Schedule configures the two background jobs: a daily calendar-fired
// bot-interview run and an interval-fired classification run.
type Schedule struct {
	BotHour    int
	BotMinute  int
	Timezone   string
	BotEnabled bool

	ClassifierInterval time.Duration
}

// LoadSchedule reads the scheduler config file. Unlike the services
// config, everything here has a sane default: a missing file or an
// out-of-range value falls back per field with a warning.
func LoadSchedule(path string, logger *zap.SugaredLogger) *Schedule {
	sched := &Schedule{
		BotHour:            DefaultBotHour,
		BotMinute:          DefaultBotMinute,
		Timezone:           DefaultTimezone,
		BotEnabled:         true,
		ClassifierInterval: DefaultClassifierInterval,
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("bot_processor.hour", DefaultBotHour)
	v.SetDefault("bot_processor.minute", DefaultBotMinute)
	v.SetDefault("bot_processor.timezone", DefaultTimezone)
	v.SetDefault("bot_processor.enabled", true)
	v.SetDefault("classification_processor.interval_seconds", int(DefaultClassifierInterval.Seconds()))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("scheduler config not loaded, using defaults", "path", path, "error", err)
		return sched
	}

	hour := v.GetInt("bot_processor.hour")
	if hour < 0 || hour > 23 {
		logger.Warnw("invalid scheduler hour, using default", "hour", hour, "default", DefaultBotHour)
		hour = DefaultBotHour
	}
	minute := v.GetInt("bot_processor.minute")
	if minute < 0 || minute > 59 {
		logger.Warnw("invalid scheduler minute, using default", "minute", minute, "default", DefaultBotMinute)
		minute = DefaultBotMinute
	}
	tz := v.GetString("bot_processor.timezone")
	if _, err := time.LoadLocation(tz); err != nil {
		logger.Warnw("invalid scheduler timezone, using default", "timezone", tz, "error", err)
		tz = DefaultTimezone
	}
	intervalSecs := v.GetInt("classification_processor.interval_seconds")
	if intervalSecs < minClassifierIntervalSecs {
		logger.Warnw("classification interval too short, using default",
			"interval_seconds", intervalSecs, "default", int(DefaultClassifierInterval.Seconds()))
		intervalSecs = int(DefaultClassifierInterval.Seconds())
	}

	sched.BotHour = hour
	sched.BotMinute = minute
	sched.Timezone = tz
	sched.BotEnabled = v.GetBool("bot_processor.enabled")
	sched.ClassifierInterval = time.Duration(intervalSecs) * time.Second

	logger.Infow("loaded scheduler config", "hour", hour, "minute", minute,
		"timezone", tz, "bot_enabled", sched.BotEnabled, "classification_interval", sched.ClassifierInterval)
	return sched
}
