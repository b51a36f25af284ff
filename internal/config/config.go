package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "NEWS_RADAR_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
	openAIAPIKeyEnv = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
	slackWebhookEnv = "SLACK_WEBHOOK_URL"
	slackChannelEnv = "SLACK_CHANNEL"
	logLevelEnv     = "NEWS_RADAR_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Slack     SlackConfig     `yaml:"slack"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Logging   LoggingConfig   `yaml:"logging"`
	Feeds     []FeedConfig    `yaml:"feeds"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the pipeline should run. An empty cron
// expression means a single run per process start.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// OpenAIConfig defines how to contact the scoring oracle.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// SlackConfig wires the delivery surface.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
	Channel    string `yaml:"channel"`
}

// PipelineConfig tunes thresholds, caps, and timeouts of a run.
type PipelineConfig struct {
	ScoreThreshold     int      `yaml:"scoreThreshold"`
	PostCap            int      `yaml:"postCap"`
	MaxPerSource       int      `yaml:"maxPerSource"`
	OracleConcurrency  int64    `yaml:"oracleConcurrency"`
	ExtractConcurrency int64    `yaml:"extractConcurrency"`
	FeedTimeout        Duration `yaml:"feedTimeout"`
	ArticleTimeout     Duration `yaml:"articleTimeout"`
	ScoreTimeout       Duration `yaml:"scoreTimeout"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FeedConfig describes a single syndication source.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(slackWebhookEnv); v != "" {
		c.Slack.WebhookURL = v
	}

	if v := os.Getenv(slackChannelEnv); v != "" {
		c.Slack.Channel = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}

	if override.Slack.WebhookURL != "" {
		base.Slack.WebhookURL = override.Slack.WebhookURL
	}
	if override.Slack.Channel != "" {
		base.Slack.Channel = override.Slack.Channel
	}

	if override.Pipeline.ScoreThreshold != 0 {
		base.Pipeline.ScoreThreshold = override.Pipeline.ScoreThreshold
	}
	if override.Pipeline.PostCap != 0 {
		base.Pipeline.PostCap = override.Pipeline.PostCap
	}
	if override.Pipeline.MaxPerSource != 0 {
		base.Pipeline.MaxPerSource = override.Pipeline.MaxPerSource
	}
	if override.Pipeline.OracleConcurrency != 0 {
		base.Pipeline.OracleConcurrency = override.Pipeline.OracleConcurrency
	}
	if override.Pipeline.ExtractConcurrency != 0 {
		base.Pipeline.ExtractConcurrency = override.Pipeline.ExtractConcurrency
	}
	if override.Pipeline.FeedTimeout != 0 {
		base.Pipeline.FeedTimeout = override.Pipeline.FeedTimeout
	}
	if override.Pipeline.ArticleTimeout != 0 {
		base.Pipeline.ArticleTimeout = override.Pipeline.ArticleTimeout
	}
	if override.Pipeline.ScoreTimeout != 0 {
		base.Pipeline.ScoreTimeout = override.Pipeline.ScoreTimeout
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "", Timezone: defaultTimezone, location: tz},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			APIKey:   "",
		},
		Slack: SlackConfig{WebhookURL: "", Channel: ""},
		Pipeline: PipelineConfig{
			ScoreThreshold:     50,
			PostCap:            3,
			MaxPerSource:       3,
			OracleConcurrency:  3,
			ExtractConcurrency: 4,
			FeedTimeout:        Duration(8 * time.Second),
			ArticleTimeout:     Duration(10 * time.Second),
			ScoreTimeout:       Duration(10 * time.Second),
		},
		Logging: LoggingConfig{Level: "info"},
		Feeds: []FeedConfig{
			{Name: "InfoQ", URL: "https://feed.infoq.com/"},
			{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
			{Name: "Dev.to", URL: "https://dev.to/feed/"},
			{Name: "Hacker News", URL: "https://news.ycombinator.com/rss"},
			{Name: "MLOps Substack", URL: "https://mlops.substack.com/feed"},
		},
	}
}
