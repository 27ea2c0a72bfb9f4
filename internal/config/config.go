// Package config loads the bot's credentials from the environment and its
// settings from redditbot.json5.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"redditbot/internal/match"
	"redditbot/pkg/configutil"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const DefaultUserAgent = "go:redditbot:v1.0 (by /u/YourUsername)"

// Credentials are the secrets used to talk to reddit, they only ever come
// from the environment (or a .env file).
type Credentials struct {
	ClientID     string `envconfig:"REDDIT_CLIENT_ID"`
	ClientSecret string `envconfig:"REDDIT_CLIENT_SECRET"`
	UserAgent    string `envconfig:"REDDIT_USER_AGENT" default:"go:redditbot:v1.0 (by /u/YourUsername)"`
	Username     string `envconfig:"REDDIT_USERNAME"`
	Password     string `envconfig:"REDDIT_PASSWORD"`
	ProxyServer  string `envconfig:"PROXY_SERVER"`
}

// MissingError lists the required environment variables that were empty.
type MissingError struct {
	Fields []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Fields, ", "))
}

// LoadCredentials reads `.env` from the working directory when present and
// then binds the environment.
func LoadCredentials() (Credentials, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Credentials{}, fmt.Errorf("load .env: %w", err)
	}

	var creds Credentials
	err = envconfig.Process("", &creds)
	if err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Validate checks the fields needed for the official API.
func (c Credentials) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "REDDIT_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "REDDIT_CLIENT_SECRET")
	}
	if c.Username == "" {
		missing = append(missing, "REDDIT_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "REDDIT_PASSWORD")
	}
	if len(missing) > 0 {
		return &MissingError{Fields: missing}
	}
	return nil
}

// ValidateLogin checks the fields needed to log in through the web UI.
func (c Credentials) ValidateLogin() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "REDDIT_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "REDDIT_PASSWORD")
	}
	if len(missing) > 0 {
		return &MissingError{Fields: missing}
	}
	return nil
}

type ScanSettings struct {
	Subreddit string `json:"subreddit"`
	Limit     int    `json:"limit"`
}

type PublishSettings struct {
	Subreddit string `json:"subreddit"`
}

type BrowserSettings struct {
	ProfileDir    string `json:"profile_dir"`
	ScreenshotDir string `json:"screenshot_dir"`
	Headless      bool   `json:"headless"`
	SlowMoMs      int    `json:"slow_mo_ms"`
}

type SmtpSettings struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (s SmtpSettings) Enabled() bool {
	return s.Server != "" && s.EmailAddress != ""
}

type WatchSettings struct {
	Cron   string `json:"cron"`
	Source string `json:"source"`
}

type Settings struct {
	Keywords   []string        `json:"keywords"`
	ReplyRules []match.Rule    `json:"reply_rules"`
	Scan       ScanSettings    `json:"scan"`
	Publish    PublishSettings `json:"publish"`
	Browser    BrowserSettings `json:"browser"`
	DbPath     string          `json:"db_path"`
	Smtp       SmtpSettings    `json:"smtp"`
	DigestTo   []string        `json:"digest_to"`
	Watch      WatchSettings   `json:"watch"`
}

// DefaultSettings are the values used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		Keywords:   append([]string(nil), match.DefaultKeywords...),
		ReplyRules: append([]match.Rule(nil), match.DefaultRules...),
		Scan: ScanSettings{
			Subreddit: "excel",
			Limit:     10,
		},
		Publish: PublishSettings{
			Subreddit: "test",
		},
		Browser: BrowserSettings{
			ProfileDir:    ".redditbot/browser_profile",
			ScreenshotDir: ".redditbot/logs",
			SlowMoMs:      100,
		},
		DbPath: ".redditbot/redditbot.db",
		Watch: WatchSettings{
			Cron:   "*/15 * * * *",
			Source: "rss",
		},
	}
}

// LoadSettings reads redditbot.json5 (searching up from the cwd), any field
// left unset or zero keeps its default.
func LoadSettings() (Settings, error) {
	settings, err := configutil.ReadRecursivelyWithDefaults("redditbot.json5", DefaultSettings)
	if err != nil {
		return Settings{}, err
	}
	if settings.Scan.Limit < 0 {
		settings.Scan.Limit = DefaultSettings().Scan.Limit
	}
	return settings, nil
}
