// Package settings holds the credentials form model and where it is saved.
package settings

import (
	"context"
	"log/slog"
	"strings"
)

// Credentials are the secrets the backend needs for its integrations.
type Credentials struct {
	DatabaseURL         string `json:"database_url"`
	CometAPIKey         string `json:"cometapi_key"`
	AnthropicAPIKey     string `json:"anthropic_api_key"`
	YouTubeClientID     string `json:"youtube_client_id"`
	YouTubeClientSecret string `json:"youtube_client_secret"`
}

// Provided lists the names of the non-blank fields.
func (c Credentials) Provided() []string {
	var names []string
	for _, f := range c.fields() {
		if strings.TrimSpace(f.value) != "" {
			names = append(names, f.name)
		}
	}
	return names
}

// Redacted returns a copy safe to log: every non-blank value is masked.
func (c Credentials) Redacted() Credentials {
	mask := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return "****"
	}
	return Credentials{
		DatabaseURL:         mask(c.DatabaseURL),
		CometAPIKey:         mask(c.CometAPIKey),
		AnthropicAPIKey:     mask(c.AnthropicAPIKey),
		YouTubeClientID:     mask(c.YouTubeClientID),
		YouTubeClientSecret: mask(c.YouTubeClientSecret),
	}
}

type field struct {
	name  string
	value string
}

func (c Credentials) fields() []field {
	return []field{
		{"database_url", c.DatabaseURL},
		{"cometapi_key", c.CometAPIKey},
		{"anthropic_api_key", c.AnthropicAPIKey},
		{"youtube_client_id", c.YouTubeClientID},
		{"youtube_client_secret", c.YouTubeClientSecret},
	}
}

// CredentialStore persists credentials.
type CredentialStore interface {
	Save(ctx context.Context, creds Credentials) error
}

// SimulatedStore accepts every save without persisting anything.
// The backend exposes no endpoint for secrets yet.
type SimulatedStore struct {
	Logger *slog.Logger
}

// Save logs which fields were provided and returns nil.
func (s SimulatedStore) Save(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("credentials saved (simulated)", "fields", creds.Provided())
	return nil
}
