package tenant

import (
	"errors"
	"fmt"
	"strings"
)

// Tones recognised by the default prompt builder. Other values are allowed and
// fall back to the untoned template.
const (
	ToneFormal    = "formal"
	ToneFriendly  = "friendly"
	ToneTechnical = "technical"
)

// Sentinel errors for tenant settings.
var (
	ErrInvalidTenantID = errors.New("tenant: tenant id is required")
	ErrInvalidSettings = errors.New("tenant: invalid settings")
)

// Settings configures summarization for one tenant. It is read-only once
// handed to a request.
type Settings struct {
	// Model is the upstream model identifier, e.g. "gpt-4".
	Model string `yaml:"model" json:"model"`

	// Tone selects the prompt style.
	Tone string `yaml:"tone" json:"tone"`

	// MaxInputLength is the largest accepted input, counted in characters.
	MaxInputLength int `yaml:"max_input_length" json:"maxInputLength"`

	// RetryAttempts is the total number of upstream attempts, at least 1.
	RetryAttempts int `yaml:"retry_attempts" json:"retryAttempts"`
}

// Validate reports whether s can serve requests.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Model) == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidSettings)
	}
	if s.MaxInputLength <= 0 {
		return fmt.Errorf("%w: max input length must be positive, got %d", ErrInvalidSettings, s.MaxInputLength)
	}
	if s.RetryAttempts < 1 {
		return fmt.Errorf("%w: retry attempts must be at least 1, got %d", ErrInvalidSettings, s.RetryAttempts)
	}
	return nil
}

// Defaults returns the built-in demo tenants.
func Defaults() map[string]Settings {
	return map[string]Settings{
		"tenant1": {Model: "gpt-4", Tone: ToneFormal, MaxInputLength: 300, RetryAttempts: 3},
		"tenant2": {Model: "gpt-3.5", Tone: ToneFriendly, MaxInputLength: 200, RetryAttempts: 2},
		"tenant3": {Model: "gpt-3.5", Tone: ToneTechnical, MaxInputLength: 250, RetryAttempts: 3},
	}
}
