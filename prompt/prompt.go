// Package prompt turns tenant settings and input text into an upstream
// prompt.
package prompt

import (
	"fmt"

	"github.com/jonwraymond/enrichment/tenant"
)

// BaseTemplate takes the tone instructions followed by the input text.
const BaseTemplate = "Please summarize the following text. %s\n\nText to summarize:\n%s"

// Builder builds the prompt sent upstream.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Determinism: the same settings and text must yield the same prompt.
type Builder interface {
	Build(settings tenant.Settings, inputText string) string
}

// BuilderFunc adapts an ordinary function to the Builder interface.
type BuilderFunc func(settings tenant.Settings, inputText string) string

// Build calls f.
func (f BuilderFunc) Build(settings tenant.Settings, inputText string) string {
	return f(settings, inputText)
}

// DefaultTones maps each known tone to its instruction sentence.
func DefaultTones() map[string]string {
	return map[string]string{
		tenant.ToneFormal:    "Use a professional and formal tone in your response.",
		tenant.ToneFriendly:  "Use a casual and conversational tone in your response.",
		tenant.ToneTechnical: "Use technical language and focus on key technical details in your response.",
	}
}

// TemplateBuilder fills a printf template with tone instructions and text.
// It is immutable after construction.
type TemplateBuilder struct {
	template string
	tones    map[string]string
}

// TemplateOption configures a TemplateBuilder.
type TemplateOption func(*TemplateBuilder)

// WithTemplate replaces BaseTemplate. The template receives two %s verbs:
// instructions, then text.
func WithTemplate(template string) TemplateOption {
	return func(b *TemplateBuilder) {
		if template != "" {
			b.template = template
		}
	}
}

// WithTone adds or overrides the instructions for tone.
func WithTone(tone, instructions string) TemplateOption {
	return func(b *TemplateBuilder) {
		b.tones[tone] = instructions
	}
}

// NewTemplateBuilder creates a builder with BaseTemplate and DefaultTones.
func NewTemplateBuilder(opts ...TemplateOption) *TemplateBuilder {
	b := &TemplateBuilder{
		template: BaseTemplate,
		tones:    DefaultTones(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the prompt. Unknown tones get empty instructions.
func (b *TemplateBuilder) Build(settings tenant.Settings, inputText string) string {
	return fmt.Sprintf(b.template, b.Instructions(settings.Tone), inputText)
}

// Instructions returns the sentence for tone, or "" if tone is unknown.
func (b *TemplateBuilder) Instructions(tone string) string {
	return b.tones[tone]
}

var (
	_ Builder = (*TemplateBuilder)(nil)
	_ Builder = BuilderFunc(nil)
)
