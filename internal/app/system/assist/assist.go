// Package assist holds the AI text helpers used by the admin panel.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// TextModel produces a completion for a prompt. Implementations are asked
// for JSON output.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service runs the text-assist flows against a TextModel.
type Service struct {
	model TextModel
	log   *zap.Logger
}

// New constructs a Service.
func New(model TextModel, logger *zap.Logger) *Service {
	return &Service{model: model, log: logger}
}

const descriptionPrompt = `You write short descriptions of code for an AI education website.
Describe what the following %s code does in two or three plain sentences
suitable for a learner. Respond with JSON of the form {"description": "..."}.

Code:
%s`

// GenerateDescription asks the model to describe code written in language.
func (s *Service) GenerateDescription(ctx context.Context, code, language string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", schema.FieldErrors{"code": "is required"}
	}
	if language == "" {
		language = "source"
	}
	out, err := s.model.Generate(ctx, fmt.Sprintf(descriptionPrompt, language, code))
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}

	var resp struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(stripFence(out)), &resp); err != nil {
		// Models occasionally answer in prose; accept it as the description.
		resp.Description = out
	}
	desc := strings.TrimSpace(resp.Description)
	if desc == "" {
		return "", ErrEmptyResponse
	}
	return desc, nil
}

const snippetsPrompt = `You help curate an AI education resource library.
Given a resource titled %q described as %q, pick the lines or short passages
of the code below that best illustrate it. Return at most 5 snippets,
verbatim, as JSON of the form {"relevantSnippets": ["..."]}.

Code:
%s`

// MaxSnippets caps the snippets returned by SuggestRelatedSnippets.
const MaxSnippets = 5

// SuggestRelatedSnippets asks the model for passages of codeContent related
// to the title and description. Callers treat failures as non-fatal.
func (s *Service) SuggestRelatedSnippets(ctx context.Context, title, description, codeContent string) ([]string, error) {
	if strings.TrimSpace(codeContent) == "" {
		return []string{}, nil
	}
	out, err := s.model.Generate(ctx, fmt.Sprintf(snippetsPrompt, title, description, codeContent))
	if err != nil {
		return nil, fmt.Errorf("suggest snippets: %w", err)
	}

	var resp struct {
		RelevantSnippets []string `json:"relevantSnippets"`
	}
	if err := json.Unmarshal([]byte(stripFence(out)), &resp); err != nil {
		return nil, fmt.Errorf("parse snippets: %w", err)
	}
	snippets := make([]string, 0, len(resp.RelevantSnippets))
	for _, sn := range resp.RelevantSnippets {
		if sn = strings.TrimSpace(sn); sn != "" {
			snippets = append(snippets, sn)
		}
		if len(snippets) == MaxSnippets {
			break
		}
	}
	return snippets, nil
}

// stripFence removes a surrounding ```json fence if present.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
