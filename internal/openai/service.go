package openai

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrCompletionBackend is the only error the completion gateway surfaces.
// The underlying cause (timeout, bad status, malformed body) is logged
// server-side and never reaches the caller or the store.
var ErrCompletionBackend = errors.New("completion backend unavailable")

// promptSuffix marks the end of the prompt. The fine-tuned model was trained
// with this separator and the " END" stop marker.
const (
	promptSuffix = "\n\n###\n\n"
	stopMarker   = " END"
	maxTokens    = 200
)

type Service struct {
	client *Client
	model  string
	logger *logrus.Logger
}

func NewService(client *Client, model string, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Complete sends the question to the completion backend and returns the
// first choice's text verbatim. Decoding is deterministic: one candidate,
// temperature zero, bounded output, explicit stop marker.
func (s *Service) Complete(ctx context.Context, questionText string) (string, error) {
	req := CompletionRequest{
		Model:       s.model,
		Prompt:      questionText + promptSuffix,
		MaxTokens:   maxTokens,
		N:           1,
		Temperature: 0.0,
		Stop:        []string{stopMarker},
	}

	response, err := s.client.CreateCompletion(ctx, req)
	if err != nil {
		s.logger.WithError(err).Error("Completion request failed")
		return "", ErrCompletionBackend
	}

	if len(response.Choices) == 0 {
		s.logger.WithField("model", s.model).Error("Completion response contained no choices")
		return "", ErrCompletionBackend
	}

	return response.Choices[0].Text, nil
}
