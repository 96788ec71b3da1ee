package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// IntentClassifier turns utterances into action drafts via a completion
// client. It implements service.Classifier.
type IntentClassifier struct {
	client Client
	retry  service.RetryOptions
}

// NewIntentClassifier creates a classifier over the given completion client.
func NewIntentClassifier(client Client, retry service.RetryOptions) *IntentClassifier {
	return &IntentClassifier{client: client, retry: retry}
}

// Classify sends one turn to the completion capability and parses the reply.
// Provider failures are retried and then surfaced as ErrClassifierUnavailable;
// unparseable replies are not errors and yield an unknown-action draft.
func (c *IntentClassifier) Classify(ctx context.Context, req service.ClassifyRequest) (model.ActionDraft, error) {
	prompt := BuildClassifyPrompt(req)

	var content string
	err := common.WithRetry(ctx, func() error {
		var completeErr error
		content, completeErr = c.client.Complete(ctx, classifySystem, prompt)
		return completeErr
	}, c.retry)
	if err != nil {
		return model.ActionDraft{}, fmt.Errorf("%w: %v", common.ErrClassifierUnavailable, err)
	}

	draft := ParseDraft(content, req.Utterance)
	slog.Debug("Classified utterance",
		"action", draft.Type,
		"confidence", draft.Confidence)

	return draft, nil
}

// Ping exercises the completion capability with a trivial prompt.
func (c *IntentClassifier) Ping(ctx context.Context) error {
	_, err := c.client.Complete(ctx, "", "Reply with the single word: ok")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrClassifierUnavailable, err)
	}
	return nil
}
