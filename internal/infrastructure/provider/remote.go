package provider

import (
	"context"
	"errors"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
)

// RemoteLLM classifies and drafts a reply with one hosted completion call.
type RemoteLLM struct {
	completer ports.ReplyCompleter
}

func NewRemoteLLM(completer ports.ReplyCompleter) *RemoteLLM {
	return &RemoteLLM{completer: completer}
}

func (r *RemoteLLM) Classify(ctx context.Context, text string) (domain.Verdict, error) {
	if r.completer == nil {
		return domain.Verdict{}, domain.WrapError(domain.ErrProviderCall, "remote-llm classify", errors.New("completion client is not configured"))
	}
	raw, err := r.completer.Complete(ctx, SystemInstruction, BuildUserPrompt(text))
	if err != nil {
		return domain.Verdict{}, domain.WrapError(domain.ErrProviderCall, "remote-llm classify", err)
	}
	payload, err := ParseReply(raw)
	if err != nil {
		return domain.Verdict{}, err
	}

	category, known := domain.ParseCategory(payload.label())
	confidence := 0.0
	if known {
		confidence = 1.0
	}
	return domain.Verdict{
		Category:   category,
		Confidence: confidence,
		Reply:      payload.text(),
	}, nil
}
