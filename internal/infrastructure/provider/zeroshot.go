package provider

import (
	"context"
	"fmt"
	"math"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
)

// ZeroShot scores the text with an NLI model for the category and asks a
// completion backend for the reply.
type ZeroShot struct {
	classifier *Lazy[ports.ZeroShotClassifier]
	generator  *Lazy[ports.ReplyCompleter]
}

func NewZeroShot(classifier *Lazy[ports.ZeroShotClassifier], generator *Lazy[ports.ReplyCompleter]) *ZeroShot {
	return &ZeroShot{classifier: classifier, generator: generator}
}

func (z *ZeroShot) Classify(ctx context.Context, text string) (domain.Verdict, error) {
	clf, err := z.classifier.Get(ctx)
	if err != nil {
		return domain.Verdict{}, domain.WrapError(domain.ErrProviderCall, "load zero-shot classifier", err)
	}
	scored, err := clf.ClassifyZeroShot(ctx, text, CandidateLabels, HypothesisTemplate)
	if err != nil {
		return domain.Verdict{}, domain.WrapError(domain.ErrProviderCall, "zero-shot classify", err)
	}
	label, score, err := topLabel(scored)
	if err != nil {
		return domain.Verdict{}, domain.WrapError(domain.ErrMalformedOutput, "zero-shot classify", err)
	}
	category, known := domain.ParseCategory(label)
	if !known {
		return domain.Verdict{}, domain.WrapError(domain.ErrMalformedOutput, "zero-shot classify", fmt.Errorf("unexpected label %q", label))
	}

	gen, err := z.generator.Get(ctx)
	if err != nil {
		return domain.Verdict{}, domain.WrapError(domain.ErrProviderCall, "load reply generator", err)
	}
	raw, err := gen.Complete(ctx, SystemInstruction, BuildUserPrompt(text))
	if err != nil {
		return domain.Verdict{}, domain.WrapError(domain.ErrProviderCall, "generate reply", err)
	}
	payload, err := ParseReply(raw)
	if err != nil {
		return domain.Verdict{}, err
	}

	return domain.Verdict{
		Category:   category,
		Confidence: roundConfidence(score),
		Reply:      payload.text(),
	}, nil
}

func topLabel(res ports.ZeroShotResult) (string, float64, error) {
	if len(res.Labels) == 0 || len(res.Labels) != len(res.Scores) {
		return "", 0, fmt.Errorf("got %d labels and %d scores", len(res.Labels), len(res.Scores))
	}
	best := 0
	for i := 1; i < len(res.Scores); i++ {
		if res.Scores[i] > res.Scores[best] {
			best = i
		}
	}
	score := res.Scores[best]
	if math.IsNaN(score) {
		return "", 0, fmt.Errorf("score for %q is NaN", res.Labels[best])
	}
	return res.Labels[best], score, nil
}

func roundConfidence(score float64) float64 {
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*10000) / 10000
}
