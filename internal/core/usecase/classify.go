package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
)

// ClassifyEmailUseCase drives one upload from raw bytes to a ClassificationResult.
// Only unsupported or empty documents are returned as errors; every provider
// failure is replaced by the route's fallback verdict.
type ClassifyEmailUseCase struct {
	extractor    ports.TextExtractor
	preprocessor ports.TextPreprocessor
	detector     ports.LanguageDetector
	router       ports.ProviderRouter
	observer     ports.ClassificationObserver
	logger       *slog.Logger
}

type ClassifyOption func(*ClassifyEmailUseCase)

func WithObserver(observer ports.ClassificationObserver) ClassifyOption {
	return func(uc *ClassifyEmailUseCase) {
		uc.observer = observer
	}
}

func WithLogger(logger *slog.Logger) ClassifyOption {
	return func(uc *ClassifyEmailUseCase) {
		if logger != nil {
			uc.logger = logger
		}
	}
}

func NewClassifyEmailUseCase(
	extractor ports.TextExtractor,
	preprocessor ports.TextPreprocessor,
	detector ports.LanguageDetector,
	router ports.ProviderRouter,
	opts ...ClassifyOption,
) *ClassifyEmailUseCase {
	uc := &ClassifyEmailUseCase{
		extractor:    extractor,
		preprocessor: preprocessor,
		detector:     detector,
		router:       router,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *ClassifyEmailUseCase) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.ClassificationResult, error) {
	started := time.Now()

	raw, err := uc.extractor.Extract(ctx, req.Document)
	if err != nil {
		if domain.IsRejection(err) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrEmptyDocument, "extract text", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, domain.WrapError(domain.ErrEmptyDocument, "extract text", errors.New("no text could be extracted from the file"))
	}

	cleaned, normalized := uc.preprocessor.Preprocess(raw, req.Stemming)
	input := domain.Truncate(normalized, domain.ClassificationInputLimit)

	verdict, tag, fallback := uc.dispatch(ctx, req.Provider, input)

	result := &domain.ClassificationResult{
		Category:       verdict.Category,
		Confidence:     verdict.Confidence,
		SuggestedReply: verdict.Reply,
		Language:       uc.detectLanguage(cleaned),
		Preview:        domain.Truncate(raw, domain.PreviewLimit),
		Provider:       tag,
	}
	if uc.observer != nil {
		uc.observer.ObserveClassification(tag, result.Category, fallback, time.Since(started))
	}
	return result, nil
}

func (uc *ClassifyEmailUseCase) dispatch(ctx context.Context, selection, input string) (domain.Verdict, string, bool) {
	var (
		route ports.ProviderRoute
		ok    bool
	)
	if uc.router != nil {
		route, ok = uc.router.Resolve(selection)
	}
	if !ok {
		uc.logger.WarnContext(ctx, "unknown provider, using fallback",
			"provider", selection,
			"fallback", domain.ProviderTagFallback,
		)
		return domain.FallbackVerdict(), domain.ProviderTagFallback, true
	}

	verdict, err := callProvider(ctx, route.Provider, input)
	if err == nil {
		err = validateVerdict(verdict)
	}
	if err != nil {
		uc.logger.WarnContext(ctx, "provider failed, using fallback",
			"provider", route.Tag,
			"fallback", route.FallbackTag,
			"error", err,
		)
		return domain.FallbackVerdict(), route.FallbackTag, true
	}
	return verdict, route.Tag, false
}

func callProvider(ctx context.Context, provider ports.Provider, input string) (verdict domain.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(domain.ErrProviderCall, "classify", fmt.Errorf("provider panic: %v", r))
		}
	}()
	return provider.Classify(ctx, input)
}

func validateVerdict(v domain.Verdict) error {
	if v.Category != domain.CategoryProductive && v.Category != domain.CategoryUnproductive {
		return domain.WrapError(domain.ErrMalformedOutput, "classify", fmt.Errorf("category %q outside the known set", v.Category))
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return domain.WrapError(domain.ErrMalformedOutput, "classify", fmt.Errorf("confidence %v outside [0,1]", v.Confidence))
	}
	return nil
}

func (uc *ClassifyEmailUseCase) detectLanguage(cleaned string) string {
	if uc.detector == nil {
		return domain.LanguageUnknown
	}
	return uc.detector.Detect(cleaned)
}
