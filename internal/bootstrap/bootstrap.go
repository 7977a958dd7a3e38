package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/mail-triage/internal/config"
	"github.com/kirillkom/mail-triage/internal/core/ports"
	"github.com/kirillkom/mail-triage/internal/core/usecase"
	"github.com/kirillkom/mail-triage/internal/infrastructure/extractor"
	"github.com/kirillkom/mail-triage/internal/infrastructure/langdetect"
	"github.com/kirillkom/mail-triage/internal/infrastructure/llm/huggingface"
	"github.com/kirillkom/mail-triage/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/mail-triage/internal/infrastructure/llm/openai"
	"github.com/kirillkom/mail-triage/internal/infrastructure/provider"
	"github.com/kirillkom/mail-triage/internal/infrastructure/resilience"
	"github.com/kirillkom/mail-triage/internal/infrastructure/textproc"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	ClassifyUC ports.EmailClassifier
}

// New wires the classification workflow. observer may be nil.
func New(cfg config.Config, logger *slog.Logger, observer ports.ClassificationObserver) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.ProviderTimeoutSeconds) * time.Second

	exec := resilience.NewExecutor(resilience.Config{
		CallTimeout:         timeout,
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
	})

	completion := openai.New(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		Timeout:     timeout,
	}, exec)
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is empty; remote completions will fall back")
	}

	classifierHandle := provider.NewLazy(func(context.Context) (ports.ZeroShotClassifier, error) {
		pipe, err := huggingface.NewPipeline(huggingface.Config{
			InferenceURL: cfg.HFInferenceURL,
			APIToken:     cfg.HFAPIToken,
			Model:        cfg.HFModel,
			Timeout:      timeout,
		}, exec)
		if err != nil {
			return nil, err
		}
		logger.Info("zero-shot classifier ready", "model", pipe.Model())
		return pipe, nil
	})

	generatorHandle, err := replyGenerator(cfg, logger, completion, exec, timeout)
	if err != nil {
		return nil, err
	}

	registry := provider.NewRegistry(
		provider.NewRemoteLLM(completion),
		provider.NewZeroShot(classifierHandle, generatorHandle),
	)

	opts := []usecase.ClassifyOption{usecase.WithLogger(logger)}
	if observer != nil {
		opts = append(opts, usecase.WithObserver(observer))
	}
	classifyUC := usecase.NewClassifyEmailUseCase(
		extractor.New(),
		textproc.NewPreprocessor(),
		langdetect.New(),
		registry,
		opts...,
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		ClassifyUC: classifyUC,
	}, nil
}

func replyGenerator(
	cfg config.Config,
	logger *slog.Logger,
	completion *openai.Client,
	exec *resilience.Executor,
	timeout time.Duration,
) (*provider.Lazy[ports.ReplyCompleter], error) {
	switch cfg.LocalReplySource {
	case config.ReplySourceRemote:
		return provider.Ready[ports.ReplyCompleter](completion), nil
	case config.ReplySourceOllama:
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, timeout, exec)
		return provider.NewLazy(func(ctx context.Context) (ports.ReplyCompleter, error) {
			gen, err := ollama.NewGenerator(ctx, client)
			if err != nil {
				return nil, err
			}
			logger.Info("reply generator ready",
				"source", cfg.LocalReplySource,
				"model", cfg.OllamaGenModel,
				"hf_generator", cfg.HFGenerator,
			)
			return gen, nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown local reply source %q", cfg.LocalReplySource)
	}
}
