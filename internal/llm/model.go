// Package llm adapts a langchaingo model into the relevance gate and the fallback responder.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maitred/internal/config"
	"maitred/internal/models"
	"maitred/internal/monitoring"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Default model names per provider
const (
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultOllamaModel    = "llama3"

	DefaultAzureAPIVersion = "2024-02-01"
)

// ErrNoModel is returned by the gate and responder when no model is configured
var ErrNoModel = errors.New("no language model configured")

// NewModel creates the langchaingo model for the configured provider
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{
			openai.WithModel(orDefault(cfg.Model, DefaultOpenAIModel)),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
		}
		return llm, nil

	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithModel(orDefault(cfg.Model, DefaultAnthropicModel)),
			anthropic.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		llm, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Anthropic model: %w", err)
		}
		return llm, nil

	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(orDefault(cfg.Model, DefaultOllamaModel)),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Ollama model: %w", err)
		}
		return llm, nil

	case "azure":
		// Azure routes by deployment, so the model name is the deployment name
		llm, err := openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(orDefault(cfg.APIVersion, DefaultAzureAPIVersion)),
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure OpenAI model: %w", err)
		}
		return llm, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// caller runs single model calls under a timeout and records their outcome
type caller struct {
	model   llms.Model
	timeout time.Duration
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func newCaller(model llms.Model, timeout time.Duration, metrics *monitoring.Metrics, logger *zap.Logger) caller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return caller{model: model, timeout: timeout, metrics: metrics, logger: logger}
}

// generate returns the text of the first choice. Every failure is an
// *models.ExternalServiceError and is logged here.
func (c caller) generate(ctx context.Context, capability string, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	if c.model == nil {
		return "", &models.ExternalServiceError{Capability: capability, Err: ErrNoModel}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages, opts...)
	if err == nil && (resp == nil || len(resp.Choices) == 0) {
		err = errors.New("empty response")
	}
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.RecordLLMCall(capability, "error", elapsed)
		c.logger.Error("Language model call failed",
			zap.String("capability", capability),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", &models.ExternalServiceError{Capability: capability, Err: err}
	}

	c.metrics.RecordLLMCall(capability, "ok", elapsed)
	c.logger.Debug("Language model call succeeded",
		zap.String("capability", capability),
		zap.Duration("elapsed", elapsed))
	return resp.Choices[0].Content, nil
}
