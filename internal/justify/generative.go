package justify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"energy-agent/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// Completer sends one system+user exchange to a chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter talks to any OpenAI-compatible chat endpoint; BaseURL
// selects a non-OpenAI provider.
func NewOpenAICompleter(cfg config.JustificationConfig) Completer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &openAICompleter{client: openai.NewClient(opts...), model: model}
}

func (c *openAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	chat, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("error calling chat completion API: %w", err)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "", errors.New("received empty response from chat completion API")
	}
	return chat.Choices[0].Message.Content, nil
}

const systemPrompt = `You are an energy management advisor for commercial buildings.
Explain the HVAC recommendation you are given to a facility manager in two or three sentences.
Write in the language identified by the ISO 639-1 code in the request.
Mention the expected energy savings when an action is recommended and never contradict the decision.
Reply with plain text only.`

type promptFacts struct {
	Language            string    `json:"language"`
	Action              string    `json:"action"`
	Instruction         string    `json:"instruction,omitempty"`
	EstimatedSavingsKWh float64   `json:"estimated_savings_kwh"`
	TemperatureForecast []float64 `json:"temperature_forecast_c"`
	MaxTemp             float64   `json:"max_temp_c"`
	MinComfortTemp      float64   `json:"min_comfort_temp_c"`
}

// GenerativeJustifier asks a chat model for the explanation and falls back to
// the template text on any failure.
type GenerativeJustifier struct {
	completer Completer
	fallback  *TemplateJustifier
	timeout   time.Duration
	logger    *logrus.Logger
}

func NewGenerativeJustifier(completer Completer, fallback *TemplateJustifier, timeout time.Duration, logger *logrus.Logger) *GenerativeJustifier {
	return &GenerativeJustifier{
		completer: completer,
		fallback:  fallback,
		timeout:   timeout,
		logger:    logger,
	}
}

func (g *GenerativeJustifier) Name() string {
	return "generative"
}

func (g *GenerativeJustifier) Justify(ctx context.Context, in Input) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	user, err := userPrompt(in)
	if err != nil {
		return "", err
	}

	text, err := g.completer.Complete(ctx, systemPrompt, user)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		g.logger.Warnf("Justification: generation failed, using template text: %v", err)
		return g.fallback.Text(in), nil
	}
	return text, nil
}

func userPrompt(in Input) (string, error) {
	language := normalize(in.Language)
	if language == "" {
		language = DefaultLanguage
	}

	b, err := json.Marshal(promptFacts{
		Language:            language,
		Action:              string(in.Decision.Type),
		Instruction:         in.Decision.Details,
		EstimatedSavingsKWh: in.Decision.EstimatedSavingsKWh,
		TemperatureForecast: in.TempForecast,
		MaxTemp:             in.Limits.MaxTemp,
		MinComfortTemp:      in.Limits.MinComfortTemp,
	})
	if err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}
	return string(b), nil
}
