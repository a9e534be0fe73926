// Package llm wraps the OpenAI chat-completions client so it can be called
// directly or driven by langchaingo agents as an llms.Model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tmc/langchaingo/llms"

	configpkg "github.com/nuvemlabs/agents.tracie/pkg/config"
	loggerpkg "github.com/nuvemlabs/agents.tracie/pkg/logger"
)

// Options configures a Client.
type Options struct {
	APIKey      string
	OrgID       string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int

	Logger  loggerpkg.Logger
	Verbose bool

	// RequestOptions are appended after the options derived from the fields above.
	RequestOptions []option.RequestOption
}

// Client sends chat completions with fixed sampling parameters.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int

	logger  loggerpkg.Logger
	verbose bool
}

var _ llms.Model = (*Client)(nil)

// New builds a Client. It fails only when the credential or model name is missing.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("APIKey is not set")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("Model is not set")
	}
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}

	return &Client{
		client:      newOpenAIClient(opts),
		model:       strings.TrimSpace(opts.Model),
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		logger:      opts.Logger,
		verbose:     opts.Verbose,
	}, nil
}

// FromSettings builds a Client from resolved settings.
func FromSettings(s configpkg.Settings, logger loggerpkg.Logger, extra ...option.RequestOption) (*Client, error) {
	return New(Options{
		APIKey:         s.OpenAIAPIKey,
		OrgID:          s.OpenAIOrgID,
		BaseURL:        s.OpenAIBaseURL,
		Model:          s.ModelName,
		Temperature:    s.ModelTemperature,
		MaxTokens:      s.ModelMaxTokens,
		Logger:         logger,
		Verbose:        s.AgentVerbose,
		RequestOptions: extra,
	})
}

func newOpenAIClient(opts Options) openai.Client {
	reqOpts := []option.RequestOption{}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.OrgID != "" {
		reqOpts = append(reqOpts, option.WithOrganization(opts.OrgID))
	}
	reqOpts = append(reqOpts, opts.RequestOptions...)
	return openai.NewClient(reqOpts...)
}

// Call implements the legacy single-prompt half of llms.Model.
func (c *Client) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

// GenerateContent implements llms.Model. Stop words are applied to the reply
// text rather than sent to the provider.
func (c *Client) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	callOpts := llms.CallOptions{}
	for _, opt := range options {
		opt(&callOpts)
	}

	params, err := c.newChatParams(messages, callOpts)
	if err != nil {
		return nil, err
	}

	loggerpkg.Debug(c.verbose, c.logger, "chat completion request", map[string]any{
		"model":    string(params.Model),
		"messages": len(params.Messages),
	})
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("empty completion choices")
	}

	choice := completion.Choices[0]
	content := truncateAtStop(choice.Message.Content, callOpts.StopWords)
	loggerpkg.Debug(c.verbose, c.logger, "chat completion received", map[string]any{
		"finish_reason":     string(choice.FinishReason),
		"completion_tokens": completion.Usage.CompletionTokens,
		"prompt_tokens":     completion.Usage.PromptTokens,
	})

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:    content,
			StopReason: string(choice.FinishReason),
			GenerationInfo: map[string]any{
				"CompletionTokens": int(completion.Usage.CompletionTokens),
				"PromptTokens":     int(completion.Usage.PromptTokens),
				"TotalTokens":      int(completion.Usage.TotalTokens),
			},
		}},
	}, nil
}

func (c *Client) newChatParams(messages []llms.MessageContent, callOpts llms.CallOptions) (openai.ChatCompletionNewParams, error) {
	converted, err := toOpenAIMessages(messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	model := c.model
	if callOpts.Model != "" {
		model = callOpts.Model
	}
	temperature := c.temperature
	if callOpts.Temperature != 0 {
		temperature = callOpts.Temperature
	}
	maxTokens := c.maxTokens
	if callOpts.MaxTokens > 0 {
		maxTokens = callOpts.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    converted,
		Temperature: openai.Float(temperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	return params, nil
}

func toOpenAIMessages(messages []llms.MessageContent) ([]openai.ChatCompletionMessageParamUnion, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages to send")
	}

	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, msg := range messages {
		var sb strings.Builder
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				sb.WriteString(p.Text)
			default:
				return nil, fmt.Errorf("unsupported content part %T at message %d", part, i)
			}
		}

		text := sb.String()
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			out = append(out, openai.SystemMessage(text))
		case llms.ChatMessageTypeAI:
			out = append(out, openai.AssistantMessage(text))
		case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
			out = append(out, openai.UserMessage(text))
		default:
			return nil, fmt.Errorf("invalid message role at index %d: %q", i, msg.Role)
		}
	}
	return out, nil
}

// truncateAtStop cuts text at the earliest stop word.
func truncateAtStop(text string, stops []string) string {
	cut := len(text)
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if idx := strings.Index(text, stop); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return text[:cut]
}
