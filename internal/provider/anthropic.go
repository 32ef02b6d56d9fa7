// Package provider implements reasoning-service transports. Each provider
// satisfies intent.Sender: it takes the system briefing plus the recent
// turns and returns the raw reply text.
package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/marvin/memory"
)

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 512
	DefaultTimeout   = 30 * time.Second
	APIVersion       = "2023-06-01"
)

// ErrMissingAPIKey is returned at construction when no Anthropic key is configured.
var ErrMissingAPIKey = errors.New("provider: anthropic api key not set (set ANTHROPIC_API_KEY or anthropic.api_key)")

// AnthropicConfig configures the Messages API client.
type AnthropicConfig struct {
	APIKey     string
	Model      string
	MaxTokens  int
	Timeout    time.Duration // per request, including retries
	MaxRetries int
	BaseURL    string
	HTTPClient *http.Client
}

// Anthropic sends turns to the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic returns a client for cfg. Extra request options are applied last.
func NewAnthropic(cfg AnthropicConfig, extra ...option.RequestOption) (*Anthropic, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	opts = append(opts, extra...)

	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

// Model returns the configured model id.
func (a *Anthropic) Model() string { return string(a.model) }

// Send implements intent.Sender. The reply's text blocks are concatenated.
func (a *Anthropic) Send(ctx context.Context, system string, turns []memory.Turn) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(0),
		Messages:    toMessages(turns),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(v.Text)
		}
	}
	return sb.String(), nil
}

// toMessages converts turns into Messages API params. The API wants the
// first message from the user and alternating roles, so leading assistant
// turns are dropped and consecutive same-role turns are merged.
func toMessages(turns []memory.Turn) []anthropic.MessageParam {
	merged := mergeTurns(turns)
	out := make([]anthropic.MessageParam, 0, len(merged))
	for _, t := range merged {
		block := anthropic.NewTextBlock(t.Content)
		if t.Role == memory.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

// mergeTurns drops blank turns (the API rejects empty text blocks) and
// leading assistant turns, then joins consecutive turns of the same role.
func mergeTurns(turns []memory.Turn) []memory.Turn {
	out := make([]memory.Turn, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		if len(out) == 0 && t.Role == memory.RoleAssistant {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == t.Role {
			out[n-1].Content += "\n\n" + t.Content
			continue
		}
		out = append(out, t)
	}
	return out
}
