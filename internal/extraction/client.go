// Package extraction calls a vision-capable chat model to transcribe diagram
// images into structured results. Model output is decoded defensively since
// even JSON-mode endpoints occasionally wrap or truncate their output.
package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"causemap/internal/prompts"
)

// Image is an uploaded diagram image ready for extraction.
type Image struct {
	Data []byte
	// MIME is the image content type, e.g. "image/png".
	MIME string
}

// DataURI encodes the image as a base64 data URI for inline transmission.
func (i Image) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIME, base64.StdEncoding.EncodeToString(i.Data))
}

// System extracts structured diagram content from images.
type System interface {
	// ExtractFlat transcribes a flat categorized list diagram.
	ExtractFlat(ctx context.Context, img Image) (*FlatResult, error)
	// ExtractTree transcribes a fishbone diagram.
	ExtractTree(ctx context.Context, img Image) (*TreeResult, error)
}

type client struct {
	api     *openai.Client
	prompts prompts.System
	cfg     *Config
	logger  *slog.Logger
}

// New creates an extraction client from the given configuration.
func New(cfg *Config, ps prompts.System, logger *slog.Logger) System {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &client{
		api:     openai.NewClientWithConfig(apiCfg),
		prompts: ps,
		cfg:     cfg,
		logger:  logger.With("system", "extraction"),
	}
}

func (c *client) ExtractFlat(ctx context.Context, img Image) (*FlatResult, error) {
	content, err := c.generate(ctx, prompts.ModeFlat, img)
	if err != nil {
		return nil, err
	}
	return decodeFlat(content)
}

func (c *client) ExtractTree(ctx context.Context, img Image) (*TreeResult, error) {
	content, err := c.generate(ctx, prompts.ModeTree, img)
	if err != nil {
		return nil, err
	}
	return decodeTree(content)
}

func (c *client) generate(ctx context.Context, mode prompts.Mode, img Image) (string, error) {
	template, err := c.prompts.Template(mode)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeoutDuration())
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: template,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.DataURI(),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	if c.cfg.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	c.logger.Info("requesting extraction", "mode", mode, "model", c.cfg.Model)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCandidates
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", ErrEmptyContent
	}

	return content, nil
}
