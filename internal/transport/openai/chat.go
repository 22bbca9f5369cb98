package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// ChatClient wraps the OpenAI-compatible API for completions, image text
// extraction, and speech-to-text. One failed call fails the request; nothing
// here retries.
type ChatClient struct {
	client       *openai.Client
	chatModel    string
	visionModel  string
	whisperModel string
	logger       *zap.Logger
}

// ChatConfig holds the chat/vision/transcription provider settings.
type ChatConfig struct {
	APIKey       string
	BaseURL      string
	ChatModel    string
	VisionModel  string
	WhisperModel string
	Logger       *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat client.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.ChatModel
	}
	whisperModel := cfg.WhisperModel
	if whisperModel == "" {
		whisperModel = openai.Whisper1
	}

	return &ChatClient{
		client:       openai.NewClientWithConfig(clientCfg),
		chatModel:    cfg.ChatModel,
		visionModel:  visionModel,
		whisperModel: whisperModel,
		logger:       cfg.Logger,
	}
}

// Complete sends a single prompt and returns the model's answer.
// Temperature 0 keeps retrieval answers reproducible.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", parseAPIError("chat", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion response: %w", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractImageText asks the vision model to read all text visible in the
// image. mimeType is e.g. "image/png".
func (c *ChatClient) ExtractImageText(ctx context.Context, data []byte, mimeType string) (string, error) {
	url := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.visionModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract all text visible in this image. " +
							"Return only the extracted text, without commentary. " +
							"If there is no text, describe the content in one short paragraph.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    url,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", parseAPIError("vision", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty vision response: %w", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts the audio file at path to text via the speech-to-text API.
func (c *ChatClient) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.whisperModel,
		FilePath: path,
	})
	if err != nil {
		return "", parseAPIError("transcription", err)
	}
	return resp.Text, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *ChatClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
