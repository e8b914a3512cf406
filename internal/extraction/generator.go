package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Generator is a generative-AI completion service.
type Generator interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

const generationTemperature = 0.2

// GeminiGenerator calls the generateContent endpoint.
type GeminiGenerator struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewGeminiGenerator(apiKey, model, baseURL string, client *http.Client) *GeminiGenerator {
	if client == nil {
		client = newHTTPClient(60 * time.Second)
	}
	return &GeminiGenerator{apiKey: apiKey, model: model, baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

func (g *GeminiGenerator) Name() string { return "Gemini" }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  map[string]any  `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	if g.apiKey == "" {
		return "", NotConfigured(g.Name())
	}

	parts := []geminiPart{{Text: p.Text}}
	if p.Image != nil {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MIMEType: p.Image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(p.Image.Data),
		}})
	}
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: map[string]any{
			"temperature":      generationTemperature,
			"responseMimeType": "application/json",
		},
	}
	if p.System != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: p.System}}}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))

	var resp geminiResponse
	if err := doJSON(ctx, g.http, g.Name(), http.MethodPost, endpoint, nil, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in %s response", g.Name())
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// ChatGenerator speaks the OpenAI chat-completions protocol, which also
// covers DeepSeek and other compatible hosts.
type ChatGenerator struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewChatGenerator(name, apiKey, model, baseURL string, client *http.Client) *ChatGenerator {
	if client == nil {
		client = newHTTPClient(60 * time.Second)
	}
	return &ChatGenerator{name: name, apiKey: apiKey, model: model, baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

func (c *ChatGenerator) Name() string { return c.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *ChatGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	if c.apiKey == "" {
		return "", NotConfigured(c.Name())
	}

	var user any = p.Text
	if p.Image != nil {
		dataURL := "data:" + p.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Image.Data)
		user = []map[string]any{
			{"type": "text", "text": p.Text},
			{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
		}
	}
	messages := []chatMessage{}
	if p.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	req := map[string]any{
		"model":           c.model,
		"messages":        messages,
		"temperature":     generationTemperature,
		"response_format": map[string]string{"type": "json_object"},
	}

	var resp chatResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := doJSON(ctx, c.http, c.Name(), http.MethodPost, c.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", c.Name())
	}
	return resp.Choices[0].Message.Content, nil
}
