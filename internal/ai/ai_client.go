package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"email-classifier/internal/config"
	"email-classifier/internal/logger"
	"email-classifier/internal/metrics"
	"email-classifier/internal/model"
	"email-classifier/internal/service"
)

var (
	// ErrRemoteClassification wraps every failure of the remote model call.
	ErrRemoteClassification = errors.New("remote classification failed")
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = fmt.Errorf("%w: client not configured", ErrRemoteClassification)
)

type aiClient struct {
	provider   string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *logger.Logger
}

const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

func NewAIClient(cfg *config.Config, logger *logger.Logger) service.AIClient {
	provider := strings.ToLower(cfg.AIProvider)
	if provider == "" {
		provider = ProviderOpenAI
	}

	baseURL := cfg.AIBaseURL
	if baseURL == "" {
		baseURL = getBaseURL(provider)
	}
	modelName := cfg.AIModel
	if modelName == "" {
		modelName = getModel(provider)
	}

	return &aiClient{
		provider:   provider,
		apiKey:     cfg.AIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      modelName,
		httpClient: &http.Client{Timeout: cfg.AITimeout},
		logger:     logger,
	}
}

// getBaseURL returns the appropriate API base URL based on the provider
func getBaseURL(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "https://api.deepseek.com"
	case ProviderGemini:
		return "https://generativelanguage.googleapis.com/v1beta"
	default:
		return "https://api.openai.com/v1"
	}
}

// getModel returns the appropriate model based on the provider
func getModel(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderGemini:
		return "gemini-2.0-flash-lite"
	default:
		return "gpt-4o-mini"
	}
}

// OpenAI/DeepSeek API request/response structures
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Gemini API request/response structures
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

// classificationPayload is the JSON object the model is asked to produce.
type classificationPayload struct {
	Categoria        string `json:"categoria"`
	RespostaSugerida string `json:"resposta_sugerida"`
}

const classificationPrompt = `Você é um assistente que classifica e-mails em duas categorias:
- Produtivo: requer ação ou resposta específica.
- Improdutivo: não necessita de ação imediata.

Classifique estritamente como "Produtivo" ou "Improdutivo" e gere uma resposta curta adequada ao e-mail.
Retorne apenas JSON no formato:
{
  "categoria": "Produtivo ou Improdutivo",
  "resposta_sugerida": "<resposta curta>"
}

EMAIL:
---
%s
---
`

func buildPrompt(emailBody string) string {
	return fmt.Sprintf(classificationPrompt, emailBody)
}

func (a *aiClient) Enabled() bool {
	return a.apiKey != ""
}

func (a *aiClient) ClassifyAndReply(ctx context.Context, emailBody string) (*model.ClassificationResult, error) {
	if !a.Enabled() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	var content string
	var err error

	switch a.provider {
	case ProviderGemini:
		content, err = a.completeWithGemini(ctx, buildPrompt(emailBody))
	default:
		content, err = a.completeWithOpenAIStyle(ctx, buildPrompt(emailBody))
	}

	var result *model.ClassificationResult
	if err == nil {
		result, err = parseClassification(content)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordRemoteCallLatency(a.provider, status, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteClassification, err)
	}

	a.logger.Infow("Remote model classified email", "provider", a.provider, "category", result.Category)
	return result, nil
}

// completeWithOpenAIStyle sends the prompt to an OpenAI/DeepSeek style chat completions endpoint in JSON mode
func (a *aiClient) completeWithOpenAIStyle(ctx context.Context, prompt string) (string, error) {
	request := chatCompletionRequest{
		Model: a.model,
		Messages: []message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var resp chatCompletionResponse
	headers := map[string]string{"Authorization": "Bearer " + a.apiKey}
	if err := a.postJSON(ctx, a.baseURL+"/chat/completions", headers, request, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from AI")
	}

	return resp.Choices[0].Message.Content, nil
}

// completeWithGemini sends the prompt to the Google Gemini generateContent endpoint
func (a *aiClient) completeWithGemini(ctx context.Context, prompt string) (string, error) {
	request := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: &geminiGenerationConfig{ResponseMimeType: "application/json"},
	}

	var resp geminiResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", a.baseURL, a.model)
	headers := map[string]string{"x-goog-api-key": a.apiKey}
	if err := a.postJSON(ctx, url, headers, request, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts in Gemini response")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// postJSON makes a single POST request and decodes the JSON response into out
func (a *aiClient) postJSON(ctx context.Context, url string, headers map[string]string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseClassification decodes the model's JSON answer and maps its category onto a fixed label.
func parseClassification(content string) (*model.ClassificationResult, error) {
	content = stripCodeFence(content)

	var payload classificationPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	raw := strings.TrimSpace(payload.Categoria)
	if raw == "" {
		return nil, fmt.Errorf("response has no category")
	}
	category, err := model.ParseCategory(raw)
	if err != nil {
		return nil, err
	}

	return &model.ClassificationResult{
		Category:       category,
		SuggestedReply: strings.TrimSpace(payload.RespostaSugerida),
	}, nil
}

// stripCodeFence removes a surrounding ```json fence some models add despite JSON mode.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
