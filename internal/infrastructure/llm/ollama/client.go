package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/rfp-matcher/internal/infrastructure/resilience"
)

// Client talks to a local Ollama instance. Both judges (document
// understanding and compatibility scoring) share one client so the rate
// limiter protects the model from a whole scoring batch at once.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	RequestTimeout     time.Duration
	RateLimit          float64 // requests per second; 0 disables limiting
	RateBurst          int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string, options Options) *Client {
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if options.RateLimit > 0 {
		burst := options.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
	}
}

// DocumentJudge asks the model to extract structured RFP fields from raw
// document text. The response is returned as-is; parsing and fallback
// policy belong to the caller.
type DocumentJudge struct {
	client *Client
}

func NewDocumentJudge(client *Client) *DocumentJudge {
	return &DocumentJudge{client: client}
}

func (j *DocumentJudge) ExtractRFP(ctx context.Context, text string) (string, error) {
	return j.client.generateJSON(ctx, "extract", buildExtractionPrompt(text))
}

// ScoringJudge asks the model to rate one vendor against one RFP.
type ScoringJudge struct {
	client *Client
}

func NewScoringJudge(client *Client) *ScoringJudge {
	return &ScoringJudge{client: client}
}

func (j *ScoringJudge) JudgeCompatibility(ctx context.Context, vendorProfile, rfpRequirements string) (string, error) {
	return j.client.generateJSON(ctx, "judge", buildScoringPrompt(vendorProfile, rfpRequirements))
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama."+operation, call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return strings.TrimSpace(response.Response), nil
}
