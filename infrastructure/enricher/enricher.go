// Package enricher provides AI-powered enrichment generation.
package enricher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	domainservice "github.com/corvus-index/corvus/domain/service"
	"github.com/corvus-index/corvus/infrastructure/provider"
)

// ProviderEnricher uses a TextGenerator to create enrichments.
type ProviderEnricher struct {
	generator   provider.TextGenerator
	maxTokens   int
	temperature float64
	parallelism int
}

// NewProviderEnricher creates a new ProviderEnricher.
func NewProviderEnricher(generator provider.TextGenerator) *ProviderEnricher {
	return &ProviderEnricher{
		generator:   generator,
		maxTokens:   2048,
		temperature: 0.7,
		parallelism: 1,
	}
}

// WithMaxTokens sets the maximum tokens for generation.
func (e *ProviderEnricher) WithMaxTokens(n int) *ProviderEnricher {
	e.maxTokens = n
	return e
}

// WithTemperature sets the temperature for generation.
func (e *ProviderEnricher) WithTemperature(t float64) *ProviderEnricher {
	e.temperature = t
	return e
}

// WithParallelism sets how many requests are dispatched concurrently.
// Values <= 0 are clamped to 1.
func (e *ProviderEnricher) WithParallelism(n int) *ProviderEnricher {
	if n <= 0 {
		n = 1
	}
	e.parallelism = n
	return e
}

// Enrich processes requests in parallel and returns responses.
// Implements domainservice.Enricher interface.
func (e *ProviderEnricher) Enrich(ctx context.Context, requests []domainservice.EnrichmentRequest, opts ...domainservice.EnrichOption) ([]domainservice.EnrichmentResponse, error) {
	cfg := domainservice.NewEnrichConfig(opts...)

	var filtered []int
	for i, req := range requests {
		if req.Text() != "" {
			filtered = append(filtered, i)
		}
	}

	if len(filtered) == 0 {
		return []domainservice.EnrichmentResponse{}, nil
	}

	total := len(filtered)
	responses := make([]domainservice.EnrichmentResponse, total)

	var (
		mu            sync.Mutex
		requestErrors []error
		completed     int32
	)

	sem := make(chan struct{}, e.parallelism)
	var wg sync.WaitGroup

	var canceled error
	for slot, reqIdx := range filtered {
		if err := ctx.Err(); err != nil {
			canceled = err
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(slot, reqIdx int) {
			defer wg.Done()
			defer func() { <-sem }()

			req := requests[reqIdx]
			resp, err := e.processRequest(ctx, req)
			if err != nil {
				mu.Lock()
				requestErrors = append(requestErrors, fmt.Errorf("enrich request %s: %w", req.ID(), err))
				mu.Unlock()
				if cfg.RequestError() != nil {
					cfg.RequestError()(req.ID(), err)
				}
				return
			}

			responses[slot] = resp

			done := int(atomic.AddInt32(&completed, 1))
			if cfg.Progress() != nil {
				cfg.Progress()(done, total)
			}
		}(slot, reqIdx)
	}

	wg.Wait()

	// A canceled context means some requests were never dispatched; report
	// the cancellation rather than silently returning a partial result set.
	if canceled != nil {
		return nil, fmt.Errorf("enrichment canceled: %w", canceled)
	}

	if len(requestErrors) > 0 {
		rate := float64(len(requestErrors)) / float64(total)
		if rate > cfg.MaxFailureRate() {
			return nil, fmt.Errorf("%d of %d enrichment requests failed: %w", len(requestErrors), total, errors.Join(requestErrors...))
		}
	}

	// Filter out zero-value responses (failed slots).
	result := make([]domainservice.EnrichmentResponse, 0, total-len(requestErrors))
	for _, resp := range responses {
		if resp.ID() != "" {
			result = append(result, resp)
		}
	}

	return result, nil
}

func (e *ProviderEnricher) processRequest(ctx context.Context, req domainservice.EnrichmentRequest) (domainservice.EnrichmentResponse, error) {
	messages := []provider.Message{
		provider.SystemMessage(req.SystemPrompt()),
		provider.UserMessage(req.Text()),
	}

	chatReq := provider.NewChatCompletionRequest(messages).
		WithMaxTokens(e.maxTokens).
		WithTemperature(e.temperature)

	chatResp, err := e.generator.ChatCompletion(ctx, chatReq)
	if err != nil {
		return domainservice.EnrichmentResponse{}, err
	}

	content := cleanThinkingTags(chatResp.Content())

	return domainservice.NewEnrichmentResponse(req.ID(), content), nil
}

const (
	thinkOpenTag  = "<think>"
	thinkCloseTag = "</think>"
)

// cleanThinkingTags removes any <think>...</think> tags from model output.
// Some models (like Qwen) use these for chain-of-thought reasoning.
func cleanThinkingTags(text string) string {
	result := text
	for {
		start := strings.Index(result, thinkOpenTag)
		if start == -1 {
			break
		}
		end := strings.Index(result, thinkCloseTag)
		if end == -1 {
			// Unclosed tag, just remove the opening tag.
			result = result[:start] + result[start+len(thinkOpenTag):]
			continue
		}
		result = result[:start] + result[end+len(thinkCloseTag):]
	}
	return result
}

// Ensure ProviderEnricher implements domainservice.Enricher.
var _ domainservice.Enricher = (*ProviderEnricher)(nil)
