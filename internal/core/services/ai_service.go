package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"barangaylink/internal/config"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/metrics"

	"github.com/sony/gobreaker"
)

// PriorityInput is what the prioritization service scores
type PriorityInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location,omitempty"`
}

// PriorityResult is the prioritization service's verdict
type PriorityResult struct {
	Priority          string   `json:"priority"`
	Score             float64  `json:"score"`
	Reason            string   `json:"reason"`
	SuggestedCategory *string  `json:"suggested_category"`
	KeywordsFound     []string `json:"keywords_found"`
}

// ChatInput is a message for the assistant
type ChatInput struct {
	Message  string `json:"message" validate:"required,max=1000"`
	Language string `json:"language,omitempty" validate:"omitempty,oneof=en tl"`
}

// ChatResult is the assistant's answer
type ChatResult struct {
	Response         string   `json:"response"`
	Confidence       float64  `json:"confidence"`
	Category         string   `json:"category"`
	SuggestedActions []string `json:"suggested_actions"`
	Language         string   `json:"language"`
}

// upstreamStatusError is a non-2xx answer from an AI service
type upstreamStatusError struct {
	status int
	detail string
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.status, e.detail)
}

// AIService forwards to the prioritization and chatbot services, each behind
// its own circuit breaker
type AIService struct {
	cfg        config.AIConfig
	httpClient *http.Client
	priorityCB *gobreaker.CircuitBreaker
	chatCB     *gobreaker.CircuitBreaker
	metrics    metrics.Recorder
}

// NewAIService creates the AI proxy. rec may be nil.
func NewAIService(cfg config.AIConfig, rec metrics.Recorder) *AIService {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AIService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		priorityCB: newBreaker("ai-priority"),
		chatCB:     newBreaker("ai-chat"),
		metrics:    rec,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// 4xx is the caller's fault, not the service's
			var se *upstreamStatusError
			if errors.As(err, &se) {
				return se.status < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("⚡ circuit %s: %s -> %s", name, from, to)
		},
	})
}

// PriorityEnabled reports whether a prioritization service is configured
func (s *AIService) PriorityEnabled() bool {
	return s.cfg.PriorityURL != ""
}

// ChatEnabled reports whether a chatbot service is configured
func (s *AIService) ChatEnabled() bool {
	return s.cfg.ChatURL != ""
}

// Prioritize asks the prioritization service to score a request
func (s *AIService) Prioritize(ctx context.Context, in PriorityInput) (*PriorityResult, error) {
	if !s.PriorityEnabled() {
		return nil, domain.ErrAIUnavailable
	}

	var out PriorityResult
	if err := s.post(ctx, s.priorityCB, "priority", s.cfg.PriorityURL+"/api/prioritize", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat forwards a message to the chatbot service. role and sessionID give the
// assistant context about the asker.
func (s *AIService) Chat(ctx context.Context, in ChatInput, role, sessionID string) (*ChatResult, error) {
	if !s.ChatEnabled() {
		return nil, domain.ErrAIUnavailable
	}

	body := map[string]any{
		"message":    in.Message,
		"session_id": sessionID,
		"context": map[string]any{
			"language":  upstreamLanguage(in.Language),
			"user_role": role,
		},
	}

	var out ChatResult
	if err := s.post(ctx, s.chatCB, "chat", s.cfg.ChatURL+"/api/chat", body, &out); err != nil {
		return nil, err
	}
	out.Language = clientLanguage(out.Language)
	return &out, nil
}

func upstreamLanguage(lang string) string {
	if lang == "tl" {
		return "filipino"
	}
	return "english"
}

func clientLanguage(lang string) string {
	switch lang {
	case "filipino", "tl":
		return "tl"
	}
	return "en"
}

type upstreamEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Detail any             `json:"detail"`
}

func (s *AIService) post(ctx context.Context, cb *gobreaker.CircuitBreaker, service, url string, body, out any) error {
	start := time.Now()

	raw, err := cb.Execute(func() (interface{}, error) {
		return s.do(ctx, url, body)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.metrics.RecordUpstream(service, "open", 0)
		return domain.ErrAICircuitOpen
	case err != nil:
		s.metrics.RecordUpstream(service, "error", time.Since(start))
		logger.Warnf("⚠️ AI %s call failed: %v", service, err)
		return fmt.Errorf("%w: %v", domain.ErrAIUpstream, err)
	}
	s.metrics.RecordUpstream(service, "ok", time.Since(start))

	var env upstreamEnvelope
	if err := json.Unmarshal(raw.([]byte), &env); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAIUpstream, err)
	}
	if env.Status != "success" || len(env.Data) == 0 {
		return fmt.Errorf("%w: unexpected status %q", domain.ErrAIUpstream, env.Status)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAIUpstream, err)
	}
	return nil
}

func (s *AIService) do(ctx context.Context, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env upstreamEnvelope
		_ = json.Unmarshal(data, &env)
		return nil, &upstreamStatusError{status: resp.StatusCode, detail: fmt.Sprint(env.Detail)}
	}
	return data, nil
}
