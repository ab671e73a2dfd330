package trails

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yanqian/trailfinder/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/trailfinder/pkg/errors"
	"github.com/yanqian/trailfinder/pkg/metrics"
)

// Service exposes fitness based trail ranking.
type Service interface {
	Recommend(ctx context.Context, req Request) (Response, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter sizes prompts before they are sent.
type TokenCounter interface {
	Count(text string) int
}

type service struct {
	cfg    Config
	repo   Repository
	client ChatClient
	tokens TokenCounter
	logger *slog.Logger
}

// NewService wires up the recommendation domain.
func NewService(cfg Config, repo Repository, client ChatClient, tokens TokenCounter, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		client: client,
		tokens: tokens,
		logger: logger.With("component", "trails.service"),
	}
}

func (s *service) Recommend(ctx context.Context, req Request) (Response, error) {
	if req.FitnessLevel < s.cfg.MinFitnessLevel || req.FitnessLevel > s.cfg.MaxFitnessLevel {
		msg := fmt.Sprintf("fitnessLevel must be between %d and %d", s.cfg.MinFitnessLevel, s.cfg.MaxFitnessLevel)
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, msg, nil)
	}

	stored, err := s.repo.ListByDifficulty(ctx)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeTrailStoreError, "failed to load trails", err)
	}
	if len(stored) == 0 {
		return Response{Trails: []RankedTrail{}, Ranked: true}, nil
	}
	s.logger.Info("trails loaded", "count", len(stored), "fitness_level", req.FitnessLevel)

	userPrompt, err := buildUserPrompt(req.FitnessLevel, stored)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeTrailStoreError, "failed to serialize trails", err)
	}
	messages := []chatgpt.Message{
		{Role: "system", Content: s.cfg.SystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	if s.cfg.MaxPromptTokens > 0 && s.tokens != nil {
		if n := s.tokens.Count(s.cfg.SystemPrompt + userPrompt); n > s.cfg.MaxPromptTokens {
			return s.rankingFailed(stored, "malformed", apperrors.Wrap(apperrors.CodeLLMError, fmt.Sprintf("prompt of %d tokens exceeds budget of %d", n, s.cfg.MaxPromptTokens), nil))
		}
	}

	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:          s.cfg.Model,
		Messages:       messages,
		Temperature:    s.cfg.Temperature,
		ResponseFormat: recommendationFormat(),
	})
	if err != nil {
		return s.rankingFailed(stored, "error", apperrors.Wrap(apperrors.CodeLLMError, "chatgpt request failed", err))
	}
	if len(completion.Choices) == 0 {
		return s.rankingFailed(stored, "malformed", apperrors.Wrap(apperrors.CodeLLMError, "chatgpt returned no choices", nil))
	}

	recs, err := parseRecommendations(completion.Choices[0].Message.Content)
	if err != nil {
		return s.rankingFailed(stored, "malformed", apperrors.Wrap(apperrors.CodeLLMError, "chatgpt response malformed", err))
	}

	ranked, dropped := mergeRecommendations(stored, recs)
	if dropped > 0 {
		s.logger.Warn("recommendations dropped", "dropped", dropped, "returned", len(recs))
		metrics.RecommendationsDropped.Add(float64(dropped))
	}
	metrics.CompletionRequests.WithLabelValues("success").Inc()

	res := Response{Trails: ranked, Ranked: true}
	if usage := toTokenUsage(completion.Usage); !usage.IsZero() {
		metrics.ObserveUsage(usage)
		res.TokenUsage = &usage
	}
	return res, nil
}

// rankingFailed either degrades to difficulty order or surfaces the failure.
func (s *service) rankingFailed(stored []Trail, outcome string, cause error) (Response, error) {
	metrics.CompletionRequests.WithLabelValues(outcome).Inc()
	if !s.cfg.FallbackToUnranked {
		return Response{}, cause
	}
	s.logger.Warn("ranking unavailable, returning difficulty order", "error", cause)
	metrics.CompletionRequests.WithLabelValues("fallback").Inc()
	out := make([]RankedTrail, 0, len(stored))
	for _, t := range stored {
		out = append(out, RankedTrail{Trail: t})
	}
	return Response{Trails: out, Ranked: false}, nil
}

func buildUserPrompt(level int, stored []Trail) (string, error) {
	payload, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Given a user's fitness level of %d (scale 1-5), rank and explain which of these trails would be most suitable. Trails: %s", level, payload), nil
}

type recommendationWire struct {
	ID          *int64  `json:"id"`
	Explanation *string `json:"explanation"`
}

// parseRecommendations decodes the schema constrained completion content.
func parseRecommendations(raw string) ([]Recommendation, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" {
		return nil, errors.New("empty content")
	}

	var wire struct {
		Trails *[]recommendationWire `json:"trails"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(sanitized)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after recommendations object")
	}
	if wire.Trails == nil {
		return nil, errors.New("trails missing")
	}

	out := make([]Recommendation, 0, len(*wire.Trails))
	for i, item := range *wire.Trails {
		if item.ID == nil {
			return nil, fmt.Errorf("trails[%d].id missing", i)
		}
		if item.Explanation == nil {
			return nil, fmt.Errorf("trails[%d].explanation missing", i)
		}
		out = append(out, Recommendation{ID: *item.ID, Explanation: strings.TrimSpace(*item.Explanation)})
	}
	return out, nil
}

// mergeRecommendations joins recs onto stored trails in recs order. Unknown and repeated ids are
// skipped and counted.
func mergeRecommendations(stored []Trail, recs []Recommendation) ([]RankedTrail, int) {
	byID := make(map[int64]Trail, len(stored))
	for _, t := range stored {
		byID[t.ID] = t
	}
	seen := make(map[int64]struct{}, len(recs))
	out := make([]RankedTrail, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		trail, ok := byID[rec.ID]
		if !ok {
			dropped++
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			dropped++
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, RankedTrail{Trail: trail, Explanation: rec.Explanation})
	}
	return out, dropped
}

func toTokenUsage(u *chatgpt.Usage) metrics.TokenUsage {
	if u == nil {
		return metrics.TokenUsage{}
	}
	return metrics.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
