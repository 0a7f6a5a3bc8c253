package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"email-classifier/internal/heuristic"
	"email-classifier/internal/logger"
	"email-classifier/internal/metrics"
	"email-classifier/internal/model"
)

// ErrInvalidInput is returned for text too short to classify.
var ErrInvalidInput = errors.New("texto muito curto para classificação")

const minTextLength = 3

type classificationService struct {
	aiClient AIClient
	logger   *logger.Logger
}

// NewClassificationService returns a service that tries aiClient once per email and falls back to the
// keyword heuristic. aiClient may be nil.
func NewClassificationService(aiClient AIClient, logger *logger.Logger) ClassificationService {
	return &classificationService{
		aiClient: aiClient,
		logger:   logger,
	}
}

func (s *classificationService) Classify(ctx context.Context, text string) (*model.ClassificationResult, error) {
	result, _, err := s.ClassifyWithSource(ctx, text)
	return result, err
}

// ClassifyWithSource also reports which path produced the result: metrics.PathRemote or
// metrics.PathFallback.
func (s *classificationService) ClassifyWithSource(ctx context.Context, text string) (*model.ClassificationResult, string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextLength {
		return nil, "", ErrInvalidInput
	}

	if s.aiClient != nil && s.aiClient.Enabled() {
		result, err := s.aiClient.ClassifyAndReply(ctx, text)
		if err == nil {
			metrics.IncrementClassification(metrics.PathRemote, result.Category.String())
			return result, metrics.PathRemote, nil
		}
		metrics.IncrementRemoteFailure()
		s.logger.Warnw("Remote classification failed, using heuristic", "error", err)
	}

	result := heuristic.ClassifyText(text)
	metrics.IncrementClassification(metrics.PathFallback, result.Category.String())
	return result, metrics.PathFallback, nil
}
