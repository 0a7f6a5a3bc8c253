package service

import (
	"context"

	"email-classifier/internal/logger"
	"email-classifier/internal/metrics"
	"email-classifier/internal/model"
	"email-classifier/internal/repository"
)

type emailService struct {
	classifier ClassificationService
	emailRepo  repository.EmailRepository
	logger     *logger.Logger
}

func NewEmailService(classifier ClassificationService, emailRepo repository.EmailRepository, logger *logger.Logger) EmailService {
	return &emailService{
		classifier: classifier,
		emailRepo:  emailRepo,
		logger:     logger,
	}
}

// ClassifyAndStore classifies text and persists it with metadata. A storage failure is logged and
// does not discard the classification.
func (s *emailService) ClassifyAndStore(ctx context.Context, text string, metadata map[string]interface{}) (*model.ClassificationResult, error) {
	result, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	path, err := s.emailRepo.Save(ctx, text, result.Category, metadata)
	if err != nil {
		metrics.IncrementStorageFailure()
		s.logger.Errorw("Failed to store classified email", "category", result.Category, "error", err)
		return result, nil
	}

	metrics.IncrementStored(result.Category.String())
	s.logger.Infow("Stored classified email", "category", result.Category, "path", path)
	return result, nil
}

func (s *emailService) ListEmails(ctx context.Context, category string) ([]*model.StoredEmail, error) {
	emails, err := s.emailRepo.List(ctx, category)
	if err != nil {
		s.logger.Error("Failed to list emails:", err)
		return nil, err
	}
	return emails, nil
}
