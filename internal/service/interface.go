package service

import (
	"context"

	"email-classifier/internal/model"
)

// ClassificationService picks the remote model or the local heuristic for each email.
type ClassificationService interface {
	Classify(ctx context.Context, text string) (*model.ClassificationResult, error)
	ClassifyWithSource(ctx context.Context, text string) (*model.ClassificationResult, string, error)
}

// EmailService classifies emails, persists them and lists them back.
type EmailService interface {
	ClassifyAndStore(ctx context.Context, text string, metadata map[string]interface{}) (*model.ClassificationResult, error)
	ListEmails(ctx context.Context, category string) ([]*model.StoredEmail, error)
}

// AIClient interface for interacting with AI services
type AIClient interface {
	// Enabled reports whether the client has credentials to call the remote model.
	Enabled() bool
	// ClassifyAndReply makes exactly one remote call. Any failure is returned as an error.
	ClassifyAndReply(ctx context.Context, emailBody string) (*model.ClassificationResult, error)
}
