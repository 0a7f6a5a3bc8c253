package repository

import (
	"context"
	"errors"

	"email-classifier/internal/model"
)

// ErrStorage wraps every failure to persist or read stored emails.
var ErrStorage = errors.New("storage failure")

// EmailRepository defines the interface for stored email operations
type EmailRepository interface {
	// Save persists a classified email and returns its location.
	Save(ctx context.Context, text string, category model.Category, metadata map[string]interface{}) (string, error)
	// List returns stored emails, newest first within each category. An empty category lists all of them.
	List(ctx context.Context, category string) ([]*model.StoredEmail, error)
}
