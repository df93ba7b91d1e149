package storage

import (
	"context"

	"github.com/panarchynow/initiation/internal/models"
)

// Repository defines the interface for submission-history storage.
type Repository interface {
	SaveSubmission(ctx context.Context, submission *models.Submission) error
	ListSubmissionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Submission, error)

	Ping(ctx context.Context) error
	Close() error
}
