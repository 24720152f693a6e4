package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"catalogsync_api/internal/amazon/business/services/feeds"
)

// FeedSubmissionRepository keeps the state of each feed submission so an
// operator can see what was sent and where it ended up.
type FeedSubmissionRepository struct {
	db *sql.DB
}

func NewFeedSubmissionRepository(db *sql.DB) *FeedSubmissionRepository {
	return &FeedSubmissionRepository{db: db}
}

func (r *FeedSubmissionRepository) Save(ctx context.Context, submission *feeds.Submission) error {
	query := `
		INSERT INTO catalog.feed_submissions (submission_id, feed_type, document_id, feed_id, state, result_document_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (submission_id) DO UPDATE
		SET document_id = EXCLUDED.document_id,
			feed_id = EXCLUDED.feed_id,
			state = EXCLUDED.state,
			result_document_id = EXCLUDED.result_document_id,
			updated_at = now()`

	_, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.FeedType,
		nullable(submission.DocumentID),
		nullable(submission.FeedID),
		string(submission.State),
		nullable(submission.ResultDocumentID),
	)
	if err != nil {
		return fmt.Errorf("failed to save feed submission %s: %w", submission.ID, err)
	}
	return nil
}

func (r *FeedSubmissionRepository) Get(ctx context.Context, id uuid.UUID) (*feeds.Submission, error) {
	query := `
		SELECT submission_id, feed_type, document_id, feed_id, state, result_document_id
		FROM catalog.feed_submissions WHERE submission_id = $1`

	var (
		submission feeds.Submission
		documentID sql.NullString
		feedID     sql.NullString
		state      string
		resultID   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&submission.ID, &submission.FeedType, &documentID, &feedID, &state, &resultID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feed submission %s: %w", id, err)
	}

	submission.DocumentID = documentID.String
	submission.FeedID = feedID.String
	submission.State = feeds.SubmissionState(state)
	submission.ResultDocumentID = resultID.String
	return &submission, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
