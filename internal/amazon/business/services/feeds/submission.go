package feeds

import (
	"fmt"

	"github.com/google/uuid"
)

type SubmissionState string

// Submission states. Transitions are one-directional; a Fatal or Cancelled
// submission is never resubmitted in place, the caller starts a fresh
// document cycle instead.
const (
	StateCreated   SubmissionState = "created"
	StateUploaded  SubmissionState = "uploaded"
	StateSubmitted SubmissionState = "submitted"
	StateDone      SubmissionState = "done"
	StateCancelled SubmissionState = "cancelled"
	StateFatal     SubmissionState = "fatal"
)

// Submission tracks one feed through the four-step protocol.
type Submission struct {
	ID               uuid.UUID
	FeedType         string
	DocumentID       string
	UploadURL        string
	FeedID           string
	State            SubmissionState
	ResultDocumentID string
}

func (s *Submission) Terminal() bool {
	switch s.State {
	case StateDone, StateCancelled, StateFatal:
		return true
	}
	return false
}

func (s *Submission) advance(from, to SubmissionState) error {
	if s.State != from {
		return fmt.Errorf("invalid transition %s -> %s for submission %s (current state %s)",
			from, to, s.ID, s.State)
	}
	s.State = to
	return nil
}
