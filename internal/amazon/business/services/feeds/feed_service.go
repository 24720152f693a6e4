package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"catalogsync_api/config"
	"catalogsync_api/internal/amazon/business/models/dto/request"
	"catalogsync_api/internal/amazon/business/models/dto/response"
	"catalogsync_api/internal/amazon/business/services"
	"catalogsync_api/pkg/logger"
)

const (
	documentsPath = "/feeds/2021-06-30/documents"
	feedsPath     = "/feeds/2021-06-30/feeds"
)

const feedRequestTimeout = 30 * time.Second

// SubmissionRecorder persists submission state transitions. A nil recorder
// disables persistence.
type SubmissionRecorder interface {
	Save(ctx context.Context, submission *Submission) error
}

// FeedService runs the asynchronous feed protocol against the SP-API:
// create document, upload payload, create feed, poll status. Every
// authenticated call consults the token provider first; the upload goes
// straight to the pre-signed URL and carries no API auth.
type FeedService struct {
	endpoint       string
	marketplaceIDs []string
	tokens         services.TokenProvider
	recorder       SubmissionRecorder
	client         *http.Client
	log            logger.Logger
}

func NewFeedService(cfg config.AmazonConfig, tokens services.TokenProvider, recorder SubmissionRecorder, writer io.Writer) *FeedService {
	return &FeedService{
		endpoint:       cfg.Endpoint,
		marketplaceIDs: cfg.MarketplaceIDs,
		tokens:         tokens,
		recorder:       recorder,
		client:         &http.Client{Timeout: feedRequestTimeout},
		log:            logger.NewLogger(writer, "[FeedService]"),
	}
}

// Submit runs steps one through three and leaves the submission in the
// Submitted state. Any step failure aborts this submission only; the caller
// starts over with a fresh document.
func (s *FeedService) Submit(ctx context.Context, feedType string, payload []byte, contentType string) (*Submission, error) {
	submission := &Submission{ID: uuid.New(), FeedType: feedType, State: StateCreated}

	document, err := s.CreateFeedDocument(ctx, contentType)
	if err != nil {
		return nil, fmt.Errorf("create feed document: %w", err)
	}
	submission.DocumentID = document.FeedDocumentID
	submission.UploadURL = document.URL
	s.record(ctx, submission)

	if err := s.UploadFeedDocument(ctx, submission, payload, contentType); err != nil {
		return nil, fmt.Errorf("upload feed document: %w", err)
	}
	s.record(ctx, submission)

	if err := s.CreateFeed(ctx, submission); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}
	s.record(ctx, submission)

	s.log.Log("Feed %s submitted (document %s, feed id %s)", submission.ID, submission.DocumentID, submission.FeedID)
	return submission, nil
}

// CreateFeedDocument registers intent to upload and obtains the pre-signed
// write target.
func (s *FeedService) CreateFeedDocument(ctx context.Context, contentType string) (*response.CreateFeedDocumentResponse, error) {
	body := request.CreateFeedDocumentRequest{ContentType: contentType}
	var document response.CreateFeedDocumentResponse
	if err := s.doSignedRequest(ctx, http.MethodPost, documentsPath, body, &document); err != nil {
		return nil, err
	}
	if document.FeedDocumentID == "" || document.URL == "" {
		return nil, fmt.Errorf("feed document response is incomplete")
	}
	return &document, nil
}

// UploadFeedDocument PUTs the payload directly to the pre-signed URL. This
// request bypasses the SP-API auth on purpose: the target is pre-authorized.
func (s *FeedService) UploadFeedDocument(ctx context.Context, submission *Submission, payload []byte, contentType string) error {
	if err := submission.advance(StateCreated, StateUploaded); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, submission.UploadURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload rejected: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// CreateFeed submits the uploaded document for processing.
func (s *FeedService) CreateFeed(ctx context.Context, submission *Submission) error {
	if err := submission.advance(StateUploaded, StateSubmitted); err != nil {
		return err
	}

	body := request.CreateFeedRequest{
		FeedType:            submission.FeedType,
		MarketplaceIDs:      s.marketplaceIDs,
		InputFeedDocumentID: submission.DocumentID,
	}
	var feed response.CreateFeedResponse
	if err := s.doSignedRequest(ctx, http.MethodPost, feedsPath, body, &feed); err != nil {
		submission.State = StateFatal
		s.record(ctx, submission)
		return err
	}
	if feed.FeedID == "" {
		submission.State = StateFatal
		s.record(ctx, submission)
		return fmt.Errorf("create feed response has no feed id")
	}
	submission.FeedID = feed.FeedID
	return nil
}

// GetFeedStatus fetches the current processing status of a submitted feed.
func (s *FeedService) GetFeedStatus(ctx context.Context, feedID string) (*response.FeedStatusResponse, error) {
	var status response.FeedStatusResponse
	path := fmt.Sprintf("%s/%s", feedsPath, feedID)
	if err := s.doSignedRequest(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Poll drives a submitted feed to a terminal state, checking on the given
// interval. Done yields the processing report document id on the submission.
func (s *FeedService) Poll(ctx context.Context, submission *Submission, interval time.Duration) (*Submission, error) {
	if submission.State != StateSubmitted {
		return nil, fmt.Errorf("submission %s is not polling-eligible (state %s)", submission.ID, submission.State)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return submission, ctx.Err()
		case <-ticker.C:
		}

		status, err := s.GetFeedStatus(ctx, submission.FeedID)
		if err != nil {
			return submission, fmt.Errorf("poll feed status: %w", err)
		}
		s.log.Log("Feed %s status: %s", submission.FeedID, status.ProcessingStatus)

		if !status.Terminal() {
			continue
		}

		switch status.ProcessingStatus {
		case response.ProcessingStatusDone:
			submission.State = StateDone
			submission.ResultDocumentID = status.ResultFeedDocumentID
		case response.ProcessingStatusCancelled:
			submission.State = StateCancelled
		case response.ProcessingStatusFatal:
			submission.State = StateFatal
		}
		s.record(ctx, submission)
		return submission, nil
	}
}

func (s *FeedService) doSignedRequest(ctx context.Context, method, path string, requestBody, responseBody interface{}) error {
	token, err := s.tokens.GetAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("acquire access token: %w", err)
	}

	var bodyBytes []byte
	if requestBody != nil {
		bodyBytes, err = json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-amz-access-token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("non-OK status %d from %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (s *FeedService) record(ctx context.Context, submission *Submission) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Save(ctx, submission); err != nil {
		s.log.Log("Failed to record submission %s: %s", submission.ID, err)
	}
}
