package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync_api/config"
)

type staticTokens struct{}

func (staticTokens) GetAccessToken(ctx context.Context) (string, error) {
	return "test-token", nil
}

type recorded struct {
	states []SubmissionState
}

func (r *recorded) Save(ctx context.Context, submission *Submission) error {
	r.states = append(r.states, submission.State)
	return nil
}

// fakeSPAPI emulates the feed endpoints plus the pre-signed upload target.
type fakeSPAPI struct {
	server         *httptest.Server
	uploads        atomic.Int32
	statusPolls    atomic.Int32
	finalStatus    string
	pollsUntilDone int32
}

func newFakeSPAPI(t *testing.T, finalStatus string, pollsUntilDone int32) *fakeSPAPI {
	f := &fakeSPAPI{finalStatus: finalStatus, pollsUntilDone: pollsUntilDone}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /feeds/2021-06-30/documents", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("x-amz-access-token"))
		fmt.Fprintf(w, `{"feedDocumentId": "doc-1", "url": "%s/upload/doc-1"}`, f.server.URL)
	})
	mux.HandleFunc("PUT /upload/doc-1", func(w http.ResponseWriter, r *http.Request) {
		// The pre-signed target takes no API auth.
		assert.Empty(t, r.Header.Get("x-amz-access-token"))
		body, _ := io.ReadAll(r.Body)
		assert.NotEmpty(t, body)
		f.uploads.Add(1)
	})
	mux.HandleFunc("POST /feeds/2021-06-30/feeds", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("x-amz-access-token"))
		fmt.Fprint(w, `{"feedId": "feed-1"}`)
	})
	mux.HandleFunc("GET /feeds/2021-06-30/feeds/feed-1", func(w http.ResponseWriter, r *http.Request) {
		if f.statusPolls.Add(1) < f.pollsUntilDone {
			fmt.Fprint(w, `{"feedId": "feed-1", "processingStatus": "IN_PROGRESS"}`)
			return
		}
		if f.finalStatus == "DONE" {
			fmt.Fprint(w, `{"feedId": "feed-1", "processingStatus": "DONE", "resultFeedDocumentId": "result-doc-1"}`)
			return
		}
		fmt.Fprintf(w, `{"feedId": "feed-1", "processingStatus": "%s"}`, f.finalStatus)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newTestFeedService(endpoint string, recorder SubmissionRecorder) *FeedService {
	cfg := config.AmazonConfig{
		Endpoint:       endpoint,
		MarketplaceIDs: []string{"ATVPDKIKX0DER"},
	}
	return NewFeedService(cfg, staticTokens{}, recorder, io.Discard)
}

func TestFeedService_SubmitAndPoll_Done(t *testing.T) {
	api := newFakeSPAPI(t, "DONE", 3)
	recorder := &recorded{}
	service := newTestFeedService(api.server.URL, recorder)

	submission, err := service.Submit(context.Background(), FeedTypeListings, []byte(`{"messages": []}`), ContentTypeJSON)
	require.NoError(t, err)

	assert.Equal(t, "doc-1", submission.DocumentID)
	assert.Equal(t, "feed-1", submission.FeedID)
	assert.Equal(t, StateSubmitted, submission.State)
	assert.Equal(t, int32(1), api.uploads.Load())

	final, err := service.Poll(context.Background(), submission, 10*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, StateDone, final.State)
	assert.Equal(t, "result-doc-1", final.ResultDocumentID)
	assert.GreaterOrEqual(t, api.statusPolls.Load(), int32(3))
	assert.Equal(t, []SubmissionState{StateCreated, StateUploaded, StateSubmitted, StateDone}, recorder.states)
}

func TestFeedService_Poll_Fatal(t *testing.T) {
	api := newFakeSPAPI(t, "FATAL", 1)
	service := newTestFeedService(api.server.URL, nil)

	submission, err := service.Submit(context.Background(), FeedTypeListings, []byte(`{}`), ContentTypeJSON)
	require.NoError(t, err)

	final, err := service.Poll(context.Background(), submission, 10*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, StateFatal, final.State)
	assert.Empty(t, final.ResultDocumentID)
}

func TestFeedService_Poll_RequiresSubmittedState(t *testing.T) {
	service := newTestFeedService("http://unused.example.com", nil)

	submission := &Submission{State: StateCreated}
	_, err := service.Poll(context.Background(), submission, time.Millisecond)

	assert.Error(t, err)
}

func TestFeedService_Poll_Cancellation(t *testing.T) {
	api := newFakeSPAPI(t, "DONE", 1000)
	service := newTestFeedService(api.server.URL, nil)

	submission, err := service.Submit(context.Background(), FeedTypeListings, []byte(`{}`), ContentTypeJSON)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = service.Poll(ctx, submission, 10*time.Millisecond)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// The feed handler answers the request from a snapshot while Poll keeps
// mutating the original submission in the background. Encoding the snapshot
// must never observe the poller's writes.
func TestFeedService_SnapshotIsolatedFromPoll(t *testing.T) {
	api := newFakeSPAPI(t, "DONE", 3)
	service := newTestFeedService(api.server.URL, nil)

	submission, err := service.Submit(context.Background(), FeedTypeListings, []byte(`{}`), ContentTypeJSON)
	require.NoError(t, err)

	snapshot := *submission

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, pollErr := service.Poll(context.Background(), submission, time.Millisecond)
		assert.NoError(t, pollErr)
	}()

	for {
		encoded, err := json.Marshal(snapshot)
		require.NoError(t, err)
		assert.Contains(t, string(encoded), string(StateSubmitted))

		select {
		case <-done:
			assert.Equal(t, StateSubmitted, snapshot.State)
			assert.Empty(t, snapshot.ResultDocumentID)
			assert.Equal(t, StateDone, submission.State)
			assert.Equal(t, "result-doc-1", submission.ResultDocumentID)
			return
		default:
		}
	}
}

func TestSubmission_TransitionsAreOneDirectional(t *testing.T) {
	submission := &Submission{State: StateCreated}

	require.NoError(t, submission.advance(StateCreated, StateUploaded))
	require.NoError(t, submission.advance(StateUploaded, StateSubmitted))

	// Going back is never allowed.
	assert.Error(t, submission.advance(StateCreated, StateUploaded))
	assert.Error(t, submission.advance(StateUploaded, StateSubmitted))
}
