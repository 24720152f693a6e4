package response

type CreateFeedDocumentResponse struct {
	FeedDocumentID string `json:"feedDocumentId"`
	URL            string `json:"url"`
}

type CreateFeedResponse struct {
	FeedID string `json:"feedId"`
}

// Processing statuses reported by GET /feeds/2021-06-30/feeds/{feedId}.
const (
	ProcessingStatusInQueue    = "IN_QUEUE"
	ProcessingStatusInProgress = "IN_PROGRESS"
	ProcessingStatusDone       = "DONE"
	ProcessingStatusCancelled  = "CANCELLED"
	ProcessingStatusFatal      = "FATAL"
)

type FeedStatusResponse struct {
	FeedID               string `json:"feedId"`
	ProcessingStatus     string `json:"processingStatus"`
	ResultFeedDocumentID string `json:"resultFeedDocumentId,omitempty"`
}

func (r *FeedStatusResponse) Terminal() bool {
	switch r.ProcessingStatus {
	case ProcessingStatusDone, ProcessingStatusCancelled, ProcessingStatusFatal:
		return true
	}
	return false
}
