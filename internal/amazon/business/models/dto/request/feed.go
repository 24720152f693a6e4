package request

type CreateFeedDocumentRequest struct {
	ContentType string `json:"contentType"`
}

type CreateFeedRequest struct {
	FeedType            string   `json:"feedType"`
	MarketplaceIDs      []string `json:"marketplaceIds"`
	InputFeedDocumentID string   `json:"inputFeedDocumentId"`
}
