package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"catalogsync_api/internal/amazon/business/services/feeds"
	"catalogsync_api/internal/catalog/storage/repositories"
	"catalogsync_api/pkg/dbconnect"
)

const feedPollInterval = 30 * time.Second
const feedPollTimeout = 30 * time.Minute

type FeedRequest struct {
	SKUs        []string `json:"skus"`
	FeedType    string   `json:"feedType"`
	ProductType string   `json:"productType"`
}

type FeedHandler struct {
	dbconnect.Database
	repo        *repositories.ProductRepository
	feedService *feeds.FeedService
	sellerID    string
}

func NewFeedHandler(connector dbconnect.Database, feedService *feeds.FeedService, sellerID string) *FeedHandler {
	db, err := connector.Connect()
	if err != nil {
		return nil
	}
	return &FeedHandler{
		Database:    connector,
		repo:        repositories.NewProductRepository(db),
		feedService: feedService,
		sellerID:    sellerID,
	}
}

func (h *FeedHandler) Connect() (*sql.DB, error) {
	return h.Database.Connect()
}

func (h *FeedHandler) Ping() error {
	return h.Database.Ping()
}

// SubmitFeedHandler serves POST /api/feeds: stages the requested stored
// products into a feed payload, submits it, and polls the processing status
// in the background. The submission is returned immediately.
func (h *FeedHandler) SubmitFeedHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.Ping(); err != nil {
		http.Error(w, "Failed to ping database", http.StatusInternalServerError)
		return
	}

	var feedReq FeedRequest
	if err := json.NewDecoder(r.Body).Decode(&feedReq); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return
	}
	if len(feedReq.SKUs) == 0 {
		http.Error(w, "skus are required", http.StatusBadRequest)
		return
	}

	products, err := h.repo.GetBySKUs(r.Context(), feedReq.SKUs)
	if err != nil {
		http.Error(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	if len(products) == 0 {
		http.Error(w, "No stored products for the given skus", http.StatusNotFound)
		return
	}

	var (
		payload     []byte
		contentType string
		feedType    string
	)
	switch feedReq.FeedType {
	case "inventory":
		payload, err = feeds.BuildInventoryFlatFile(products)
		contentType = feeds.ContentTypeFlatFile
		feedType = feeds.FeedTypeInventoryFlatFile
	default:
		productType := feedReq.ProductType
		if productType == "" {
			productType = "PRODUCT"
		}
		payload, err = feeds.BuildListingsFeed(h.sellerID, productType, products)
		contentType = feeds.ContentTypeJSON
		feedType = feeds.FeedTypeListings
	}
	if err != nil {
		http.Error(w, "Failed to build feed payload", http.StatusInternalServerError)
		return
	}

	submission, err := h.feedService.Submit(r.Context(), feedType, payload, contentType)
	if err != nil {
		log.Printf("Feed submission failed: %v", err)
		http.Error(w, "Feed submission failed", http.StatusBadGateway)
		return
	}

	// The poll goroutine keeps mutating the submission, so the response is
	// written from a snapshot taken before polling starts.
	snapshot := *submission
	go h.pollSubmission(submission)

	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		log.Printf("Failed to encode submission: %v", err)
	}
}

func (h *FeedHandler) pollSubmission(submission *feeds.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), feedPollTimeout)
	defer cancel()

	final, err := h.feedService.Poll(ctx, submission, feedPollInterval)
	if err != nil {
		log.Printf("Polling feed %s failed: %v", submission.FeedID, err)
		return
	}
	log.Printf("Feed %s finished in state %s (result document %q)",
		final.FeedID, final.State, final.ResultDocumentID)
}
