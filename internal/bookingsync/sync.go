package bookingsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"install-schedule-backend/config"
	"install-schedule-backend/internal/model"
	"install-schedule-backend/internal/store"
)

// Service keeps the local bookings table in step with the platform that owns
// bookings. The negotiation validator's booking lookup reads from this copy.
type Service struct {
	cfg    *config.Config
	store  store.Store
	client *http.Client
}

// NewService creates and initializes a new bookings poller.
func NewService(cfg *config.Config, s store.Store) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.Sync.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Sync.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Poller will not use a proxy.", cfg.Sync.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// mapStatus classifies a platform status string. Anything unrecognized is
// treated as pending rather than dropped, so a new platform status never makes
// a booking invisible to the validator.
func (s *Service) mapStatus(status string) model.BookingStatus {
	switch status {
	case "confirmed":
		return model.BookingStatusConfirmed
	case "completed":
		return model.BookingStatusCompleted
	case "cancelled":
		return model.BookingStatusCancelled
	default:
		return model.BookingStatusPending
	}
}

// Run starts the polling loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sync.Enabled {
		log.Println("Bookings poller is disabled. Not starting.")
		return
	}
	log.Println("Starting bookings poller...")

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Sync.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Bookings poller shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Sync.Interval)
		}
	}
}

// SyncOnce performs a single reconciliation pass against the platform API.
func (s *Service) SyncOnce(ctx context.Context) {
	log.Println("Executing bookings sync cycle...")

	var allItems []store.PlatformBooking
	total := 1
	pageSize := s.cfg.Sync.Request.PageSize
	var fetchErr error
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.fetchPage(ctx, page)
		if err != nil {
			log.Printf("Error fetching page %d: %v", page, err)
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		allItems = append(allItems, resp.Data.Items...)
		log.Printf("Fetched page %d, total bookings so far: %d", page, len(allItems))
	}

	if fetchErr != nil && len(allItems) == 0 {
		log.Println("Sync cycle aborted due to fetch error with no bookings retrieved.")
		return
	}
	if len(allItems) == 0 {
		log.Println("Sync cycle finished: no bookings to process.")
		return
	}

	if err := s.store.UpsertBookings(ctx, allItems, s.mapStatus); err != nil {
		log.Printf("Error upserting bookings: %v", err)
		return
	}

	log.Printf("Sync cycle finished: %d bookings reconciled.", len(allItems))
}

// fetchPage fetches a single page of bookings from the platform API.
func (s *Service) fetchPage(ctx context.Context, page int) (*ApiResponse, error) {
	payload := map[string]any{
		"page":     page,
		"pageSize": s.cfg.Sync.Request.PageSize,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Sync.Request.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	for key, value := range s.cfg.Sync.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp ApiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api response: %w", err)
	}

	if apiResp.Code != 0 {
		return nil, fmt.Errorf("API returned non-zero application code: %d", apiResp.Code)
	}

	return &apiResp, nil
}
