// Package recommend asks a text-generation backend for stalls similar to
// the one a visitor selected.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"expo-floorplan/internal/exhibition"
	"expo-floorplan/internal/logging"
)

// UnavailableMessage is shown to users whenever a recommendation fails.
const UnavailableMessage = "Failed to get recommendations. Please try again later."

// ErrUnavailable is the only error Service.Recommend returns.
var ErrUnavailable = errors.New(UnavailableMessage)

// DefaultTimeout bounds a single recommendation call.
const DefaultTimeout = 20 * time.Second

// Request is the input to a Recommender.
type Request struct {
	Category            string   `json:"selectedStallCategory"`
	Segment             string   `json:"selectedStallSegment"`
	AvailableCategories []string `json:"stallCategories"`
	AvailableSegments   []string `json:"stallSegments"`
}

// Response carries the generated recommendation text.
type Response struct {
	Text string `json:"recommendation"`
}

// Recommender produces a recommendation for a request.
type Recommender interface {
	Recommend(ctx context.Context, req Request) (Response, error)
}

// BuildRequest collects the distinct non-empty categories and segments of
// all stalls in first-seen order.
func BuildRequest(selected *exhibition.Stall, all []*exhibition.Stall) Request {
	req := Request{}
	if selected != nil {
		req.Category = selected.Category
		req.Segment = selected.Segment
	}
	seenCat := make(map[string]bool)
	seenSeg := make(map[string]bool)
	for _, st := range all {
		if st == nil {
			continue
		}
		if c := st.Category; c != "" && !seenCat[c] {
			seenCat[c] = true
			req.AvailableCategories = append(req.AvailableCategories, c)
		}
		if s := st.Segment; s != "" && !seenSeg[s] {
			seenSeg[s] = true
			req.AvailableSegments = append(req.AvailableSegments, s)
		}
	}
	return req
}

// Disabled is used when no backend is configured.
type Disabled struct{}

func (Disabled) Recommend(context.Context, Request) (Response, error) {
	return Response{}, fmt.Errorf("recommendations disabled: %w", ErrUnavailable)
}

// Service wraps a Recommender with a timeout and error hiding.
type Service struct {
	backend Recommender
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates a Service. A nil backend behaves like Disabled.
func NewService(backend Recommender, timeout time.Duration, logger *zap.Logger) *Service {
	if backend == nil {
		backend = Disabled{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger = logging.OrNop(logger)
	return &Service{backend: backend, timeout: timeout, logger: logger}
}

// Recommend asks the backend about stalls similar to selected. Any failure,
// including an empty answer, is logged and reported as ErrUnavailable.
func (s *Service) Recommend(ctx context.Context, selected *exhibition.Stall, all []*exhibition.Stall) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := BuildRequest(selected, all)
	resp, err := s.backend.Recommend(ctx, req)
	if err == nil && resp.Text == "" {
		err = errors.New("empty recommendation")
	}
	if err != nil {
		s.logger.Error("Stall recommendation failed",
			zap.String("category", req.Category),
			zap.String("segment", req.Segment),
			zap.Error(err))
		return "", ErrUnavailable
	}
	return resp.Text, nil
}
