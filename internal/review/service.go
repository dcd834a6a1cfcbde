// Package review validates feedback submissions and routes them to a backend.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"store-feedback/internal/models"

	"github.com/google/uuid"
)

// StoreLookup resolves the store a review is about.
type StoreLookup interface {
	Get(id string) (models.StoreLocation, error)
}

// Outcome is the success payload returned to the widget.
type Outcome struct {
	Success   bool   `json:"success"`
	ID        string `json:"id,omitempty"`
	ReviewURL string `json:"reviewUrl,omitempty"`
}

type Service struct {
	policy Policy
	stores StoreLookup
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(policy Policy, stores StoreLookup, sink Sink, logger *slog.Logger) (*Service, error) {
	if err := policy.Check(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, errors.New("review sink is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		policy: policy,
		stores: stores,
		sink:   sink,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}, nil
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Submit validates r and hands it to the sink once. Validation failures never
// reach the sink.
func (s *Service) Submit(ctx context.Context, r models.Review) (Outcome, error) {
	submittedAt, err := s.policy.Validate(r)
	if err != nil {
		return Outcome{}, err
	}

	store, err := s.stores.Get(r.StoreID)
	if err != nil {
		return Outcome{}, invalid("Unknown store")
	}

	accepted := models.AcceptedReview{
		ID:          s.newID(),
		StoreID:     store.ID,
		StoreName:   store.Name,
		Rating:      r.Rating,
		Title:       r.Title,
		Feedback:    r.Feedback,
		Name:        r.Name,
		Phone:       r.Phone,
		Email:       r.Email,
		Source:      r.Source,
		SubmittedAt: submittedAt,
		ReceivedAt:  s.now().UTC(),
	}

	if err := s.sink.Deliver(ctx, accepted); err != nil {
		s.logger.Error("review delivery failed", "sink", s.sink.Name(), "store", store.ID, "err", err)
		return Outcome{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	s.logger.Info("review accepted", "id", accepted.ID, "store", store.ID, "rating", r.Rating, "source", r.Source)

	out := Outcome{Success: true, ID: accepted.ID}
	if r.Rating == 5 {
		out.ReviewURL = store.PublicReviewURL()
	}
	return out, nil
}
