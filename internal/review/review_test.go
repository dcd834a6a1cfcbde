package review

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"store-feedback/internal/models"
	"store-feedback/internal/stores"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	got []models.AcceptedReview
	err error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, r models.AcceptedReview) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, r)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validReview() models.Review {
	return models.Review{
		StoreID:     "denver",
		Rating:      3,
		Feedback:    "Took a while",
		Name:        "Pat",
		Phone:       "555-0100",
		Email:       "pat@example.com",
		Source:      models.SourceManual,
		SubmittedAt: "2026-10-18T09:30:00.000Z",
	}
}

func newService(t *testing.T, policy Policy, sink Sink) *Service {
	t.Helper()
	dir, err := stores.New(stores.Defaults())
	require.NoError(t, err)
	svc, err := NewService(policy, dir, sink, quietLogger())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 9, 31, 0, 0, time.UTC) }
	svc.newID = func() string { return "fixed-id" }
	return svc
}

func TestPolicyCheck(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Check())

	p := DefaultPolicy()
	p.FiveStar = FiveStarRecord
	assert.ErrorIs(t, p.Check(), ErrInvalidPolicy)

	p.MaxRating = 5
	assert.NoError(t, p.Check())

	p = DefaultPolicy()
	p.RequiredFields = []string{"shoe size"}
	assert.ErrorIs(t, p.Check(), ErrInvalidPolicy)

	p = DefaultPolicy()
	p.MinRating = 0
	assert.ErrorIs(t, p.Check(), ErrInvalidPolicy)

	p = DefaultPolicy()
	p.FiveStar = "maybe"
	assert.ErrorIs(t, p.Check(), ErrInvalidPolicy)
}

func TestValidate(t *testing.T) {
	p := DefaultPolicy()

	at, err := p.Validate(validReview())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC), at.UTC())

	tests := []struct {
		name   string
		mutate func(r *models.Review)
		msg    string
	}{
		{"missing store", func(r *models.Review) { r.StoreID = "" }, "Missing required fields"},
		{"missing rating", func(r *models.Review) { r.Rating = 0 }, "Missing required fields"},
		{"blank feedback", func(r *models.Review) { r.Feedback = "   " }, "Missing required fields"},
		{"missing phone", func(r *models.Review) { r.Phone = "" }, "Missing required fields"},
		{"missing submittedAt", func(r *models.Review) { r.SubmittedAt = "" }, "Missing required fields"},
		{"rating six", func(r *models.Review) { r.Rating = 6 }, "Rating must be between 1 and 4"},
		{"rating five", func(r *models.Review) { r.Rating = 5 }, "Rating must be between 1 and 4"},
		{"negative rating", func(r *models.Review) { r.Rating = -1 }, "Rating must be between 1 and 4"},
		{"bad source", func(r *models.Review) { r.Source = "wifi" }, "Invalid location source"},
		{"bad timestamp", func(r *models.Review) { r.SubmittedAt = "yesterday" }, "Invalid submittedAt timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReview()
			tt.mutate(&r)
			_, err := p.Validate(r)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestValidateOptionalFields(t *testing.T) {
	p := DefaultPolicy()
	p.RequiredFields = []string{FieldFeedback}

	r := validReview()
	r.Name, r.Phone, r.Email = "", "", ""
	_, err := p.Validate(r)
	assert.NoError(t, err)
}

func TestSubmitRejectsRatingSixWithoutBackendCall(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(t, DefaultPolicy(), sink)

	r := validReview()
	r.Rating = 6
	_, err := svc.Submit(context.Background(), r)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, sink.got)
}

func TestSubmitUnknownStore(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(t, DefaultPolicy(), sink)

	r := validReview()
	r.StoreID = "atlantis"
	_, err := svc.Submit(context.Background(), r)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Unknown store", err.Error())
	assert.Empty(t, sink.got)
}

func TestSubmitManualSuccess(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(t, DefaultPolicy(), sink)

	out, err := svc.Submit(context.Background(), validReview())
	require.NoError(t, err)
	assert.Equal(t, Outcome{Success: true, ID: "fixed-id"}, out)

	require.Len(t, sink.got, 1)
	got := sink.got[0]
	assert.Equal(t, "fixed-id", got.ID)
	assert.Equal(t, "denver", got.StoreID)
	assert.Equal(t, "Restoration Logistics Denver", got.StoreName)
	assert.Equal(t, models.SourceManual, got.Source)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 31, 0, 0, time.UTC), got.ReceivedAt)
}

func TestSubmitFiveStarRecorded(t *testing.T) {
	p := DefaultPolicy()
	p.MaxRating = 5
	p.FiveStar = FiveStarRecord
	sink := &recordingSink{}
	svc := newService(t, p, sink)

	r := validReview()
	r.Rating = 5
	out, err := svc.Submit(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "https://g.page/r/CQ6BNL8oCS-_EBM/review", out.ReviewURL)
	assert.Len(t, sink.got, 1)
}

func TestSubmitBackendFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("connection refused")}
	svc := newService(t, DefaultPolicy(), sink)

	_, err := svc.Submit(context.Background(), validReview())
	assert.ErrorIs(t, err, ErrBackend)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestWebhookSink(t *testing.T) {
	var received models.AcceptedReview
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	svc := newService(t, DefaultPolicy(), NewWebhookSink(srv.URL, nil))
	out, err := svc.Submit(context.Background(), validReview())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "fixed-id", received.ID)
	assert.Equal(t, 3, received.Rating)
	assert.Equal(t, models.SourceManual, received.Source)
}

func TestWebhookSinkNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookSink(srv.URL, srv.Client()).Deliver(context.Background(), models.AcceptedReview{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestWebhookSinkWithoutURL(t *testing.T) {
	err := NewWebhookSink("", nil).Deliver(context.Background(), models.AcceptedReview{ID: "x"})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

type memoryRepo struct {
	saved []models.AcceptedReview
}

func (m *memoryRepo) SaveReview(_ context.Context, r models.AcceptedReview) error {
	m.saved = append(m.saved, r)
	return nil
}

func TestMultiSink(t *testing.T) {
	repo := &memoryRepo{}
	ok := &recordingSink{}
	multi := MultiSink{NewDatabaseSink(repo), ok}
	assert.Equal(t, "database+recording", multi.Name())

	require.NoError(t, multi.Deliver(context.Background(), models.AcceptedReview{ID: "a"}))
	assert.Len(t, repo.saved, 1)
	assert.Len(t, ok.got, 1)

	failing := &recordingSink{err: errors.New("boom")}
	after := &recordingSink{}
	err := MultiSink{failing, after}.Deliver(context.Background(), models.AcceptedReview{ID: "b"})
	assert.ErrorContains(t, err, "recording: boom")
	assert.Empty(t, after.got)
}
