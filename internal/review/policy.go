package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"store-feedback/internal/models"
)

var (
	// ErrValidation marks submissions the visitor can fix and resend.
	ErrValidation = errors.New("invalid review")
	// ErrBackend marks failures of the configured review sink.
	ErrBackend = errors.New("review backend failed")
	// ErrInvalidPolicy is returned for contradictory policy settings.
	ErrInvalidPolicy = errors.New("invalid review policy")
)

// ValidationError carries the message shown to the visitor.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// FiveStarPolicy decides whether a 5-star rating reaches the server at all.
type FiveStarPolicy string

const (
	// FiveStarRedirect sends 5-star raters straight to the public review site
	// from the browser; the server never sees them.
	FiveStarRedirect FiveStarPolicy = "redirect"
	// FiveStarRecord stores the rating and hands back the public review URL.
	FiveStarRecord FiveStarPolicy = "record"
)

// Optional contact and text fields a deployment may require.
const (
	FieldFeedback = "feedback"
	FieldName     = "name"
	FieldPhone    = "phone"
	FieldEmail    = "email"
)

var knownFields = map[string]bool{
	FieldFeedback: true,
	FieldName:     true,
	FieldPhone:    true,
	FieldEmail:    true,
}

// Policy holds everything that differed between deployments of the widget.
type Policy struct {
	RequiredFields []string       `json:"requiredFields"`
	MinRating      int            `json:"minRating"`
	MaxRating      int            `json:"maxRating"`
	FiveStar       FiveStarPolicy `json:"fiveStar"`
}

// DefaultPolicy matches the webhook deployment: every field required, only
// 1-4 stars accepted, 5 stars redirected client-side.
func DefaultPolicy() Policy {
	return Policy{
		RequiredFields: []string{FieldFeedback, FieldName, FieldPhone, FieldEmail},
		MinRating:      1,
		MaxRating:      4,
		FiveStar:       FiveStarRedirect,
	}
}

// Check reports contradictory settings.
func (p Policy) Check() error {
	for _, f := range p.RequiredFields {
		if !knownFields[f] {
			return fmt.Errorf("%w: unknown required field %q", ErrInvalidPolicy, f)
		}
	}
	if p.MinRating < 1 || p.MaxRating > 5 || p.MinRating > p.MaxRating {
		return fmt.Errorf("%w: rating range %d-%d", ErrInvalidPolicy, p.MinRating, p.MaxRating)
	}
	switch p.FiveStar {
	case FiveStarRedirect:
	case FiveStarRecord:
		if p.MaxRating != 5 {
			return fmt.Errorf("%w: recording 5-star ratings needs max rating 5", ErrInvalidPolicy)
		}
	default:
		return fmt.Errorf("%w: unknown five-star policy %q", ErrInvalidPolicy, p.FiveStar)
	}
	return nil
}

// Requires reports whether field must be non-blank.
func (p Policy) Requires(field string) bool {
	for _, f := range p.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// Validate checks a submission and returns its parsed submission time.
func (p Policy) Validate(r models.Review) (time.Time, error) {
	optional := map[string]string{
		FieldFeedback: r.Feedback,
		FieldName:     r.Name,
		FieldPhone:    r.Phone,
		FieldEmail:    r.Email,
	}
	missing := strings.TrimSpace(r.StoreID) == "" ||
		r.Rating == 0 ||
		r.Source == "" ||
		strings.TrimSpace(r.SubmittedAt) == ""
	for field, value := range optional {
		if p.Requires(field) && strings.TrimSpace(value) == "" {
			missing = true
		}
	}
	if missing {
		return time.Time{}, invalid("Missing required fields")
	}

	if r.Rating < p.MinRating || r.Rating > p.MaxRating {
		return time.Time{}, invalid("Rating must be between %d and %d", p.MinRating, p.MaxRating)
	}
	if !r.Source.Valid() {
		return time.Time{}, invalid("Invalid location source")
	}

	at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(r.SubmittedAt))
	if err != nil {
		return time.Time{}, invalid("Invalid submittedAt timestamp")
	}
	return at, nil
}
