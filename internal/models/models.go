package models

import "time"

type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Point lets Coordinate itself be used as a matcher candidate.
func (c Coordinate) Point() Coordinate {
	return c
}

// StoreLocation is one physical store. Loaded once, never mutated.
type StoreLocation struct {
	ID                 string  `json:"id" yaml:"id"`
	Name               string  `json:"name" yaml:"name"`
	GMBName            string  `json:"gmbName,omitempty" yaml:"gmbName,omitempty"`
	Address            string  `json:"address" yaml:"address"`
	City               string  `json:"city" yaml:"city"`
	State              string  `json:"state" yaml:"state"`
	Zip                string  `json:"zip" yaml:"zip"`
	Lat                float64 `json:"lat" yaml:"lat"`
	Lng                float64 `json:"lng" yaml:"lng"`
	GoogleReviewURL    string  `json:"googleReviewUrl,omitempty" yaml:"googleReviewUrl,omitempty"`
	GoogleReviewQRCode string  `json:"googleReviewQrCode,omitempty" yaml:"googleReviewQrCode,omitempty"`
	YelpAccount        string  `json:"yelpAccount,omitempty" yaml:"yelpAccount,omitempty"`
	YelpReviewURL      string  `json:"yelpReviewUrl,omitempty" yaml:"yelpReviewUrl,omitempty"`
}

func (s StoreLocation) Point() Coordinate {
	return Coordinate{Lat: s.Lat, Lng: s.Lng}
}

// PublicReviewURL is where a 5-star rater gets sent: Google first, Yelp otherwise.
func (s StoreLocation) PublicReviewURL() string {
	if s.GoogleReviewURL != "" {
		return s.GoogleReviewURL
	}
	return s.YelpReviewURL
}

type LocationSource string

const (
	SourceIP     LocationSource = "ip"
	SourceGPS    LocationSource = "gps"
	SourceManual LocationSource = "manual"
)

func (s LocationSource) Valid() bool {
	switch s {
	case SourceIP, SourceGPS, SourceManual:
		return true
	}
	return false
}

// Selection is the visitor's current store choice. It only lives in the session.
type Selection struct {
	StoreID      string         `json:"storeId"`
	Source       LocationSource `json:"source"`
	AutoDetected bool           `json:"autoDetected"`
}

// Review is a feedback submission as posted by the widget.
type Review struct {
	StoreID     string         `json:"storeId"`
	Rating      int            `json:"rating"`
	Title       string         `json:"title,omitempty"`
	Feedback    string         `json:"feedback"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone,omitempty"`
	Email       string         `json:"email,omitempty"`
	Source      LocationSource `json:"source"`
	SubmittedAt string         `json:"submittedAt"`
}

// AcceptedReview is a validated review ready for a backend.
type AcceptedReview struct {
	ID          string         `json:"id"`
	StoreID     string         `json:"storeId"`
	StoreName   string         `json:"storeName,omitempty"`
	Rating      int            `json:"rating"`
	Title       string         `json:"title,omitempty"`
	Feedback    string         `json:"feedback"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone,omitempty"`
	Email       string         `json:"email,omitempty"`
	Source      LocationSource `json:"source"`
	SubmittedAt time.Time      `json:"submittedAt"`
	ReceivedAt  time.Time      `json:"receivedAt"`
}
