// Package selection tracks where the visitor's current store choice came from.
//
// The source moves unset -> ip (auto) -> gps (auto) | manual. A later gps fix
// or manual pick always replaces the current choice; an ip match never
// overrides one the visitor made or confirmed.
package selection

import (
	"errors"
	"fmt"

	"store-feedback/internal/models"
)

// ErrInvalidEvent is returned for events without a store or with an unknown source.
var ErrInvalidEvent = errors.New("invalid selection event")

type Event struct {
	StoreID string
	Source  models.LocationSource
}

// Apply returns the selection after ev. changed is false when ev was ignored.
func Apply(current models.Selection, ev Event) (next models.Selection, changed bool, err error) {
	if ev.StoreID == "" {
		return current, false, fmt.Errorf("%w: store id is empty", ErrInvalidEvent)
	}
	if !ev.Source.Valid() {
		return current, false, fmt.Errorf("%w: unknown source %q", ErrInvalidEvent, ev.Source)
	}

	if ev.Source == models.SourceIP && IsSet(current) && current.Source != models.SourceIP {
		return current, false, nil
	}

	next = models.Selection{
		StoreID:      ev.StoreID,
		Source:       ev.Source,
		AutoDetected: ev.Source != models.SourceManual,
	}
	return next, next != current, nil
}

func IsSet(s models.Selection) bool {
	return s.StoreID != ""
}
