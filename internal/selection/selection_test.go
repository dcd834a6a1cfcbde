package selection

import (
	"testing"

	"store-feedback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransitions(t *testing.T) {
	var s models.Selection
	assert.False(t, IsSet(s))

	s, changed, err := Apply(s, Event{StoreID: "denver", Source: models.SourceIP})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.Selection{StoreID: "denver", Source: models.SourceIP, AutoDetected: true}, s)

	s, changed, err = Apply(s, Event{StoreID: "boulder", Source: models.SourceGPS})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.Selection{StoreID: "boulder", Source: models.SourceGPS, AutoDetected: true}, s)

	s, changed, err = Apply(s, Event{StoreID: "lafayette", Source: models.SourceManual})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.Selection{StoreID: "lafayette", Source: models.SourceManual, AutoDetected: false}, s)

	s, changed, err = Apply(s, Event{StoreID: "denver", Source: models.SourceGPS})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.SourceGPS, s.Source)
}

func TestIPDoesNotOverrideExplicitChoice(t *testing.T) {
	for _, src := range []models.LocationSource{models.SourceGPS, models.SourceManual} {
		current := models.Selection{StoreID: "boulder", Source: src, AutoDetected: src == models.SourceGPS}
		next, changed, err := Apply(current, Event{StoreID: "denver", Source: models.SourceIP})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, current, next)
	}
}

func TestIPRefreshesIP(t *testing.T) {
	current := models.Selection{StoreID: "boulder", Source: models.SourceIP, AutoDetected: true}
	next, changed, err := Apply(current, Event{StoreID: "denver", Source: models.SourceIP})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "denver", next.StoreID)

	_, changed, err = Apply(next, Event{StoreID: "denver", Source: models.SourceIP})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApplyRejectsInvalidEvents(t *testing.T) {
	current := models.Selection{StoreID: "boulder", Source: models.SourceIP, AutoDetected: true}

	next, _, err := Apply(current, Event{Source: models.SourceManual})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.Equal(t, current, next)

	_, _, err = Apply(current, Event{StoreID: "denver", Source: "wifi"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}
