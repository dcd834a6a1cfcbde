package server

import (
	"store-feedback/internal/models"
	"store-feedback/internal/selection"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionStoreKey  = "sel_store"
	sessionSourceKey = "sel_source"
	sessionAutoKey   = "sel_auto"
)

func loadSelection(c *gin.Context) models.Selection {
	session := sessions.Default(c)
	var sel models.Selection
	if v, ok := session.Get(sessionStoreKey).(string); ok {
		sel.StoreID = v
	}
	if v, ok := session.Get(sessionSourceKey).(string); ok {
		sel.Source = models.LocationSource(v)
	}
	if v, ok := session.Get(sessionAutoKey).(bool); ok {
		sel.AutoDetected = v
	}
	return sel
}

// applySelection runs ev through the state machine and saves the result.
func applySelection(c *gin.Context, ev selection.Event) (models.Selection, error) {
	current := loadSelection(c)
	next, changed, err := selection.Apply(current, ev)
	if err != nil || !changed {
		return next, err
	}

	session := sessions.Default(c)
	session.Set(sessionStoreKey, next.StoreID)
	session.Set(sessionSourceKey, string(next.Source))
	session.Set(sessionAutoKey, next.AutoDetected)
	return next, session.Save()
}
