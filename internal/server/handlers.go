package server

import (
	"errors"
	"net/http"
	"strconv"

	"store-feedback/internal/calculator"
	"store-feedback/internal/geo"
	"store-feedback/internal/models"
	"store-feedback/internal/review"
	"store-feedback/internal/selection"
	"store-feedback/internal/stores"
	"store-feedback/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGeolocate(c *gin.Context) {
	res, fromEdge := s.resolver.Resolve(c.Request.Header)
	if fromEdge {
		telemetry.GeolocateTotal.WithLabelValues("header").Inc()
	} else {
		telemetry.GeolocateTotal.WithLabelValues("fallback").Inc()
	}
	c.JSON(http.StatusOK, res)
}

// parsePoint reads lat/lng query parameters. present is false when neither is given.
func parsePoint(c *gin.Context) (pt models.Coordinate, present bool, err error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" && lngStr == "" {
		return pt, false, nil
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	pt = models.Coordinate{Lat: lat, Lng: lng}
	if err1 != nil || err2 != nil || !geo.Valid(pt) {
		return pt, true, errors.New("lat and lng must both be valid coordinates")
	}
	return pt, true, nil
}

func (s *Server) handleListStores(c *gin.Context) {
	matches := s.stores.Search(c.Query("q"))

	pt, hasPoint, err := parsePoint(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !hasPoint {
		if c.Query("radius") != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius needs lat and lng"})
			return
		}
		views := make([]stores.StoreView, len(matches))
		for i, st := range matches {
			views[i] = stores.View(st)
		}
		c.JSON(http.StatusOK, gin.H{"stores": views})
		return
	}

	if radiusStr := c.Query("radius"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be a non-negative number of miles"})
			return
		}
		inRange := calculator.WithinRadius(pt, matches, radius)
		matches = make([]models.StoreLocation, len(inRange))
		for i, r := range inRange {
			matches[i] = r.Item
		}
	}
	ranked := calculator.RankByDistance(pt, matches)

	views := make([]stores.StoreView, len(ranked))
	for i, r := range ranked {
		views[i] = stores.ViewWithDistance(r.Item, r.Distance)
	}
	c.JSON(http.StatusOK, gin.H{"stores": views})
}

func (s *Server) handleGetStore(c *gin.Context) {
	st, err := s.stores.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	c.JSON(http.StatusOK, stores.View(st))
}

// matchResponse.Store is always the selected store. Matched is set when the
// nearest store differs because an earlier explicit choice was kept.
type matchResponse struct {
	Location  geo.Result        `json:"location"`
	Store     stores.StoreView  `json:"store"`
	Matched   *stores.StoreView `json:"matched,omitempty"`
	Selection models.Selection  `json:"selection"`
}

// match finds the store nearest to loc and records it as a selection event.
func (s *Server) match(c *gin.Context, loc geo.Result) {
	st, ok := s.stores.Nearest(loc.Point())
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No store locations configured"})
		return
	}
	telemetry.MatchesTotal.WithLabelValues(string(loc.Source)).Inc()

	sel, err := applySelection(c, selection.Event{StoreID: st.ID, Source: loc.Source})
	if err != nil {
		s.logger.Error("save selection", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	nearest := stores.ViewWithDistance(st, calculator.Distance(loc.Point(), st.Point()))
	out := matchResponse{Location: loc, Store: nearest, Selection: sel}
	if sel.StoreID != st.ID {
		kept, err := s.stores.Get(sel.StoreID)
		if err != nil {
			s.logger.Error("selected store missing", "store", sel.StoreID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		out.Store = stores.ViewWithDistance(kept, calculator.Distance(loc.Point(), kept.Point()))
		out.Matched = &nearest
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleNearest(c *gin.Context) {
	res, fromEdge := s.resolver.Resolve(c.Request.Header)
	if fromEdge {
		telemetry.GeolocateTotal.WithLabelValues("header").Inc()
	} else {
		telemetry.GeolocateTotal.WithLabelValues("fallback").Inc()
	}
	s.match(c, res)
}

type locateRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// handleLocate takes a browser GPS fix.
func (s *Server) handleLocate(c *gin.Context) {
	var req locateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}
	pt := models.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	if !geo.Valid(pt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be valid coordinates"})
		return
	}
	s.match(c, geo.Result{Lat: pt.Lat, Lng: pt.Lng, Source: models.SourceGPS})
}

type selectionResponse struct {
	Selection models.Selection  `json:"selection"`
	Store     *stores.StoreView `json:"store,omitempty"`
}

func (s *Server) selectionResponse(sel models.Selection) selectionResponse {
	out := selectionResponse{Selection: sel}
	if st, err := s.stores.Get(sel.StoreID); err == nil {
		v := stores.View(st)
		out.Store = &v
	}
	return out
}

func (s *Server) handleGetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, s.selectionResponse(loadSelection(c)))
}

type setSelectionRequest struct {
	StoreID string `json:"storeId"`
}

// handleSetSelection records a manual pick.
func (s *Server) handleSetSelection(c *gin.Context) {
	var req setSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StoreID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "storeId is required"})
		return
	}
	if _, err := s.stores.Get(req.StoreID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	sel, err := applySelection(c, selection.Event{StoreID: req.StoreID, Source: models.SourceManual})
	if err != nil {
		s.logger.Error("save selection", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, s.selectionResponse(sel))
}

func (s *Server) handleSubmitReview(c *gin.Context) {
	var req models.Review
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.ReviewsTotal.WithLabelValues("invalid", "unknown").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	out, err := s.reviews.Submit(c.Request.Context(), req)
	switch {
	case err == nil:
		telemetry.ReviewsTotal.WithLabelValues("accepted", string(req.Source)).Inc()
		c.JSON(http.StatusOK, out)
	case errors.Is(err, review.ErrValidation):
		telemetry.ReviewsTotal.WithLabelValues("invalid", sourceLabel(req.Source)).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrBackend):
		telemetry.ReviewsTotal.WithLabelValues("backend_error", string(req.Source)).Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
	default:
		s.logger.Error("review submission", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// sourceLabel keeps arbitrary client input out of metric labels.
func sourceLabel(src models.LocationSource) string {
	if src.Valid() {
		return string(src)
	}
	return "unknown"
}

func (s *Server) handleWidgetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"policy": s.reviews.Policy(),
		"gps": gin.H{
			"timeout":    geo.GPSTimeoutMillis,
			"maximumAge": geo.GPSMaximumAge,
		},
		"fallback": s.resolver.Fallback,
	})
}
