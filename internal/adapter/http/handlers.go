package http

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/argo-float-etl/internal/index"
)

// handleListFloats returns floats filtered by status, date range, bbox,
// and id list.
// GET /api/v1/floats
func (s *Server) handleListFloats(c *gin.Context) {
	var (
		filter index.FloatFilter
		err    error
	)
	if filter.Status, err = index.ParseStatus(c.Query("status")); err != nil {
		badRequest(c, err)
		return
	}
	if filter.DateRange, err = index.ParseDateRange(c.Query("start"), c.Query("end")); err != nil {
		badRequest(c, err)
		return
	}
	if raw := c.Query("bbox"); raw != "" {
		bbox, err := index.ParseBBox(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.BBox = &bbox
	}
	filter.FloatIDs = index.ParseFloatIDs(c.Query("float_id"))

	list(c, s.source.Current().ListFloats(filter))
}

// GET /api/v1/floats/:id
func (s *Server) handleGetFloat(c *gin.Context) {
	f, ok := s.source.Current().Float(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "float not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": f})
}

// GET /api/v1/floats/:id/profiles
func (s *Server) handleProfiles(c *gin.Context) {
	list(c, s.source.Current().ProfilesForFloat(c.Param("id")))
}

// GET /api/v1/floats/:id/trajectory
func (s *Server) handleTrajectory(c *gin.Context) {
	list(c, s.source.Current().TrajectoryForFloat(c.Param("id")))
}

// GET /api/v1/floats/:id/summary
func (s *Server) handleSummary(c *gin.Context) {
	list(c, s.source.Current().SummaryForFloat(c.Param("id")))
}

// handleExport streams a float's measurements as CSV.
// GET /api/v1/floats/:id/export
func (s *Server) handleExport(c *gin.Context) {
	id := c.Param("id")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": id + ".csv"}))
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := s.source.Current().ExportFloatCSV(c.Writer, id); err != nil {
		s.logger.Error("export failed", "float_id", id, "error", err)
	}
}

// GET /api/v1/profiles/:id/measurements
func (s *Server) handleMeasurements(c *gin.Context) {
	list(c, s.source.Current().MeasurementsForProfile(c.Param("id")))
}

// handleSpatial returns the floats last seen inside a bbox.
// GET /api/v1/spatial
func (s *Server) handleSpatial(c *gin.Context) {
	raw := c.Query("bbox")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bbox is required"})
		return
	}
	bbox, err := index.ParseBBox(raw)
	if err != nil {
		badRequest(c, err)
		return
	}
	dr, err := index.ParseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.source.Current().SpatialQuery(bbox, dr)})
}

func list[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": gin.H{"count": len(items)},
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
