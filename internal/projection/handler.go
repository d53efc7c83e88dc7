package projection

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tse-eval/resampler/internal/core/aggregation"
	httperr "github.com/tse-eval/resampler/internal/core/errors"
	"github.com/tse-eval/resampler/internal/core/storage"
	"github.com/tse-eval/resampler/internal/resample"
)

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/series", s.HandleQuerySeries)
	r.GET("/v1/runs", s.HandleListRuns)
	r.GET("/v1/runs/:id", s.HandleGetRun)
}

// HandleQuerySeries handles GET /v1/series
// Query parameters: window, reindex, fill_method, rolling_window, time_frame,
// per_edge, entity
func (s *Service) HandleQuerySeries(c *gin.Context) {
	var query SeriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidParameter,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.QuerySeries(c.Request.Context(), query)
	if err != nil {
		writeError(c, err, "Failed to resample dataset")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleListRuns handles GET /v1/runs
// Query parameters: limit
func (s *Service) HandleListRuns(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidParameter,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	runs, err := s.ListRuns(c.Request.Context(), query.Limit)
	if err != nil {
		writeError(c, err, "Failed to list runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// HandleGetRun handles GET /v1/runs/:id
func (s *Service) HandleGetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidParameter,
			Message:   "Invalid run id",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.GetRun(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to load run")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps service errors to status codes and error types.
func writeError(c *gin.Context, err error, message string) {
	status, errorType := classify(err)
	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
		Details:   err.Error(),
	})
}

func classify(err error) (int, string) {
	var stageErr *resample.StageError
	switch {
	case errors.Is(err, ErrDatasetNotLoaded):
		return http.StatusServiceUnavailable, httperr.HttpDatasetNotLoaded
	case errors.Is(err, ErrStoreNotConfigured):
		return http.StatusServiceUnavailable, httperr.HttpStoreNotConfigured
	case errors.Is(err, storage.ErrRunNotFound):
		return http.StatusNotFound, httperr.HttpRunNotFound
	case errors.Is(err, aggregation.ErrInvalidWindow):
		return http.StatusBadRequest, httperr.HttpInvalidWindow
	case errors.Is(err, aggregation.ErrUnknownKind):
		return http.StatusBadRequest, httperr.HttpUnknownAggregation
	case errors.Is(err, resample.ErrMissingColumn):
		return http.StatusBadRequest, httperr.HttpMissingColumn
	case errors.Is(err, ErrInvalidQuery), errors.As(err, &stageErr):
		return http.StatusBadRequest, httperr.HttpInvalidParameter
	default:
		return http.StatusInternalServerError, httperr.HttpInternalError
	}
}
