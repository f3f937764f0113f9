package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/pipeline"
	"github.com/GriffinCanCode/statscrape/internal/providers/scraper"
)

// classify maps an error to a status code and response body. Structural
// input problems are 400, data that does not fit its schema is 422.
func classify(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var tooLarge *http.MaxBytesError
	var rowErr *table.RowError
	var shape *table.ShapeMismatch
	var compound *table.CompoundFieldMalformed
	var coerce *table.CoercionError

	if errors.As(err, &rowErr) {
		row := rowErr.Row
		resp.Row = &row
	}

	switch {
	case errors.As(err, &tooLarge):
		resp.Kind = "body_too_large"
		return http.StatusRequestEntityTooLarge, resp
	case errors.Is(err, context.DeadlineExceeded):
		resp.Kind = "timeout"
		return http.StatusGatewayTimeout, resp
	case errors.Is(err, context.Canceled):
		resp.Kind = "cancelled"
		return http.StatusServiceUnavailable, resp
	case errors.As(err, &shape):
		resp.Kind = "shape_mismatch"
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &compound):
		resp.Kind = "compound_field_malformed"
		resp.Column = compound.Column
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &coerce):
		resp.Kind = "coercion"
		resp.Column = coerce.Column
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, table.ErrInvalidColumnCount):
		resp.Kind = "invalid_column_count"
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, table.ErrIdentityCollision):
		resp.Kind = "identity_collision"
	case errors.Is(err, table.ErrUnknownPreset):
		resp.Kind = "unknown_preset"
	case errors.Is(err, table.ErrUnknownRowPolicy):
		resp.Kind = "unknown_row_policy"
	case errors.Is(err, table.ErrInvalidSchema):
		resp.Kind = "invalid_schema"
	case errors.Is(err, scraper.ErrInvalidSelector):
		resp.Kind = "invalid_selector"
	case errors.Is(err, pipeline.ErrInvalidJob):
		resp.Kind = "invalid_job"
	default:
		resp.Kind = "invalid_request"
	}
	return http.StatusBadRequest, resp
}

// respondError writes err with the status classify picks
func respondError(c *gin.Context, err error) {
	status, resp := classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
