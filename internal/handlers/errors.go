package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xife12/membercore/internal/services"
	"github.com/xife12/membercore/pkg/logger"
	"github.com/xife12/membercore/pkg/response"
)

// writeError maps a service-level error onto the HTTP surface: validation
// failures are 400, missing resources 404, date-arithmetic violations 422,
// storage failures 500. Unknown errors also fall through to 500.
func writeError(c *gin.Context, err error) {
	var (
		validationErr  *services.ValidationError
		notFoundErr    *services.NotFoundError
		temporalErr    *services.TemporalError
		persistenceErr *services.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Error())
	case errors.As(err, &notFoundErr):
		response.NotFound(c, notFoundErr.Error())
	case errors.As(err, &temporalErr):
		response.UnprocessableEntity(c, temporalErr.Error())
	case errors.As(err, &persistenceErr):
		logger.Error().Err(persistenceErr.Err).
			Str("path", c.Request.URL.Path).
			Msg("storage failure")
		response.ServerError(c, "storage failure")
	default:
		logger.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("unhandled error")
		response.ServerError(c, err.Error())
	}
}
