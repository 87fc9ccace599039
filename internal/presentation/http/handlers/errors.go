// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/generative"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/media"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var unknownOp *document.UnknownOpError
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.Is(err, stores.ErrSessionLimit):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, media.ErrUnsupportedImage),
		errors.As(err, &unknownOp):
		return http.StatusBadRequest
	case errors.Is(err, generative.ErrMalformedLayout),
		errors.Is(err, generative.ErrNoValidWidgets):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
