package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openminter/nft-aggregator/internal/domain"
	"github.com/openminter/nft-aggregator/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest ErrorCode = "bad_request"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
	errCodeUpstreamData  ErrorCode = "upstream_data_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondServiceError maps an aggregation error to a response and logs it.
// Malformed or missing chain data is the upstream indexer's fault, not ours,
// and reports as 502; everything else is a plain 500.
func respondServiceError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))

	var validationErr *domain.ValidationError
	var missingErr *domain.MissingDataError
	if errors.As(err, &validationErr) || errors.As(err, &missingErr) {
		respondWithError(c, http.StatusBadGateway, errCodeUpstreamData, message, err.Error())
		return
	}

	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}
