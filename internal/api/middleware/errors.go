package middleware

import (
	"errors"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingImage    = errors.New("no image provided: use 'image' as the form field name")
	ErrInvalidID       = errors.New("invalid challan id")
	ErrAmbiguousOutput = errors.New("provide exactly one of 'text' or 'labels'")
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HandleError writes err as a JSON ErrorResponse with the given status.
func HandleError(resp *restful.Response, err error, status int) {
	if writeErr := resp.WriteHeaderAndEntity(status, ErrorResponse{
		Code:    status,
		Message: err.Error(),
	}); writeErr != nil {
		log.Error().Err(writeErr).Msg("failed to write error response")
	}
}
