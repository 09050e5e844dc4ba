package errors

import (
	stderrors "errors"
	"importer/models"
	"importer/models/dtos"
	"net/http"
	"time"
)

/*
	Utility functions to facillitate returning error responses to HTTP clients
*/

// -- Simplest: 1 error with message
func CreateSimpleBadRequest(message string) dtos.GeneralErrorResponseDto {
	return createSimple(http.StatusBadRequest, message)
}
func CreateSimpleUnauthorized(message string) dtos.GeneralErrorResponseDto {
	return createSimple(http.StatusUnauthorized, message)
}
func CreateSimpleForbidden(message string) dtos.GeneralErrorResponseDto {
	return createSimple(http.StatusForbidden, message)
}
func CreateSimpleNotFound(message string) dtos.GeneralErrorResponseDto {
	return createSimple(http.StatusNotFound, message)
}
func CreateSimpleInternalServerError(message string) dtos.GeneralErrorResponseDto {
	return createSimple(http.StatusInternalServerError, message)
}

// --

// FromRunError maps an error that aborted a validation or import run
// to the response sent back to the client.
func FromRunError(err error) dtos.GeneralErrorResponseDto {
	var (
		malformed *models.MalformedHeaderError
		noSamples *models.MissingSampleHeaderError
		encoding  *models.UnsupportedEncodingError
		version   *models.UnsupportedVersionError
		schema    *models.AttributeSchemaError
		mismatch  *models.SampleMismatchError
		assembly  *models.AssemblyLookupError
		fetch     *models.FetchError
		store     *models.StoreError
	)

	switch {
	case stderrors.As(err, &malformed), stderrors.As(err, &noSamples),
		stderrors.As(err, &encoding), stderrors.As(err, &version),
		stderrors.As(err, &schema), stderrors.As(err, &mismatch):
		return CreateSimpleBadRequest(err.Error())
	case stderrors.As(err, &assembly):
		if assembly.NotFound {
			return CreateSimpleNotFound(err.Error())
		}
		return createSimple(http.StatusBadGateway, err.Error())
	case stderrors.Is(err, models.ErrObjectNotFound):
		return CreateSimpleNotFound(err.Error())
	case stderrors.As(err, &fetch), stderrors.As(err, &store):
		return createSimple(http.StatusBadGateway, err.Error())
	default:
		return CreateSimpleInternalServerError(err.Error())
	}
}

func createSimple(code int, message string) dtos.GeneralErrorResponseDto {
	return dtos.GeneralErrorResponseDto{
		Code:      code,
		Message:   http.StatusText(code),
		Timestamp: time.Now(),
		Errors: []dtos.GeneralError{
			{
				Message: message,
			},
		},
	}
}
