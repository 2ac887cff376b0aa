package fiberhelpers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tickchart/utils/fiberhelper/response"
	"tickchart/utils/log"
)

// StatusError carries the HTTP status a handler wants for err.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }

func (e *StatusError) Unwrap() error { return e.Err }

func NewStatusError(status int, err error) error {
	return &StatusError{Status: status, Err: err}
}

func BadRequest(err error) error { return NewStatusError(fiber.StatusBadRequest, err) }

func NotFound(err error) error { return NewStatusError(fiber.StatusNotFound, err) }

// DefaultErrorHandler writes every error as a response.ErrorResponse.
func DefaultErrorHandler(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var statusError *StatusError
	var fiberError *fiber.Error
	switch {
	case errors.As(err, &statusError):
		status = statusError.Status
	case errors.As(err, &fiberError):
		status = fiberError.Code
	}
	if status >= fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
	}
	return response.Ext{Ctx: ctx}.Error(err, status)
}
