package response

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	RequestError  = "The request is not valid."
	InternalError = "Internal Server Error"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Ext struct {
	*fiber.Ctx
}

// Ok : 200 with a JSON body
func (ext Ext) Ok(data interface{}) error {
	return ext.Status(fiber.StatusOK).JSON(data)
}

// Error : error response with status. Server errors hide the cause.
func (ext Ext) Error(err error, status int) error {
	msg := RequestError
	if err != nil {
		msg = err.Error()
	}
	if status >= fiber.StatusInternalServerError {
		msg = InternalError
	}
	return ext.Status(status).JSON(ErrorResponse{
		Code:    strconv.Itoa(status),
		Message: msg,
	})
}

// Blob : raw body with a content type
func (ext Ext) Blob(contentType string, body []byte) error {
	ext.Set(fiber.HeaderContentType, contentType)
	return ext.Status(fiber.StatusOK).Send(body)
}
