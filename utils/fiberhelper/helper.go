package fiberhelpers

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tickchart/utils/log"
)

// RequestParse decodes the request body into T, reporting failures as bad requests.
func RequestParse[T any](ctx *fiber.Ctx) (T, error) {
	var destination T
	if err := ctx.BodyParser(&destination); err != nil {
		typeName := reflect.TypeOf(destination).Name()
		return destination, BadRequest(fmt.Errorf("parse %s: %w", typeName, err))
	}
	return destination, nil
}

// ListenWithGracefulShutdown serves app on port until ctx ends.
func ListenWithGracefulShutdown(ctx context.Context, app *fiber.App, port string) error {
	address := port
	if !strings.ContainsAny(address, ":") {
		address = fmt.Sprintf(":%s", address)
	}

	serverShutdown := make(chan struct{})
	go func() {
		defer close(serverShutdown)
		<-ctx.Done()
		log.Info("gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Infof("starting server on %s", address)
	if err := app.Listen(address); err != nil {
		return fmt.Errorf("listen %s: %w", address, err)
	}
	<-serverShutdown
	return nil
}
