package fiberhelpers

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"tickchart/utils/log"
)

func NewRecover() fiber.Handler {
	return recover.New(
		recover.Config{
			StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
				log.WithFields(map[string]interface{}{
					"path":        c.Path(),
					"stack_trace": string(debug.Stack()),
				}).Error(fmt.Sprintf("panic: %v", e))
			},
			EnableStackTrace: true,
		},
	)
}
