package middleware

import (
	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/store"
)

// appDataKey is the request-local key the shared store is provided under
const appDataKey = "app_data"

// AppDataProvider injects the shared application store into the request
// scope. Every route whose handlers read or mutate entity collections must
// sit behind this middleware; it is the single root-level provider for the
// whole route tree.
func AppDataProvider(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(appDataKey, st)
		return c.Next()
	}
}

// AppData fetches the shared store from the request scope. Calling it on a
// route that is not behind AppDataProvider is a programming error, so it
// fails fast and loudly instead of returning a nil store for callers to
// trip over later.
func AppData(c *fiber.Ctx) *store.Store {
	st, ok := c.Locals(appDataKey).(*store.Store)
	if !ok || st == nil {
		panic("middleware.AppData: route is not behind AppDataProvider")
	}
	return st
}
