package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
)

// Recover turns handler panics into 500 responses instead of killing the
// connection.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = respondPanic(c, r)
				}
			}()
			return next(c)
		}
	}
}

func respondPanic(c echo.Context, r interface{}) error {
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = fmt.Errorf("%v", v)
	}
	log.Printf("http panic on %s %s: %v\n%s",
		c.Request().Method, c.Request().URL.Path, cause, debug.Stack())

	type body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	return c.JSON(http.StatusInternalServerError, body{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	})
}
