package auth

import (
	"github.com/cirruslabs/etagd/internal/server/fail"
	"github.com/cirruslabs/etagd/internal/server/token"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

const ContextKey = "subject"

func Middleware(tokenManager *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, found := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
			if !found {
				return fail.Fail(c, http.StatusUnauthorized, "no bearer token was present")
			}

			subject, err := tokenManager.Verify(rawToken)
			if err != nil {
				return fail.Fail(c, http.StatusUnauthorized, "failed to verify the provided token: %v", err)
			}

			c.Set(ContextKey, subject)

			return next(c)
		}
	}
}
