package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the identity injected by the Admission middleware and
// performs a fast-fail check before any service call: a non-empty role proves
// the middleware ran, so a handler can never be reached on an unguarded path
// by mistake.
func ctxIdentity(c echo.Context) (subject, role string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	subject, _ = c.Get("subject").(string)
	return subject, role, nil
}
