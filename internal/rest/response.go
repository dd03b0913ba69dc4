package rest

import (
	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// tenantID pulls the tenant resolved by the middleware off the context.
func tenantID(c echo.Context) (string, bool) {
	v, ok := c.Get("tenant_id").(string)
	return v, ok && v != ""
}
