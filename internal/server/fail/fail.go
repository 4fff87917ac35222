package fail

import (
	"fmt"
	"github.com/cirruslabs/etagd/internal/api"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func Fail(c echo.Context, status int, format string, args ...interface{}) error {
	message := fmt.Sprintf(format, args...)

	zap.L().Warn(message)

	return c.JSON(status, &api.ErrorResponse{
		Message: message,
	})
}
