package server

import (
	"errors"
	"github.com/cirruslabs/etagd/internal/api"
	"github.com/cirruslabs/etagd/internal/object"
	"github.com/cirruslabs/etagd/internal/server/fail"
	"github.com/go-chi/render"
	"github.com/labstack/echo/v4"
	"io"
	"net/http"
)

func (server *Server) healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (server *Server) getETag(c echo.Context) error {
	info := server.resolver.Resolve(c.Request().Context(), queryParams(c))

	return c.JSON(http.StatusOK, api.NewETagResponse(info))
}

func (server *Server) postETag(c echo.Context) error {
	params, err := bodyParams(c)
	if err != nil {
		return fail.Fail(c, http.StatusBadRequest, "failed to read/decode the JSON "+
			"passed to the ETag endpoint: %v", err)
	}

	info := server.resolver.Resolve(c.Request().Context(), params)

	return c.JSON(http.StatusOK, api.NewETagResponse(info))
}

func (server *Server) refreshETag(c echo.Context) error {
	params, err := bodyParams(c)
	if err != nil {
		return fail.Fail(c, http.StatusBadRequest, "failed to read/decode the JSON "+
			"passed to the ETag refresh endpoint: %v", err)
	}

	info := server.resolver.Fetch(c.Request().Context(), params)

	return c.JSON(http.StatusOK, api.NewETagResponse(info))
}

func (server *Server) getURL(c echo.Context) error {
	return c.JSON(http.StatusOK, &api.URLResponse{
		URL: server.resolver.URL(queryParams(c)),
	})
}

func queryParams(c echo.Context) object.Params {
	return object.Params{
		Key:    c.QueryParam("key"),
		Bucket: c.QueryParam("bucket"),
	}
}

func bodyParams(c echo.Context) (object.Params, error) {
	var params object.Params

	// Empty body is the same as an empty key in the default bucket
	if err := render.DecodeJSON(c.Request().Body, &params); err != nil && !errors.Is(err, io.EOF) {
		return object.Params{}, err
	}

	return params, nil
}
