package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/cirruslabs/etagd/internal/api"
	"github.com/cirruslabs/etagd/internal/etag"
	"github.com/cirruslabs/etagd/internal/object"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"io"
	"net/http"
	"net/url"
)

var ErrUnauthorized = errors.New("unauthorized")

// Client talks to the etagd HTTP API.
type Client struct {
	addr       string
	token      string
	httpClient *http.Client
}

func New(addr string, token string, opts ...Option) *Client {
	client := &Client{
		addr:       addr,
		token:      token,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (client *Client) Resolve(ctx context.Context, params object.Params) (etag.Info, error) {
	var response api.ETagResponse

	if err := client.do(ctx, http.MethodGet, "/v1/etag", queryOf(params), nil, &response); err != nil {
		return etag.Info{}, err
	}

	return response.Info(), nil
}

func (client *Client) Refresh(ctx context.Context, params object.Params) (etag.Info, error) {
	var response api.ETagResponse

	if err := client.do(ctx, http.MethodPost, "/v1/etag/refresh", nil, &params, &response); err != nil {
		return etag.Info{}, err
	}

	return response.Info(), nil
}

func (client *Client) URL(ctx context.Context, params object.Params) (string, error) {
	var response api.URLResponse

	if err := client.do(ctx, http.MethodGet, "/v1/url", queryOf(params), nil, &response); err != nil {
		return "", err
	}

	return response.URL, nil
}

func (client *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	requestBody any,
	responseBody any,
) error {
	var bodyReader io.Reader

	if requestBody != nil {
		bodyBytes, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}

		bodyReader = bytes.NewReader(bodyBytes)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.url(path, query), bodyReader)
	if err != nil {
		return err
	}

	// Provide authorization
	if client.token != "" {
		request.Header.Set("Authorization", "Bearer "+client.token)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	// Perform request
	response, err := client.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
		// All good, continue
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		// Unexpected status code
		var errorResponse api.ErrorResponse

		if err := json.NewDecoder(response.Body).Decode(&errorResponse); err == nil && errorResponse.Message != "" {
			return fmt.Errorf("unexpected HTTP %d: %s", response.StatusCode, errorResponse.Message)
		}

		return fmt.Errorf("unexpected HTTP %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}

	return nil
}

func (client *Client) url(path string, query url.Values) string {
	result := url.URL{
		Scheme:   "http",
		Host:     client.addr,
		Path:     path,
		RawQuery: query.Encode(),
	}

	return result.String()
}

func queryOf(params object.Params) url.Values {
	query := url.Values{}

	query.Set("key", params.Key)

	if params.Bucket != "" {
		query.Set("bucket", params.Bucket)
	}

	return query
}
