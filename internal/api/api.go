package api

import (
	"github.com/cirruslabs/etagd/internal/etag"
	"github.com/samber/lo"
	"time"
)

// ETagResponse uses nulls for an unknown ETag,
// so that "absent" is distinguishable from an empty string.
type ETagResponse struct {
	ETag        *string    `json:"etag"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
}

type URLResponse struct {
	URL string `json:"url"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewETagResponse(info etag.Info) *ETagResponse {
	if !info.Found() {
		return &ETagResponse{}
	}

	response := &ETagResponse{
		ETag: lo.ToPtr(info.ETag),
	}

	if !info.ConfirmedAt.IsZero() {
		response.ConfirmedAt = lo.ToPtr(info.ConfirmedAt)
	}

	return response
}

func (response *ETagResponse) Info() etag.Info {
	return etag.Info{
		ETag:        lo.FromPtr(response.ETag),
		ConfirmedAt: lo.FromPtr(response.ConfirmedAt),
	}
}
