package s3

import (
	"context"
	s3pkg "github.com/aws/aws-sdk-go-v2/service/s3"
	transport "github.com/aws/smithy-go/endpoints"
	"net/url"
)

// s3EndpointResolver routes requests to a custom S3-compatible endpoint
// (e.g. Localstack or MinIO) using path-style addressing.
type s3EndpointResolver struct {
	url *url.URL
}

func (e *s3EndpointResolver) ResolveEndpoint(
	_ context.Context,
	params s3pkg.EndpointParameters,
) (transport.Endpoint, error) {
	uri := *e.url

	if params.Bucket != nil {
		uri = *uri.JoinPath(*params.Bucket)
	}

	return transport.Endpoint{
		URI: uri,
	}, nil
}
