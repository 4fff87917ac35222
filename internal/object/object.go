package object

import (
	"fmt"
	"github.com/samber/lo"
)

// Params identifies an object the way callers pass it in: the key may be
// empty (it's a literal key then) and the bucket may be omitted.
type Params struct {
	Key    string `json:"key" query:"key"`
	Bucket string `json:"bucket,omitempty" query:"bucket"`
}

// Ref is a fully-qualified object location at the remote provider.
type Ref struct {
	Bucket string
	Key    string
}

// Normalize substitutes the default bucket when none was given,
// so that the same logical object always maps to the same Ref.
func Normalize(params Params, defaultBucket string) Ref {
	bucket, _ := lo.Coalesce(params.Bucket, defaultBucket)

	return Ref{
		Bucket: bucket,
		Key:    params.Key,
	}
}

func (ref Ref) String() string {
	return fmt.Sprintf("%s:%s", ref.Bucket, ref.Key)
}

// URL returns the public URL of the object.
func (ref Ref) URL() string {
	return fmt.Sprintf("http://%s.s3.amazonaws.com/%s", ref.Bucket, ref.Key)
}
