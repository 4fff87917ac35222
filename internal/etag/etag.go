package etag

import (
	"context"
	"errors"
	"github.com/cirruslabs/etagd/internal/object"
	"github.com/cirruslabs/etagd/internal/opentelemetry"
	"github.com/cirruslabs/etagd/internal/remote"
	storepkg "github.com/cirruslabs/etagd/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"strings"
	"time"
)

const (
	sourceStore  = "store"
	sourceRemote = "remote"
	sourceNone   = "none"
)

// Info is the ETag of an object along with the time it was last confirmed
// to match the remote provider. Zero value means that the ETag is unknown.
type Info struct {
	ETag        string
	ConfirmedAt time.Time
}

func (info Info) Found() bool {
	return info.ETag != ""
}

// Resolver answers ETag queries from the store when possible
// and falls back to the remote provider otherwise, writing
// the fresh value back to the store.
//
// Neither Resolve nor Fetch ever fail: in the worst case
// they return a zero Info.
type Resolver struct {
	store         storepkg.Store
	provider      remote.Provider
	defaultBucket string

	logger     *zap.SugaredLogger
	now        func() time.Time
	coalesce   bool
	fetchGroup singleflight.Group

	// Metrics
	resolutionsCounter metric.Int64Counter
	storeErrorsCounter metric.Int64Counter
}

func New(
	store storepkg.Store,
	provider remote.Provider,
	defaultBucket string,
	opts ...Option,
) (*Resolver, error) {
	resolver := &Resolver{
		store:         store,
		provider:      provider,
		defaultBucket: defaultBucket,
	}

	// Apply options
	for _, opt := range opts {
		opt(resolver)
	}

	// Apply defaults
	if resolver.logger == nil {
		resolver.logger = zap.NewNop().Sugar()
	}

	if resolver.now == nil {
		resolver.now = time.Now
	}

	// Metrics
	var err error

	resolver.resolutionsCounter, err = opentelemetry.DefaultMeter.Int64Counter(
		"org.cirruslabs.etagd.resolutions",
		metric.WithDescription("ETag resolutions by the source that answered them"),
	)
	if err != nil {
		return nil, err
	}

	resolver.storeErrorsCounter, err = opentelemetry.DefaultMeter.Int64Counter(
		"org.cirruslabs.etagd.store.errors",
		metric.WithDescription("Failed store operations by operation name"),
	)
	if err != nil {
		return nil, err
	}

	return resolver, nil
}

func (resolver *Resolver) DefaultBucket() string {
	return resolver.defaultBucket
}

// URL returns the public URL of the object.
func (resolver *Resolver) URL(params object.Params) string {
	return object.Normalize(params, resolver.defaultBucket).URL()
}

// Resolve returns the stored ETag of the object if there's one,
// otherwise it falls back to Fetch. Store errors are not propagated
// and result in a fallback too.
func (resolver *Resolver) Resolve(ctx context.Context, params object.Params) Info {
	record, err := resolver.store.Get(ctx, params.Key)
	if err == nil && record.ETag != "" {
		resolver.logger.Debugf("ETag of %q found in the store", params.Key)
		resolver.countResolution(ctx, sourceStore)

		return Info{
			ETag:        record.ETag,
			ConfirmedAt: record.ConfirmedAt,
		}
	}

	if err != nil && !errors.Is(err, storepkg.ErrNotFound) {
		resolver.logger.Warnf("failed to look up the ETag of %q in the store, "+
			"falling back to the remote provider: %v", params.Key, err)
		resolver.countStoreError(ctx, "get")
	}

	return resolver.Fetch(ctx, params)
}

// Fetch queries the remote provider for the object's current ETag
// and reconciles it into the store. Remote failures of any kind
// result in a zero Info and leave the store untouched.
func (resolver *Resolver) Fetch(ctx context.Context, params object.Params) Info {
	ref := object.Normalize(params, resolver.defaultBucket)

	if !resolver.coalesce {
		return resolver.fetch(ctx, ref)
	}

	// The shared fetch must not be cut short by whichever
	// caller happened to start it going away
	result, _, _ := resolver.fetchGroup.Do(ref.String(), func() (any, error) {
		return resolver.fetch(context.WithoutCancel(ctx), ref), nil
	})

	return result.(Info)
}

// fetch treats an ETag that is empty once quotes are stripped as a remote
// failure, so nothing is written to the store.
func (resolver *Resolver) fetch(ctx context.Context, ref object.Ref) Info {
	resolver.logger.Infof("retrieving ETag of %s from the remote provider", ref)

	rawETag, err := resolver.provider.Head(ctx, ref.Bucket, ref.Key)
	if err != nil {
		resolver.logger.Debugf("failed to retrieve ETag of %s: %v", ref, err)
		resolver.countResolution(ctx, sourceNone)

		return Info{}
	}

	etag := strings.ReplaceAll(rawETag, `"`, "")
	if etag == "" {
		resolver.logger.Debugf("remote provider returned an empty ETag for %s", ref)
		resolver.countResolution(ctx, sourceNone)

		return Info{}
	}

	now := resolver.now().UTC().Truncate(time.Millisecond)
	fetched := Info{
		ETag:        etag,
		ConfirmedAt: now,
	}

	record, created, err := resolver.store.FindOrCreate(ctx, ref.Key, storepkg.Record{
		ETag:        etag,
		ConfirmedAt: now,
	})
	if err != nil {
		resolver.logger.Warnf("failed to persist ETag of %s: %v", ref, err)
		resolver.countStoreError(ctx, "find-or-create")
		resolver.countResolution(ctx, sourceRemote)

		return fetched
	}

	resolver.countResolution(ctx, sourceRemote)

	if created || (record.ETag == etag && record.Confirmed()) {
		return Info{
			ETag:        record.ETag,
			ConfirmedAt: record.ConfirmedAt,
		}
	}

	resolver.logger.Debugf("ETag of %s changed from %q to %q", ref, record.ETag, etag)

	if err := resolver.store.Update(ctx, ref.Key, etag, now); err != nil {
		resolver.logger.Warnf("failed to update ETag of %s: %v", ref, err)
		resolver.countStoreError(ctx, "update")
	}

	return fetched
}

func (resolver *Resolver) countResolution(ctx context.Context, source string) {
	resolver.resolutionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (resolver *Resolver) countStoreError(ctx context.Context, operation string) {
	resolver.storeErrorsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
