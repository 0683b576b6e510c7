package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/rkmeans/blobstore"
)

// DefaultDownloadThreshold is the object size from which whole-object reads
// use parallel ranged downloads.
const DefaultDownloadThreshold = 16 << 20

type options struct {
	prefix              string
	region              string
	endpoint            string
	downloadThreshold   int64
	downloadPartSize    int64
	downloadConcurrency int
}

// Option configures a Store.
type Option func(*options)

// WithPrefix sets the key prefix prepended to every blob name.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRegion overrides the region of the default AWS configuration. Only
// used by New.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithEndpoint sets a custom endpoint and switches to path-style addressing.
// Only used by New.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithDownloadThreshold sets the object size from which whole-object reads
// are split into parallel ranged downloads.
func WithDownloadThreshold(n int64) Option {
	return func(o *options) {
		o.downloadThreshold = n
	}
}

// WithDownloadConcurrency sets the part size and number of parallel parts of
// whole-object downloads. Zero values keep the SDK defaults.
func WithDownloadConcurrency(partSize int64, concurrency int) Option {
	return func(o *options) {
		o.downloadPartSize = partSize
		o.downloadConcurrency = concurrency
	}
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client     Client
	bucket     string
	prefix     string
	threshold  int64
	downloader *manager.Downloader
}

// New loads the default AWS configuration and creates a Store for bucket.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})

	return NewStore(client, bucket, optFns...), nil
}

// NewStore creates a Store from an existing client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	o := options{downloadThreshold: DefaultDownloadThreshold}
	for _, fn := range optFns {
		fn(&o)
	}

	return &Store{
		client:    client,
		bucket:    bucket,
		prefix:    o.prefix,
		threshold: o.downloadThreshold,
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			if o.downloadPartSize > 0 {
				d.PartSize = o.downloadPartSize
			}
			if o.downloadConcurrency > 0 {
				d.Concurrency = o.downloadConcurrency
			}
		}),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open checks that the object exists and records its size.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, blobstore.ErrNotFound
		}
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &s3Blob{
		store: s,
		key:   key,
		size:  aws.ToInt64(head.ContentLength),
	}, nil
}

// List returns the names below the store prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			rel = strings.TrimPrefix(rel, "/")
			if rel != "" {
				keys = append(keys, rel)
			}
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// s3Blob implements blobstore.Blob.
type s3Blob struct {
	store *Store
	key   string
	size  int64
}

func (b *s3Blob) Close() error {
	return nil
}

func (b *s3Blob) Size() int64 {
	return b.size
}

func (b *s3Blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if off < 0 || off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	end := min(off+length, b.size) - 1
	if off == 0 && end == b.size-1 && b.size >= b.store.threshold {
		return b.download(ctx)
	}

	resp, err := b.store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.store.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// download fetches the whole object with parallel ranged requests.
func (b *s3Blob) download(ctx context.Context) (io.ReadCloser, error) {
	buf := manager.NewWriteAtBuffer(make([]byte, 0, b.size))
	if _, err := b.store.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.store.bucket),
		Key:    aws.String(b.key),
	}); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}
