package dataset

import (
	"github.com/hupe1980/rkmeans/resource"
)

// DefaultMissingTokens are the cell values read as NaN.
var DefaultMissingTokens = []string{"", "NA", "NaN", "?", "null"}

type options struct {
	comma       rune
	header      bool
	firstColumn int
	lastColumn  int // exclusive; 0 means all remaining columns
	missing     map[string]struct{}
	compression Compression
	detect      bool
	limiter     *resource.Controller
}

// Option configures Read and Load.
type Option func(*options)

func defaultOptions() options {
	o := options{
		comma:  ',',
		detect: true,
	}
	o.setMissing(DefaultMissingTokens)
	return o
}

func (o *options) setMissing(tokens []string) {
	o.missing = make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		o.missing[t] = struct{}{}
	}
}

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) Option {
	return func(o *options) {
		o.comma = r
	}
}

// WithHeader skips the first non-comment row.
func WithHeader(skip bool) Option {
	return func(o *options) {
		o.header = skip
	}
}

// WithColumns selects the columns [first, last). A last of 0 keeps every
// column from first on. A non-zero last that is not greater than first makes
// Read fail with *ErrColumnRange.
func WithColumns(first, last int) Option {
	return func(o *options) {
		o.firstColumn = max(first, 0)
		o.lastColumn = max(last, 0)
	}
}

// WithMissingTokens replaces the set of tokens read as NaN.
func WithMissingTokens(tokens ...string) Option {
	return func(o *options) {
		o.setMissing(tokens)
	}
}

// WithCompression forces a compression format instead of detecting it
// from the blob name.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
		o.detect = false
	}
}

// WithRateLimit throttles blob reads through the controller's IO limiter.
func WithRateLimit(rc *resource.Controller) Option {
	return func(o *options) {
		o.limiter = rc
	}
}
