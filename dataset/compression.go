package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the encoding of an input blob.
type Compression uint8

const (
	// CompressionNone reads the blob as plain text.
	CompressionNone Compression = iota
	// CompressionGzip decodes gzip streams.
	CompressionGzip
	// CompressionZstd decodes zstd streams.
	CompressionZstd
	// CompressionLZ4 decodes lz4 frames.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// DetectCompression infers the compression from a blob name suffix.
func DetectCompression(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZstd
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// decompress wraps r in a decoder for c. The returned close function
// releases decoder resources and does not close r.
func decompress(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: gzip: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: zstd: %w", err)
		}
		return zr, zr.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("dataset: unknown compression %s", c)
	}
}
