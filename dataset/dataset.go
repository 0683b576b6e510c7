package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/hupe1980/rkmeans/blobstore"
	"github.com/hupe1980/rkmeans/resource"
)

// Read parses delimited rows from r into a coordinate matrix.
func Read(r io.Reader, opts ...Option) ([][]float32, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return read(r, &o)
}

// Load opens name in store and parses it. The blob is decompressed
// according to its name suffix unless WithCompression is given.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) ([][]float32, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return load(ctx, store, name, &o)
}

// LoadAll loads every blob whose name starts with prefix, in name order,
// and concatenates the rows. All blobs must have the same width.
func LoadAll(ctx context.Context, store blobstore.BlobStore, prefix string, opts ...Option) ([][]float32, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoRows
	}

	var all [][]float32
	for _, name := range names {
		rows, err := load(ctx, store, name, &o)
		if err != nil {
			return nil, err
		}
		if len(all) > 0 && len(rows[0]) != len(all[0]) {
			return nil, &ErrRowWidth{Line: 1, Expected: len(all[0]), Actual: len(rows[0])}
		}
		all = append(all, rows...)
	}
	return all, nil
}

func load(ctx context.Context, store blobstore.BlobStore, name string, o *options) ([][]float32, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var src io.Reader = rc
	if o.limiter != nil {
		src = resource.NewRateLimitedReader(ctx, src, o.limiter)
	}

	c := o.compression
	if o.detect {
		c = DetectCompression(name)
	}
	dec, release, err := decompress(src, c)
	if err != nil {
		return nil, err
	}
	defer release()

	return read(dec, o)
}

func read(r io.Reader, o *options) ([][]float32, error) {
	if o.lastColumn != 0 && o.lastColumn <= o.firstColumn {
		return nil, &ErrColumnRange{First: o.firstColumn, Last: o.lastColumn}
	}

	cr := csv.NewReader(r)
	cr.Comma = o.comma
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = !unicode.IsSpace(o.comma)
	cr.ReuseRecord = true

	var (
		rows  [][]float32
		width = -1
		skip  = o.header
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if skip {
			skip = false
			continue
		}

		cells := o.selectColumns(record)
		if width < 0 {
			width = len(cells)
		}
		if len(cells) != width || width == 0 {
			return nil, &ErrRowWidth{Line: line, Expected: width, Actual: len(cells)}
		}

		row := make([]float32, width)
		for i, cell := range cells {
			v, err := o.parseCell(cell)
			if err != nil {
				return nil, &ErrParse{Line: line, Column: o.firstColumn + i + 1, Value: cell, Err: err}
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func (o *options) selectColumns(record []string) []string {
	if o.firstColumn >= len(record) {
		return nil
	}
	end := len(record)
	if o.lastColumn > 0 {
		end = min(o.lastColumn, end)
	}
	return record[o.firstColumn:end]
}

func (o *options) parseCell(cell string) (float32, error) {
	cell = strings.TrimSpace(cell)
	if _, ok := o.missing[cell]; ok {
		return float32(math.NaN()), nil
	}
	v, err := strconv.ParseFloat(cell, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}
