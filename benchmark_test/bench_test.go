package benchmark_test

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/hupe1980/rkmeans"
	"github.com/hupe1980/rkmeans/dataset"
	"github.com/hupe1980/rkmeans/testutil"
)

func BenchmarkRun_Means(b *testing.B) {
	benchmarkRun(b, rkmeans.Means)
}

func BenchmarkRun_Medians(b *testing.B) {
	benchmarkRun(b, rkmeans.Medians)
}

func benchmarkRun(b *testing.B, variant rkmeans.Variant) {
	rng := testutil.NewRNG(1)
	coords, _ := rng.Blobs(8, 2500, 16, 2)
	rng.InjectMissing(coords, 0.05)

	for _, threads := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c, err := rkmeans.New(coords, 8,
					rkmeans.WithVariant(variant),
					rkmeans.WithThreads(threads),
					rkmeans.WithMaxIterations(20),
				)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := c.Run(context.Background()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDatasetRead(b *testing.B) {
	rng := testutil.NewRNG(1)
	coords := rng.UniformVectors(10000, 16)

	var buf bytes.Buffer
	for _, row := range coords {
		for d, v := range row {
			if d > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		buf.WriteByte('\n')
	}
	data := buf.Bytes()

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dataset.Read(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
