package rkmeans_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/rkmeans"
)

func Example() {
	coords := [][]float32{
		{1, 1}, {1, 2}, {2, 1},
		{8, 8}, {8, 9}, {9, 8},
	}

	c, err := rkmeans.New(coords, 2, rkmeans.WithSeed(3), rkmeans.WithThreads(2))
	if err != nil {
		panic(err)
	}

	res, err := c.Run(context.Background())
	if err != nil {
		panic(err)
	}

	fmt.Println(res.Outcome, len(res.Clusters))
	fmt.Println(res.Predict([]float32{1.5, 1.5}) != res.Predict([]float32{8.5, 8.5}))
	// Output:
	// converged 2
	// true
}
