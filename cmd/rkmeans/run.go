package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/hupe1980/rkmeans"
	"github.com/hupe1980/rkmeans/blobstore"
	"github.com/hupe1980/rkmeans/blobstore/minio"
	"github.com/hupe1980/rkmeans/blobstore/s3"
	"github.com/hupe1980/rkmeans/dataset"
	"github.com/hupe1980/rkmeans/resource"
)

func runRun(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	return execute(cmd.Context(), cfg, logger, cmd.OutOrStdout())
}

func execute(ctx context.Context, cfg *Config, logger *rkmeans.Logger, out io.Writer) error {
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.Resources.MemoryLimitBytes,
		IOLimitBytesPerSec: cfg.Resources.IOLimitBytesPerSec,
	})

	store, name, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}

	logger.Info("loading dataset", "source", cfg.Source.Type, "input", cfg.Input)

	rows, err := dataset.Load(ctx, store, name, datasetOptions(cfg, rc)...)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfg.Input, err)
	}

	clusterer, err := rkmeans.New(rows, cfg.Clustering.K, clusteringOptions(cfg, logger, rc)...)
	if err != nil {
		return err
	}
	clusterer.AddListener(&rkmeans.ListenerFuncs{
		Message: func(msg string) {
			logger.Info(msg)
		},
	})

	res, err := clusterer.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s after %d iterations (%s)\n", res.Outcome, res.Iterations, res.Elapsed)
	for i, c := range res.Clusters {
		logger.Info("cluster", "index", i, "size", c.Size(), "center", c.Center())
		fmt.Fprintf(out, "cluster %d: size=%d center=%v\n", i, c.Size(), c.Center())
	}
	return nil
}

func openSource(ctx context.Context, cfg *Config) (blobstore.BlobStore, string, error) {
	src := cfg.Source
	switch src.Type {
	case "s3":
		var opts []s3.Option
		if src.Prefix != "" {
			opts = append(opts, s3.WithPrefix(src.Prefix))
		}
		if src.Region != "" {
			opts = append(opts, s3.WithRegion(src.Region))
		}
		if src.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(src.Endpoint))
		}
		store, err := s3.New(ctx, src.Bucket, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.Input, nil
	case "minio":
		store, err := minio.New(minio.Config{
			Endpoint: src.Endpoint,
			Region:   src.Region,
			Secure:   src.Secure,
		}, src.Bucket, src.Prefix)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.Input, nil
	default:
		return blobstore.NewLocalStore(filepath.Dir(cfg.Input)), filepath.Base(cfg.Input), nil
	}
}

func datasetOptions(cfg *Config, rc *resource.Controller) []dataset.Option {
	comma, _ := utf8.DecodeRuneInString(cfg.Format.Comma)

	opts := []dataset.Option{
		dataset.WithComma(comma),
		dataset.WithHeader(cfg.Format.Header),
		dataset.WithRateLimit(rc),
	}
	if len(cfg.Format.Columns) == 2 {
		opts = append(opts, dataset.WithColumns(cfg.Format.Columns[0], cfg.Format.Columns[1]))
	}
	if cfg.Format.Missing != nil {
		opts = append(opts, dataset.WithMissingTokens(cfg.Format.Missing...))
	}
	return opts
}

func clusteringOptions(cfg *Config, logger *rkmeans.Logger, rc *resource.Controller) []rkmeans.Option {
	c := cfg.Clustering

	opts := []rkmeans.Option{
		rkmeans.WithMaxIterations(c.MaxIterations),
		rkmeans.WithSeed(c.Seed),
		rkmeans.WithLogger(logger),
		rkmeans.WithResourceController(rc),
	}
	if c.Medians {
		opts = append(opts, rkmeans.WithMedians(c.MedianSkip))
	}
	return append(opts, rkmeans.WithThreads(c.Threads))
}

func newLogger(cfg LogConfig, w io.Writer) (*rkmeans.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}

	hopts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return rkmeans.NewLogger(slog.NewJSONHandler(w, hopts)), nil
	}
	return rkmeans.NewLogger(slog.NewTextHandler(w, hopts)), nil
}
