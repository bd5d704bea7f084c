package service

import (
	"context"
	"errors"

	"graphtools/internal/codec"
	"graphtools/internal/domain"
	"graphtools/internal/validate"
	"graphtools/internal/watcher"
)

// CheckGraph validates a METIS graph. In permissive mode a failing report
// is returned together with its aggregated error.
func (s *Service) CheckGraph(ctx context.Context, path string) (*validate.Report, error) {
	var report *validate.Report
	_, err := s.track(ctx, "chkmetis", path, "", func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		var err error
		report, err = s.Validator(opts.Progress).CheckFile(ctx, path)
		if report == nil {
			return domain.Header{}, err
		}
		run.Diagnostics = report.Diagnostics
		if err == nil {
			err = report.Err()
		}
		return report.Header, err
	})
	return report, err
}

// CheckPartition reports cut and imbalance of a partition
func (s *Service) CheckPartition(ctx context.Context, graphPath, partitionPath string) (*validate.PartitionReport, error) {
	var report *validate.PartitionReport
	_, err := s.track(ctx, "chkmetispart", graphPath, "", func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		var err error
		report, err = s.Validator(opts.Progress).CheckPartition(ctx, graphPath, partitionPath)
		if report == nil {
			return domain.Header{}, err
		}
		run.Diagnostics = report.Diagnostics
		return report.Graph, err
	})
	return report, err
}

// CheckClustering reports cut and cluster statistics of a clustering
func (s *Service) CheckClustering(ctx context.Context, graphPath, clusteringPath string) (*validate.ClusteringReport, error) {
	var report *validate.ClusteringReport
	_, err := s.track(ctx, "chkmetisclustering", graphPath, "", func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		var err error
		report, err = s.Validator(opts.Progress).CheckClustering(ctx, graphPath, clusteringPath)
		if report == nil {
			return domain.Header{}, err
		}
		run.Diagnostics = report.Diagnostics
		return report.Graph, err
	})
	return report, err
}

// WatchGraph checks path once and again after every change until ctx is
// cancelled. onReport receives every result, including failures.
func (s *Service) WatchGraph(ctx context.Context, path string, onReport func(*validate.Report, error)) error {
	check := func(string) {
		onReport(s.CheckGraph(ctx, path))
	}
	check(path)

	err := watcher.New(check, path).
		WithDebounce(s.cfg.Watch.Debounce.Duration()).
		WithLogger(s.logger).
		Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
