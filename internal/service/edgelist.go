package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"graphtools/internal/codec"
	"graphtools/internal/domain"
	"graphtools/internal/fsutil"
)

// EdgeListToMetis converts an edge list into METIS. When input does not
// exist but input_0 does, the shards input_0, input_1, ... are appended in
// order until the next shard is missing. Shard 0 declares the global header.
func (s *Service) EdgeListToMetis(ctx context.Context, input, output string) (*Result, error) {
	sharded := !fsutil.FileExists(input) && fsutil.FileExists(fsutil.PartPath(input, 0))
	output = outputPath(input, output, "graph")

	return s.track(ctx, "edgelist2metis", input, output, func(run *domain.Run, opts codec.Options) (domain.Header, error) {
		if !sharded {
			return convertEdgeList(input, output, opts)
		}
		return s.convertShards(ctx, input, output, opts)
	})
}

func convertEdgeList(input, output string, opts codec.Options) (domain.Header, error) {
	list, err := codec.DecodeEdgeList(input, opts)
	if err != nil {
		return domain.Header{}, err
	}
	h := list.Header

	w, err := codec.CreateMetis(output, h, opts)
	if err != nil {
		return h, err
	}
	if err := w.WritePart(list.Edges, 0, h.N); err != nil {
		w.Abort()
		return h, err
	}
	return h, w.Close(h.N)
}

func (s *Service) convertShards(ctx context.Context, input, output string, opts codec.Options) (domain.Header, error) {
	first, err := codec.DecodeEdgeList(fsutil.PartPath(input, 0), opts)
	if err != nil {
		return domain.Header{}, err
	}
	h := first.Header

	w, err := codec.CreateMetis(output, h, opts)
	if err != nil {
		return h, err
	}

	list := first
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			w.Abort()
			return h, err
		}
		if list == nil {
			part := fsutil.PartPath(input, i)
			if !fsutil.FileExists(part) {
				break
			}
			if list, err = codec.DecodeEdgeList(part, opts); err != nil {
				w.Abort()
				return h, err
			}
		}

		if top, ok := list.MaxSource(); ok {
			if err := w.WritePart(list.Edges, w.Next(), top+1); err != nil {
				w.Abort()
				return h, fmt.Errorf("shard %d: %w", i, err)
			}
		}
		s.logger.WithFields(logrus.Fields{
			"action": "convert",
			"input":  fsutil.PartPath(input, i),
			"edges":  len(list.Edges),
		}).Debug("shard written")
		list = nil
	}
	return h, w.Close(h.N)
}
