// Package service runs the graph tools.
//
// Every tool is one method on Service. A method resolves its output path,
// drives a decoder into an encoder or the validator, and reports the
// header it wrote or checked.
//
// # Runs
//
// Each invocation is tracked as a domain.Run. The run is announced on the
// EventBus before work starts, progress is published while records are
// decoded or encoded, and the finished run closes the sequence. When a
// repository is configured the run is stored with its outcome, the digest
// of the output file and any diagnostics. Failing to store a run is logged
// and never fails the tool.
//
// # Conversions
//
// METIS output is always written in node order. Formats that carry
// adjacency in node order (METIS, edge lists, images) are streamed; mesh,
// Steiner and arc formats are collected, sorted and deduplicated first.
// Sharded edge lists are appended part by part to a single output file.
package service
