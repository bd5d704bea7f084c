// Package domain defines the core types shared by every graphtools component.
//
// This package contains the value types that describe a graph as it travels
// between interchange formats, plus the error taxonomy the decoders, the
// validator and the encoders report through.
//
// # Core Types
//
// ID is a 0-based node identifier. All text formats store ids 1-based; the
// decoders convert on the way in and the encoders on the way out.
//
// Weight is the signed numeric domain shared by node and edge weights. Limits
// describes how wide ID and Weight are allowed to be for a given target.
//
// Edge is one directed record. An undirected graph stores every edge twice,
// once per direction, with equal weight.
//
// Header carries the node count, the directed edge count and the weight flags
// of a graph. On disk, METIS stores the undirected count; Header.M is always
// the directed count.
//
// Assignment is a block or cluster id per node, read from partition and
// clustering files.
//
// # Diagnostics
//
// Diagnostic describes one structural violation found by the validator, with
// the offending node, neighbor and value. Diagnostics carry a Severity so that
// lenient checks can downgrade some violations to warnings.
//
// # Errors
//
// Decoders, validators and encoders report through a small set of sentinel
// errors (ErrMalformedHeader, ErrUnexpectedToken, ErrStructural, ...). Classify
// maps any error onto the Outcome the command line reports as exit status.
//
// # Runs
//
// Run is the record of one tool invocation as stored in the run catalog.
package domain
