package domain

import "fmt"

// ID identifies a node. IDs are 0-based and valid in [0, n).
type ID = uint64

// Weight is the domain of node and edge weights
type Weight = int64

// NoNode marks a diagnostic or record that refers to no particular node
const NoNode = ^ID(0)

// Limits bounds the representable ranges of IDs and weights for a target
type Limits struct {
	IDBits     uint `yaml:"id_bits"`
	WeightBits uint `yaml:"weight_bits"`
}

// DefaultLimits returns 64-bit ids and 64-bit weights
func DefaultLimits() Limits {
	return Limits{IDBits: 64, WeightBits: 64}
}

// MaxID returns the largest representable node id
func (l Limits) MaxID() uint64 {
	if l.IDBits >= 64 || l.IDBits == 0 {
		return ^uint64(0)
	}
	return uint64(1)<<l.IDBits - 1
}

// MaxWeight returns the largest representable weight
func (l Limits) MaxWeight() int64 {
	if l.WeightBits >= 64 || l.WeightBits == 0 {
		return int64(^uint64(0) >> 1)
	}
	return int64(1)<<(l.WeightBits-1) - 1
}

// Validate rejects widths the encoders cannot produce
func (l Limits) Validate() error {
	if l.IDBits != 32 && l.IDBits != 64 {
		return fmt.Errorf("id width must be 32 or 64 bits, got %d", l.IDBits)
	}
	if l.WeightBits != 32 && l.WeightBits != 64 {
		return fmt.Errorf("weight width must be 32 or 64 bits, got %d", l.WeightBits)
	}
	return nil
}

func (l Limits) String() string {
	return fmt.Sprintf("id=%dbit weight=%dbit", l.IDBits, l.WeightBits)
}
