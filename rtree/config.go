package rtree

import "github.com/lbs-irtree/irtree/internal/types"

// Variant selects the split policy used on node overflow.
type Variant int

const (
	Linear Variant = iota
	Quadratic
	Rstar
)

func (v Variant) String() string {
	switch v {
	case Linear:
		return "linear"
	case Quadratic:
		return "quadratic"
	case Rstar:
		return "rstar"
	default:
		return "unknown"
	}
}

// ParseVariant maps the config/CLI spelling onto a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "quadratic":
		return Quadratic, nil
	case "rstar", "":
		return Rstar, nil
	default:
		return 0, &ConfigError{Field: "TreeVariant", Msg: "must be linear, quadratic, or rstar, got " + s}
	}
}

// Config holds the tunable properties of a tree. When
// IndexIdentifier is non-nil, New reloads an existing tree from that
// header page and ignores the immutable fields (Dimension, FillFactor,
// IndexCapacity, LeafCapacity); mutable fields (TreeVariant and the R*
// factors) may still be re-set.
type Config struct {
	TreeVariant              Variant
	FillFactor               float64
	IndexCapacity            int
	LeafCapacity             int
	NearMinimumOverlapFactor int
	SplitDistributionFactor  float64
	ReinsertFactor           float64
	Dimension                int
	IndexIdentifier          *types.PageID
}

// DefaultConfig returns the values the CLI demo and
// internal/config's ApplyDefaults both converge on.
func DefaultConfig() Config {
	return Config{
		TreeVariant:              Rstar,
		FillFactor:               0.4,
		IndexCapacity:            50,
		LeafCapacity:             50,
		NearMinimumOverlapFactor: 32,
		SplitDistributionFactor:  0.4,
		ReinsertFactor:           0.3,
		Dimension:                2,
	}
}

// Validate enforces the cross-field constraints on a Config.
func (c Config) Validate() error {
	if c.FillFactor <= 0 || c.FillFactor >= 1 {
		return &ConfigError{Field: "FillFactor", Msg: "must be in (0, 1)"}
	}
	if c.IndexCapacity < 3 {
		return &ConfigError{Field: "IndexCapacity", Msg: "must be >= 3"}
	}
	if c.LeafCapacity < 3 {
		return &ConfigError{Field: "LeafCapacity", Msg: "must be >= 3"}
	}
	maxCap := c.IndexCapacity
	if c.LeafCapacity < maxCap {
		maxCap = c.LeafCapacity
	}
	if c.NearMinimumOverlapFactor < 1 || c.NearMinimumOverlapFactor > maxCap {
		return &ConfigError{Field: "NearMinimumOverlapFactor", Msg: "must be in [1, min(indexCapacity, leafCapacity)]"}
	}
	if c.SplitDistributionFactor <= 0 || c.SplitDistributionFactor >= 1 {
		return &ConfigError{Field: "SplitDistributionFactor", Msg: "must be in (0, 1)"}
	}
	if c.ReinsertFactor <= 0 || c.ReinsertFactor >= 1 {
		return &ConfigError{Field: "ReinsertFactor", Msg: "must be in (0, 1)"}
	}
	if c.Dimension < 2 {
		return &ConfigError{Field: "Dimension", Msg: "must be >= 2"}
	}
	return nil
}

// minEntries returns the minimum occupancy for a non-root node at the
// given capacity: ceil(capacity * fillFactor).
func (c Config) minEntries(capacity int) int {
	n := int(float64(capacity) * c.FillFactor)
	if float64(n) < float64(capacity)*c.FillFactor {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (c Config) capacityForLevel(level int) int {
	if level == 0 {
		return c.LeafCapacity
	}
	return c.IndexCapacity
}
