package graphics

import "math"

// Constraints describe the box constraints a parent passes to a child during
// layout: the child must pick a size within [Min, Max] on both axes.
// Constraints flow strictly down the tree; sizes flow strictly up.
type Constraints struct {
	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
}

// Tight returns constraints that admit exactly one size.
func Tight(size Size) Constraints {
	return Constraints{
		MinWidth:  size.Width,
		MaxWidth:  size.Width,
		MinHeight: size.Height,
		MaxHeight: size.Height,
	}
}

// Loose returns constraints with zero minimums and the given maximums.
func Loose(size Size) Constraints {
	return Constraints{MaxWidth: size.Width, MaxHeight: size.Height}
}

// Unbounded returns constraints with no maximum on either axis.
func Unbounded() Constraints {
	return Constraints{MaxWidth: math.Inf(1), MaxHeight: math.Inf(1)}
}

// IsTight returns true if the constraints admit exactly one size.
func (c Constraints) IsTight() bool {
	return floatEqual(c.MinWidth, c.MaxWidth) && floatEqual(c.MinHeight, c.MaxHeight)
}

// Constrain clamps size to satisfy the constraints.
func (c Constraints) Constrain(size Size) Size {
	return Size{
		Width:  math.Min(math.Max(size.Width, c.MinWidth), c.MaxWidth),
		Height: math.Min(math.Max(size.Height, c.MinHeight), c.MaxHeight),
	}
}

// Smallest returns the smallest size satisfying the constraints.
func (c Constraints) Smallest() Size {
	return Size{Width: c.MinWidth, Height: c.MinHeight}
}

// Biggest returns the largest size satisfying the constraints.
func (c Constraints) Biggest() Size {
	return Size{Width: c.MaxWidth, Height: c.MaxHeight}
}

// IsSatisfiedBy returns true if size lies within the constraints.
func (c Constraints) IsSatisfiedBy(size Size) bool {
	return size.Width >= c.MinWidth-epsilon && size.Width <= c.MaxWidth+epsilon &&
		size.Height >= c.MinHeight-epsilon && size.Height <= c.MaxHeight+epsilon
}

// Loosen returns a copy of the constraints with zero minimums.
func (c Constraints) Loosen() Constraints {
	return Constraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}
