package pricing

import "github.com/google/uuid"

// PackageRule grants a flat discount each time a bundle of required product
// quantities is present in the cart. Rules apply in declared order and
// consume units first-come-first-served; no savings optimisation happens.
type PackageRule struct {
	Name     string
	Requires map[uuid.UUID]int32
	Discount Money
}

// ThresholdRule grants a flat discount once the running total reaches the
// threshold. Only the single highest qualifying threshold applies.
type ThresholdRule struct {
	Threshold Money
	Discount  Money
}

// Rules is the discount policy table evaluated per checkout attempt.
type Rules struct {
	Packages   []PackageRule
	Thresholds []ThresholdRule
}

// DefaultThresholds returns the stock threshold table used when none is configured.
func DefaultThresholds() []ThresholdRule {
	return []ThresholdRule{
		{Threshold: 22000, Discount: 2000},
		{Threshold: 35000, Discount: 4000},
	}
}
