package services

import (
	"encoding/json"
	"fmt"
	"math"

	"laas-calculator/internal/models"
)

// CostCalculator holds the pure cost-calculation and environment-sizing
// logic. It has no state and is safe for concurrent use.
type CostCalculator struct{}

func NewCostCalculator() *CostCalculator {
	return &CostCalculator{}
}

// ParseResourceRequests decodes an ad-hoc calculation payload. A payload that
// is not a JSON list (for example a single object) is rejected.
func (c *CostCalculator) ParseResourceRequests(raw json.RawMessage) ([]models.ResourceRequest, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: please provide valid LaaS options", models.ErrInvalidInput)
	}

	var requests []models.ResourceRequest
	if err := json.Unmarshal(raw, &requests); err != nil {
		return nil, fmt.Errorf("%w: please provide valid LaaS options", models.ErrInvalidInput)
	}

	return requests, nil
}

// SumTotals sums quantity x metric across all requests, per metric.
func (c *CostCalculator) SumTotals(requests []models.ResourceRequest) models.ResourceTotals {
	var totals models.ResourceTotals

	for _, req := range requests {
		qty := float64(req.Quantity)
		totals.TotalVCPU += qty * req.VCPU
		totals.TotalMemory += qty * req.Memory
		totals.TotalStorage += qty * req.Storage
	}

	return totals
}

// ResolveEnvironmentSize maps resource totals to a size tier. The checks are
// an escalation, not a range match: a total that clears both the small and
// medium upper limit on any single metric lands on Large directly.
func (c *CostCalculator) ResolveEnvironmentSize(totals models.ResourceTotals, defs models.EnvironmentSizeDefinitions) models.EnvironmentSize {
	size := models.SizeSmall

	if totals.TotalVCPU > defs.Small.VCPU.UpperLimit ||
		totals.TotalMemory > defs.Small.Memory.UpperLimit ||
		totals.TotalStorage > defs.Small.Storage.UpperLimit {
		size = models.SizeMedium
	}

	if totals.TotalVCPU > defs.Medium.VCPU.UpperLimit ||
		totals.TotalMemory > defs.Medium.Memory.UpperLimit ||
		totals.TotalStorage > defs.Medium.Storage.UpperLimit {
		size = models.SizeLarge
	}

	return size
}

// Calculate computes the full tiered cost breakdown for a resource-request
// list under the given rate plan. It either fully succeeds or fully fails;
// no partial breakdown is ever returned.
func (c *CostCalculator) Calculate(requests []models.ResourceRequest, rules *models.PricingRules) (*models.CalculationResult, error) {
	for _, req := range requests {
		if req.Quantity < 0 || req.VCPU < 0 || req.Memory < 0 || req.Storage < 0 {
			return nil, fmt.Errorf("%w: resource figures must not be negative", models.ErrInvalidInput)
		}
	}

	totals := c.SumTotals(requests)
	size := c.ResolveEnvironmentSize(totals, rules.EnvironmentSizeDefinitions)

	rates := rules.MonthlyCost.RatesFor(size)
	wwtMonthly := totals.TotalVCPU*rates.VCPU +
		totals.TotalMemory*rates.Memory +
		totals.TotalStorage*rates.Storage

	// Only the DLA fee is composed into the surcharged total. The lab manager
	// fee is configured but inert in the current rate composition.
	dlaMonthly := wwtMonthly * (1 + rules.Fees.DLAFee)

	azureMonthly := totals.TotalVCPU*rules.CloudCosts.Azure.VCPU +
		totals.TotalMemory*rules.CloudCosts.Azure.Memory +
		totals.TotalStorage*rules.CloudCosts.Azure.Storage

	awsMonthly := totals.TotalVCPU*rules.CloudCosts.AWS.VCPU +
		totals.TotalMemory*rules.CloudCosts.AWS.Memory +
		totals.TotalStorage*rules.CloudCosts.AWS.Storage

	costs := models.CostBreakdown{
		WWT: &models.CostPeriod{
			Monthly: wwtMonthly,
			Annual:  wwtMonthly * 12,
		},
		DLA: models.CostPeriod{
			Monthly: dlaMonthly,
			Annual:  dlaMonthly * 12,
		},
		Azure: models.ComparisonCost{
			Monthly: azureMonthly,
			Annual:  azureMonthly * 12,
			Savings: savingsPercent(azureMonthly, dlaMonthly),
		},
		AWS: models.ComparisonCost{
			Monthly: awsMonthly,
			Annual:  awsMonthly * 12,
			Savings: savingsPercent(awsMonthly, dlaMonthly),
		},
	}

	return &models.CalculationResult{
		Totals:          totals,
		EnvironmentSize: size,
		Costs:           costs,
	}, nil
}

// FilterForCaller redacts cost perspectives based on the caller's
// authentication state. Unauthenticated callers never see the internal WWT
// cost; the DLA and cloud comparison perspectives are always visible.
func (c *CostCalculator) FilterForCaller(costs models.CostBreakdown, callerIsAuthenticated bool) models.CostBreakdown {
	if !callerIsAuthenticated {
		costs.WWT = nil
	}
	return costs
}

// savingsPercent is nil when the provider monthly cost is zero instead of
// propagating a division by zero.
func savingsPercent(providerMonthly, dlaMonthly float64) *int {
	if providerMonthly == 0 {
		return nil
	}

	pct := int(math.Round((providerMonthly - dlaMonthly) / providerMonthly * 100))
	return &pct
}
