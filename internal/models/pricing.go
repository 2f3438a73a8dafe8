package models

import (
	"database/sql/driver"
	"time"
)

type EnvironmentSize string

const (
	SizeSmall  EnvironmentSize = "Small"
	SizeMedium EnvironmentSize = "Medium"
	SizeLarge  EnvironmentSize = "Large"
)

// ResourceRates holds one dollar (or capacity) figure per resource metric.
// The same triple shape is used for monthly unit costs, cloud comparison
// rates and system capacity.
type ResourceRates struct {
	VCPU    float64 `json:"vCPU"`
	Memory  float64 `json:"memory"`
	Storage float64 `json:"storage"`
}

// TierRates keys ResourceRates by environment size tier.
type TierRates struct {
	Small  ResourceRates `json:"small"`
	Medium ResourceRates `json:"medium"`
	Large  ResourceRates `json:"large"`
}

// RatesFor returns the rates for a resolved environment size.
func (t TierRates) RatesFor(size EnvironmentSize) ResourceRates {
	switch size {
	case SizeMedium:
		return t.Medium
	case SizeLarge:
		return t.Large
	default:
		return t.Small
	}
}

type TierBoundary struct {
	LowerLimit float64 `json:"lowerLimit"`
	UpperLimit float64 `json:"upperLimit"`
}

type SizeBoundaries struct {
	VCPU    TierBoundary `json:"vCPU"`
	Memory  TierBoundary `json:"memory"`
	Storage TierBoundary `json:"storage"`
}

type EnvironmentSizeDefinitions struct {
	Small  SizeBoundaries `json:"small"`
	Medium SizeBoundaries `json:"medium"`
	Large  SizeBoundaries `json:"large"`
}

type Fees struct {
	WWTLabManagerFee float64 `json:"wwtLabManagerFee"`
	DLAFee           float64 `json:"dlaFee"`
}

type CloudCosts struct {
	Azure ResourceRates `json:"azure"`
	AWS   ResourceRates `json:"aws"`
}

// PricingRules is the singleton rate-plan document. Exactly one row is
// authoritative at any time: latest by updated_at.
type PricingRules struct {
	ID                         string                     `json:"-" db:"id"`
	SystemCapacity             TierRates                  `json:"systemCapacity" db:"system_capacity"`
	MonthlyCost                TierRates                  `json:"monthlyCost" db:"monthly_cost"`
	EnvironmentSizeDefinitions EnvironmentSizeDefinitions `json:"environmentSizeDefinitions" db:"environment_size_definitions"`
	Fees                       Fees                       `json:"fees" db:"fees"`
	CloudCosts                 CloudCosts                 `json:"cloudCosts" db:"cloud_costs"`
	UpdatedAt                  time.Time                  `json:"updatedAt" db:"updated_at"`
	UpdatedBy                  *string                    `json:"updatedBy,omitempty" db:"updated_by"`
}

// PricingRulesUpdate is a partial update: a present group fully replaces the
// stored group, absent groups are left untouched.
type PricingRulesUpdate struct {
	SystemCapacity             *TierRates                  `json:"systemCapacity"`
	MonthlyCost                *TierRates                  `json:"monthlyCost"`
	EnvironmentSizeDefinitions *EnvironmentSizeDefinitions `json:"environmentSizeDefinitions"`
	Fees                       *Fees                       `json:"fees"`
	CloudCosts                 *CloudCosts                 `json:"cloudCosts"`
}

// PublicFees is the fee view for non-admin callers: the lab manager fee is
// redacted, everything else passes through.
type PublicFees struct {
	DLAFee float64 `json:"dlaFee"`
}

// PublicPricingRules is the rules document as seen by non-admin callers.
type PublicPricingRules struct {
	SystemCapacity             TierRates                  `json:"systemCapacity"`
	MonthlyCost                TierRates                  `json:"monthlyCost"`
	EnvironmentSizeDefinitions EnvironmentSizeDefinitions `json:"environmentSizeDefinitions"`
	Fees                       PublicFees                 `json:"fees"`
	CloudCosts                 CloudCosts                 `json:"cloudCosts"`
	UpdatedAt                  time.Time                  `json:"updatedAt"`
}

// PublicView strips the admin-only fields from the rules document.
func (p *PricingRules) PublicView() PublicPricingRules {
	return PublicPricingRules{
		SystemCapacity:             p.SystemCapacity,
		MonthlyCost:                p.MonthlyCost,
		EnvironmentSizeDefinitions: p.EnvironmentSizeDefinitions,
		Fees:                       PublicFees{DLAFee: p.Fees.DLAFee},
		CloudCosts:                 p.CloudCosts,
		UpdatedAt:                  p.UpdatedAt,
	}
}

// DefaultPricingRules returns the rate plan materialized when the store is
// empty.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		SystemCapacity: TierRates{
			Small:  ResourceRates{VCPU: 16, Memory: 96, Storage: 8096},
			Medium: ResourceRates{VCPU: 96, Memory: 960, Storage: 8096},
			Large:  ResourceRates{VCPU: 186, Memory: 2064, Storage: 22528},
		},
		MonthlyCost: TierRates{
			Small:  ResourceRates{VCPU: 8.50, Memory: 2.50, Storage: 0.06},
			Medium: ResourceRates{VCPU: 7.50, Memory: 1.60, Storage: 0.05},
			Large:  ResourceRates{VCPU: 6.75, Memory: 1.50, Storage: 0.04},
		},
		EnvironmentSizeDefinitions: EnvironmentSizeDefinitions{
			Small: SizeBoundaries{
				VCPU:    TierBoundary{LowerLimit: 0, UpperLimit: 100},
				Memory:  TierBoundary{LowerLimit: 0, UpperLimit: 500},
				Storage: TierBoundary{LowerLimit: 0, UpperLimit: 2000},
			},
			Medium: SizeBoundaries{
				VCPU:    TierBoundary{LowerLimit: 101, UpperLimit: 300},
				Memory:  TierBoundary{LowerLimit: 501, UpperLimit: 4000},
				Storage: TierBoundary{LowerLimit: 4000, UpperLimit: 9999},
			},
			Large: SizeBoundaries{
				VCPU:    TierBoundary{LowerLimit: 301, UpperLimit: 999999},
				Memory:  TierBoundary{LowerLimit: 4001, UpperLimit: 999999},
				Storage: TierBoundary{LowerLimit: 10000, UpperLimit: 999999},
			},
		},
		Fees: Fees{
			WWTLabManagerFee: 0.25,
			DLAFee:           0.11,
		},
		CloudCosts: CloudCosts{
			Azure: ResourceRates{VCPU: 9.50, Memory: 9.40, Storage: 0.03},
			AWS:   ResourceRates{VCPU: 8.70, Memory: 8.70, Storage: 0.10},
		},
		UpdatedAt: time.Now(),
	}
}

func (t TierRates) Value() (driver.Value, error) { return jsonbValue(t) }
func (t *TierRates) Scan(value any) error        { return jsonbScan(t, value) }

func (e EnvironmentSizeDefinitions) Value() (driver.Value, error) { return jsonbValue(e) }
func (e *EnvironmentSizeDefinitions) Scan(value any) error        { return jsonbScan(e, value) }

func (f Fees) Value() (driver.Value, error) { return jsonbValue(f) }
func (f *Fees) Scan(value any) error        { return jsonbScan(f, value) }

func (c CloudCosts) Value() (driver.Value, error) { return jsonbValue(c) }
func (c *CloudCosts) Scan(value any) error        { return jsonbScan(c, value) }
