package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"laas-calculator/internal/models"
	"laas-calculator/internal/repository"
)

// PricingService exposes the rate-plan document and the cost calculation
// operation, with caller-dependent visibility applied before anything leaves
// this layer.
type PricingService struct {
	pricingRepo repository.IPricingRepository
	calculator  *CostCalculator
}

func NewPricingService(pricingRepo repository.IPricingRepository, calculator *CostCalculator) *PricingService {
	return &PricingService{
		pricingRepo: pricingRepo,
		calculator:  calculator,
	}
}

// GetRules returns the current rate plan. Non-admin callers get the view
// with the lab manager fee redacted.
func (s *PricingService) GetRules(caller models.CallerIdentity) (any, error) {
	rules, err := s.pricingRepo.GetOrInitialize()
	if err != nil {
		return nil, err
	}

	if caller.IsAdmin() {
		return rules, nil
	}

	return rules.PublicView(), nil
}

// UpdateRules applies a partial update: each present group fully replaces the
// stored group, absent groups are untouched. Admin enforcement happens in the
// request layer.
func (s *PricingService) UpdateRules(update models.PricingRulesUpdate, updatedBy string) (*models.PricingRules, error) {
	rules, err := s.pricingRepo.GetOrInitialize()
	if err != nil {
		return nil, err
	}

	if update.SystemCapacity != nil {
		rules.SystemCapacity = *update.SystemCapacity
	}
	if update.MonthlyCost != nil {
		rules.MonthlyCost = *update.MonthlyCost
	}
	if update.EnvironmentSizeDefinitions != nil {
		rules.EnvironmentSizeDefinitions = *update.EnvironmentSizeDefinitions
	}
	if update.Fees != nil {
		rules.Fees = *update.Fees
	}
	if update.CloudCosts != nil {
		rules.CloudCosts = *update.CloudCosts
	}

	rules.UpdatedAt = time.Now()
	rules.UpdatedBy = &updatedBy

	if err := s.pricingRepo.UpdateRules(rules); err != nil {
		return nil, err
	}

	slog.Info("Pricing rules updated", "updated_by", updatedBy)
	return rules, nil
}

// CalculateCosts runs the calculation engine against the current rate plan
// and filters the breakdown for the caller.
func (s *PricingService) CalculateCosts(rawOptions json.RawMessage, caller models.CallerIdentity) (*models.CalculationResult, error) {
	requests, err := s.calculator.ParseResourceRequests(rawOptions)
	if err != nil {
		return nil, err
	}

	rules, err := s.pricingRepo.GetOrInitialize()
	if err != nil {
		return nil, err
	}

	result, err := s.calculator.Calculate(requests, rules)
	if err != nil {
		return nil, err
	}

	result.Costs = s.calculator.FilterForCaller(result.Costs, caller.Authenticated)

	slog.Info("Calculated costs",
		"total_vcpu", result.Totals.TotalVCPU,
		"total_memory", result.Totals.TotalMemory,
		"total_storage", result.Totals.TotalStorage,
		"environment_size", result.EnvironmentSize,
		"authenticated", caller.Authenticated)

	return result, nil
}
