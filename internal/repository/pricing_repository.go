package repository

import (
	"database/sql"
	"fmt"
	"time"

	"laas-calculator/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// IPricingRepository is the store for the singleton rate-plan document.
type IPricingRepository interface {
	// GetOrInitialize returns the latest rules document, materializing the
	// defaults on first access.
	GetOrInitialize() (*models.PricingRules, error)
	UpdateRules(rules *models.PricingRules) error
}

type PricingRepository struct {
	db *sqlx.DB
}

func NewPricingRepository(db *sqlx.DB) IPricingRepository {
	return &PricingRepository{db: db}
}

func (r *PricingRepository) GetOrInitialize() (*models.PricingRules, error) {
	var rules models.PricingRules
	query := `
		SELECT id, system_capacity, monthly_cost, environment_size_definitions,
		       fees, cloud_costs, updated_at, updated_by
		FROM pricing_rules
		ORDER BY updated_at DESC
		LIMIT 1`

	err := r.db.Get(&rules, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return r.createDefault()
		}
		return nil, fmt.Errorf("failed to get pricing rules: %w", err)
	}

	return &rules, nil
}

func (r *PricingRepository) createDefault() (*models.PricingRules, error) {
	rules := models.DefaultPricingRules()
	rules.ID = uuid.New().String()
	rules.UpdatedAt = time.Now()

	query := `
		INSERT INTO pricing_rules (id, system_capacity, monthly_cost,
		                           environment_size_definitions, fees, cloud_costs,
		                           updated_at, updated_by)
		VALUES (:id, :system_capacity, :monthly_cost, :environment_size_definitions,
		        :fees, :cloud_costs, :updated_at, :updated_by)`

	_, err := r.db.NamedExec(query, &rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create default pricing rules: %w", err)
	}

	return &rules, nil
}

func (r *PricingRepository) UpdateRules(rules *models.PricingRules) error {
	query := `
		UPDATE pricing_rules
		SET system_capacity = :system_capacity,
		    monthly_cost = :monthly_cost,
		    environment_size_definitions = :environment_size_definitions,
		    fees = :fees,
		    cloud_costs = :cloud_costs,
		    updated_at = :updated_at,
		    updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExec(query, rules)
	if err != nil {
		return fmt.Errorf("failed to update pricing rules: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("pricing rules: %w", models.ErrNotFound)
	}

	return nil
}
