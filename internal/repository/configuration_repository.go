package repository

import (
	"database/sql"
	"fmt"
	"time"

	"laas-calculator/internal/models"

	"github.com/jmoiron/sqlx"
)

type IConfigurationRepository interface {
	CreateConfiguration(cfg *models.Configuration) error
	GetConfigurationByID(id string) (*models.Configuration, error)
	GetConfigurationByShareToken(token string) (*models.Configuration, error)
	GetConfigurationsByOwner(ownerID string) ([]models.Configuration, error)
	GetAllConfigurations() ([]models.Configuration, error)
	GetPublicConfigurations() ([]models.Configuration, error)
	UpdateConfiguration(cfg *models.Configuration) error
	DeleteConfiguration(id string) error
}

type ConfigurationRepository struct {
	db *sqlx.DB
}

func NewConfigurationRepository(db *sqlx.DB) IConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

func (r *ConfigurationRepository) CreateConfiguration(cfg *models.Configuration) error {
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = time.Now()

	query := `
		INSERT INTO configurations (id, name, description, owner_id, is_public,
		                            share_token, current_version, versions,
		                            created_at, updated_at)
		VALUES (:id, :name, :description, :owner_id, :is_public,
		        :share_token, :current_version, :versions, :created_at, :updated_at)`

	_, err := r.db.NamedExec(query, cfg)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	return nil
}

func (r *ConfigurationRepository) GetConfigurationByID(id string) (*models.Configuration, error) {
	var cfg models.Configuration
	query := `SELECT * FROM configurations WHERE id = $1`

	err := r.db.Get(&cfg, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("configuration: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	return &cfg, nil
}

func (r *ConfigurationRepository) GetConfigurationByShareToken(token string) (*models.Configuration, error) {
	var cfg models.Configuration
	query := `SELECT * FROM configurations WHERE share_token = $1`

	err := r.db.Get(&cfg, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("configuration: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get configuration by share token: %w", err)
	}

	return &cfg, nil
}

func (r *ConfigurationRepository) GetConfigurationsByOwner(ownerID string) ([]models.Configuration, error) {
	var cfgs []models.Configuration
	query := `SELECT * FROM configurations WHERE owner_id = $1 ORDER BY updated_at DESC`

	err := r.db.Select(&cfgs, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get configurations by owner: %w", err)
	}

	return cfgs, nil
}

func (r *ConfigurationRepository) GetAllConfigurations() ([]models.Configuration, error) {
	var cfgs []models.Configuration
	query := `SELECT * FROM configurations ORDER BY updated_at DESC`

	err := r.db.Select(&cfgs, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get configurations: %w", err)
	}

	return cfgs, nil
}

func (r *ConfigurationRepository) GetPublicConfigurations() ([]models.Configuration, error) {
	var cfgs []models.Configuration
	query := `SELECT * FROM configurations WHERE is_public = TRUE ORDER BY updated_at DESC`

	err := r.db.Select(&cfgs, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get public configurations: %w", err)
	}

	return cfgs, nil
}

func (r *ConfigurationRepository) UpdateConfiguration(cfg *models.Configuration) error {
	cfg.UpdatedAt = time.Now()

	query := `
		UPDATE configurations
		SET name = :name,
		    description = :description,
		    is_public = :is_public,
		    current_version = :current_version,
		    versions = :versions,
		    updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExec(query, cfg)
	if err != nil {
		return fmt.Errorf("failed to update configuration: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("configuration: %w", models.ErrNotFound)
	}

	return nil
}

func (r *ConfigurationRepository) DeleteConfiguration(id string) error {
	query := `DELETE FROM configurations WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("configuration: %w", models.ErrNotFound)
	}

	return nil
}
