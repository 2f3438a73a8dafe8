package services

import (
	"fmt"
	"log/slog"

	"laas-calculator/internal/models"
	"laas-calculator/internal/repository"
	"laas-calculator/utils"

	"github.com/google/uuid"
)

const shareTokenLength = 24

// ConfigurationService owns the lifecycle of saved configurations: create
// with an initial computed version, append versions, revert, share and
// delete. Version snapshots always store the full unfiltered breakdown;
// visibility filtering applies to ad-hoc calculations, not owned snapshots.
type ConfigurationService struct {
	configRepo  repository.IConfigurationRepository
	pricingRepo repository.IPricingRepository
	calculator  *CostCalculator
}

func NewConfigurationService(configRepo repository.IConfigurationRepository, pricingRepo repository.IPricingRepository, calculator *CostCalculator) *ConfigurationService {
	return &ConfigurationService{
		configRepo:  configRepo,
		pricingRepo: pricingRepo,
		calculator:  calculator,
	}
}

// ListConfigurations returns the caller's configurations, or every
// configuration for admins.
func (s *ConfigurationService) ListConfigurations(caller models.CallerIdentity) ([]models.Configuration, error) {
	if !caller.Authenticated {
		return nil, fmt.Errorf("%w: authentication required", models.ErrUnauthorized)
	}

	if caller.Role == models.RoleAdmin {
		return s.configRepo.GetAllConfigurations()
	}

	return s.configRepo.GetConfigurationsByOwner(caller.UserID)
}

func (s *ConfigurationService) ListPublicConfigurations() ([]models.Configuration, error) {
	return s.configRepo.GetPublicConfigurations()
}

func (s *ConfigurationService) GetConfiguration(id string, caller models.CallerIdentity) (*models.Configuration, error) {
	cfg, err := s.configRepo.GetConfigurationByID(id)
	if err != nil {
		return nil, err
	}

	if !cfg.CanBeReadBy(caller) {
		return nil, fmt.Errorf("%w: not authorized to access this configuration", models.ErrUnauthorized)
	}

	return cfg, nil
}

// GetConfigurationByShareToken resolves a share token. Anyone holding the
// token may read the configuration.
func (s *ConfigurationService) GetConfigurationByShareToken(token string) (*models.Configuration, error) {
	return s.configRepo.GetConfigurationByShareToken(token)
}

// CreateConfiguration validates the request, computes the initial version
// from the current rate plan and persists the configuration with exactly one
// version.
func (s *ConfigurationService) CreateConfiguration(req models.CreateConfigurationRequest, caller models.CallerIdentity) (*models.Configuration, error) {
	if !caller.Authenticated {
		return nil, fmt.Errorf("%w: authentication required", models.ErrUnauthorized)
	}

	version, err := s.buildVersion(req.ResourceRequests, req.Notes, caller.UserID)
	if err != nil {
		return nil, err
	}

	cfg := &models.Configuration{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     caller.UserID,
		IsPublic:    req.IsPublic,
		ShareToken:  utils.GenerateRandomStringWithLength(shareTokenLength),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.AddVersion(*version, caller.UserID)

	if err := s.configRepo.CreateConfiguration(cfg); err != nil {
		return nil, err
	}

	slog.Info("Configuration created", "configuration_id", cfg.ID, "owner", caller.UserID)
	return cfg, nil
}

// UpdateConfiguration updates metadata and, when new resource requests are
// supplied, computes and appends a new version which becomes current.
func (s *ConfigurationService) UpdateConfiguration(id string, req models.UpdateConfigurationRequest, caller models.CallerIdentity) (*models.Configuration, error) {
	cfg, err := s.configRepo.GetConfigurationByID(id)
	if err != nil {
		return nil, err
	}

	if !cfg.CanBeModifiedBy(caller) {
		return nil, fmt.Errorf("%w: not authorized to update this configuration", models.ErrUnauthorized)
	}

	if req.Name != nil {
		cfg.Name = *req.Name
	}
	if req.Description != nil {
		cfg.Description = *req.Description
	}
	if req.IsPublic != nil {
		cfg.IsPublic = *req.IsPublic
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if req.NewResourceRequests != nil {
		version, err := s.buildVersion(req.NewResourceRequests, req.Notes, caller.UserID)
		if err != nil {
			return nil, err
		}
		cfg.AddVersion(*version, caller.UserID)
	}

	if err := s.configRepo.UpdateConfiguration(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RevertVersion repoints the current version at a stored snapshot. The
// versions list is unchanged; reverting twice to the same index is a no-op
// the second time.
func (s *ConfigurationService) RevertVersion(id string, versionIndex int, caller models.CallerIdentity) (*models.Configuration, error) {
	cfg, err := s.configRepo.GetConfigurationByID(id)
	if err != nil {
		return nil, err
	}

	if !cfg.CanBeModifiedBy(caller) {
		return nil, fmt.Errorf("%w: not authorized to update this configuration", models.ErrUnauthorized)
	}

	if err := cfg.RevertToVersion(versionIndex); err != nil {
		return nil, err
	}

	if err := s.configRepo.UpdateConfiguration(cfg); err != nil {
		return nil, err
	}

	slog.Info("Configuration reverted", "configuration_id", cfg.ID, "version_index", versionIndex)
	return cfg, nil
}

// DeleteConfiguration hard-deletes a configuration and all its versions.
func (s *ConfigurationService) DeleteConfiguration(id string, caller models.CallerIdentity) error {
	cfg, err := s.configRepo.GetConfigurationByID(id)
	if err != nil {
		return err
	}

	if !cfg.CanBeModifiedBy(caller) {
		return fmt.Errorf("%w: not authorized to delete this configuration", models.ErrUnauthorized)
	}

	if err := s.configRepo.DeleteConfiguration(id); err != nil {
		return err
	}

	slog.Info("Configuration deleted", "configuration_id", id, "deleted_by", caller.UserID)
	return nil
}

// buildVersion validates the line items against the option catalog and runs
// the calculation engine against the current rate plan. Nothing is persisted
// before validation completes.
func (s *ConfigurationService) buildVersion(requests []models.ResourceRequest, notes, userID string) (*models.ConfigurationVersion, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: a configuration needs at least one resource option", models.ErrInvalidInput)
	}

	for _, req := range requests {
		if err := req.Validate(); err != nil {
			return nil, err
		}
	}

	rules, err := s.pricingRepo.GetOrInitialize()
	if err != nil {
		return nil, err
	}

	result, err := s.calculator.Calculate(requests, rules)
	if err != nil {
		return nil, err
	}

	return &models.ConfigurationVersion{
		ResourceRequests: requests,
		Totals:           result.Totals,
		EnvironmentSize:  result.EnvironmentSize,
		Costs:            result.Costs,
		Notes:            notes,
		CreatedBy:        userID,
	}, nil
}
