package services

import (
	"fmt"
	"testing"

	"laas-calculator/internal/models"

	"github.com/stretchr/testify/assert"
)

// fakeConfigurationRepository keeps configurations in a map so the service
// tests run without Postgres.
type fakeConfigurationRepository struct {
	configs map[string]models.Configuration
}

func newFakeConfigurationRepository() *fakeConfigurationRepository {
	return &fakeConfigurationRepository{configs: make(map[string]models.Configuration)}
}

func (f *fakeConfigurationRepository) CreateConfiguration(cfg *models.Configuration) error {
	f.configs[cfg.ID] = *cfg
	return nil
}

func (f *fakeConfigurationRepository) GetConfigurationByID(id string) (*models.Configuration, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return nil, fmt.Errorf("%w: configuration %s", models.ErrNotFound, id)
	}
	return &cfg, nil
}

func (f *fakeConfigurationRepository) GetConfigurationByShareToken(token string) (*models.Configuration, error) {
	for _, cfg := range f.configs {
		if cfg.ShareToken == token {
			return &cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: no configuration for share token", models.ErrNotFound)
}

func (f *fakeConfigurationRepository) GetConfigurationsByOwner(ownerID string) ([]models.Configuration, error) {
	var out []models.Configuration
	for _, cfg := range f.configs {
		if cfg.OwnerID == ownerID {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (f *fakeConfigurationRepository) GetAllConfigurations() ([]models.Configuration, error) {
	var out []models.Configuration
	for _, cfg := range f.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func (f *fakeConfigurationRepository) GetPublicConfigurations() ([]models.Configuration, error) {
	var out []models.Configuration
	for _, cfg := range f.configs {
		if cfg.IsPublic {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (f *fakeConfigurationRepository) UpdateConfiguration(cfg *models.Configuration) error {
	if _, ok := f.configs[cfg.ID]; !ok {
		return fmt.Errorf("%w: configuration %s", models.ErrNotFound, cfg.ID)
	}
	f.configs[cfg.ID] = *cfg
	return nil
}

func (f *fakeConfigurationRepository) DeleteConfiguration(id string) error {
	if _, ok := f.configs[id]; !ok {
		return fmt.Errorf("%w: configuration %s", models.ErrNotFound, id)
	}
	delete(f.configs, id)
	return nil
}

func newConfigurationService() (*ConfigurationService, *fakeConfigurationRepository) {
	repo := newFakeConfigurationRepository()
	return NewConfigurationService(repo, newFakePricingRepository(), NewCostCalculator()), repo
}

func createConfigRequest(name string) models.CreateConfigurationRequest {
	return models.CreateConfigurationRequest{
		Name:             name,
		Description:      "dev lab",
		ResourceRequests: []models.ResourceRequest{sandboxRequest(1)},
	}
}

func strPtr(s string) *string { return &s }

// ============================================================================
// TEST SUITE 1: CREATE
// ============================================================================

func TestCreateConfiguration_InitialVersion(t *testing.T) {
	service, _ := newConfigurationService()

	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))

	assert.NoError(t, err)
	assert.Len(t, cfg.Versions, 1, "A new configuration has exactly one version")
	assert.Equal(t, cfg.Versions[0], cfg.CurrentVersion)
	assert.Equal(t, "user-1", cfg.OwnerID)
	assert.Equal(t, models.SizeSmall, cfg.CurrentVersion.EnvironmentSize)
	assert.NotNil(t, cfg.CurrentVersion.Costs.WWT, "Stored snapshots keep the full breakdown")
	assert.InDelta(t, 323.44, cfg.CurrentVersion.Costs.WWT.Monthly, 0.001)
	assert.Len(t, cfg.ShareToken, 24)
}

func TestCreateConfiguration_RequiresAuthentication(t *testing.T) {
	service, _ := newConfigurationService()

	_, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), anonymousCaller())

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestCreateConfiguration_RequiresName(t *testing.T) {
	service, _ := newConfigurationService()

	_, err := service.CreateConfiguration(createConfigRequest(""), userCaller("user-1"))

	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateConfiguration_RequiresResourceRequests(t *testing.T) {
	service, _ := newConfigurationService()
	req := createConfigRequest("Dev Lab")
	req.ResourceRequests = nil

	_, err := service.CreateConfiguration(req, userCaller("user-1"))

	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateConfiguration_RejectsUnknownOptionName(t *testing.T) {
	service, _ := newConfigurationService()
	req := createConfigRequest("Dev Lab")
	req.ResourceRequests = []models.ResourceRequest{{Name: "Mainframe", Quantity: 1, VCPU: 1, Memory: 1, Storage: 1}}

	_, err := service.CreateConfiguration(req, userCaller("user-1"))

	assert.ErrorIs(t, err, models.ErrInvalidInput, "Only catalog option names are accepted")
}

// ============================================================================
// TEST SUITE 2: UPDATE AND VERSIONING
// ============================================================================

func TestUpdateConfiguration_NewRequestsAppendVersion(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	updated, err := service.UpdateConfiguration(cfg.ID, models.UpdateConfigurationRequest{
		NewResourceRequests: []models.ResourceRequest{sandboxRequest(2)},
		Notes:               "doubled",
	}, userCaller("user-1"))

	assert.NoError(t, err)
	assert.Len(t, updated.Versions, 2, "A recompute appends, never overwrites")
	assert.Equal(t, updated.Versions[1], updated.CurrentVersion)
	assert.Equal(t, models.SizeMedium, updated.CurrentVersion.EnvironmentSize)
	assert.Equal(t, "doubled", updated.CurrentVersion.Notes)
	assert.Equal(t, models.SizeSmall, updated.Versions[0].EnvironmentSize, "Earlier snapshots are untouched")
}

func TestUpdateConfiguration_MetadataOnlyKeepsVersions(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	updated, err := service.UpdateConfiguration(cfg.ID, models.UpdateConfigurationRequest{
		Name: strPtr("Renamed Lab"),
	}, userCaller("user-1"))

	assert.NoError(t, err)
	assert.Equal(t, "Renamed Lab", updated.Name)
	assert.Len(t, updated.Versions, 1, "A metadata change does not create a version")
}

func TestUpdateConfiguration_OnlyOwnerOrAdmin(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	_, err = service.UpdateConfiguration(cfg.ID, models.UpdateConfigurationRequest{Name: strPtr("Hijack")}, userCaller("user-2"))
	assert.ErrorIs(t, err, models.ErrUnauthorized, "Another user cannot modify the configuration")

	updated, err := service.UpdateConfiguration(cfg.ID, models.UpdateConfigurationRequest{Name: strPtr("Admin Rename")}, adminCaller())
	assert.NoError(t, err, "Admins can modify any configuration")
	assert.Equal(t, "Admin Rename", updated.Name)
}

func TestRevertVersion_RepointsCurrentOnly(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)
	_, err = service.UpdateConfiguration(cfg.ID, models.UpdateConfigurationRequest{
		NewResourceRequests: []models.ResourceRequest{sandboxRequest(2)},
	}, userCaller("user-1"))
	assert.NoError(t, err)

	reverted, err := service.RevertVersion(cfg.ID, 0, userCaller("user-1"))

	assert.NoError(t, err)
	assert.Len(t, reverted.Versions, 2, "Reverting never shrinks or appends the version list")
	assert.Equal(t, reverted.Versions[0], reverted.CurrentVersion)
	assert.Equal(t, models.SizeSmall, reverted.CurrentVersion.EnvironmentSize)
}

func TestRevertVersion_Idempotent(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)
	_, err = service.UpdateConfiguration(cfg.ID, models.UpdateConfigurationRequest{
		NewResourceRequests: []models.ResourceRequest{sandboxRequest(2)},
	}, userCaller("user-1"))
	assert.NoError(t, err)

	first, err := service.RevertVersion(cfg.ID, 0, userCaller("user-1"))
	assert.NoError(t, err)
	second, err := service.RevertVersion(cfg.ID, 0, userCaller("user-1"))
	assert.NoError(t, err)

	assert.Equal(t, first.CurrentVersion, second.CurrentVersion)
	assert.Equal(t, first.Versions, second.Versions)
}

func TestRevertVersion_IndexOutOfRange(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	_, err = service.RevertVersion(cfg.ID, 5, userCaller("user-1"))

	assert.ErrorIs(t, err, models.ErrInvalidVersionIndex)

	stored, err := service.GetConfiguration(cfg.ID, userCaller("user-1"))
	assert.NoError(t, err)
	assert.Equal(t, cfg.CurrentVersion, stored.CurrentVersion, "A failed revert changes nothing")
}

// ============================================================================
// TEST SUITE 3: ACCESS AND SHARING
// ============================================================================

func TestGetConfiguration_PrivateHiddenFromOthers(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	_, err = service.GetConfiguration(cfg.ID, userCaller("user-2"))
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = service.GetConfiguration(cfg.ID, anonymousCaller())
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	got, err := service.GetConfiguration(cfg.ID, adminCaller())
	assert.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID)
}

func TestGetConfiguration_PublicReadableByAnyone(t *testing.T) {
	service, _ := newConfigurationService()
	req := createConfigRequest("Shared Lab")
	req.IsPublic = true
	cfg, err := service.CreateConfiguration(req, userCaller("user-1"))
	assert.NoError(t, err)

	got, err := service.GetConfiguration(cfg.ID, anonymousCaller())

	assert.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID)
}

func TestGetConfigurationByShareToken_BypassesOwnership(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	got, err := service.GetConfigurationByShareToken(cfg.ShareToken)

	assert.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID, "Holding the token is sufficient to read")
}

func TestListConfigurations_ScopedByRole(t *testing.T) {
	service, _ := newConfigurationService()
	_, err := service.CreateConfiguration(createConfigRequest("Lab A"), userCaller("user-1"))
	assert.NoError(t, err)
	_, err = service.CreateConfiguration(createConfigRequest("Lab B"), userCaller("user-2"))
	assert.NoError(t, err)

	mine, err := service.ListConfigurations(userCaller("user-1"))
	assert.NoError(t, err)
	assert.Len(t, mine, 1, "Users only see their own configurations")

	all, err := service.ListConfigurations(adminCaller())
	assert.NoError(t, err)
	assert.Len(t, all, 2, "Admins see everything")

	_, err = service.ListConfigurations(anonymousCaller())
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

// ============================================================================
// TEST SUITE 4: DELETE
// ============================================================================

func TestDeleteConfiguration_HardDelete(t *testing.T) {
	service, repo := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	err = service.DeleteConfiguration(cfg.ID, userCaller("user-1"))
	assert.NoError(t, err)

	assert.Empty(t, repo.configs)
	_, err = service.GetConfiguration(cfg.ID, userCaller("user-1"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteConfiguration_OnlyOwnerOrAdmin(t *testing.T) {
	service, _ := newConfigurationService()
	cfg, err := service.CreateConfiguration(createConfigRequest("Dev Lab"), userCaller("user-1"))
	assert.NoError(t, err)

	err = service.DeleteConfiguration(cfg.ID, userCaller("user-2"))
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	err = service.DeleteConfiguration(cfg.ID, adminCaller())
	assert.NoError(t, err)
}
