package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func versionWithNotes(notes string) ConfigurationVersion {
	return ConfigurationVersion{
		ResourceRequests: []ResourceRequest{{Name: "Sandbox", Quantity: 1, VCPU: 12, Memory: 64, Storage: 1024}},
		Notes:            notes,
	}
}

func TestConfigurationValidate(t *testing.T) {
	cfg := Configuration{Name: "Dev Lab", Description: "dev"}
	assert.NoError(t, cfg.Validate())

	cfg.Name = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)

	cfg.Name = strings.Repeat("x", 101)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)

	cfg.Name = "Dev Lab"
	cfg.Description = strings.Repeat("x", 501)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
}

func TestAddVersionBecomesCurrent(t *testing.T) {
	var cfg Configuration

	cfg.AddVersion(versionWithNotes("first"), "user-1")
	cfg.AddVersion(versionWithNotes("second"), "user-1")

	assert.Len(t, cfg.Versions, 2)
	assert.Equal(t, "second", cfg.CurrentVersion.Notes)
	assert.Equal(t, "user-1", cfg.CurrentVersion.CreatedBy)
	assert.False(t, cfg.CurrentVersion.CreatedAt.IsZero())
}

func TestRevertToVersion(t *testing.T) {
	var cfg Configuration
	cfg.AddVersion(versionWithNotes("first"), "user-1")
	cfg.AddVersion(versionWithNotes("second"), "user-1")

	err := cfg.RevertToVersion(0)

	assert.NoError(t, err)
	assert.Equal(t, "first", cfg.CurrentVersion.Notes)
	assert.Len(t, cfg.Versions, 2, "Reverting repoints, it does not rewrite history")

	assert.ErrorIs(t, cfg.RevertToVersion(2), ErrInvalidVersionIndex)
	assert.ErrorIs(t, cfg.RevertToVersion(-1), ErrInvalidVersionIndex)
	assert.Equal(t, "first", cfg.CurrentVersion.Notes, "A failed revert leaves the current version alone")
}

func TestVersionListRoundTripsThroughJSONB(t *testing.T) {
	list := VersionList{versionWithNotes("first"), versionWithNotes("second")}

	value, err := list.Value()
	assert.NoError(t, err)

	var decoded VersionList
	err = decoded.Scan(value)
	assert.NoError(t, err)
	assert.Equal(t, list, decoded)
}

func TestPublicViewRedactsLabManagerFee(t *testing.T) {
	rules := DefaultPricingRules()

	public := rules.PublicView()

	assert.Equal(t, rules.Fees.DLAFee, public.Fees.DLAFee)
	assert.Equal(t, rules.MonthlyCost, public.MonthlyCost)
	assert.Equal(t, rules.CloudCosts, public.CloudCosts)
}
