package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ResourceRequest is one line item of a lab composition: a per-unit resource
// footprint multiplied by quantity.
type ResourceRequest struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	VCPU     float64 `json:"vCPU"`
	Memory   float64 `json:"memory"`
	Storage  float64 `json:"storage"`
}

// Catalog of option names accepted for persisted configurations. Ad-hoc
// calculations are not restricted to these.
var ResourceRequestNames = []string{
	"Sandbox",
	"Developer Machines",
	"Pipeline Combined",
	"Custom System",
}

func (r ResourceRequest) Validate() error {
	nameOK := false
	for _, n := range ResourceRequestNames {
		if r.Name == n {
			nameOK = true
			break
		}
	}
	if !nameOK {
		return fmt.Errorf("%w: unknown resource option name %q", ErrInvalidInput, r.Name)
	}
	if r.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if r.VCPU < 0 || r.Memory < 0 || r.Storage < 0 {
		return fmt.Errorf("%w: resource metrics must not be negative", ErrInvalidInput)
	}
	return nil
}

type ResourceTotals struct {
	TotalVCPU    float64 `json:"totalVCPU"`
	TotalMemory  float64 `json:"totalMemory"`
	TotalStorage float64 `json:"totalStorage"`
}

type CostPeriod struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

// ComparisonCost is an external cloud provider cost alongside the savings
// against the surcharged internal cost. Savings is nil when the provider
// monthly cost is zero.
type ComparisonCost struct {
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
	Savings *int    `json:"savings"`
}

// CostBreakdown holds the four cost perspectives. WWT is a pointer so the
// visibility filter can drop it entirely for unauthenticated callers.
type CostBreakdown struct {
	WWT   *CostPeriod    `json:"wwt,omitempty"`
	DLA   CostPeriod     `json:"dla"`
	Azure ComparisonCost `json:"azure"`
	AWS   ComparisonCost `json:"aws"`
}

// CalculationResult is what the cost calculation engine returns.
type CalculationResult struct {
	Totals          ResourceTotals  `json:"totals"`
	EnvironmentSize EnvironmentSize `json:"environmentSize"`
	Costs           CostBreakdown   `json:"costs"`
}

// ConfigurationVersion is an immutable snapshot of a resource-request list
// plus its computed breakdown.
type ConfigurationVersion struct {
	ResourceRequests []ResourceRequest `json:"resourceRequests"`
	Totals           ResourceTotals    `json:"totals"`
	EnvironmentSize  EnvironmentSize   `json:"environmentSize"`
	Costs            CostBreakdown     `json:"costs"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	CreatedBy        string            `json:"createdBy"`
}

type VersionList []ConfigurationVersion

type Configuration struct {
	ID             string               `json:"id" db:"id"`
	Name           string               `json:"name" db:"name"`
	Description    string               `json:"description" db:"description"`
	OwnerID        string               `json:"owner" db:"owner_id"`
	IsPublic       bool                 `json:"isPublic" db:"is_public"`
	ShareToken     string               `json:"shareToken" db:"share_token"`
	CurrentVersion ConfigurationVersion `json:"currentVersion" db:"current_version"`
	Versions       VersionList          `json:"versions" db:"versions"`
	CreatedAt      time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" db:"updated_at"`
}

func (c *Configuration) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: please provide a name for this configuration", ErrInvalidInput)
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: name cannot be more than 100 characters", ErrInvalidInput)
	}
	if len(c.Description) > 500 {
		return fmt.Errorf("%w: description cannot be more than 500 characters", ErrInvalidInput)
	}
	return nil
}

// AddVersion appends a snapshot and makes it current.
func (c *Configuration) AddVersion(version ConfigurationVersion, userID string) {
	version.CreatedAt = time.Now()
	version.CreatedBy = userID

	c.Versions = append(c.Versions, version)
	c.CurrentVersion = version
	c.UpdatedAt = time.Now()
}

// RevertToVersion repoints the current version at a stored snapshot. The
// versions list itself is unmodified: no new entry is appended for a revert.
func (c *Configuration) RevertToVersion(index int) error {
	if index < 0 || index >= len(c.Versions) {
		return fmt.Errorf("%w: %d", ErrInvalidVersionIndex, index)
	}

	c.CurrentVersion = c.Versions[index]
	c.UpdatedAt = time.Now()
	return nil
}

// CanBeReadBy reports whether a caller may read this configuration.
func (c *Configuration) CanBeReadBy(caller CallerIdentity) bool {
	if c.IsPublic {
		return true
	}
	return c.CanBeModifiedBy(caller)
}

// CanBeModifiedBy reports whether a caller may mutate or delete this
// configuration: the owner, or an admin override.
func (c *Configuration) CanBeModifiedBy(caller CallerIdentity) bool {
	if !caller.Authenticated {
		return false
	}
	return c.OwnerID == caller.UserID || caller.Role == RoleAdmin
}

func (v ConfigurationVersion) Value() (driver.Value, error) { return jsonbValue(v) }
func (v *ConfigurationVersion) Scan(value any) error        { return jsonbScan(v, value) }

func (v VersionList) Value() (driver.Value, error) { return jsonbValue(v) }
func (v *VersionList) Scan(value any) error        { return jsonbScan(v, value) }
