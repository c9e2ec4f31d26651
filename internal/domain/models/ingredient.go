package models

// FunctionalRole classifies what an ingredient does in a brew
type FunctionalRole string

const (
	RoleSurfactant   FunctionalRole = "surfactant"
	RolePrebiotic    FunctionalRole = "prebiotic"
	RoleInoculant    FunctionalRole = "inoculant"
	RoleBiostimulant FunctionalRole = "biostimulant"
	RoleElicitor     FunctionalRole = "elicitor"
)

// Valid reports whether r is one of the known roles
func (r FunctionalRole) Valid() bool {
	switch r {
	case RoleSurfactant, RolePrebiotic, RoleInoculant, RoleBiostimulant, RoleElicitor:
		return true
	}
	return false
}

type AvailabilityStatus string

const (
	AvailabilityCommon  AvailabilityStatus = "common"
	AvailabilityLimited AvailabilityStatus = "limited"
	AvailabilityRare    AvailabilityStatus = "rare"
)

// RegionGlobal is the region used when none is given
const RegionGlobal = "GLOBAL"

// DosageRange is the per-liter dosing envelope of an ingredient.
// Min <= Default <= Max holds whenever Default is set.
type DosageRange struct {
	Unit    string   `json:"unit"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Default *float64 `json:"default,omitempty"`
}

// DefaultOrMin returns the suggested dose, falling back to the minimum
func (d DosageRange) DefaultOrMin() float64 {
	if d.Default != nil {
		return *d.Default
	}
	return d.Min
}

// Clamp snaps v into [Min, Max]
func (d DosageRange) Clamp(v float64) float64 {
	if v > d.Max {
		return d.Max
	}
	if v < d.Min {
		return d.Min
	}
	return v
}

type Availability struct {
	Regions []string           `json:"regions"`
	Status  AvailabilityStatus `json:"status"`
}

// Ingredient is an immutable catalog record
type Ingredient struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	FunctionalRoles []FunctionalRole `json:"functional_roles"`
	PotencyScore    float64          `json:"potency_score"`
	DosageRange     DosageRange      `json:"dosage_range"`
	Notes           string           `json:"notes,omitempty"`
	Citations       []string         `json:"citations"`
	Availability    Availability     `json:"availability"`
	Substitutes     []string         `json:"substitutes"`
}

// HasRole reports whether the ingredient is tagged with role
func (i *Ingredient) HasRole(role FunctionalRole) bool {
	for _, r := range i.FunctionalRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ListedIn reports whether region appears in the availability regions
func (i *Ingredient) ListedIn(region string) bool {
	for _, r := range i.Availability.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// CatalogEntry is the short form returned by catalog listings
type CatalogEntry struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Roles []FunctionalRole `json:"roles"`
}

// SubstitutionContext narrows a substitution request
type SubstitutionContext struct {
	Region      string         `json:"region,omitempty"`
	OnHand      []string       `json:"on_hand,omitempty"`
	DesiredRole FunctionalRole `json:"desired_role,omitempty"`
}

// Suggestion is one ranked alternative. Dosage is empty when the
// suggested ingredient cannot be resolved.
type Suggestion struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Dosage string `json:"dosage,omitempty"`
}
