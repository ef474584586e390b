package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
	ctrl "sigs.k8s.io/controller-runtime"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
	"github.com/packmate/mission-packing-optimizer/internal/logging"
)

// ContainerSpec is one named container definition in the catalog.
type ContainerSpec struct {
	// MaxWeightGrams is the loaded weight limit of a single instance.
	MaxWeightGrams float64 `yaml:"maxWeightGrams" json:"maxWeightGrams"`

	// TareWeightGrams is the empty weight of a single instance.
	TareWeightGrams float64 `yaml:"tareWeightGrams,omitempty" json:"tareWeightGrams,omitempty"`

	// UnitCount is the default number of instances when the caller does not
	// override it.
	UnitCount int `yaml:"unitCount,omitempty" json:"unitCount,omitempty"`
}

// Validate checks for invalid catalog values.
func (s *ContainerSpec) Validate() error {
	if s.MaxWeightGrams <= 0 {
		return fmt.Errorf("maxWeightGrams must be > 0, got %.1f", s.MaxWeightGrams)
	}
	if s.TareWeightGrams < 0 {
		return fmt.Errorf("tareWeightGrams must be >= 0, got %.1f", s.TareWeightGrams)
	}
	if s.MaxWeightGrams-s.TareWeightGrams <= 0 {
		return fmt.Errorf("usable capacity must be > 0 (max %.1f, tare %.1f)", s.MaxWeightGrams, s.TareWeightGrams)
	}
	if s.UnitCount < 0 {
		return fmt.Errorf("unitCount must be >= 0, got %d", s.UnitCount)
	}
	return nil
}

// MissionProfile is a reusable named constraint set a caller can apply to a
// request that carries no constraints of its own.
type MissionProfile struct {
	CategoryMinimums     map[string]int `yaml:"categoryMinimums,omitempty" json:"categoryMinimums,omitempty"`
	RequiredTags         []string       `yaml:"requiredTags,omitempty" json:"requiredTags,omitempty"`
	GlobalWeightCapGrams float64        `yaml:"globalWeightCapGrams,omitempty" json:"globalWeightCapGrams,omitempty"`
}

// Constraints converts the profile into the wire constraint shape.
func (p *MissionProfile) Constraints() apiv1.MissionConstraints {
	return apiv1.MissionConstraints{
		CategoryMinimums:     p.CategoryMinimums,
		RequiredTags:         p.RequiredTags,
		GlobalWeightCapGrams: p.GlobalWeightCapGrams,
	}
}

// Catalog holds the named container definitions and mission profiles the
// caller's environment provides.
type Catalog struct {
	Containers map[string]ContainerSpec  `yaml:"containers,omitempty" json:"containers,omitempty"`
	Profiles   map[string]MissionProfile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// ParseCatalog parses catalog data in the data-map format used for mounted
// configuration: each key holds one YAML document describing either a
// container (with maxWeightGrams) or a mission profile. Invalid entries are
// skipped and logged, never fatal.
func ParseCatalog(data map[string]string) *Catalog {
	out := &Catalog{
		Containers: make(map[string]ContainerSpec),
		Profiles:   make(map[string]MissionProfile),
	}
	if data == nil {
		return out
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		doc := data[key]

		var spec ContainerSpec
		if err := yaml.Unmarshal([]byte(doc), &spec); err == nil && spec.MaxWeightGrams != 0 {
			if err := spec.Validate(); err != nil {
				ctrl.Log.Info("Invalid container catalog entry, skipping",
					"key", key, "error", err)
				continue
			}
			out.Containers[key] = spec
			continue
		}

		var profile MissionProfile
		if err := yaml.Unmarshal([]byte(doc), &profile); err != nil {
			ctrl.Log.Info("Failed to parse catalog entry, skipping",
				"key", key, "error", err)
			continue
		}
		out.Profiles[key] = profile
	}

	ctrl.Log.V(logging.DEBUG).Info("Parsed catalog",
		"containerCount", len(out.Containers), "profileCount", len(out.Profiles))
	return out
}

// LoadCatalog reads a catalog file laid out as a map of entry name to YAML
// document, the same shape ParseCatalog accepts.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	var data map[string]string
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return ParseCatalog(data), nil
}

// ResolveContainer fills a request container from its referenced catalog
// entry. Caller-provided unit counts win over catalog defaults.
func (c *Catalog) ResolveContainer(in apiv1.Container) (apiv1.Container, error) {
	if in.CatalogRef == "" {
		return in, nil
	}
	spec, ok := c.Containers[in.CatalogRef]
	if !ok {
		return in, fmt.Errorf("unknown catalog container %q", in.CatalogRef)
	}
	out := in
	out.MaxWeightGrams = spec.MaxWeightGrams
	out.TareWeightGrams = spec.TareWeightGrams
	if out.UnitCount == 0 {
		out.UnitCount = spec.UnitCount
	}
	return out, nil
}

// Profile returns the named mission profile.
func (c *Catalog) Profile(name string) (MissionProfile, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}
