package collab

import (
	"context"

	"github.com/dirac-wms/jobsched/pkg/config"
)

// StaticOperations implements Operations against the YAML-configured
// Config.Operations map, mirroring the source's Operations CS helper.
type StaticOperations struct {
	values map[string][]string
}

// NewStaticOperations builds an Operations collaborator from loaded config.
func NewStaticOperations(cfg *config.Config) *StaticOperations {
	return &StaticOperations{values: cfg.Operations}
}

// GetValue returns the configured value list for path, or def if unset.
func (o *StaticOperations) GetValue(_ context.Context, path string, def []string) []string {
	if v, ok := o.values[path]; ok {
		return v
	}
	return def
}

// StaticRegistry implements Registry against the YAML-configured
// Config.GroupProperties map.
type StaticRegistry struct {
	groups map[string][]string
}

// NewStaticRegistry builds a Registry collaborator from loaded config.
func NewStaticRegistry(cfg *config.Config) *StaticRegistry {
	return &StaticRegistry{groups: cfg.GroupProperties}
}

// GetPropertiesForGroup returns the property set granted to group.
func (r *StaticRegistry) GetPropertiesForGroup(_ context.Context, group string) (map[string]struct{}, error) {
	props := r.groups[group]
	set := make(map[string]struct{}, len(props))
	for _, p := range props {
		set[p] = struct{}{}
	}
	return set, nil
}
