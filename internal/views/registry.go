// internal/views/registry.go
package views

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kolnexus/pkg/tenants"
)

// Route is one dashboard data route: the gateway-facing path and the
// upstream path template it relays to. Upstream placeholders like
// {kolId} are bound from the gateway URL params.
type Route struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Upstream string `yaml:"upstream"`
	Group    string `yaml:"group"` // content | summary | detail
}

type manifest struct {
	Sets map[string][]Route `yaml:"sets"`
}

// Registry holds the parallel view sets, one per tenant kind. The kind
// is never derived here from the database name; callers classify through
// tenants.Classify so the router and the resolver cannot disagree.
type Registry struct {
	sets map[tenants.Kind][]Route
}

// NewRegistry builds the registry from the built-in manifest.
func NewRegistry() *Registry {
	r := &Registry{}
	if err := r.load([]byte(defaultManifest)); err != nil {
		// The built-in manifest is a compile-time constant; a parse
		// failure is a programming error.
		panic(err)
	}
	return r
}

// LoadFile replaces the view sets from a YAML manifest on disk.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.load(raw)
}

func (r *Registry) load(raw []byte) error {
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("parse view manifest: %w", err)
	}
	sets := map[tenants.Kind][]Route{}
	for name, routes := range m.Sets {
		var kind tenants.Kind
		switch name {
		case "standard":
			kind = tenants.KindStandard
		case "profile":
			kind = tenants.KindProfile
		default:
			return fmt.Errorf("view manifest: unknown set %q", name)
		}
		for _, rt := range routes {
			if rt.Path == "" || rt.Upstream == "" {
				return fmt.Errorf("view manifest: route %q in set %q missing path or upstream", rt.Name, name)
			}
		}
		sets[kind] = routes
	}
	r.sets = sets
	return nil
}

// Routes returns the set for a kind.
func (r *Registry) Routes(kind tenants.Kind) []Route {
	return r.sets[kind]
}

// Table merges the sets into one dispatch table keyed by gateway path.
// Paths shared between variants (e.g. /doctors, /data) collapse into one
// entry carrying both upstreams.
func (r *Registry) Table() map[string]map[tenants.Kind]Route {
	table := map[string]map[tenants.Kind]Route{}
	for kind, routes := range r.sets {
		for _, rt := range routes {
			if table[rt.Path] == nil {
				table[rt.Path] = map[tenants.Kind]Route{}
			}
			table[rt.Path][kind] = rt
		}
	}
	return table
}
