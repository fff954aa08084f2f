package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rabenherz112/compose-manager/internal/core/ordering"
	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

// =============================================================================
// Merge Engine
// =============================================================================

// Apply reconciles the desired document against the tree. Validation -
// including referential integrity against both the incoming document and the
// networks already in the tree - runs before any mutation, so a rejected
// merge leaves the tree exactly as it was. After validation nothing can
// fail: services and networks are inserted or updated field by field, and
// every block that actually changed is re-emitted in canonical key order.
func (t *Tree) Apply(d spec.Document) error {
	if err := d.Validate(t.HasNetwork); err != nil {
		return err
	}
	if err := t.checkCollisions(d); err != nil {
		return err
	}
	for _, n := range d.Networks {
		t.applyNetwork(n)
	}
	for _, s := range d.Services {
		t.applyService(s)
	}
	t.resort()
	return nil
}

// checkCollisions rejects incoming names that collide case-insensitively
// with a differently-cased existing entry.
func (t *Tree) checkCollisions(d spec.Document) error {
	collide := func(existing []string, name, field string) error {
		lower := strings.ToLower(name)
		for _, e := range existing {
			if e != name && strings.ToLower(e) == lower {
				return spec.NewValidationError(field, fmt.Sprintf("%q collides with existing %q", name, e), spec.ErrNameCollision)
			}
		}
		return nil
	}
	for _, s := range d.Services {
		if err := collide(t.ServiceNames(), s.Name, "services."+s.Name); err != nil {
			return err
		}
	}
	for _, n := range d.Networks {
		if err := collide(t.NetworkNames(), n.Name, "networks."+n.Name); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Service Merge
// =============================================================================

func (t *Tree) applyService(s spec.Service) {
	services := t.ensureSection("services")
	block := mapGet(services, s.Name)
	if block == nil {
		mapInsertSorted(services, s.Name, buildServiceNode(s))
		t.markDirty("services."+s.Name, mapGet(services, s.Name), ordering.ScopeService)
		return
	}

	changed := false
	// setField overwrites one key when the supplied value differs from what
	// is already there; keys the spec does not supply are never touched.
	setField := func(key string, desired *yaml.Node) {
		existing := mapGet(block, key)
		if existing != nil && nodeEqual(existing, desired) {
			return
		}
		mapSet(block, key, desired)
		changed = true
	}
	// setCollection is whole-collection replacement: an empty supplied
	// collection clears the key entirely.
	setCollection := func(key string, empty bool, desired *yaml.Node) {
		if empty {
			if mapDelete(block, key) {
				changed = true
			}
			return
		}
		setField(key, desired)
	}

	if s.ContainerName != nil {
		setField("container_name", strNode(*s.ContainerName))
	}
	if s.Image != nil {
		setField("image", strNode(*s.Image))
	}
	if s.Restart != nil {
		setField("restart", strNode(string(*s.Restart)))
	}
	if s.Networks != nil {
		setCollection("networks", len(s.Networks) == 0, strSequenceNode(s.Networks))
	}
	if s.Ports != nil {
		setCollection("ports", len(s.Ports) == 0, portsNode(s.Ports))
	}
	if s.Environment != nil {
		setCollection("environment", len(s.Environment) == 0, envNode(s.Environment))
	}
	if s.Volumes != nil {
		setCollection("volumes", len(s.Volumes) == 0, volumesNode(s.Volumes))
	}
	if s.DependsOn != nil {
		setCollection("depends_on", len(s.DependsOn) == 0, strSequenceNode(s.DependsOn))
	}

	if s.Labels != nil || s.AutoUpdate != nil {
		base := s.Labels
		if base == nil {
			// only the managed label changes; start from what is there
			base = readLabels(mapGet(block, "labels"))
		}
		desired := desiredLabels(base, s.AutoUpdate)
		if desired == nil {
			if mapDelete(block, "labels") {
				changed = true
			}
		} else {
			setField("labels", desired)
		}
	}

	if s.Resources != nil {
		t.applyResources(block, *s.Resources, &changed)
	}

	if changed {
		t.markDirty("services."+s.Name, block, ordering.ScopeService)
	}
}

// applyResources merges at the deploy.resources subtree level: the supplied
// limits replace deploy.resources wholesale while sibling deploy keys stay
// untouched. Zero limits clear the subtree.
func (t *Tree) applyResources(block *yaml.Node, r spec.ResourceLimits, changed *bool) {
	deploy := mapGet(block, "deploy")
	if r.IsZero() {
		if deploy == nil {
			return
		}
		if mapDelete(deploy, "resources") {
			*changed = true
		}
		if len(deploy.Content) == 0 {
			mapDelete(block, "deploy")
		}
		return
	}
	desired := resourcesNode(r)
	if deploy == nil {
		deploy = mappingNode()
		mapSet(deploy, "resources", desired)
		mapSet(block, "deploy", deploy)
		*changed = true
		return
	}
	existing := mapGet(deploy, "resources")
	if existing != nil && nodeEqual(existing, desired) {
		return
	}
	mapSet(deploy, "resources", desired)
	*changed = true
}

// =============================================================================
// Network Merge
// =============================================================================

func (t *Tree) applyNetwork(n spec.Network) {
	networks := t.ensureSection("networks")
	block := mapGet(networks, n.Name)
	if block == nil {
		mapInsertSorted(networks, n.Name, buildNetworkNode(n))
		t.markDirty("networks."+n.Name, mapGet(networks, n.Name), ordering.ScopeNetwork)
		return
	}

	changed := false
	setKey := func(key string, desired *yaml.Node) {
		existing := mapGet(block, key)
		if existing != nil && nodeEqual(existing, desired) {
			return
		}
		mapSet(block, key, desired)
		changed = true
	}
	clearKey := func(key string) {
		if mapDelete(block, key) {
			changed = true
		}
	}

	if n.External {
		// external networks carry no local options
		clearKey("driver")
		clearKey("internal")
		clearKey("enable_ipv6")
		setKey("external", boolNode(true))
	} else {
		clearKey("external")
		if n.Driver != "" {
			setKey("driver", strNode(string(n.Driver)))
		}
		if n.Internal {
			setKey("internal", boolNode(true))
		} else {
			clearKey("internal")
		}
		if n.EnableIPv6 {
			setKey("enable_ipv6", boolNode(true))
		} else {
			clearKey("enable_ipv6")
		}
	}

	if changed {
		t.markDirty("networks."+n.Name, block, ordering.ScopeNetwork)
	}
}

// =============================================================================
// Removal
// =============================================================================

// RemoveService deletes a service entry. Removal is always explicit: leaving
// a service out of an Apply never deletes it. Reports whether an entry was
// removed; removing an absent name is a no-op.
func (t *Tree) RemoveService(name string) bool {
	return mapDelete(t.section("services"), name)
}

// RemoveNetwork deletes a network entry, refusing while any service in the
// tree still references it (the document would stop resolving). Removing an
// absent name is a no-op.
func (t *Tree) RemoveNetwork(name string) (bool, error) {
	networks := t.section("networks")
	if mapGet(networks, name) == nil {
		return false, nil
	}
	if svc := t.referencingService(name); svc != "" {
		return false, spec.NewValidationError(
			"networks."+name,
			fmt.Sprintf("still referenced by service %q", svc),
			ErrNetworkInUse,
		)
	}
	return mapDelete(networks, name), nil
}

// referencingService returns the first service whose networks list mentions
// name, or "".
func (t *Tree) referencingService(name string) string {
	services := t.section("services")
	if services == nil {
		return ""
	}
	for i := 0; i+1 < len(services.Content); i += 2 {
		refs := mapGet(services.Content[i+1], "networks")
		if refs == nil {
			continue
		}
		switch refs.Kind {
		case yaml.SequenceNode:
			for _, item := range refs.Content {
				if item.Value == name {
					return services.Content[i].Value
				}
			}
		case yaml.MappingNode:
			if mapGet(refs, name) != nil {
				return services.Content[i].Value
			}
		}
	}
	return ""
}
