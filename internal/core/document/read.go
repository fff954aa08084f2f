package document

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

// =============================================================================
// Read Accessor
// =============================================================================

// Document reconstructs the spec model from the tree, for display. There is
// no mutation path through the returned value: applying it back to the tree
// it came from is a no-op. Keys the model does not recognize are skipped;
// recognized keys that fail to parse surface as a ValidationError.
func (t *Tree) Document() (spec.Document, error) {
	var d spec.Document

	services := t.section("services")
	for i := 0; services != nil && i+1 < len(services.Content); i += 2 {
		svc, err := readService(services.Content[i].Value, services.Content[i+1])
		if err != nil {
			return spec.Document{}, err
		}
		d.Services = append(d.Services, svc)
	}

	networks := t.section("networks")
	for i := 0; networks != nil && i+1 < len(networks.Content); i += 2 {
		d.Networks = append(d.Networks, readNetwork(networks.Content[i].Value, networks.Content[i+1]))
	}

	return d, nil
}

func readService(name string, block *yaml.Node) (spec.Service, error) {
	s := spec.Service{Name: name}
	if block == nil || block.Kind != yaml.MappingNode {
		return s, nil
	}
	field := "services." + name

	if v := mapGet(block, "container_name"); v != nil {
		cn := v.Value
		s.ContainerName = &cn
	}
	if v := mapGet(block, "image"); v != nil {
		img := v.Value
		s.Image = &img
	}
	if v := mapGet(block, "restart"); v != nil {
		policy := spec.RestartPolicy(v.Value)
		s.Restart = &policy
	}
	if v := mapGet(block, "networks"); v != nil {
		s.Networks = readStringList(v)
	}
	if v := mapGet(block, "ports"); v != nil {
		for i, raw := range readStringList(v) {
			p, err := spec.ParsePort(raw)
			if err != nil {
				return s, spec.NewValidationError(fmt.Sprintf("%s.ports[%d]", field, i), err.Error(), spec.ErrInvalidPort)
			}
			s.Ports = append(s.Ports, p)
		}
	}
	if v := mapGet(block, "environment"); v != nil {
		env, err := readEnv(v)
		if err != nil {
			return s, spec.NewValidationError(field+".environment", err.Error(), spec.ErrInvalidEnv)
		}
		s.Environment = env
	}
	if v := mapGet(block, "volumes"); v != nil {
		for i, raw := range readStringList(v) {
			m, err := spec.ParseVolume(raw)
			if err != nil {
				return s, spec.NewValidationError(fmt.Sprintf("%s.volumes[%d]", field, i), err.Error(), spec.ErrInvalidVolume)
			}
			s.Volumes = append(s.Volumes, m)
		}
	}
	if v := mapGet(block, "depends_on"); v != nil {
		s.DependsOn = readStringList(v)
	}

	labels := readLabels(mapGet(block, "labels"))
	for _, l := range labels {
		if l.Key == spec.WatchtowerLabel {
			switch l.Value {
			case "true":
				enabled := true
				s.AutoUpdate = &enabled
			case "false":
				enabled := false
				s.AutoUpdate = &enabled
			}
			continue
		}
		s.Labels = append(s.Labels, l)
	}

	if limits, err := readResources(mapGet(block, "deploy")); err != nil {
		return s, fmt.Errorf("%s.deploy.resources: %w", field, err)
	} else if limits != nil {
		s.Resources = limits
	}

	return s, nil
}

func readNetwork(name string, block *yaml.Node) spec.Network {
	n := spec.Network{Name: name}
	if block == nil || block.Kind != yaml.MappingNode {
		return n
	}
	if v := mapGet(block, "driver"); v != nil {
		n.Driver = spec.NetworkDriver(v.Value)
	}
	n.Internal = readBool(mapGet(block, "internal"))
	n.EnableIPv6 = readBool(mapGet(block, "enable_ipv6"))
	n.External = readBool(mapGet(block, "external"))
	return n
}

// =============================================================================
// Node Readers
// =============================================================================

// readStringList accepts both forms a compose file uses for lists of names:
// a plain sequence, or a mapping whose keys are the names.
func readStringList(node *yaml.Node) []string {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			out = append(out, item.Value)
		}
		return out
	case yaml.MappingNode:
		return mapKeys(node)
	}
	return nil
}

// readEnv accepts mapping form (VAR: value) and sequence form (VAR=value).
func readEnv(node *yaml.Node) ([]spec.EnvVar, error) {
	switch node.Kind {
	case yaml.MappingNode:
		env := make([]spec.EnvVar, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			env = append(env, spec.EnvVar{Name: node.Content[i].Value, Value: node.Content[i+1].Value})
		}
		return env, nil
	case yaml.SequenceNode:
		env := make([]spec.EnvVar, 0, len(node.Content))
		for _, item := range node.Content {
			e, err := spec.ParseEnv(item.Value)
			if err != nil {
				return nil, err
			}
			env = append(env, e)
		}
		return env, nil
	}
	return nil, nil
}

// readLabels accepts mapping form (key: value) and sequence form (key=value).
func readLabels(node *yaml.Node) []spec.Label {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.MappingNode:
		labels := make([]spec.Label, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			labels = append(labels, spec.Label{Key: node.Content[i].Value, Value: node.Content[i+1].Value})
		}
		return labels
	case yaml.SequenceNode:
		labels := make([]spec.Label, 0, len(node.Content))
		for _, item := range node.Content {
			key, value, _ := strings.Cut(item.Value, "=")
			labels = append(labels, spec.Label{Key: key, Value: value})
		}
		return labels
	}
	return nil
}

func readResources(deploy *yaml.Node) (*spec.ResourceLimits, error) {
	resources := mapGet(deploy, "resources")
	if resources == nil {
		return nil, nil
	}
	var r spec.ResourceLimits
	if limits := mapGet(resources, "limits"); limits != nil {
		var err error
		if r.CPULimit, r.MemoryLimit, err = readQuantities(limits); err != nil {
			return nil, err
		}
	}
	if reservations := mapGet(resources, "reservations"); reservations != nil {
		var err error
		if r.CPUReservation, r.MemoryReservation, err = readQuantities(reservations); err != nil {
			return nil, err
		}
	}
	if r.IsZero() {
		return nil, nil
	}
	return &r, nil
}

func readQuantities(node *yaml.Node) (cpus float64, memory int64, err error) {
	if v := mapGet(node, "cpus"); v != nil {
		if cpus, err = spec.ParseCPU(v.Value); err != nil {
			return 0, 0, err
		}
	}
	if v := mapGet(node, "memory"); v != nil {
		if memory, err = spec.ParseMemory(v.Value); err != nil {
			return 0, 0, err
		}
	}
	return cpus, memory, nil
}

func readBool(node *yaml.Node) bool {
	if node == nil {
		return false
	}
	b, err := strconv.ParseBool(node.Value)
	return err == nil && b
}
