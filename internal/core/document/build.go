package document

import (
	"gopkg.in/yaml.v3"

	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

// =============================================================================
// Spec -> Node Builders
// =============================================================================
// Builders never fail: the document is validated before the merge mutates
// anything, so by the time a node is built the spec is known to be sound.

// buildServiceNode creates a brand-new service block. Keys land in canonical
// order by construction; the policy is the same one the re-sort applies to
// dirty blocks.
func buildServiceNode(s spec.Service) *yaml.Node {
	block := mappingNode()
	if s.ContainerName != nil {
		mapSet(block, "container_name", strNode(*s.ContainerName))
	}
	if s.Image != nil {
		mapSet(block, "image", strNode(*s.Image))
	}
	if s.Restart != nil {
		mapSet(block, "restart", strNode(string(*s.Restart)))
	}
	if s.Networks != nil {
		mapSet(block, "networks", strSequenceNode(s.Networks))
	}
	if s.Ports != nil {
		mapSet(block, "ports", portsNode(s.Ports))
	}
	if s.Environment != nil {
		mapSet(block, "environment", envNode(s.Environment))
	}
	if s.Volumes != nil {
		mapSet(block, "volumes", volumesNode(s.Volumes))
	}
	if s.DependsOn != nil {
		mapSet(block, "depends_on", strSequenceNode(s.DependsOn))
	}
	if labels := desiredLabels(s.Labels, s.AutoUpdate); labels != nil {
		mapSet(block, "labels", labels)
	}
	if s.Resources != nil && !s.Resources.IsZero() {
		deploy := mappingNode()
		mapSet(deploy, "resources", resourcesNode(*s.Resources))
		mapSet(block, "deploy", deploy)
	}
	return block
}

// buildNetworkNode creates a brand-new network block. External networks
// carry only the external marker.
func buildNetworkNode(n spec.Network) *yaml.Node {
	block := mappingNode()
	if n.External {
		mapSet(block, "external", boolNode(true))
		return block
	}
	if n.Driver != "" {
		mapSet(block, "driver", strNode(string(n.Driver)))
	}
	if n.Internal {
		mapSet(block, "internal", boolNode(true))
	}
	if n.EnableIPv6 {
		mapSet(block, "enable_ipv6", boolNode(true))
	}
	return block
}

func portsNode(ports []spec.PortMapping) *yaml.Node {
	items := make([]*yaml.Node, len(ports))
	for i, p := range ports {
		// quoted to keep the colon form a string
		items[i] = quotedNode(p.String())
	}
	return sequenceNode(items)
}

func envNode(env []spec.EnvVar) *yaml.Node {
	m := mappingNode()
	for _, e := range env {
		mapSet(m, e.Name, strNode(e.Value))
	}
	return m
}

func volumesNode(vols []spec.VolumeMount) *yaml.Node {
	items := make([]*yaml.Node, len(vols))
	for i, v := range vols {
		items[i] = strNode(v.String())
	}
	return sequenceNode(items)
}

func labelsNode(labels []spec.Label) *yaml.Node {
	m := mappingNode()
	for _, l := range labels {
		if l.Key == spec.WatchtowerLabel {
			// the managed label value is the literal string "true"/"false"
			mapSet(m, l.Key, quotedNode(l.Value))
			continue
		}
		mapSet(m, l.Key, strNode(l.Value))
	}
	return m
}

// desiredLabels combines a supplied label collection with the managed
// auto-update label. AutoUpdate true or false pins the watchtower label to
// the matching string; nil omits it. Returns nil when there is nothing to
// write.
func desiredLabels(labels []spec.Label, autoUpdate *bool) *yaml.Node {
	if labels == nil && autoUpdate == nil {
		return nil
	}
	merged := make([]spec.Label, 0, len(labels)+1)
	managed := false
	for _, l := range labels {
		if l.Key == spec.WatchtowerLabel && autoUpdate != nil {
			l.Value = watchtowerValue(*autoUpdate)
			managed = true
		}
		merged = append(merged, l)
	}
	if autoUpdate != nil && !managed {
		merged = append(merged, spec.Label{Key: spec.WatchtowerLabel, Value: watchtowerValue(*autoUpdate)})
	}
	if len(merged) == 0 {
		return nil
	}
	return labelsNode(merged)
}

func watchtowerValue(enabled bool) string {
	if enabled {
		return "true"
	}
	return "false"
}

func resourcesNode(r spec.ResourceLimits) *yaml.Node {
	resources := mappingNode()
	if r.CPULimit != 0 || r.MemoryLimit != 0 {
		limits := mappingNode()
		if r.CPULimit != 0 {
			mapSet(limits, "cpus", quotedNode(spec.FormatCPU(r.CPULimit)))
		}
		if r.MemoryLimit != 0 {
			mapSet(limits, "memory", strNode(spec.FormatMemory(r.MemoryLimit)))
		}
		mapSet(resources, "limits", limits)
	}
	if r.CPUReservation != 0 || r.MemoryReservation != 0 {
		reservations := mappingNode()
		if r.CPUReservation != 0 {
			mapSet(reservations, "cpus", quotedNode(spec.FormatCPU(r.CPUReservation)))
		}
		if r.MemoryReservation != 0 {
			mapSet(reservations, "memory", strNode(spec.FormatMemory(r.MemoryReservation)))
		}
		mapSet(resources, "reservations", reservations)
	}
	return resources
}
