package spec

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Validation Functions
// =============================================================================

// Validate checks the shape of a single service: a non-empty name, a
// recognized restart policy, no duplicate ports, environment names, label
// keys or network references, and non-negative resource quantities.
func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationError("services", "service name must not be empty", ErrEmptyName)
	}
	field := "services." + s.Name

	if s.Restart != nil && !s.Restart.Valid() {
		return NewValidationError(field+".restart", fmt.Sprintf("unknown restart policy %q", *s.Restart), ErrInvalidRestartPolicy)
	}

	seenPorts := make(map[PortMapping]bool)
	for i, p := range s.Ports {
		if seenPorts[p] {
			return NewValidationError(field+".ports["+strconv.Itoa(i)+"]", fmt.Sprintf("port %s appears twice", p), ErrDuplicatePort)
		}
		seenPorts[p] = true
	}

	seenEnv := make(map[string]bool)
	for _, e := range s.Environment {
		if e.Name == "" {
			return NewValidationError(field+".environment", "variable name must not be empty", ErrInvalidEnv)
		}
		if seenEnv[e.Name] {
			return NewValidationError(field+".environment", fmt.Sprintf("variable %s appears twice", e.Name), ErrDuplicateEnv)
		}
		seenEnv[e.Name] = true
	}

	seenLabels := make(map[string]bool)
	for _, l := range s.Labels {
		if seenLabels[l.Key] {
			return NewValidationError(field+".labels", fmt.Sprintf("label %s appears twice", l.Key), ErrDuplicateLabel)
		}
		seenLabels[l.Key] = true
	}

	seenNets := make(map[string]bool)
	for _, n := range s.Networks {
		if seenNets[n] {
			return NewValidationError(field+".networks", fmt.Sprintf("network %s appears twice", n), ErrDuplicateNetwork)
		}
		seenNets[n] = true
	}

	if s.Resources != nil {
		if s.Resources.CPULimit < 0 || s.Resources.CPUReservation < 0 {
			return NewValidationError(field+".deploy.resources", "CPU quantity cannot be negative", ErrInvalidCPU)
		}
		if s.Resources.MemoryLimit < 0 || s.Resources.MemoryReservation < 0 {
			return NewValidationError(field+".deploy.resources", "memory quantity cannot be negative", ErrInvalidMemory)
		}
	}

	return nil
}

// Validate checks the shape of a single network. External networks must not
// carry driver, internal or ipv6 options.
func (n Network) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return NewValidationError("networks", "network name must not be empty", ErrEmptyName)
	}
	field := "networks." + n.Name

	if n.External {
		if n.Driver != "" || n.Internal || n.EnableIPv6 {
			return NewValidationError(field, "external networks carry no local options", ErrExternalWithOptions)
		}
		return nil
	}
	if n.Driver != "" && !n.Driver.Valid() {
		return NewValidationError(field+".driver", fmt.Sprintf("unknown driver %q", n.Driver), ErrInvalidDriver)
	}
	return nil
}

// Validate checks the whole document: every member is valid, service and
// network names are unique (case-insensitively), and every network a service
// references resolves either to a Network in the document or to a name for
// which known reports true (networks already present in the target tree).
func (d Document) Validate(known func(name string) bool) error {
	names := make(map[string]bool)
	for _, s := range d.Services {
		if err := s.Validate(); err != nil {
			return err
		}
		lower := strings.ToLower(s.Name)
		if names[lower] {
			return NewValidationError("services."+s.Name, "service defined twice", ErrDuplicateService)
		}
		names[lower] = true
	}

	defined := make(map[string]bool)
	netNames := make(map[string]bool)
	for _, n := range d.Networks {
		if err := n.Validate(); err != nil {
			return err
		}
		lower := strings.ToLower(n.Name)
		if netNames[lower] {
			return NewValidationError("networks."+n.Name, "network defined twice", ErrDuplicateNetworkName)
		}
		netNames[lower] = true
		defined[n.Name] = true
	}

	for _, s := range d.Services {
		for _, ref := range s.Networks {
			if defined[ref] {
				continue
			}
			if known != nil && known(ref) {
				continue
			}
			return NewValidationError(
				"services."+s.Name+".networks",
				fmt.Sprintf("network %q is not defined in the document or the existing file", ref),
				ErrUnknownNetwork,
			)
		}
	}

	return nil
}
