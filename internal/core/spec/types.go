package spec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

// WatchtowerLabel is the managed label controlled by Service.AutoUpdate.
// Its value is always the literal string "true" or "false".
const WatchtowerLabel = "com.centurylinklabs.watchtower.enable"

// =============================================================================
// Document - Main Input Type
// =============================================================================

// Document is the desired state handed to the merge engine: an ordered set
// of services and an ordered set of networks. A Document is built by a
// collaborator (CLI, wizard), consumed once, and discarded.
type Document struct {
	Services []Service
	Networks []Network
}

// =============================================================================
// Service Types
// =============================================================================

// Service describes one service entry. Name is the mapping key; every other
// field is optional. Pointer and nil-slice/nil-map fields distinguish
// "not supplied" from "supplied with a value": the merge engine only touches
// keys whose field is supplied.
type Service struct {
	Name          string
	ContainerName *string
	Image         *string        // repository[:tag]
	Restart       *RestartPolicy
	Networks      []string      // references to Network entries, order-preserving
	Ports         []PortMapping // order-preserving, duplicates rejected
	Environment   []EnvVar      // mapping semantics: unique names, stable order
	Volumes       []VolumeMount
	DependsOn     []string
	Labels        []Label // unique keys, stable order
	Resources     *ResourceLimits
	AutoUpdate    *bool // true/false writes the watchtower label, nil omits it
}

// RestartPolicy represents the restart policy.
type RestartPolicy string

const (
	RestartNo            RestartPolicy = "no"
	RestartAlways        RestartPolicy = "always"
	RestartOnFailure     RestartPolicy = "on-failure"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
)

// Valid reports whether the policy is one of the recognized values.
func (p RestartPolicy) Valid() bool {
	switch p {
	case RestartNo, RestartAlways, RestartOnFailure, RestartUnlessStopped:
		return true
	}
	return false
}

// PortMapping represents a published port in host:container[/proto] form.
type PortMapping struct {
	Host      uint16
	Container uint16
	Protocol  string // "" (tcp implied), "tcp" or "udp"
}

// ParsePort parses "host:container" or "host:container/proto".
func ParsePort(s string) (PortMapping, error) {
	var p PortMapping
	rest := s
	if mapping, proto, ok := strings.Cut(s, "/"); ok {
		if proto != "tcp" && proto != "udp" {
			return p, NewValidationError("", fmt.Sprintf("unknown protocol %q in %q", proto, s), ErrInvalidPort)
		}
		p.Protocol = proto
		rest = mapping
	}
	host, container, ok := strings.Cut(rest, ":")
	if !ok {
		return p, NewValidationError("", fmt.Sprintf("%q is not host:container[/proto]", s), ErrInvalidPort)
	}
	h, err := parsePortNumber(host)
	if err != nil {
		return p, NewValidationError("", fmt.Sprintf("host port in %q: %v", s, err), ErrInvalidPort)
	}
	c, err := parsePortNumber(container)
	if err != nil {
		return p, NewValidationError("", fmt.Sprintf("container port in %q: %v", s, err), ErrInvalidPort)
	}
	p.Host, p.Container = h, c
	return p, nil
}

func parsePortNumber(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not a port number", s)
	}
	if n == 0 {
		return 0, fmt.Errorf("port cannot be 0")
	}
	return uint16(n), nil
}

// String renders the mapping back into host:container[/proto] form.
func (p PortMapping) String() string {
	s := strconv.Itoa(int(p.Host)) + ":" + strconv.Itoa(int(p.Container))
	if p.Protocol != "" && p.Protocol != "tcp" {
		s += "/" + p.Protocol
	}
	return s
}

// VolumeMount represents a bind mount in host:container[:mode] form.
type VolumeMount struct {
	Source string // host path or named volume
	Target string // container path
	Mode   string // "" , "ro" or "rw"
}

// ParseVolume parses "host:container" or "host:container:mode".
func ParseVolume(s string) (VolumeMount, error) {
	var v VolumeMount
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		v.Source, v.Target = parts[0], parts[1]
	case 3:
		v.Source, v.Target, v.Mode = parts[0], parts[1], parts[2]
		if v.Mode != "ro" && v.Mode != "rw" {
			return VolumeMount{}, NewValidationError("", fmt.Sprintf("unknown mode %q in %q", v.Mode, s), ErrInvalidVolume)
		}
	default:
		return VolumeMount{}, NewValidationError("", fmt.Sprintf("%q is not host:container[:mode]", s), ErrInvalidVolume)
	}
	if v.Source == "" || v.Target == "" {
		return VolumeMount{}, NewValidationError("", fmt.Sprintf("%q has an empty path", s), ErrInvalidVolume)
	}
	return v, nil
}

// String renders the mount back into host:container[:mode] form.
func (v VolumeMount) String() string {
	s := v.Source + ":" + v.Target
	if v.Mode != "" {
		s += ":" + v.Mode
	}
	return s
}

// EnvVar is one environment variable. The collection behaves as a mapping
// with a stable order: names are unique within a service.
type EnvVar struct {
	Name  string
	Value string
}

// ParseEnv parses a KEY=VALUE assignment.
func ParseEnv(s string) (EnvVar, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return EnvVar{}, NewValidationError("", fmt.Sprintf("%q is not KEY=VALUE", s), ErrInvalidEnv)
	}
	return EnvVar{Name: name, Value: value}, nil
}

// Label is one label entry; keys are unique within a service.
type Label struct {
	Key   string
	Value string
}

// =============================================================================
// Network Types
// =============================================================================

// Network describes one network entry. An external network carries no
// driver/internal/ipv6 options: it exists outside the document.
type Network struct {
	Name       string
	Driver     NetworkDriver
	Internal   bool
	EnableIPv6 bool
	External   bool
}

// NetworkDriver represents the network driver.
type NetworkDriver string

const (
	DriverBridge  NetworkDriver = "bridge"
	DriverOverlay NetworkDriver = "overlay"
	DriverHost    NetworkDriver = "host"
	DriverNone    NetworkDriver = "none"
	DriverMacvlan NetworkDriver = "macvlan"
)

// Valid reports whether the driver is one of the recognized values.
func (d NetworkDriver) Valid() bool {
	switch d {
	case DriverBridge, DriverOverlay, DriverHost, DriverNone, DriverMacvlan:
		return true
	}
	return false
}

// =============================================================================
// Resource Types
// =============================================================================

// ResourceLimits holds concrete deploy.resources quantities. CPU values are
// decimal core counts, memory values are byte counts. Zero means unset: a
// zero quantity is never a meaningful limit.
type ResourceLimits struct {
	CPULimit          float64
	MemoryLimit       int64 // Bytes
	CPUReservation    float64
	MemoryReservation int64 // Bytes
}

// IsZero reports whether no quantity is set.
func (r ResourceLimits) IsZero() bool {
	return r.CPULimit == 0 && r.MemoryLimit == 0 &&
		r.CPUReservation == 0 && r.MemoryReservation == 0
}

// ParseMemory converts a human memory quantity ("64M", "1GiB") to bytes.
func ParseMemory(s string) (int64, error) {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, NewValidationError("", fmt.Sprintf("%q is not a memory quantity", s), ErrInvalidMemory)
	}
	if n <= 0 {
		return 0, NewValidationError("", fmt.Sprintf("memory quantity %q must be positive", s), ErrInvalidMemory)
	}
	return n, nil
}

// FormatMemory renders a byte count with a unit suffix ("64MiB").
func FormatMemory(bytes int64) string {
	return units.BytesSize(float64(bytes))
}

// ParseCPU converts a decimal core count string ("0.5") to a float.
func ParseCPU(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, NewValidationError("", fmt.Sprintf("%q is not a CPU count", s), ErrInvalidCPU)
	}
	return f, nil
}

// FormatCPU renders a core count the way compose files write it ("0.5").
func FormatCPU(cores float64) string {
	return strconv.FormatFloat(cores, 'f', -1, 64)
}
