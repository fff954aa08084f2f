package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rabenherz112/compose-manager/internal/core/compose"
	"github.com/rabenherz112/compose-manager/internal/core/preset"
	"github.com/rabenherz112/compose-manager/internal/core/spec"
	"github.com/rabenherz112/compose-manager/internal/shell/store"
)

// composeFileName is the per-application compose file the tool manages.
const composeFileName = "compose.yml"

// app carries the state cobra commands share: settings, the preset table
// and the logger, all loaded once in the root PersistentPreRunE.
type app struct {
	root *cobra.Command

	configPath string
	infraFile  string // --infra-file override, empty means use config

	cfg     *Config
	presets preset.Table
	log     *slog.Logger
}

func newApp() *app {
	a := &app{}
	a.root = &cobra.Command{
		Use:     "compose-manager",
		Short:   "Generate and maintain docker-compose files with stable ordering",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Long: `compose-manager builds and updates docker-compose YAML documents from
service descriptions. Re-running it against an existing file updates only
the targeted entries: comments, manual keys and the order of everything
else survive.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the settings file")
	a.root.PersistentFlags().StringVarP(&a.infraFile, "infra-file", "F", "", "path to the shared infra compose file defining networks")

	a.root.AddCommand(a.newInitCmd())
	a.root.AddCommand(a.newBuildCmd())
	a.root.AddCommand(a.newListCmd())
	a.root.AddCommand(a.newRemoveCmd())
	a.root.AddCommand(a.newPresetsCmd())
	return a
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	table, err := cfg.PresetTable()
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}
	if a.infraFile == "" {
		a.infraFile = cfg.InfraFile
	}
	a.cfg = cfg
	a.presets = table
	a.log = SetupLogger(cfg)
	return nil
}

// =============================================================================
// init
// =============================================================================

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the shared infra compose file skeleton",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := store.LoadOrEmpty(a.infraFile)
			if err != nil {
				return err
			}
			tree.EnsureSkeleton()
			if err := store.Write(tree, a.infraFile); err != nil {
				return err
			}
			a.log.Info("initialized infrastructure file", "path", a.infraFile)
			return nil
		},
	}
}

// =============================================================================
// build
// =============================================================================

type buildFlags struct {
	app         string
	services    []string
	restart     string
	networks    []string
	ports       []string
	env         []string
	volumes     []string
	labels      []string
	dependsOn   []string
	presetName  string
	cpus        string
	memory      string
	reserveCPUs string
	reserveMem  string
	autoUpdate  bool
}

func (a *app) newBuildCmd() *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Merge services built from flags into <app>/compose.yml",
		Long: `build constructs one service spec per --service entry and merges them
into the application's compose file. Networks, ports, environment,
volumes and resources apply to every service in the invocation. Networks
already defined in the infra file attach as external.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.app, "app", "", "application folder holding compose.yml")
	cmd.Flags().StringSliceVarP(&f.services, "service", "s", nil, "service as name:image (repeatable)")
	cmd.Flags().StringVar(&f.restart, "restart", "unless-stopped", "restart policy for the generated services")
	cmd.Flags().StringSliceVarP(&f.networks, "network", "n", nil, "attach these networks (repeatable)")
	cmd.Flags().StringSliceVarP(&f.ports, "port", "p", nil, "publish port host:container[/proto] (repeatable)")
	cmd.Flags().StringSliceVarP(&f.env, "env", "e", nil, "environment variable KEY=VALUE (repeatable)")
	cmd.Flags().StringSliceVarP(&f.volumes, "volume", "v", nil, "bind mount host:container[:mode] (repeatable)")
	cmd.Flags().StringSliceVarP(&f.labels, "label", "l", nil, "label KEY=VALUE (repeatable)")
	cmd.Flags().StringSliceVar(&f.dependsOn, "depends-on", nil, "declare a dependency on another service (repeatable)")
	cmd.Flags().StringVarP(&f.presetName, "preset", "r", "", "resource preset to apply")
	cmd.Flags().StringVar(&f.cpus, "cpus", "", "explicit CPU limit (e.g. 0.5)")
	cmd.Flags().StringVar(&f.memory, "memory", "", "explicit memory limit (e.g. 128M)")
	cmd.Flags().StringVar(&f.reserveCPUs, "reserve-cpus", "", "explicit CPU reservation")
	cmd.Flags().StringVar(&f.reserveMem, "reserve-memory", "", "explicit memory reservation")
	cmd.Flags().BoolVar(&f.autoUpdate, "auto-update", false, "manage the watchtower auto-update label")
	cmd.MarkFlagRequired("app")
	cmd.MarkFlagRequired("service")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, f buildFlags) error {
	doc, err := a.buildDocument(cmd, f)
	if err != nil {
		return err
	}

	target := filepath.Join(f.app, composeFileName)
	tree, err := store.LoadOrEmpty(target)
	if err != nil {
		return err
	}
	if err := tree.Apply(*doc); err != nil {
		return err
	}
	if err := store.Write(tree, target); err != nil {
		return err
	}
	a.log.Info("wrote compose file", "path", target, "changed", tree.Changed())

	// advisory check, the in-process `docker compose config`
	data, err := tree.Encode()
	if err == nil {
		if verr := compose.ValidateDocument(data); verr != nil {
			a.log.Warn("compose validation failed", "path", target, "error", verr)
		} else {
			a.log.Info("compose file is valid", "path", target)
		}
	}
	return nil
}

// buildDocument turns the flag set into a validated-shape document: one
// service per --service entry plus the network entries the services need.
func (a *app) buildDocument(cmd *cobra.Command, f buildFlags) (*spec.Document, error) {
	resources, err := a.resolveResources(f)
	if err != nil {
		return nil, err
	}

	var ports []spec.PortMapping
	for _, raw := range f.ports {
		p, err := spec.ParsePort(raw)
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	var env []spec.EnvVar
	for _, raw := range f.env {
		e, err := spec.ParseEnv(raw)
		if err != nil {
			return nil, err
		}
		env = append(env, e)
	}
	var volumes []spec.VolumeMount
	for _, raw := range f.volumes {
		v, err := spec.ParseVolume(raw)
		if err != nil {
			return nil, err
		}
		volumes = append(volumes, v)
	}
	var labels []spec.Label
	for _, raw := range f.labels {
		e, err := spec.ParseEnv(raw)
		if err != nil {
			return nil, err
		}
		labels = append(labels, spec.Label{Key: e.Name, Value: e.Value})
	}
	var autoUpdate *bool
	if cmd.Flags().Changed("auto-update") {
		autoUpdate = &f.autoUpdate
	}
	restart := spec.RestartPolicy(f.restart)

	var doc spec.Document
	for _, entry := range f.services {
		name, image, err := splitService(entry)
		if err != nil {
			return nil, err
		}
		containerName := name
		svc := spec.Service{
			Name:          name,
			ContainerName: &containerName,
			Image:         &image,
			Restart:       &restart,
			AutoUpdate:    autoUpdate,
		}
		if f.networks != nil {
			svc.Networks = f.networks
		}
		if ports != nil {
			svc.Ports = ports
		}
		if env != nil {
			svc.Environment = env
		}
		if volumes != nil {
			svc.Volumes = volumes
		}
		if labels != nil {
			svc.Labels = labels
		}
		if f.dependsOn != nil {
			svc.DependsOn = f.dependsOn
		}
		if resources != nil {
			svc.Resources = resources
		}
		doc.Services = append(doc.Services, svc)
	}

	networks, err := a.networkSpecs(f.networks, f.app)
	if err != nil {
		return nil, err
	}
	doc.Networks = networks
	return &doc, nil
}

// resolveResources turns --preset or the explicit quantity flags into
// concrete limits. An unknown preset fails here, before any merge starts.
func (a *app) resolveResources(f buildFlags) (*spec.ResourceLimits, error) {
	if f.presetName != "" {
		limits, err := preset.Resolve(a.presets, f.presetName)
		if err != nil {
			return nil, err
		}
		return &limits, nil
	}
	if f.cpus == "" && f.memory == "" && f.reserveCPUs == "" && f.reserveMem == "" {
		return nil, nil
	}
	var limits spec.ResourceLimits
	var err error
	if f.cpus != "" {
		if limits.CPULimit, err = spec.ParseCPU(f.cpus); err != nil {
			return nil, err
		}
	}
	if f.memory != "" {
		if limits.MemoryLimit, err = spec.ParseMemory(f.memory); err != nil {
			return nil, err
		}
	}
	if f.reserveCPUs != "" {
		if limits.CPUReservation, err = spec.ParseCPU(f.reserveCPUs); err != nil {
			return nil, err
		}
	}
	if f.reserveMem != "" {
		if limits.MemoryReservation, err = spec.ParseMemory(f.reserveMem); err != nil {
			return nil, err
		}
	}
	return &limits, nil
}

// networkSpecs maps the requested network names to specs: names defined in
// the shared infra file attach as external, names already present in the
// app's compose file are left alone, and anything else becomes a new bridge
// network.
func (a *app) networkSpecs(names []string, appDir string) ([]spec.Network, error) {
	if len(names) == 0 {
		return nil, nil
	}

	infraNets := make(map[string]bool)
	infraTree, err := store.Load(a.infraFile)
	switch {
	case err == nil:
		for _, n := range infraTree.NetworkNames() {
			infraNets[n] = true
		}
	case errors.Is(err, store.ErrNotFound):
		// no infra file, every network is app-local
	default:
		return nil, err
	}

	target := filepath.Join(appDir, composeFileName)
	existing, err := store.LoadOrEmpty(target)
	if err != nil {
		return nil, err
	}

	var specs []spec.Network
	for _, name := range names {
		switch {
		case infraNets[name]:
			specs = append(specs, spec.Network{Name: name, External: true})
		case existing.HasNetwork(name):
			// already defined in the app file, nothing to add
		default:
			specs = append(specs, spec.Network{Name: name, Driver: spec.DriverBridge})
		}
	}
	return specs, nil
}

func splitService(entry string) (name, image string, err error) {
	for i, r := range entry {
		if r == ':' {
			if i == 0 || i == len(entry)-1 {
				break
			}
			return entry[:i], entry[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("service %q is not name:image", entry)
}

// =============================================================================
// list
// =============================================================================

func (a *app) newListCmd() *cobra.Command {
	var appDir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the services defined in <app>/compose.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := filepath.Join(appDir, composeFileName)
			tree, err := store.Load(target)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no compose file found in %q", appDir)
				}
				return err
			}
			doc, err := tree.Document()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderServiceTable(doc))
			return nil
		},
	}
	cmd.Flags().StringVar(&appDir, "app", "", "application folder holding compose.yml")
	cmd.MarkFlagRequired("app")
	return cmd
}

// =============================================================================
// remove
// =============================================================================

func (a *app) newRemoveCmd() *cobra.Command {
	var appDir string
	var network bool
	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a service (or, with --network, a network) from <app>/compose.yml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			target := filepath.Join(appDir, composeFileName)
			tree, err := store.Load(target)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no compose file found in %q", appDir)
				}
				return err
			}

			var removed bool
			if network {
				removed, err = tree.RemoveNetwork(name)
				if err != nil {
					return err
				}
			} else {
				removed = tree.RemoveService(name)
			}
			if !removed {
				a.log.Info("nothing to remove", "path", target, "name", name)
				return nil
			}
			if err := store.Write(tree, target); err != nil {
				return err
			}
			a.log.Info("removed entry", "path", target, "name", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&appDir, "app", "", "application folder holding compose.yml")
	cmd.Flags().BoolVar(&network, "network", false, "remove a network instead of a service")
	cmd.MarkFlagRequired("app")
	return cmd
}

// =============================================================================
// presets
// =============================================================================

func (a *app) newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "Show the effective resource preset table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderPresetTable(a.presets))
			return nil
		},
	}
}
