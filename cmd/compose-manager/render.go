package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rabenherz112/compose-manager/internal/core/preset"
	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...)
}

// renderServiceTable shows a loaded document the way the list command
// presents it; external networks get an (E) marker.
func renderServiceTable(doc spec.Document) string {
	external := make(map[string]bool)
	for _, n := range doc.Networks {
		external[n.Name] = n.External
	}

	t := newTable("Name", "Image", "Ports", "Networks", "CPUs", "Memory", "Env", "Volumes", "Auto-Update")
	for _, s := range doc.Services {
		var ports, nets, env, vols []string
		for _, p := range s.Ports {
			ports = append(ports, p.String())
		}
		for _, n := range s.Networks {
			if external[n] {
				nets = append(nets, "(E)"+n)
			} else {
				nets = append(nets, n)
			}
		}
		for _, e := range s.Environment {
			env = append(env, e.Name+"="+e.Value)
		}
		for _, v := range s.Volumes {
			vols = append(vols, v.String())
		}

		cpus, memory := "—", "—"
		if s.Resources != nil {
			if s.Resources.CPULimit != 0 {
				cpus = spec.FormatCPU(s.Resources.CPULimit)
			}
			if s.Resources.MemoryLimit != 0 {
				memory = spec.FormatMemory(s.Resources.MemoryLimit)
			}
		}
		auto := "No"
		if s.AutoUpdate != nil && *s.AutoUpdate {
			auto = "Yes"
		}

		t.Row(
			s.Name,
			deref(s.Image),
			dash(strings.Join(ports, ",")),
			dash(strings.Join(nets, ",")),
			cpus,
			memory,
			dash(strings.Join(env, ",")),
			dash(strings.Join(vols, ",")),
			auto,
		)
	}
	return t.Render()
}

func renderPresetTable(presets preset.Table) string {
	t := newTable("Preset", "CPUs", "Memory")
	for _, name := range preset.Names(presets) {
		limits := presets[name]
		cpus, memory := "—", "—"
		if limits.CPULimit != 0 {
			cpus = spec.FormatCPU(limits.CPULimit)
		}
		if limits.MemoryLimit != 0 {
			memory = spec.FormatMemory(limits.MemoryLimit)
		}
		t.Row(name, cpus, memory)
	}
	return t.Render()
}

func deref(s *string) string {
	if s == nil {
		return "—"
	}
	return *s
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
