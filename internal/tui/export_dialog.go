package tui

import (
	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/export"
	"github.com/colonyops/roster/internal/tui/components/form"
)

const (
	exportFieldFormat = "format"
	exportFieldScope  = "scope"
)

// newExportDialog asks for the export format and scope.
func newExportDialog(cfg config.ExportConfig) *form.Dialog {
	formats := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		formats = append(formats, string(f))
	}

	d := form.NewDialog("Export students", []form.Field{
		form.NewSelectField("Format", formats, cfg.DefaultFormat),
		form.NewSelectField("Scope", []string{config.ScopePage, config.ScopeAll}, cfg.Scope),
	}, []string{exportFieldFormat, exportFieldScope})
	d.Help = "←/→ choose • tab next • enter export • esc cancel"
	return d
}

// exportChoice reads the dialog back.
func exportChoice(d *form.Dialog) (export.Format, string, error) {
	vals := d.Values()
	format, err := export.ParseFormat(vals[exportFieldFormat])
	if err != nil {
		return "", "", err
	}
	return format, vals[exportFieldScope], nil
}
