package intermediate

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/danielpatrickdp/runsummary/internal/record"
)

// #region defaults
// Default filename templates, relative to the intermediate directory.
const (
	DefaultPerRunTemplate  = `{{.BehaviorspaceName}}-{{printf "%06d" .RunNumber}}_PerRunData.csv`
	DefaultPerYearTemplate = `{{.BehaviorspaceName}}-{{printf "%06d" .RunNumber}}_PerYearData.csv`

	// IndexFile maps run identities to their two intermediate files.
	IndexFile = "INDEX"
)
// #endregion defaults

// #region templates
// Templates render the per-run and per-year filenames of a run.
type Templates struct {
	perRun  *template.Template
	perYear *template.Template
}

// NameData is what a filename template can reference.
type NameData struct {
	RunID             string
	BehaviorspaceName string
	RunNumber         int64
}

// ParseTemplates compiles the two filename templates.
func ParseTemplates(perRun, perYear string) (Templates, error) {
	pr, err := template.New("per-run").Option("missingkey=error").Parse(perRun)
	if err != nil {
		return Templates{}, fmt.Errorf("parse per-run template: %w", err)
	}
	py, err := template.New("per-year").Option("missingkey=error").Parse(perYear)
	if err != nil {
		return Templates{}, fmt.Errorf("parse per-year template: %w", err)
	}
	return Templates{perRun: pr, perYear: py}, nil
}

// DefaultTemplates returns the compiled default templates.
func DefaultTemplates() Templates {
	t, err := ParseTemplates(DefaultPerRunTemplate, DefaultPerYearTemplate)
	if err != nil {
		panic(err)
	}
	return t
}

// Names renders the two filenames for run.
func (t Templates) Names(run record.RunRecord) (perRun, perYear string, err error) {
	data := NameData{
		RunID:             run.ID,
		BehaviorspaceName: run.Provenance.BehaviorspaceName.Text(),
		RunNumber:         run.RunNumber,
	}
	if perRun, err = render(t.perRun, data); err != nil {
		return "", "", err
	}
	if perYear, err = render(t.perYear, data); err != nil {
		return "", "", err
	}
	if perRun == perYear {
		return "", "", fmt.Errorf("run %s: per-run and per-year files share the name %q", run.ID, perRun)
	}
	return perRun, perYear, nil
}

func render(t *template.Template, data NameData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s filename for %s: %w", t.Name(), data.RunID, err)
	}
	return sb.String(), nil
}

// resolve joins a name from the index with dir unless it is absolute.
func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
// #endregion templates
