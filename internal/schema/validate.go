package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/runsummary/internal/record"
)

// #region mismatch-error
// MismatchError reports a raw source whose columns differ from the declared schema.
type MismatchError struct {
	Source  string
	Missing []string
	Extra   []string
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing fields %q", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra fields %q", e.Extra))
	}
	return fmt.Sprintf("field name mismatch in %s: %s", e.Source, strings.Join(parts, "; "))
}
// #endregion mismatch-error

// #region validate
// Validate compares the observed columns of a source file against the declared
// names. Both sides are treated as sets.
func Validate(source string, declared, observed []string) error {
	want := make(map[string]bool, len(declared))
	for _, n := range declared {
		want[n] = true
	}
	got := make(map[string]bool, len(observed))
	for _, n := range observed {
		got[n] = true
	}

	var missing, extra []string
	for n := range want {
		if !got[n] {
			missing = append(missing, n)
		}
	}
	for n := range got {
		if !want[n] {
			extra = append(extra, n)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return &MismatchError{Source: source, Missing: missing, Extra: extra}
}
// #endregion validate

// #region extract
// Extract projects a raw row onto fields, renaming the reserved markers and
// coercing each cell. Cells that do not coerce to the declared kind fail.
func Extract(row map[string]string, fields []Field) (record.Values, error) {
	out := make(record.Values, 0, len(fields))
	for _, f := range fields {
		raw, ok := row[f.Name]
		if !ok {
			return nil, fmt.Errorf("extract: column %q absent from row", f.Name)
		}
		v := record.Coerce(raw)
		if !f.Kind.accepts(v) {
			return nil, fmt.Errorf("extract: column %q: %q is not %s", f.Name, raw, f.Kind)
		}
		out = append(out, record.NamedValue{Name: OutputName(f.Name), Value: v})
	}
	return out, nil
}
// #endregion extract
