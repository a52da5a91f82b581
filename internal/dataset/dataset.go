// Package dataset defines dataset descriptors and the YAML manifest format
// that drives generation runs. A manifest decouples job definition from the
// runner: it is plain data, loaded once, and turned into commands elsewhere.
package dataset

import (
	"strings"
	"unicode"
)

// Type identifies the ERDDAP dataset family, which determines the protocol
// endpoint used for availability checks.
type Type string

const (
	// TypeGriddap is a gridded dataset served via OPeNDAP.
	TypeGriddap Type = "griddap"

	// TypeTabledap is a tabular dataset.
	TypeTabledap Type = "tabledap"
)

// DefaultReloadMinutes is the reloadEveryNMinutes value used when a dataset
// does not specify one. 10080 minutes is weekly.
const DefaultReloadMinutes = 10080

// maxSafeNameLen bounds log file names derived from dataset names.
const maxSafeNameLen = 50

// Dataset describes one dataset to be processed.
type Dataset struct {
	// Name is the human-readable dataset title.
	Name string `yaml:"name"`

	// URL is the OPeNDAP/ERDDAP source URL.
	URL string `yaml:"url"`

	// ID is the ERDDAP datasetID. When empty, an ID is derived from Name.
	ID string `yaml:"id,omitempty"`

	// Type is griddap or tabledap. Defaults to griddap.
	Type Type `yaml:"type,omitempty"`

	// ReloadMinutes is the reloadEveryNMinutes argument passed to the
	// generator tool. Zero means DefaultReloadMinutes.
	ReloadMinutes int `yaml:"reload_minutes,omitempty"`
}

// EffectiveID returns the dataset's explicit ID, or one derived from its
// name, with the given prefix applied in both cases.
func (d Dataset) EffectiveID(prefix string) string {
	if d.ID != "" {
		return prefix + d.ID
	}
	return prefix + GenerateID(d.Name)
}

// EffectiveType returns the dataset type, defaulting to griddap.
func (d Dataset) EffectiveType() Type {
	if d.Type == TypeTabledap {
		return TypeTabledap
	}
	return TypeGriddap
}

// EffectiveReload returns the reload interval in minutes, applying the
// package default when unset.
func (d Dataset) EffectiveReload(fallback int) int {
	if d.ReloadMinutes > 0 {
		return d.ReloadMinutes
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultReloadMinutes
}

// Metadata endpoints appended to a source URL during availability checks.
const (
	// GriddapSuffix requests the OPeNDAP DAS response.
	GriddapSuffix = ".das"

	// TabledapSuffix requests the NCCSV metadata response.
	TabledapSuffix = ".nccsvMetadata"
)

// CheckEndpoint returns the URL actually probed during availability checks:
// the DAS response for griddap datasets, the NCCSV metadata response for
// tabledap datasets.
func (d Dataset) CheckEndpoint() string {
	if d.EffectiveType() == TypeTabledap {
		return d.URL + TabledapSuffix
	}
	return d.URL + GriddapSuffix
}

// GenerateID derives an ERDDAP datasetID from a dataset name: every
// character outside [A-Za-z0-9] becomes an underscore, the result is
// lowercased, and a "ds_" prefix is added if it would not start with a letter.
func GenerateID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('_')
		}
	}

	id := b.String()
	if id == "" || !unicode.IsLetter(rune(id[0])) {
		id = "ds_" + id
	}
	return id
}

// SafeName derives a filesystem-safe log file stem from a dataset name:
// non-alphanumeric characters become underscores and the result is
// truncated to 50 characters, matching the per-dataset log naming the
// generation tooling has always used.
func SafeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (unicode.IsLetter(r) || unicode.IsDigit(r)) && r < 128 {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	safe := b.String()
	if len(safe) > maxSafeNameLen {
		safe = safe[:maxSafeNameLen]
	}
	return safe
}
