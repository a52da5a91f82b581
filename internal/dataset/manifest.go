package dataset

import (
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/erddap-tools/erdgen/internal/errors"
)

// Defaults hold manifest-wide settings applied to every dataset that does
// not override them.
type Defaults struct {
	// Type is the default dataset type (griddap when empty).
	Type Type `yaml:"type,omitempty"`

	// ReloadMinutes is the default reload interval.
	ReloadMinutes int `yaml:"reload_minutes,omitempty"`

	// IDPrefix is prepended to every effective dataset ID.
	IDPrefix string `yaml:"id_prefix,omitempty"`
}

// Manifest is the YAML document that drives a generation run: an ordered
// list of datasets plus defaults and an optional filter.
type Manifest struct {
	Defaults Defaults  `yaml:"defaults,omitempty"`
	Filter   Filter    `yaml:"filter,omitempty"`
	Datasets []Dataset `yaml:"datasets"`
}

// LoadManifest reads, parses, and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewManifestError("read manifest", errors.ErrManifestNotFound).WithPath(path)
		}
		return nil, errors.NewManifestError("read manifest", err).WithPath(path)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		var manifestErr *errors.ManifestError
		if errors.As(err, &manifestErr) {
			manifestErr.WithPath(path)
		}
		return nil, err
	}
	return manifest, nil
}

// ParseManifest parses and validates manifest YAML content.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.NewManifestError("parse manifest", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	if err := manifest.Filter.Compile(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate checks every dataset for the fields a run requires: a name, a
// well-formed absolute URL, a recognized type, and an effective ID that no
// other dataset shares.
func (m *Manifest) Validate() error {
	if len(m.Datasets) == 0 {
		return errors.NewManifestError("manifest lists no datasets", errors.ErrNoDatasets)
	}

	seen := make(map[string]string, len(m.Datasets)) // effective ID -> dataset name
	for _, d := range m.Datasets {
		if d.Name == "" {
			return errors.NewManifestError("dataset has no name", errors.ErrManifestInvalid)
		}
		if d.URL == "" {
			return errors.NewManifestError("dataset has no url", errors.ErrManifestInvalid).WithDataset(d.Name)
		}
		parsed, err := url.Parse(d.URL)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return errors.NewManifestError("dataset url is not absolute", errors.ErrManifestInvalid).WithDataset(d.Name)
		}
		if d.Type != "" && d.Type != TypeGriddap && d.Type != TypeTabledap {
			return errors.NewManifestError("dataset type must be griddap or tabledap", errors.ErrManifestInvalid).WithDataset(d.Name)
		}

		id := m.effectiveID(d)
		if other, dup := seen[id]; dup {
			return errors.NewManifestError("dataset ID "+id+" already used by "+other, errors.ErrDuplicateDatasetID).WithDataset(d.Name)
		}
		seen[id] = d.Name
	}
	return nil
}

// effectiveID applies manifest defaults to one dataset's ID.
func (m *Manifest) effectiveID(d Dataset) string {
	return d.EffectiveID(m.Defaults.IDPrefix)
}

// Runnable returns the datasets that survive the manifest filter, plus the
// skipped entries for reporting.
func (m *Manifest) Runnable() ([]Dataset, []Skipped) {
	return m.Filter.Apply(m.Datasets)
}

// URLs returns the source URLs of every dataset in manifest order.
func (m *Manifest) URLs() []string {
	urls := make([]string, len(m.Datasets))
	for i, d := range m.Datasets {
		urls[i] = d.URL
	}
	return urls
}
