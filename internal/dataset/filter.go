package dataset

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/erddap-tools/erdgen/internal/errors"
)

// timeSpecificPatterns match dataset names that refer to a single time
// slice rather than an aggregation (per-year, per-month, per-day files).
var timeSpecificPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-\d{4}$`),           // Ends with -YYYY
	regexp.MustCompile(`-\d{6}$`),           // Ends with -YYYYMM
	regexp.MustCompile(`-\d{8}$`),           // Ends with -YYYYMMDD
	regexp.MustCompile(`_\d{4}$`),           // Ends with _YYYY
	regexp.MustCompile(`_\d{6}$`),           // Ends with _YYYYMM
	regexp.MustCompile(`_\d{8}$`),           // Ends with _YYYYMMDD
	regexp.MustCompile(`_\d{10}$`),          // Ends with _YYYYMMDDHH
	regexp.MustCompile(`\.nc\d{8}`),         // Contains .ncYYYYMMDD
	regexp.MustCompile(`\d{4}_\d{2}_\d{2}`), // Contains YYYY_MM_DD
}

// singleFileWords mark catalogs and datasets that list individual files
// rather than aggregations.
var singleFileWords = []string{"files", "individual", "single"}

// IsTimeSpecific reports whether a dataset name indicates a time-specific
// file rather than an aggregation.
func IsTimeSpecific(name string) bool {
	for _, pattern := range timeSpecificPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// Filter decides which manifest datasets are skipped before a run.
type Filter struct {
	// SkipTimeSpecific drops datasets whose names look like single time
	// slices and datasets whose names suggest individual-file listings.
	SkipTimeSpecific bool `yaml:"skip_time_specific"`

	// Exclude is a list of glob patterns matched case-insensitively
	// against dataset names.
	Exclude []string `yaml:"exclude,omitempty"`

	globs []glob.Glob
}

// Compile parses the exclude patterns. It must be called before Skip.
func (f *Filter) Compile() error {
	f.globs = f.globs[:0]
	for _, pattern := range f.Exclude {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return errors.NewValidationError("filter.exclude", pattern, err.Error())
		}
		f.globs = append(f.globs, g)
	}
	return nil
}

// Skip reports whether the named dataset should be excluded from the run,
// along with the reason.
func (f *Filter) Skip(name string) (bool, string) {
	if f.SkipTimeSpecific {
		if IsTimeSpecific(name) {
			return true, "time-specific"
		}
		lower := strings.ToLower(name)
		for _, word := range singleFileWords {
			if strings.Contains(lower, word) {
				return true, "individual files"
			}
		}
	}

	lower := strings.ToLower(name)
	for i, g := range f.globs {
		if g.Match(lower) {
			return true, "excluded by pattern " + f.Exclude[i]
		}
	}
	return false, ""
}

// Apply partitions datasets into kept and skipped sets, preserving order.
func (f *Filter) Apply(datasets []Dataset) (kept []Dataset, skipped []Skipped) {
	for _, d := range datasets {
		if skip, reason := f.Skip(d.Name); skip {
			skipped = append(skipped, Skipped{Dataset: d, Reason: reason})
			continue
		}
		kept = append(kept, d)
	}
	return kept, skipped
}

// Skipped records a dataset dropped by the filter and why.
type Skipped struct {
	Dataset Dataset
	Reason  string
}
