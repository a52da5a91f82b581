// Package xmledit applies targeted text edits to an ERDDAP datasets.xml
// file. Edits work on the raw text with regular expressions rather than an
// XML parser so that formatting, comments, and attribute order survive
// untouched.
package xmledit

import (
	"os"
	"regexp"
	"strings"

	"github.com/erddap-tools/erdgen/internal/errors"
)

// Dataset open tags in both attribute orders ERDDAP emits.
var (
	idFirstPattern     = regexp.MustCompile(`<dataset [^>]*datasetID="([^"]+)"[^>]*active="(true|false)"[^>]*>`)
	activeFirstPattern = regexp.MustCompile(`<dataset [^>]*active="(true|false)"[^>]*datasetID="([^"]+)"[^>]*>`)
)

// StatusReport counts the active-flag changes made by Reconcile.
type StatusReport struct {
	Activated   int
	Deactivated int

	// ActivatedIDs and DeactivatedIDs list the affected datasets in
	// document order.
	ActivatedIDs   []string
	DeactivatedIDs []string
}

// ExtractIDs derives dataset IDs from source URLs: the last path segment of
// each URL, with blank lines ignored.
func ExtractIDs(urls []string) map[string]bool {
	ids := make(map[string]bool, len(urls))
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		url = strings.TrimRight(url, "/")
		if i := strings.LastIndex(url, "/"); i >= 0 {
			url = url[i+1:]
		}
		if url != "" {
			ids[url] = true
		}
	}
	return ids
}

// Reconcile flips active flags on dataset open tags so the document agrees
// with a list of problem source URLs: active datasets named by the list are
// deactivated, inactive datasets not named by it are reactivated. All other
// datasets are left alone. Both attribute orders are handled.
func Reconcile(content string, urls []string) (string, *StatusReport) {
	ids := ExtractIDs(urls)
	report := &StatusReport{}

	flip := func(tag, id string, active bool) (string, bool) {
		listed := ids[id]
		switch {
		case active && listed:
			report.Deactivated++
			report.DeactivatedIDs = append(report.DeactivatedIDs, id)
			return strings.Replace(tag, `active="true"`, `active="false"`, 1), true
		case !active && !listed:
			report.Activated++
			report.ActivatedIDs = append(report.ActivatedIDs, id)
			return strings.Replace(tag, `active="false"`, `active="true"`, 1), true
		}
		return tag, false
	}

	content = idFirstPattern.ReplaceAllStringFunc(content, func(tag string) string {
		m := idFirstPattern.FindStringSubmatch(tag)
		updated, _ := flip(tag, m[1], m[2] == "true")
		return updated
	})
	content = activeFirstPattern.ReplaceAllStringFunc(content, func(tag string) string {
		m := activeFirstPattern.FindStringSubmatch(tag)
		updated, _ := flip(tag, m[2], m[1] == "true")
		return updated
	})

	return content, report
}

// ReconcileFile runs Reconcile over an XML file, reading the URL list from a
// text file with one URL per line, and writes the result to outputPath.
func ReconcileFile(xmlPath, urlsPath, outputPath string) (*StatusReport, error) {
	content, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, errors.NewNotFoundError("datasets xml", xmlPath)
	}
	urlData, err := os.ReadFile(urlsPath)
	if err != nil {
		return nil, errors.NewNotFoundError("url list", urlsPath)
	}

	updated, report := Reconcile(string(content), strings.Split(string(urlData), "\n"))
	if err := os.WriteFile(outputPath, []byte(updated), 0o644); err != nil {
		return nil, err
	}
	return report, nil
}

// sourceURLPattern matches sourceUrl elements whose URL carries an /erddap
// path, capturing everything needed to swap the scheme and host.
var sourceURLPattern = regexp.MustCompile(`(<sourceUrl>)https?://[^/<]+(/erddap.*?)(</sourceUrl>)`)

// RewriteHost replaces the scheme and host of every matching sourceUrl with
// the given host, preserving the /erddap path and the surrounding text.
// Host may carry its own scheme; https is assumed otherwise.
func RewriteHost(content, host string) (string, int) {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	host = strings.TrimRight(host, "/")

	count := 0
	updated := sourceURLPattern.ReplaceAllStringFunc(content, func(tag string) string {
		count++
		m := sourceURLPattern.FindStringSubmatch(tag)
		return m[1] + host + m[2] + m[3]
	})
	return updated, count
}

// RewriteHostFile runs RewriteHost over an XML file and writes the result
// to outputPath.
func RewriteHostFile(xmlPath, host, outputPath string) (int, error) {
	content, err := os.ReadFile(xmlPath)
	if err != nil {
		return 0, errors.NewNotFoundError("datasets xml", xmlPath)
	}

	updated, count := RewriteHost(string(content), host)
	if err := os.WriteFile(outputPath, []byte(updated), 0o644); err != nil {
		return 0, err
	}
	return count, nil
}
