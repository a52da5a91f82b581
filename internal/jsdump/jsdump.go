// Package jsdump embeds a JSON catalog in JavaScript source. Two variants
// are produced: a plain script-tag assignment and an ES module export, so a
// catalog can be dropped into either kind of page without a fetch.
package jsdump

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/erddap-tools/erdgen/internal/errors"
)

// DefaultVarName is used when the caller supplies no variable name.
const DefaultVarName = "catalog"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Dump holds both JS renderings of one JSON document.
type Dump struct {
	// Script is the script-tag form: var <name> = <json>;
	Script string

	// Module is the ES module form: export const <name> = <json>;
	Module string
}

// Render validates and re-indents the JSON, then renders both variants.
// The input must be a single valid JSON document; the variable name must be
// a valid JS identifier.
func Render(data []byte, varName string) (*Dump, error) {
	if varName == "" {
		varName = DefaultVarName
	}
	if !identifierPattern.MatchString(varName) {
		return nil, errors.NewValidationError("variable name", varName, "not a valid JS identifier")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewValidationError("catalog", "", "not valid JSON: "+err.Error())
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	body := strings.TrimRight(buf.String(), "\n")

	return &Dump{
		Script: "var " + varName + " = " + body + ";\n",
		Module: "export const " + varName + " = " + body + ";\n",
	}, nil
}

// WriteFiles renders a JSON catalog file and writes <base>.js (script form)
// and <base>.mjs (module form) into outDir, where base is the catalog file
// name without its extension. It returns the paths written.
func WriteFiles(catalogPath, varName, outDir string) ([]string, error) {
	data, err := os.ReadFile(catalogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("catalog", catalogPath)
		}
		return nil, err
	}

	dump, err := Render(data, varName)
	if err != nil {
		return nil, err
	}

	if outDir == "" {
		outDir = filepath.Dir(catalogPath)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(catalogPath), filepath.Ext(catalogPath))
	scriptPath := filepath.Join(outDir, base+".js")
	modulePath := filepath.Join(outDir, base+".mjs")

	if err := os.WriteFile(scriptPath, []byte(dump.Script), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(modulePath, []byte(dump.Module), 0o644); err != nil {
		return nil, err
	}
	return []string{scriptPath, modulePath}, nil
}
