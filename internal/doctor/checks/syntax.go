package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mishamyrt/commitfmt-release/internal/doctor"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/pkg/fileutil"
)

// ManifestSyntaxCheck parses every manifest the release rewrites.
type ManifestSyntaxCheck struct {
	files func() ([]string, error)
}

var _ doctor.Check = (*ManifestSyntaxCheck)(nil)

// NewManifestSyntaxCheck creates a syntax check over the native manifest
// and the manifest of every package under each root.
func NewManifestSyntaxCheck(native string, roots map[string]string) *ManifestSyntaxCheck {
	return &ManifestSyntaxCheck{
		files: func() ([]string, error) {
			return ManifestFiles(native, roots)
		},
	}
}

// ManifestFiles returns native followed by root/<pkg>/<manifest> for every
// package under each root, where roots maps a root directory to its
// manifest file name. Roots are visited in sorted order.
func ManifestFiles(native string, roots map[string]string) ([]string, error) {
	files := []string{native}

	dirs := make([]string, 0, len(roots))
	for root := range roots {
		dirs = append(dirs, root)
	}
	slices.Sort(dirs)

	for _, root := range dirs {
		packages, err := fileutil.ListDirs(root)
		if err != nil {
			return nil, err
		}
		for _, pkg := range packages {
			files = append(files, filepath.Join(root, pkg, roots[root]))
		}
	}
	return files, nil
}

func (c *ManifestSyntaxCheck) Name() string     { return "manifest-syntax" }
func (c *ManifestSyntaxCheck) Category() string { return "manifest" }

// syntaxFileResult represents the validation result for a single file.
type syntaxFileResult struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (c *ManifestSyntaxCheck) Run(context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  make(map[string]any),
	}

	files, err := c.files()
	if err != nil {
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("cannot list manifests: %v", err)
		return result
	}

	var failed []syntaxFileResult
	for _, path := range files {
		fr := validateFile(path)
		if fr.Status == "error" {
			failed = append(failed, fr)
		}
	}

	result.Details["checked"] = len(files)
	if len(failed) > 0 {
		result.Details["files"] = failed
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("%d manifest(s) cannot be parsed", len(failed))
		result.FixHint = "review the error details and fix the syntax in each file"
		return result
	}

	result.Status = doctor.SeverityPass
	result.Message = fmt.Sprintf("%d manifest(s) parsed successfully", len(files))
	return result
}

// validateFile checks if a manifest is syntactically valid.
func validateFile(path string) syntaxFileResult {
	fr := syntaxFileResult{Path: path}

	data, _, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		fr.Status = "error"
		switch {
		case errors.Is(err, os.ErrNotExist):
			fr.Message = "file does not exist"
		case errors.Is(err, os.ErrPermission):
			fr.Message = fmt.Sprintf("permission denied: %v", err)
		default:
			fr.Message = fmt.Sprintf("read error: %v", err)
		}
		return fr
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return validateJSON(data, fr)
	default:
		return validateTOML(data, fr)
	}
}

func validateJSON(data []byte, fr syntaxFileResult) syntaxFileResult {
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		fr.Status = "error"
		fr.Message = formatJSONError(err, data)
		return fr
	}
	fr.Status = "pass"
	return fr
}

func validateTOML(data []byte, fr syntaxFileResult) syntaxFileResult {
	var v map[string]any
	if err := toml.Unmarshal(data, &v); err != nil {
		fr.Status = "error"
		fr.Message = formatTOMLError(err)
		return fr
	}
	fr.Status = "pass"
	return fr
}

// formatJSONError extracts position information from JSON syntax errors.
func formatJSONError(err error, data []byte) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(data, int(typeErr.Offset))
		return fmt.Sprintf("JSON type error at line %d, column %d: %s", line, col, typeErr.Error())
	}

	return fmt.Sprintf("JSON error: %v", err)
}

// formatTOMLError extracts position information from TOML decode errors.
func formatTOMLError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s",
			row, col, decodeErr.Error())
	}

	return fmt.Sprintf("TOML error: %v", err)
}

// offsetToLineCol converts a byte offset to 1-indexed line and column.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	offset = max(0, min(offset, len(data)))

	line = 1
	lineStart := 0
	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	return line, offset - lineStart + 1
}
