package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath converts a path to an absolute, symlink-resolved form so
// collision checks compare real files rather than spellings.
func NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// Nonexistent paths cannot be resolved; the absolute form still
	// catches same-spelling collisions.
	return abs
}

// ValidateOutputNotInput rejects an output path that would overwrite one
// of the inputs. Returns an empty string when there is no collision.
func ValidateOutputNotInput(inputPaths []string, outputPath string) string {
	out := NormalizePath(outputPath)
	for _, in := range inputPaths {
		if NormalizePath(in) == out {
			return fmt.Sprintf("output would overwrite input file %s", filepath.Base(in))
		}
	}
	return ""
}

// ValidateCSVExtensionWarning warns when the output carries a .csv
// extension: the output is NDJSON/JSON and a .csv name invites confusion
// with the inputs.
func ValidateCSVExtensionWarning(outputPath string) string {
	if strings.EqualFold(filepath.Ext(outputPath), ".csv") {
		return fmt.Sprintf("output file %s has a .csv extension but will contain JSON records", filepath.Base(outputPath))
	}
	return ""
}

// ValidateInputFilesExist returns one message per missing input file.
func ValidateInputFilesExist(inputPaths []string) []string {
	var errs []string
	for _, in := range inputPaths {
		if _, err := os.Stat(in); err != nil {
			errs = append(errs, fmt.Sprintf("input file not found: %s", in))
		}
	}
	return errs
}

// ValidateOutputDirectory rejects an output path whose directory does not
// exist. Returns an empty string when the directory is usable.
func ValidateOutputDirectory(outputPath string) string {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return ""
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Sprintf("output directory does not exist: %s", dir)
	}
	return ""
}

// ValidateFilePaths runs the blocking path checks and returns the
// collected messages. forceOverwrite bypasses only the output-collision
// check. The .csv-extension check is advisory and is not included here;
// callers log ValidateCSVExtensionWarning separately.
func ValidateFilePaths(inputPaths []string, outputPath string, forceOverwrite bool) []string {
	var errs []string

	errs = append(errs, ValidateInputFilesExist(inputPaths)...)

	if !forceOverwrite {
		if msg := ValidateOutputNotInput(inputPaths, outputPath); msg != "" {
			errs = append(errs, msg)
		}
	}
	if msg := ValidateOutputDirectory(outputPath); msg != "" {
		errs = append(errs, msg)
	}
	return errs
}
