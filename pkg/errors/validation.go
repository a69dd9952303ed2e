package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// functionNameRegex matches a Python identifier, optionally qualified by one
// class name ("Class.method").
var functionNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateFunctionName validates the --func target.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - A plain identifier or Class.method
func ValidateFunctionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "function name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "function name too long (max 128 characters)")
	}

	if !functionNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid function name: %q", name)
	}

	return nil
}

// ValidateSourcePath validates the path of the Python file to analyze.
// Only obviously broken input is rejected; existence is checked when reading.
func ValidateSourcePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "source path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "source path contains invalid characters")
		}
	}

	return nil
}

// ValidateOutputDir validates the directory outputs are written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidInput, "output directory cannot be empty")
	}

	const maxPathLength = 500
	if len(dir) > maxPathLength {
		return New(ErrCodeInvalidInput, "output directory too long (max %d characters)", maxPathLength)
	}

	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output directory contains invalid characters")
		}
	}

	return nil
}

// ValidateEngine checks the export backend name.
func ValidateEngine(engine string) error {
	switch strings.ToLower(engine) {
	case "graphviz", "dot":
		return nil
	default:
		return New(ErrCodeInvalidInput, "invalid engine: %q (must be 'graphviz' or 'dot')", engine)
	}
}
