package module

import (
	"fmt"

	"github.com/rlch/convextypes"
)

// MergeWarning represents a non-fatal issue detected during merge.
type MergeWarning struct {
	File    string
	Code    string // e.g., "duplicate-file"
	Message string
}

func (w MergeWarning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.File, w.Code, w.Message)
}

// MergeError represents a fatal error during merge.
type MergeError struct {
	File    string
	Code    string // e.g., "duplicate-function"
	Message string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("%s in %s: %s", e.Code, e.File, e.Message)
}

// Is reports whether target is convextypes.ErrInvalidSchema.
func (e *MergeError) Is(target error) bool { return target == convextypes.ErrInvalidSchema }

// ExtractedFile pairs a loaded module with the functions extracted from it.
type ExtractedFile struct {
	Module    *Module
	Functions []*convextypes.Function
}

// MergeFunctions concatenates the functions of several modules in input order.
// A module listed more than once is skipped with a warning; two modules that
// define the same callable path fail the merge.
func MergeFunctions(inputs []ExtractedFile) ([]*convextypes.Function, []MergeWarning, error) {
	var (
		merged   []*convextypes.Function
		warnings []MergeWarning
	)

	seenFiles := make(map[string]bool, len(inputs))

	// Track functions by path for duplicate detection
	definedIn := make(map[string]string)

	for _, input := range inputs {
		path := input.Module.Path

		if seenFiles[path] {
			warnings = append(warnings, MergeWarning{
				File:    path,
				Code:    "duplicate-file",
				Message: "file is listed more than once; skipping",
			})

			continue
		}

		seenFiles[path] = true

		for _, fn := range input.Functions {
			if prev, ok := definedIn[fn.Path()]; ok {
				return nil, warnings, &MergeError{
					File:    path,
					Code:    "duplicate-function",
					Message: fmt.Sprintf("%s is already defined in %s", fn.Path(), prev),
				}
			}

			definedIn[fn.Path()] = path
			merged = append(merged, fn)
		}
	}

	return merged, warnings, nil
}
