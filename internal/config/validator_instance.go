package config

import (
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	typstPackagePattern = regexp.MustCompile(`^@[a-z0-9][a-z0-9-]*/[a-z0-9][a-z0-9_-]*:\d+\.\d+\.\d+$`)
	typstLabelPattern   = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_.:-]*$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("typst_package", func(fl validator.FieldLevel) bool {
			return typstPackagePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("typst_label", func(fl validator.FieldLevel) bool {
			return typstLabelPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("notebook_path", func(fl validator.FieldLevel) bool {
			return isNotebookPath(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns the shared validator with the add-entry rules registered.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

// isNotebookPath accepts slash-separated paths that stay inside the notebook root.
func isNotebookPath(p string) bool {
	if strings.TrimSpace(p) == "" || strings.ContainsAny(p, "\x00\\") {
		return false
	}
	if strings.HasPrefix(p, "/") {
		return false
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}
