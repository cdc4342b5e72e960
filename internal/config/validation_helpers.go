package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

// ValidateConfig checks cfg against its struct tags.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return apperrors.NewValidationError("config", "config is nil", nil)
	}
	return convertValidationError(validatorInstance().Struct(cfg))
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return apperrors.NewValidationError(field, msg, err)
	}

	return apperrors.NewValidationError("config", err.Error(), err)
}

var yamlNames = map[string]string{
	"Package":       "package",
	"Label":         "label",
	"FallbackTheme": "fallback_theme",
	"MainFile":      "main_file",
	"EntriesDir":    "entries_dir",
	"Aggregator":    "aggregator",
	"Shell":         "shell",
	"Typst":         "typst",
	"EscapeStrings": "escape_strings",
	"LogLevel":      "log_level",
}

func yamlFieldName(fe validator.FieldError) string {
	if name, ok := yamlNames[fe.StructField()]; ok {
		return name
	}
	return fe.Field()
}
