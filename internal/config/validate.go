package config

import (
	"path/filepath"
	"strings"

	"github.com/hydessg/hyde/internal/foundation"
)

// ReservedPrefix marks directories excluded from the source walk.
const ReservedPrefix = "_"

var configValidator = foundation.NewValidatorChain[*Config](
	func(c *Config) foundation.ValidationResult { return c.reserved("paths.data", c.Paths.Data, false) },
	func(c *Config) foundation.ValidationResult { return c.reserved("paths.layouts", c.Paths.Layouts, false) },
	func(c *Config) foundation.ValidationResult { return c.reserved("paths.output", c.Paths.Output, true) },
	func(c *Config) foundation.ValidationResult {
		return foundation.AtLeast("templates.max_layout_depth", 1)(c.Templates.MaxLayoutDepth)
	},
	func(c *Config) foundation.ValidationResult {
		return foundation.OneOf("log.level",
			[]LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError})(c.Log.Level)
	},
	func(c *Config) foundation.ValidationResult {
		return foundation.OneOf("log.format", []LogFormat{LogFormatText, LogFormatJSON})(c.Log.Format)
	},
)

// Validate checks that the reserved directories are excluded from the source
// walk and that numeric limits are sane.
func (c *Config) Validate() error {
	return configValidator.Validate(c).ToError("invalid configuration")
}

// reserved requires that p, when it lies inside the root, has a component
// starting with the reserved prefix. Only the output directory may live
// outside the root, and never at or above it: cleaning it would remove the
// sources.
func (c *Config) reserved(field, p string, mayLeaveRoot bool) foundation.ValidationResult {
	if r := foundation.NotBlank(field)(p); !r.Valid {
		return r
	}
	target := c.resolve(p)
	rel, err := filepath.Rel(c.Root, target)
	if err != nil || isParentRel(rel) {
		if !mayLeaveRoot {
			return foundation.Invalid(foundation.NewFieldError(field, "outside_root", "must be inside the site root", p))
		}
		if up, err := filepath.Rel(target, c.Root); err == nil && !isParentRel(up) {
			return foundation.Invalid(foundation.NewFieldError(field, "contains_root",
				"must not be the site root or one of its parent directories", p))
		}
		return foundation.Valid()
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ReservedPrefix) {
			return foundation.Valid()
		}
	}
	return foundation.Invalid(foundation.NewFieldError(field, "reserved",
		"must be a directory whose name starts with "+ReservedPrefix, p))
}

func isParentRel(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
