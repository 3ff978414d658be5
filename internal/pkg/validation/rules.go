package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Course slug: lowercase words joined by single hyphens
	SlugPattern = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

	// SlugMaxLength bounds a course slug
	SlugMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Slug *regexp.Regexp
}{
	Slug: regexp.MustCompile(SlugPattern),
}

// IsCourseSlug reports whether s is a well-formed course slug
func IsCourseSlug(s string) bool {
	return len(s) <= SlugMaxLength && CompiledPatterns.Slug.MatchString(s)
}

// notBlank rejects strings made only of whitespace
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// RegisterRules adds the custom binding tags (slug, notblank) to v
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return fmt.Errorf("failed to register notblank rule: %w", err)
	}
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsCourseSlug(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register slug rule: %w", err)
	}
	return nil
}

// RegisterGinRules registers the custom tags on gin's default validator
func RegisterGinRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return RegisterRules(v)
}
