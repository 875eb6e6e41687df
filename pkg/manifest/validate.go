package manifest

import (
	"fmt"
	"regexp"
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks the manifest for structural correctness.
func Validate(m *Manifest) []error {
	var errs []error

	if m.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	} else if !namePattern.MatchString(m.Name) {
		errs = append(errs, fmt.Errorf("name %q must be lowercase alphanumeric with hyphens", m.Name))
	}

	if m.Recipe == "" && len(m.Services) == 0 {
		errs = append(errs, fmt.Errorf("manifest must set a recipe or define at least one service"))
	}

	for name, svc := range m.Services {
		if svc.Type == "" {
			errs = append(errs, fmt.Errorf("service %q: type is required", name))
		}
		if svc.Port < 0 || svc.Port > 65535 {
			errs = append(errs, fmt.Errorf("service %q: port %d out of range", name, svc.Port))
		}
	}

	return errs
}
