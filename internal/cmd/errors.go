package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rexwzh/termcap/internal/config"
)

// templateNotFoundError returns an error for an unresolvable template name
// that includes the list of templates that are actually available, the same
// shape as a plain "not found" error but more actionable at the CLI
// boundary.
func templateNotFoundError(mgr *config.Manager, name string, cause error) error {
	templates, listErr := mgr.AvailableTemplates()
	if listErr != nil || len(templates) == 0 {
		return fmt.Errorf("template %q not found: %w", name, cause)
	}
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return fmt.Errorf("template %q not found\n\nAvailable templates: %s", name, strings.Join(names, ", "))
}

func isTemplateNotFound(err error) bool {
	return errors.Is(err, config.ErrTemplateNotFound)
}
