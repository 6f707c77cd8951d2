package campaigns

import (
	"strings"

	"outdial-platform/internal/calls"
)

// Personalize substitutes lead and rep fields into a script template.
// Recognized placeholders: {{firstName}}, {{lastName}}, {{fullName}},
// {{company}}, {{jobTitle}}, {{repName}}. Unknown placeholders are left
// untouched so template mistakes are visible rather than silently eaten.
func Personalize(template string, lead calls.Lead, repName string) string {
	return strings.NewReplacer(
		"{{firstName}}", lead.FirstName,
		"{{lastName}}", lead.LastName,
		"{{fullName}}", lead.FullName(),
		"{{company}}", lead.Company,
		"{{jobTitle}}", lead.JobTitle,
		"{{repName}}", repName,
	).Replace(template)
}
