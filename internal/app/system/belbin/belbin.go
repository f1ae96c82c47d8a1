// Package belbin scores team-role questionnaires. Each section of the
// questionnaire distributes points across statements, and each
// statement maps to one of the nine Belbin roles. The role with the
// highest total wins.
package belbin

import "fmt"

// The nine Belbin team roles.
const (
	RolePlant                = "PLANT"
	RoleResourceInvestigator = "RESOURCE_INVESTIGATOR"
	RoleCoordinator          = "COORDINATOR"
	RoleShaper               = "SHAPER"
	RoleMonitorEvaluator     = "MONITOR_EVALUATOR"
	RoleTeamworker           = "TEAMWORKER"
	RoleImplementer          = "IMPLEMENTER"
	RoleCompleterFinisher    = "COMPLETER_FINISHER"
	RoleSpecialist           = "SPECIALIST"
)

// roleOrder fixes tie-breaking so the same answers always produce the
// same result.
var roleOrder = []string{
	RolePlant,
	RoleResourceInvestigator,
	RoleCoordinator,
	RoleShaper,
	RoleMonitorEvaluator,
	RoleTeamworker,
	RoleImplementer,
	RoleCompleterFinisher,
	RoleSpecialist,
}

var validRoles = func() map[string]bool {
	m := make(map[string]bool, len(roleOrder))
	for _, r := range roleOrder {
		m[r] = true
	}
	return m
}()

// SectionAnswers maps a Belbin role to the points the student assigned
// to that role's statement within one section.
type SectionAnswers map[string]int

// Score sums the points per role across all sections and returns the
// dominant role. Ties go to the earlier role in the canonical order.
func Score(sections []SectionAnswers) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("no answers given")
	}

	totals := make(map[string]int, len(roleOrder))
	for i, section := range sections {
		for role, points := range section {
			if !validRoles[role] {
				return "", fmt.Errorf("section %d: unknown role %q", i, role)
			}
			if points < 0 {
				return "", fmt.Errorf("section %d: negative points for role %q", i, role)
			}
			totals[role] += points
		}
	}

	best := ""
	bestTotal := -1
	for _, role := range roleOrder {
		if t := totals[role]; t > bestTotal {
			best = role
			bestTotal = t
		}
	}
	return best, nil
}
