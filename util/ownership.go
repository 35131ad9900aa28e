package util

import "github.com/diyetisyenim/diyet-api/model"

// OwnershipRule decides whether a caller may mutate or delete a specific
// row. Owners maps a caller role to the row's owning user id for that
// role. A role with an entry must match the caller's id; a role without
// an entry passes, because the route-level role list has already decided
// which roles reach the check at all. ADMIN is therefore never listed:
// wherever the route admits ADMIN, it bypasses ownership.
type OwnershipRule struct {
	Owners map[model.Role]uint
}

// Allows reports whether the caller identified by userID/role satisfies
// the rule.
func (r OwnershipRule) Allows(userID uint, role model.Role) bool {
	owner, ok := r.Owners[role]
	if !ok {
		return true
	}
	return owner == userID
}

// DietPlanOwnership builds the rule for diet plan mutations: only the
// authoring dietitian owns the row.
func DietPlanOwnership(plan model.DietPlan) OwnershipRule {
	return OwnershipRule{Owners: map[model.Role]uint{
		model.RoleDietitian: plan.DietitianID,
	}}
}

// RecipeOwnership builds the rule for recipe mutations.
func RecipeOwnership(recipe model.Recipe) OwnershipRule {
	return OwnershipRule{Owners: map[model.Role]uint{
		model.RoleDietitian: recipe.DietitianID,
	}}
}

// AppointmentOwnership builds the dual-owner rule for appointments:
// either participant, matched by role, owns the row.
func AppointmentOwnership(appt model.Appointment) OwnershipRule {
	return OwnershipRule{Owners: map[model.Role]uint{
		model.RoleDietitian: appt.DietitianID,
		model.RoleClient:    appt.ClientID,
	}}
}
