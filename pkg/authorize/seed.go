package authorize

import (
	"context"
	"log/slog"
)

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	// System-level policies (domain: sys)
	sysPolicies := []PermissionPolicy{
		// SuperAdmin: god mode
		{RolePlatformSuperAdmin, DomainSys, WildcardResource, WildcardAction, EffectAllow},

		// Admin: manage the service except RBAC itself
		{RoleAdmin, DomainSys, ResourceUser, ActionManage, EffectAllow},
		{RoleAdmin, DomainSys, ResourceAppointment, ActionManage, EffectAllow},
		{RoleAdmin, DomainSys, ResourceAvailabilitySlot, ActionManage, EffectAllow},
		{RoleAdmin, DomainSys, ResourceCase, ActionManage, EffectAllow},
		{RoleAdmin, DomainSys, ResourceCase, ActionArchive, EffectAllow},
		{RoleAdmin, DomainSys, ResourceAudit, ActionRead, EffectAllow},

		// Psychologist: own calendar, the appointments on it, the cases it feeds
		{RolePsychologist, DomainSys, ResourceAvailabilitySlot, ActionManage, EffectAllow},
		{RolePsychologist, DomainSys, ResourceAppointment, ActionRead, EffectAllow},
		{RolePsychologist, DomainSys, ResourceAppointment, ActionList, EffectAllow},
		{RolePsychologist, DomainSys, ResourceAppointment, ActionConfirm, EffectAllow},
		{RolePsychologist, DomainSys, ResourceAppointment, ActionUpdate, EffectAllow},
		{RolePsychologist, DomainSys, ResourceAppointment, ActionDelete, EffectAllow},
		{RolePsychologist, DomainSys, ResourceCase, ActionRead, EffectAllow},
		{RolePsychologist, DomainSys, ResourceCase, ActionList, EffectAllow},
		{RolePsychologist, DomainSys, ResourceCase, ActionUpdate, EffectAllow},
		{RolePsychologist, DomainSys, ResourceCase, ActionArchive, EffectAllow},

		// Student: book and manage own appointments, browse the roster
		{RoleStudent, DomainSys, ResourceAppointment, ActionCreate, EffectAllow},
		{RoleStudent, DomainSys, ResourceAppointment, ActionRead, EffectAllow},
		{RoleStudent, DomainSys, ResourceAppointment, ActionList, EffectAllow},
		{RoleStudent, DomainSys, ResourceAppointment, ActionUpdate, EffectAllow},
		{RoleStudent, DomainSys, ResourceAppointment, ActionDelete, EffectAllow},
		{RoleStudent, DomainSys, ResourceAvailabilitySlot, ActionRead, EffectAllow},
		{RoleStudent, DomainSys, ResourceAvailabilitySlot, ActionList, EffectAllow},
		{RoleStudent, DomainSys, ResourceUser, ActionList, EffectAllow},
	}

	// User-level policies (domain: user:*)
	userPolicies := []PermissionPolicy{
		// UserSelf: full control over own auth resources
		{RoleUserSelf, WildcardDomain, ResourceAuthSession, ActionManage, EffectAllow},
		{RoleUserSelf, WildcardDomain, ResourceRefreshToken, ActionManage, EffectAllow},
	}

	allPolicies := append(sysPolicies, userPolicies...)

	for _, p := range allPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(allPolicies))
	return nil
}

// AssignUserSelfRole assigns the user:self role in the user's private domain.
// Call this when creating a new user.
func AssignUserSelfRole(ctx context.Context, auth IAuthorization, userID string) error {
	domain := UserDomain(userID)
	subject := GroupSubject(userID)

	_, err := auth.AddRoleForUserInDomain(ctx, subject, RoleUserSelf, domain)
	return err
}

// AssignSystemRole assigns a system-level role to a user.
// Valid roles: RoleAdmin, RolePsychologist, RoleStudent
// Note: RolePlatformSuperAdmin should be assigned manually/carefully.
func AssignSystemRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	switch role {
	case RoleAdmin, RolePsychologist, RoleStudent:
		// valid system roles that can be assigned programmatically
	case RolePlatformSuperAdmin:
		// superadmin is valid but should be assigned with caution
	default:
		return ErrInvalidArgs
	}

	subject := GroupSubject(userID)
	_, err := auth.AddRoleForUserInDomain(ctx, subject, role, DomainSys)
	return err
}

// RemoveSystemRole removes a system-level role from a user.
func RemoveSystemRole(ctx context.Context, auth IAuthorization, userID string, role Role) error {
	subject := GroupSubject(userID)
	_, err := auth.RemoveRoleForUserInDomain(ctx, subject, role, DomainSys)
	return err
}

// GetSystemRoles returns all system-level roles a user has.
func GetSystemRoles(ctx context.Context, auth IAuthorization, userID string) ([]Role, error) {
	subject := GroupSubject(userID)
	return auth.GetRolesForUserInDomain(ctx, subject, DomainSys)
}
