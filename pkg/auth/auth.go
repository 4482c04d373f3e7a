package auth

import (
	"errors"

	"github.com/cuemby/smoldb/pkg/types"
)

// ErrInvalidPermissions is returned by Check when the caller's role lacks
// the required permission.
var ErrInvalidPermissions = errors.New("invalid permissions")

// SuperAdmins is the process-wide set of super-admin credentials. Backed by
// a plain map behind a mutex-free read path: callers (pkg/registry) already
// serialize mutation through the registry's write lock, matching the
// "writes to the name set or super-admin set take the registry write lock"
// rule in spec §5.
type SuperAdmins struct {
	set map[types.Credential]struct{}
}

// NewSuperAdmins creates an empty super-admin set.
func NewSuperAdmins() *SuperAdmins {
	return &SuperAdmins{set: make(map[types.Credential]struct{})}
}

// Contains reports whether c is a super-admin credential.
func (s *SuperAdmins) Contains(c types.Credential) bool {
	_, ok := s.set[c]
	return ok
}

// Add registers c as a super-admin credential.
func (s *SuperAdmins) Add(c types.Credential) {
	s.set[c] = struct{}{}
}

// Empty reports whether no super-admin has ever been registered — the
// bootstrap-rule trigger in spec §4.6.
func (s *SuperAdmins) Empty() bool {
	return len(s.set) == 0
}

// All returns a copy of the super-admin credential set, for persistence.
func (s *SuperAdmins) All() []string {
	out := make([]string, 0, len(s.set))
	for c := range s.set {
		out = append(out, string(c))
	}
	return out
}

// Load replaces the set's contents, for restoring a persisted super-admin
// list at startup.
func (s *SuperAdmins) Load(creds []string) {
	s.set = make(map[types.Credential]struct{}, len(creds))
	for _, c := range creds {
		s.set[types.Credential(c)] = struct{}{}
	}
}

// Resolve computes the caller's role against one database's settings, per
// the resolution order in spec §4.5.
func Resolve(super *SuperAdmins, settings types.DBSettings, c types.Credential) types.Role {
	switch {
	case super.Contains(c):
		return types.RoleSuperAdmin
	case settings.HasAdmin(c):
		return types.RoleAdmin
	case settings.HasUser(c):
		return types.RoleUser
	default:
		return types.RoleOther
	}
}

// Permission names one gated capability.
type Permission int

const (
	PermRead Permission = iota
	PermWrite
	PermList
)

// Check enforces the permission table in spec §4.5 for a data-plane
// operation (read/write/list a key, list value, or list length). Admin and
// SuperAdmin always pass.
func Check(role types.Role, settings types.DBSettings, perm Permission) error {
	if role == types.RoleAdmin || role == types.RoleSuperAdmin {
		return nil
	}

	var bits types.Permissions
	switch role {
	case types.RoleUser:
		bits = settings.UserPermissions
	default:
		bits = settings.OtherPermissions
	}

	var ok bool
	switch perm {
	case PermRead:
		ok = bits.Read
	case PermWrite:
		ok = bits.Write
	case PermList:
		ok = bits.List
	}
	if !ok {
		return ErrInvalidPermissions
	}
	return nil
}

// RequireSuperAdmin enforces SuperAdmin-only operations: CreateDB, DeleteDB,
// ChangeDBSettings.
func RequireSuperAdmin(role types.Role) error {
	if role != types.RoleSuperAdmin {
		return ErrInvalidPermissions
	}
	return nil
}

// RequireAdminOrSuper enforces Admin-or-SuperAdmin operations: AddAdmin
// (retained per spec §9's open question), AddUser, GetDBSettings,
// GetStats.
func RequireAdminOrSuper(role types.Role) error {
	if role != types.RoleAdmin && role != types.RoleSuperAdmin {
		return ErrInvalidPermissions
	}
	return nil
}
