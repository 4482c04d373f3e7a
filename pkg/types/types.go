// Package types defines the core data model primitives shared across smoldb:
// database names, location keys, list indices, credentials, roles, and the
// per-database settings block. These are plain value types with no I/O.
package types

import "time"

// DBName identifies a database. It doubles as the filename stem in the
// durable store, so equality is byte-exact and case-sensitive.
type DBName string

// Key identifies an entry inside a database's content map, or names a list
// inside its keyed-list map. Opaque to the core.
type Key string

// Index is a position inside a keyed list. A nil *Index means "unspecified":
// tail for append/pop, invalid for read.
type Index = int

// Credential is the opaque string a client presents once per session to
// establish a role. Compared by byte equality only; never hashed by the core.
type Credential string

// Role is resolved per call from a credential and a database's access
// lists; it is never stored.
type Role int

const (
	RoleOther Role = iota
	RoleUser
	RoleAdmin
	RoleSuperAdmin
)

func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "SuperAdmin"
	case RoleAdmin:
		return "Admin"
	case RoleUser:
		return "User"
	default:
		return "Other"
	}
}

// Permissions is the (read, write, list) triple gating a single role within
// one database.
type Permissions struct {
	Read  bool `yaml:"read"`
	Write bool `yaml:"write"`
	List  bool `yaml:"list"`
}

// DBSettings configures one database's invalidation policy and access
// lists. Admin and SuperAdmin always have all three permission bits; the
// two Permissions triples here gate only Other and User.
type DBSettings struct {
	InvalidationInterval time.Duration `yaml:"invalidation_interval"`
	OtherPermissions     Permissions   `yaml:"other_permissions"`
	UserPermissions      Permissions   `yaml:"user_permissions"`
	AdminCredentials     []string      `yaml:"admin_credentials"`
	UserCredentials      []string      `yaml:"user_credentials"`
}

// DefaultDBSettings mirrors the bootstrap defaults used by CreateDB when the
// caller supplies a zero-value settings argument (smol_db_server's
// new_user_handler convenience, carried into CreateDB per SPEC_FULL.md).
func DefaultDBSettings() DBSettings {
	return DBSettings{
		InvalidationInterval: 5 * time.Minute,
		OtherPermissions:     Permissions{Read: false, Write: false, List: false},
		UserPermissions:      Permissions{Read: true, Write: false, List: true},
		AdminCredentials:     nil,
		UserCredentials:      nil,
	}
}

// HasAdmin reports whether c is listed as an admin credential of s.
func (s DBSettings) HasAdmin(c Credential) bool {
	return contains(s.AdminCredentials, string(c))
}

// HasUser reports whether c is listed as a user credential of s.
func (s DBSettings) HasUser(c Credential) bool {
	return contains(s.UserCredentials, string(c))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
