/*
Package auth implements smoldb's authorization engine (C6): role
resolution from a credential and a database's access lists, and the
permission table gating every operation (spec §4.5).

Role resolution is checked in order: process-wide super-admin set, then the
target database's admin list, then its user list, falling through to
Other. Roles are never stored — they are recomputed on every call.
*/
package auth
