package session

import (
	"encoding/base64"
	"errors"
	"strconv"

	"github.com/cuemby/smoldb/pkg/auth"
	"github.com/cuemby/smoldb/pkg/codec"
	"github.com/cuemby/smoldb/pkg/crypto"
	"github.com/cuemby/smoldb/pkg/database"
	"github.com/cuemby/smoldb/pkg/protocol"
	"github.com/cuemby/smoldb/pkg/registry"
	"github.com/cuemby/smoldb/pkg/types"
)

// dispatchRequest handles every request except Encrypted (peeled off by
// dispatch) while the session is not mid-stream.
func (s *Session) dispatchRequest(req protocol.Request) *protocol.Response {
	switch req.Op {
	case protocol.OpRead:
		return s.opRead(req)
	case protocol.OpWrite:
		return s.opWrite(req)
	case protocol.OpDeleteData:
		return s.opDeleteData(req)
	case protocol.OpCreateDB:
		return s.opCreateDB(req)
	case protocol.OpDeleteDB:
		return s.opDeleteDB(req)
	case protocol.OpListDB:
		return s.opListDB()
	case protocol.OpListDBContents:
		return s.opListDBContents(req)
	case protocol.OpAddToList:
		return s.opAddToList(req)
	case protocol.OpRemoveFromList:
		return s.opRemoveFromList(req)
	case protocol.OpReadFromList:
		return s.opReadFromList(req)
	case protocol.OpClearList:
		return s.opClearList(req)
	case protocol.OpGetListLength:
		return s.opGetListLength(req)
	case protocol.OpStreamReadDb:
		return s.opStreamReadDb(req)
	case protocol.OpStreamList:
		return s.opStreamList(req)
	case protocol.OpReadyForNextItem, protocol.OpEndStreamRead:
		// Valid only while streaming; outside a stream these are stray.
		s.logger.Debug().Str("op", string(req.Op)).Msg("stream control op received with no active stream")
		resp := protocol.Err(protocol.ErrBadPacket)
		return &resp
	case protocol.OpSetKey:
		return s.opSetKey(req)
	case protocol.OpGetDBSettings:
		return s.opGetDBSettings(req)
	case protocol.OpChangeDBSettings:
		return s.opChangeDBSettings(req)
	case protocol.OpAddAdmin:
		return s.opAddAdmin(req)
	case protocol.OpAddUser:
		return s.opAddUser(req)
	case protocol.OpGetRole:
		return s.opGetRole(req)
	case protocol.OpGetStats:
		return s.opGetStats(req)
	case protocol.OpSetupEncryption:
		return s.opSetupEncryption()
	case protocol.OpPubKey:
		return s.opPubKey(req)
	default:
		s.logger.Debug().Str("op", string(req.Op)).Msg("unrecognized op")
		resp := protocol.Err(protocol.ErrBadPacket)
		return &resp
	}
}

// loadAuthorized resolves name through the registry (existence checked
// before permission, per the Open Question decision recorded in
// DESIGN.md), resolves the caller's role against that database's
// settings, and enforces perm. Touches last-access on success.
func (s *Session) loadAuthorized(name types.DBName, perm auth.Permission) (*database.DB, error) {
	db, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	role := auth.Resolve(s.registry.SuperAdmins(), db.Settings(), s.credential)
	if err := auth.Check(role, db.Settings(), perm); err != nil {
		return nil, err
	}
	db.Touch()
	return db, nil
}

// loadAsAdmin is loadAuthorized's counterpart for operations gated by
// RequireAdminOrSuper rather than a read/write/list bit.
func (s *Session) loadAsAdmin(name types.DBName) (*database.DB, error) {
	db, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	role := auth.Resolve(s.registry.SuperAdmins(), db.Settings(), s.credential)
	if err := auth.RequireAdminOrSuper(role); err != nil {
		return nil, err
	}
	return db, nil
}

// loadAsSuperAdmin is loadAuthorized's counterpart for operations
// requiring SuperAdmin specifically (ChangeDBSettings).
func (s *Session) loadAsSuperAdmin(name types.DBName) (*database.DB, error) {
	db, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	role := auth.Resolve(s.registry.SuperAdmins(), db.Settings(), s.credential)
	if err := auth.RequireSuperAdmin(role); err != nil {
		return nil, err
	}
	return db, nil
}

func (s *Session) errResponse(err error) *protocol.Response {
	resp := protocol.Err(mapError(err))
	return &resp
}

func mapError(err error) protocol.ErrorKind {
	switch {
	case errors.Is(err, registry.ErrDBNotFound):
		return protocol.ErrDBNotFound
	case errors.Is(err, registry.ErrDBAlreadyExists):
		return protocol.ErrDBAlreadyExists
	case errors.Is(err, registry.ErrFileSystemError):
		return protocol.ErrDBFileSystemError
	case errors.Is(err, registry.ErrDeserialization):
		return protocol.ErrDeserialization
	case errors.Is(err, registry.ErrSerialization):
		return protocol.ErrSerializationError
	case errors.Is(err, database.ErrValueNotFound):
		return protocol.ErrValueNotFound
	case errors.Is(err, database.ErrListNotFound):
		return protocol.ErrListNotFound
	case errors.Is(err, auth.ErrInvalidPermissions):
		return protocol.ErrInvalidPermissions
	default:
		return protocol.ErrBadPacket
	}
}

// encodeStructured re-encodes a structured reply value as a string
// through the codec, per spec §4.6 ("numeric and structured replies are
// re-encoded as strings through the codec; clients parse them back").
func encodeStructured(v any) *protocol.Response {
	data, err := codec.Encode(v)
	if err != nil {
		resp := protocol.Err(protocol.ErrSerializationError)
		return &resp
	}
	resp := protocol.Reply(string(data))
	return &resp
}

func (s *Session) opRead(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermRead)
	if err != nil {
		return s.errResponse(err)
	}
	v, err := db.ContentGet(types.Key(req.Key))
	if err != nil {
		return s.errResponse(err)
	}
	resp := protocol.Reply(v)
	return &resp
}

func (s *Session) opWrite(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermWrite)
	if err != nil {
		return s.errResponse(err)
	}
	prev, hadPrev := db.ContentPut(types.Key(req.Key), req.Value)
	s.persistIfCached(types.DBName(req.DB))
	if !hadPrev {
		resp := protocol.NoData()
		return &resp
	}
	resp := protocol.Reply(prev)
	return &resp
}

func (s *Session) opDeleteData(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermWrite)
	if err != nil {
		return s.errResponse(err)
	}
	prev, err := db.ContentDelete(types.Key(req.Key))
	if err != nil {
		return s.errResponse(err)
	}
	s.persistIfCached(types.DBName(req.DB))
	resp := protocol.Reply(prev)
	return &resp
}

func (s *Session) opCreateDB(req protocol.Request) *protocol.Response {
	if !s.registry.SuperAdmins().Contains(s.credential) {
		resp := protocol.Err(protocol.ErrInvalidPermissions)
		return &resp
	}
	settings := types.DefaultDBSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}
	if err := s.registry.CreateDB(types.DBName(req.DB), settings); err != nil {
		return s.errResponse(err)
	}
	resp := protocol.NoData()
	return &resp
}

func (s *Session) opDeleteDB(req protocol.Request) *protocol.Response {
	name := types.DBName(req.DB)
	if _, err := s.registry.Get(name); err != nil {
		return s.errResponse(err)
	}
	if !s.registry.SuperAdmins().Contains(s.credential) {
		resp := protocol.Err(protocol.ErrInvalidPermissions)
		return &resp
	}
	if err := s.registry.DeleteDB(name); err != nil {
		return s.errResponse(err)
	}
	resp := protocol.NoData()
	return &resp
}

// opListDB is ungated, per the Open Question decision recorded in
// DESIGN.md: the name set carries no confidential information.
func (s *Session) opListDB() *protocol.Response {
	return encodeStructured(s.registry.Names())
}

func (s *Session) opListDBContents(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermList)
	if err != nil {
		return s.errResponse(err)
	}
	return encodeStructured(db.SnapshotContent())
}

func (s *Session) opAddToList(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermWrite)
	if err != nil {
		return s.errResponse(err)
	}
	db.ListAppend(types.Key(req.List), req.Index, req.Value)
	s.persistIfCached(types.DBName(req.DB))
	resp := protocol.NoData()
	return &resp
}

func (s *Session) opRemoveFromList(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermWrite)
	if err != nil {
		return s.errResponse(err)
	}
	removed, err := db.ListPop(types.Key(req.List), req.Index)
	if err != nil {
		return s.errResponse(err)
	}
	s.persistIfCached(types.DBName(req.DB))
	resp := protocol.Reply(removed)
	return &resp
}

func (s *Session) opReadFromList(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermRead)
	if err != nil {
		return s.errResponse(err)
	}
	idx := 0
	if req.Index != nil {
		idx = *req.Index
	}
	v, err := db.ListGet(types.Key(req.List), idx)
	if err != nil {
		return s.errResponse(err)
	}
	resp := protocol.Reply(v)
	return &resp
}

func (s *Session) opClearList(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermWrite)
	if err != nil {
		return s.errResponse(err)
	}
	if err := db.ListClear(types.Key(req.List)); err != nil {
		return s.errResponse(err)
	}
	s.persistIfCached(types.DBName(req.DB))
	resp := protocol.NoData()
	return &resp
}

func (s *Session) opGetListLength(req protocol.Request) *protocol.Response {
	db, err := s.loadAuthorized(types.DBName(req.DB), auth.PermRead)
	if err != nil {
		return s.errResponse(err)
	}
	n, err := db.ListLen(types.Key(req.List))
	if err != nil {
		return s.errResponse(err)
	}
	resp := protocol.Reply(strconv.Itoa(n))
	return &resp
}

func (s *Session) opSetKey(req protocol.Request) *protocol.Response {
	cred := types.Credential(req.Credential)
	if s.registry.SuperAdmins().Empty() {
		if err := s.registry.PromoteSuperAdmin(cred); err != nil {
			s.logger.Error().Err(err).Msg("failed to persist super-admin bootstrap")
		}
	}
	s.credential = cred
	resp := protocol.NoData()
	return &resp
}

func (s *Session) opGetDBSettings(req protocol.Request) *protocol.Response {
	db, err := s.loadAsAdmin(types.DBName(req.DB))
	if err != nil {
		return s.errResponse(err)
	}
	return encodeStructured(db.Settings())
}

func (s *Session) opChangeDBSettings(req protocol.Request) *protocol.Response {
	db, err := s.loadAsSuperAdmin(types.DBName(req.DB))
	if err != nil {
		return s.errResponse(err)
	}
	if req.Settings == nil {
		resp := protocol.Err(protocol.ErrBadPacket)
		return &resp
	}
	db.SetSettings(*req.Settings)
	s.persistIfCached(types.DBName(req.DB))
	resp := protocol.NoData()
	return &resp
}

// opAddAdmin permits Admin in addition to SuperAdmin, per the Open
// Question decision recorded in DESIGN.md.
func (s *Session) opAddAdmin(req protocol.Request) *protocol.Response {
	db, err := s.loadAsAdmin(types.DBName(req.DB))
	if err != nil {
		return s.errResponse(err)
	}
	db.AddAdmin(types.Credential(req.Credential))
	s.persistIfCached(types.DBName(req.DB))
	resp := protocol.NoData()
	return &resp
}

func (s *Session) opAddUser(req protocol.Request) *protocol.Response {
	db, err := s.loadAsAdmin(types.DBName(req.DB))
	if err != nil {
		return s.errResponse(err)
	}
	db.AddUser(types.Credential(req.Credential))
	s.persistIfCached(types.DBName(req.DB))
	resp := protocol.NoData()
	return &resp
}

// opGetRole always returns the caller's own role, regardless of
// permission — the one exception to the Admin/SuperAdmin gate in its
// spec table row.
func (s *Session) opGetRole(req protocol.Request) *protocol.Response {
	db, err := s.registry.Get(types.DBName(req.DB))
	if err != nil {
		return s.errResponse(err)
	}
	role := auth.Resolve(s.registry.SuperAdmins(), db.Settings(), s.credential)
	resp := protocol.Reply(role.String())
	return &resp
}

func (s *Session) opGetStats(req protocol.Request) *protocol.Response {
	db, err := s.loadAsAdmin(types.DBName(req.DB))
	if err != nil {
		return s.errResponse(err)
	}
	return encodeStructured(db.Stats())
}

func (s *Session) opSetupEncryption() *protocol.Response {
	der, err := s.serverKey.PublicKeyBytes()
	if err != nil {
		resp := protocol.Err(protocol.ErrSerializationError)
		return &resp
	}
	resp := protocol.Reply(base64.StdEncoding.EncodeToString(der))
	return &resp
}

func (s *Session) opPubKey(req protocol.Request) *protocol.Response {
	pub, err := crypto.ParsePublicKey(req.PublicKey)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected malformed client public key")
		resp := protocol.Err(protocol.ErrBadPacket)
		return &resp
	}
	s.clientPubKey = pub
	s.logger.Debug().Msg("client public key registered; replies now encrypted")
	resp := protocol.NoData()
	return &resp
}

// persistIfCached writes the current in-memory state of name to disk.
// Errors are logged, not surfaced: the spec treats durability-on-write as
// best-effort background persistence, with authoritative failure
// handling living in the sweep path and explicit save operations.
func (s *Session) persistIfCached(name types.DBName) {
	if err := s.registry.Persist(name); err != nil {
		s.logger.Error().Err(err).Str("db", string(name)).Msg("failed to persist database after write")
	}
}
