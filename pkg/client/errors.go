package client

import "github.com/cuemby/smoldb/pkg/protocol"

// ResponseError wraps one of the core's wire ErrorKinds. Callers compare
// against the sentinel values below with errors.Is.
type ResponseError struct {
	Kind protocol.ErrorKind
}

func (e *ResponseError) Error() string {
	return "smoldb: " + string(e.Kind)
}

// Is reports whether target is a *ResponseError with the same Kind,
// satisfying errors.Is.
func (e *ResponseError) Is(target error) bool {
	t, ok := target.(*ResponseError)
	return ok && t.Kind == e.Kind
}

var (
	ErrBadPacket          = &ResponseError{Kind: protocol.ErrBadPacket}
	ErrDBNotFound         = &ResponseError{Kind: protocol.ErrDBNotFound}
	ErrDBFileSystemError  = &ResponseError{Kind: protocol.ErrDBFileSystemError}
	ErrValueNotFound      = &ResponseError{Kind: protocol.ErrValueNotFound}
	ErrListNotFound       = &ResponseError{Kind: protocol.ErrListNotFound}
	ErrDBAlreadyExists    = &ResponseError{Kind: protocol.ErrDBAlreadyExists}
	ErrSerializationError = &ResponseError{Kind: protocol.ErrSerializationError}
	ErrDeserialization    = &ResponseError{Kind: protocol.ErrDeserialization}
	ErrInvalidPermissions = &ResponseError{Kind: protocol.ErrInvalidPermissions}
	ErrUserNotFound       = &ResponseError{Kind: protocol.ErrUserNotFound}
)

// ErrUnexpectedReply is returned when a successful reply's value cannot be
// decoded into the shape the method expects — a core/client version
// mismatch rather than a reported error kind.
type ErrUnexpectedReply struct {
	Kind protocol.Kind
}

func (e *ErrUnexpectedReply) Error() string {
	return "smoldb: unexpected reply kind " + string(e.Kind)
}

func responseToError(resp protocol.Response) error {
	return &ResponseError{Kind: resp.Error}
}
