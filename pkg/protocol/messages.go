package protocol

import "github.com/cuemby/smoldb/pkg/types"

// Op names one request variant. The set is exhaustive and fixed per the
// core's request set (spec §4.6).
type Op string

const (
	OpRead              Op = "Read"
	OpWrite             Op = "Write"
	OpDeleteData        Op = "DeleteData"
	OpCreateDB          Op = "CreateDB"
	OpDeleteDB          Op = "DeleteDB"
	OpListDB            Op = "ListDB"
	OpListDBContents    Op = "ListDBContents"
	OpAddToList         Op = "AddToList"
	OpRemoveFromList    Op = "RemoveFromList"
	OpReadFromList      Op = "ReadFromList"
	OpClearList         Op = "ClearList"
	OpGetListLength     Op = "GetListLength"
	OpStreamReadDb      Op = "StreamReadDb"
	OpStreamList        Op = "StreamList"
	OpReadyForNextItem  Op = "ReadyForNextItem"
	OpEndStreamRead     Op = "EndStreamRead"
	OpSetKey            Op = "SetKey"
	OpGetDBSettings     Op = "GetDBSettings"
	OpChangeDBSettings  Op = "ChangeDBSettings"
	OpAddAdmin          Op = "AddAdmin"
	OpAddUser           Op = "AddUser"
	OpGetRole           Op = "GetRole"
	OpGetStats          Op = "GetStats"
	OpSetupEncryption   Op = "SetupEncryption"
	OpPubKey            Op = "PubKey"
	OpEncrypted         Op = "Encrypted"
)

// Request is the tagged union of every client-to-server message. Only the
// fields relevant to Op are populated; the rest are left zero. This is the
// adjacently-tagged-enum shape the codec round-trips: one Op discriminator
// plus sparse optional fields.
type Request struct {
	Op Op `yaml:"op"`

	DB         string            `yaml:"db,omitempty"`
	Key        string            `yaml:"key,omitempty"`
	Value      string            `yaml:"value,omitempty"`
	List       string            `yaml:"list,omitempty"`
	Index      *int              `yaml:"index,omitempty"`
	Credential string            `yaml:"credential,omitempty"`
	Settings   *types.DBSettings `yaml:"settings,omitempty"`
	PublicKey  []byte            `yaml:"public_key,omitempty"`
	Ciphertext []byte            `yaml:"ciphertext,omitempty"`

	// Inner is never sent over the wire. The session engine does not set
	// it: it decodes an Encrypted(ciphertext) frame's plaintext into a
	// separate Request and dispatches that.
	Inner *Request `yaml:"-"`
}

// Kind discriminates the three shapes a Response can take.
type Kind string

const (
	KindSuccessNoData Kind = "SuccessNoData"
	KindSuccessReply  Kind = "SuccessReply"
	KindError         Kind = "Error"
)

// ErrorKind is the closed set of error conditions the core can surface on
// the wire (spec §6).
type ErrorKind string

const (
	ErrBadPacket           ErrorKind = "BadPacket"
	ErrDBNotFound          ErrorKind = "DBNotFound"
	ErrDBFileSystemError   ErrorKind = "DBFileSystemError"
	ErrValueNotFound       ErrorKind = "ValueNotFound"
	ErrListNotFound        ErrorKind = "ListNotFound"
	ErrDBAlreadyExists     ErrorKind = "DBAlreadyExists"
	ErrSerializationError  ErrorKind = "SerializationError"
	ErrDeserialization     ErrorKind = "DeserializationError"
	ErrInvalidPermissions  ErrorKind = "InvalidPermissions"
	ErrUserNotFound        ErrorKind = "UserNotFound"
)

// Response is the envelope wrapping every non-stream reply.
type Response struct {
	Kind  Kind      `yaml:"kind"`
	Value string    `yaml:"value,omitempty"`
	Error ErrorKind `yaml:"error,omitempty"`
}

// NoData builds a SuccessNoData envelope.
func NoData() Response { return Response{Kind: KindSuccessNoData} }

// Reply builds a SuccessReply envelope carrying value.
func Reply(value string) Response { return Response{Kind: KindSuccessReply, Value: value} }

// Err builds an Error envelope carrying kind.
func Err(kind ErrorKind) Response { return Response{Kind: KindError, Error: kind} }
