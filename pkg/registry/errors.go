package registry

import "errors"

// ErrDBNotFound is returned when a name is absent from the registry's name
// set.
var ErrDBNotFound = errors.New("database not found")

// ErrDBAlreadyExists is returned by CreateDB when the name is already
// registered or a durable file already occupies its path.
var ErrDBAlreadyExists = errors.New("database already exists")

// ErrFileSystemError wraps an I/O failure persisting or loading a durable
// database file.
var ErrFileSystemError = errors.New("database file system error")

// ErrDeserialization wraps a decode failure reading a durable database
// file back into memory.
var ErrDeserialization = errors.New("database deserialization error")

// ErrSerialization wraps an encode failure writing a database's in-memory
// state out to its durable file.
var ErrSerialization = errors.New("database serialization error")
