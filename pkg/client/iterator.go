package client

import (
	"iter"

	"github.com/cuemby/smoldb/pkg/protocol"
)

// Databases returns an iterator over every database name known to the
// core, built on ListDB. Convenience ergonomics supplementing the
// reference client's DBListIter (original_source/smol_db_client/src/db_list_iter.rs),
// expressed as a Go range-over-func iterator rather than a stateful
// iterator type since ListDB already returns its full result in one
// round trip. Check DatabasesErr after ranging to detect a failed ListDB
// call.
func (c *Client) Databases() iter.Seq[string] {
	return func(yield func(string) bool) {
		names, err := c.ListDB()
		if err != nil {
			c.databasesErr = err
			return
		}
		c.databasesErr = nil
		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}
}

// DatabasesErr returns the error from the most recently ranged-over
// Databases iterator, or nil if it completed without one.
func (c *Client) DatabasesErr() error {
	return c.databasesErr
}

// ContentIter iterates a database's content map one (key, value) pair at
// a time, driving the core's streaming sub-protocol. Grounded on the
// reference client's TableIter, which offers the same element-at-a-time
// shape through Rust's Iterator trait.
type ContentIter struct {
	c    *Client
	done bool
	err  error
}

// StreamReadDb enters streaming mode over db's full content map and
// returns an iterator over it. Requires the list permission bit, same as
// ListDBContents.
func (c *Client) StreamReadDb(db string) (*ContentIter, error) {
	if _, err := c.call(protocol.Request{Op: protocol.OpStreamReadDb, DB: db}); err != nil {
		return nil, err
	}
	return &ContentIter{c: c}, nil
}

// Next advances to the next (key, value) pair. ok is false once the
// stream is exhausted or an error occurred; check Err after the first
// false return.
func (it *ContentIter) Next() (key, value string, ok bool) {
	if it.done {
		return "", "", false
	}
	if err := protocol.WriteRequest(it.c.conn, protocol.Request{Op: protocol.OpReadyForNextItem}); err != nil {
		it.err = err
		it.done = true
		return "", "", false
	}
	frame, err := protocol.ReadStreamFrame(it.c.conn)
	if err != nil {
		it.err = err
		it.done = true
		return "", "", false
	}
	switch frame.Tag {
	case protocol.StreamTagItem:
		return frame.Item.Key, frame.Item.Value, true
	case protocol.StreamTagError:
		it.err = responseToError(frame.Final)
		it.done = true
		return "", "", false
	default:
		it.done = true
		return "", "", false
	}
}

// Err returns the error that ended iteration, if any.
func (it *ContentIter) Err() error {
	return it.err
}

// Close ends the stream early, returning the session to normal request
// handling. Safe to call after the iterator is already exhausted.
func (it *ContentIter) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	return protocol.WriteRequest(it.c.conn, protocol.Request{Op: protocol.OpEndStreamRead})
}

// ListIter iterates a single keyed list's values in order, driving the
// same streaming sub-protocol as ContentIter. Grounded on the reference
// client's DBListIter.
type ListIter struct {
	c    *Client
	done bool
	err  error
}

// StreamList enters streaming mode over a single list and returns an
// iterator over its values in order. Requires the read permission bit,
// same as ReadFromList.
func (c *Client) StreamList(db, list string) (*ListIter, error) {
	if _, err := c.call(protocol.Request{Op: protocol.OpStreamList, DB: db, List: list}); err != nil {
		return nil, err
	}
	return &ListIter{c: c}, nil
}

// Next advances to the next value in the list.
func (it *ListIter) Next() (value string, ok bool) {
	if it.done {
		return "", false
	}
	if err := protocol.WriteRequest(it.c.conn, protocol.Request{Op: protocol.OpReadyForNextItem}); err != nil {
		it.err = err
		it.done = true
		return "", false
	}
	frame, err := protocol.ReadStreamFrame(it.c.conn)
	if err != nil {
		it.err = err
		it.done = true
		return "", false
	}
	switch frame.Tag {
	case protocol.StreamTagItem:
		return frame.Item.Value, true
	case protocol.StreamTagError:
		it.err = responseToError(frame.Final)
		it.done = true
		return "", false
	default:
		it.done = true
		return "", false
	}
}

// Err returns the error that ended iteration, if any.
func (it *ListIter) Err() error {
	return it.err
}

// Close ends the stream early.
func (it *ListIter) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	return protocol.WriteRequest(it.c.conn, protocol.Request{Op: protocol.OpEndStreamRead})
}
