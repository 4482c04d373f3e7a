package database

import "github.com/cuemby/smoldb/pkg/types"

// ListAppend inserts value at index if given and in range, otherwise
// appends to the tail. Creates the list if it doesn't exist yet.
func (d *DB) ListAppend(list types.Key, index *int, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.RecordWrite()

	cur := d.keyedLists[list]
	if index == nil || *index < 0 || *index > len(cur) {
		cur = append(cur, value)
	} else {
		cur = append(cur, "")
		copy(cur[*index+1:], cur[*index:])
		cur[*index] = value
	}
	d.keyedLists[list] = cur
}

// ListPop removes and returns the value at index if given, or pops the
// tail if index is nil. Removes the list key entirely if it becomes
// empty. Fails ErrListNotFound if the list has no entry at all, or if a
// given index is out of range.
func (d *DB) ListPop(list types.Key, index *int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.RecordWrite()

	cur, ok := d.keyedLists[list]
	if !ok || len(cur) == 0 {
		return "", ErrListNotFound
	}

	var removed string
	if index == nil {
		removed = cur[len(cur)-1]
		cur = cur[:len(cur)-1]
	} else {
		if *index < 0 || *index >= len(cur) {
			return "", ErrListNotFound
		}
		removed = cur[*index]
		cur = append(cur[:*index], cur[*index+1:]...)
	}

	if len(cur) == 0 {
		delete(d.keyedLists, list)
	} else {
		d.keyedLists[list] = cur
	}
	return removed, nil
}

// ListGet reads the value at index within list.
func (d *DB) ListGet(list types.Key, index int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.RecordRead()

	cur, ok := d.keyedLists[list]
	if !ok {
		return "", ErrListNotFound
	}
	if index < 0 || index >= len(cur) {
		return "", ErrValueNotFound
	}
	return cur[index], nil
}

// ListClear removes a list wholesale.
func (d *DB) ListClear(list types.Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.RecordWrite()

	if _, ok := d.keyedLists[list]; !ok {
		return ErrListNotFound
	}
	delete(d.keyedLists, list)
	return nil
}

// ListLen returns the number of elements in list.
func (d *DB) ListLen(list types.Key) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cur, ok := d.keyedLists[list]
	if !ok {
		return 0, ErrListNotFound
	}
	return len(cur), nil
}

// SnapshotList returns a consistent copy of one list's contents, for
// StreamList.
func (d *DB) SnapshotList(list types.Key) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cur, ok := d.keyedLists[list]
	if !ok {
		return nil, ErrListNotFound
	}
	out := make([]string, len(cur))
	copy(out, cur)
	return out, nil
}
