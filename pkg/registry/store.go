package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/smoldb/pkg/codec"
	"github.com/cuemby/smoldb/pkg/database"
	"github.com/cuemby/smoldb/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketMeta = []byte("meta")

	keyNameIndex   = []byte("names")
	keySuperAdmins = []byte("super_admins")
)

// sidecar wraps the bbolt store holding the name index and the
// super-admin credential set — registry state that is small, structured,
// and worth keyed lookups rather than a flat file of its own. The
// server's RSA key pair is persisted separately, as a PEM file, by
// pkg/crypto, only when --persist-keys is set.
type sidecar struct {
	db *bolt.DB
}

func openSidecar(dataDir string) (*sidecar, error) {
	path := filepath.Join(dataDir, "smoldb.index")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open sidecar index: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init sidecar index: %w", err)
	}
	return &sidecar{db: db}, nil
}

func (s *sidecar) Close() error {
	return s.db.Close()
}

func (s *sidecar) loadNames() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyNameIndex)
		if data == nil {
			return nil
		}
		return codec.Decode(data, &names)
	})
	if err != nil {
		return nil, fmt.Errorf("load name index: %w", err)
	}
	return names, nil
}

func (s *sidecar) saveNames(names []string) error {
	data, err := codec.Encode(names)
	if err != nil {
		return fmt.Errorf("encode name index: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyNameIndex, data)
	})
	if err != nil {
		return fmt.Errorf("save name index: %w", err)
	}
	return nil
}

func (s *sidecar) loadSuperAdmins() ([]string, error) {
	var creds []string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySuperAdmins)
		if data == nil {
			return nil
		}
		return codec.Decode(data, &creds)
	})
	if err != nil {
		return nil, fmt.Errorf("load super-admin set: %w", err)
	}
	return creds, nil
}

func (s *sidecar) saveSuperAdmins(creds []string) error {
	data, err := codec.Encode(creds)
	if err != nil {
		return fmt.Errorf("encode super-admin set: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySuperAdmins, data)
	})
	if err != nil {
		return fmt.Errorf("save super-admin set: %w", err)
	}
	return nil
}

// dbFilePath returns the durable flat-file path for name, per spec §6's
// literal "one file per database, named after the database" layout.
func dbFilePath(dataDir string, name types.DBName) string {
	return filepath.Join(dataDir, string(name))
}

func dbFileExists(dataDir string, name types.DBName) bool {
	_, err := os.Stat(dbFilePath(dataDir, name))
	return err == nil
}

func writeDBFile(dataDir string, name types.DBName, db *database.DB) error {
	data, err := codec.Encode(db.Export())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := os.WriteFile(dbFilePath(dataDir, name), data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystemError, err)
	}
	return nil
}

func readDBFile(dataDir string, name types.DBName) (*database.DB, error) {
	data, err := os.ReadFile(dbFilePath(dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileSystemError, err)
	}
	var snap database.Snapshot
	if err := codec.Decode(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return database.FromSnapshot(snap), nil
}

func removeDBFile(dataDir string, name types.DBName) error {
	err := os.Remove(dbFilePath(dataDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrFileSystemError, err)
	}
	return nil
}
