// Package invdb is the embedded inventory database: one bucket of folders,
// one of items, both keyed by uuid, backed by go.etcd.io/bbolt. Per spec
// §1 the core only defines what it stores; this is the reference storage
// engine that satisfies that definition inside the client process (the
// teacher's go.mod carries bbolt as a transitive dependency; here it is
// promoted to a direct, exercised one).
package invdb

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketFolders = []byte("folders")
	bucketItems   = []byte("items")

	ErrNotFound = errors.New("invdb: not found")
)

// Folder mirrors the folder metadata the capability client's inventory
// fetch returns (spec §4.8).
type Folder struct {
	FolderID    uuid.UUID
	OwnerID     uuid.UUID
	ParentID    uuid.UUID
	Name        string
	Version     int32
	Descendents int32
	Type        int32
}

// Item mirrors one inventory item's metadata. Parameters/Textures are kept
// opaque per the spec's Open Question on the newline-separated ItemData
// format.
type Item struct {
	ItemID     uuid.UUID
	FolderID   uuid.UUID
	OwnerID    uuid.UUID
	AssetID    uuid.UUID
	Name       string
	Type       int32
	InvType    int32
	Parameters []string
	Textures   []string
	CreatedAt  time.Time
}

type DB struct {
	bolt *bolt.DB
}

// Open opens (creating if necessary) the inventory database file under the
// user's data directory.
func Open(userDataDir string) (*DB, error) {
	path := filepath.Join(userDataDir, "inventory.db")
	bdb, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketFolders); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketItems)
		return err
	}); err != nil {
		bdb.Close()
		return nil, err
	}
	return &DB{bolt: bdb}, nil
}

func (db *DB) Close() error {
	return db.bolt.Close()
}

func (db *DB) PutFolder(f Folder) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFolders).Put(f.FolderID[:], b)
	})
}

func (db *DB) GetFolder(id uuid.UUID) (Folder, error) {
	var f Folder
	err := db.bolt.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFolders).Get(id[:])
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &f)
	})
	return f, err
}

func (db *DB) PutItem(it Item) error {
	b, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return db.bolt.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketItems).Put(it.ItemID[:], b)
	})
}

func (db *DB) GetItem(id uuid.UUID) (Item, error) {
	var it Item
	err := db.bolt.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketItems).Get(id[:])
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &it)
	})
	return it, err
}

// ItemsInFolder returns every item whose FolderID matches folder. The
// bucket is small enough per-user that a full scan is acceptable; a
// secondary index is not worth the complexity at this scale.
func (db *DB) ItemsInFolder(folder uuid.UUID) ([]Item, error) {
	var out []Item
	err := db.bolt.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketItems).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var it Item
			if err := json.Unmarshal(v, &it); err != nil {
				return err
			}
			if it.FolderID == folder {
				out = append(out, it)
			}
		}
		return nil
	})
	return out, err
}
