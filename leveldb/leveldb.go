// Package leveldb is a wrapper of goleveldb, storing the blocks scan cursor.
package leveldb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/common"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	goleveldb "github.com/syndtr/goleveldb/leveldb"
	dberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to leveldb
	// read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the open
	// database files.
	minHandles = 16
)

var (
	scanCursorKey   = []byte("scan-cursor")
	irreversibleKey = []byte("irreversible")
)

// IsNotFoundErr is err 'ErrNotFound'
func IsNotFoundErr(err error) bool {
	return errors.Is(err, dberrors.ErrNotFound)
}

// Database is a persistent key-value store.
type Database struct {
	path  string        // filename
	lvldb *goleveldb.DB // LevelDB instance
}

// New returns a wrapped LevelDB object.
func New(path string, cache int, handles int, readonly bool) (*Database, error) {
	return NewCustom(path, func(options *opt.Options) {
		// Ensure we have some minimal caching and file guarantees
		if cache < minCache {
			cache = minCache
		}
		if handles < minHandles {
			handles = minHandles
		}
		options.OpenFilesCacheCapacity = handles
		options.BlockCacheCapacity = cache / 2 * opt.MiB
		options.WriteBuffer = cache / 4 * opt.MiB // Two of these are used internally
		if readonly {
			options.ReadOnly = true
		}
	})
}

// NewCustom returns a wrapped LevelDB object.
// The customize function allows the caller to modify the leveldb options.
func NewCustom(path string, customize func(options *opt.Options)) (*Database, error) {
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
	}
	if customize != nil {
		customize(options)
	}
	usedCache := options.GetBlockCacheCapacity() + options.GetWriteBuffer()*2
	logCtx := []interface{}{"database", path, "cache", common.StorageSize(usedCache), "handles", options.GetOpenFilesCacheCapacity()}
	if options.ReadOnly {
		logCtx = append(logCtx, "readonly", "true")
	}
	log.Info("Allocated cache and file handles", logCtx...)

	// Open the db and recover any potential corruptions
	db, err := goleveldb.OpenFile(path, options)
	if dberrors.IsCorrupted(err) {
		db, err = goleveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Database{
		path:  path,
		lvldb: db,
	}, nil
}

// Close flushes any pending data to disk and closes
// all io accesses to the underlying key-value store.
func (db *Database) Close() error {
	return db.lvldb.Close()
}

// Path returns the path to the database directory.
func (db *Database) Path() string {
	return db.path
}

// GetScanCursor returns the next block number to scan.
// 'exist' is false if no block has been scanned yet.
func (db *Database) GetScanCursor() (next blocks.BlockNumber, exist bool, err error) {
	dat, err := db.lvldb.Get(scanCursorKey, nil)
	if err != nil {
		if IsNotFoundErr(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(dat) != 8 {
		return 0, false, fmt.Errorf("wrong scan cursor length %v", len(dat))
	}
	return blocks.BlockNumber(binary.BigEndian.Uint64(dat)), true, nil
}

// SetScanCursor saves the next block number to scan
func (db *Database) SetScanCursor(next blocks.BlockNumber) error {
	if next <= 0 {
		return fmt.Errorf("wrong scan cursor %v", next)
	}
	dat := make([]byte, 8)
	binary.BigEndian.PutUint64(dat, uint64(next))
	return db.lvldb.Put(scanCursorKey, dat, nil)
}

// GetIrreversible returns the last saved irreversible marker, nil if not saved
func (db *Database) GetIrreversible() (*blocks.IrreversibleMarker, error) {
	dat, err := db.lvldb.Get(irreversibleKey, nil)
	if err != nil {
		if IsNotFoundErr(err) {
			return nil, nil
		}
		return nil, err
	}
	var marker blocks.IrreversibleMarker
	if err = json.Unmarshal(dat, &marker); err != nil {
		return nil, err
	}
	return &marker, nil
}

// SetIrreversible saves the irreversible marker
func (db *Database) SetIrreversible(marker *blocks.IrreversibleMarker) error {
	dat, err := json.Marshal(marker)
	if err != nil {
		return err
	}
	return db.lvldb.Put(irreversibleKey, dat, nil)
}
