// Package persist implements write-behind persistence over leveldb.
package persist

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
)

// DB is a leveldb instance shared by all managers of the node.
type DB struct {
	db   *leveldb.DB
	path string
}

// Open opens the database in path, recovering it if it is corrupted.
func Open(path string, cacheMiB int, logger *zap.Logger) (*DB, error) {
	if cacheMiB < 16 {
		cacheMiB = 16
	}
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity: cacheMiB / 2 * opt.MiB,
		WriteBuffer:        cacheMiB / 4 * opt.MiB,
		Filter:             filter.NewBloomFilter(10),
	})
	var corrupted *lerrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		logger.Warn("database is corrupted, recovering", zap.String("path", path), zap.Error(err))
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &DB{db: db, path: path}, nil
}

// InMemory creates a database that is not backed by disk.
func InMemory() *DB {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		panic(fmt.Sprintf("open in memory leveldb: %v", err))
	}
	return &DB{db: db, path: ":memory:"}
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) write(batch *leveldb.Batch) error {
	return db.db.Write(batch, nil)
}

func (db *DB) iterate(prefix []byte, fn func(key, value []byte) bool) error {
	it := db.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	return it.Error()
}
