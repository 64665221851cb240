// Package chunk implements the adult-side durable blob store (C1) and
// the ownership-checking handler that wraps it (C2), per spec.md §4.1
// and §4.2.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package chunk

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	xxhash "github.com/OneOfOne/xxhash"
	cuckoo "github.com/seiflotfy/cuckoofilter"
	"github.com/karrick/godirwalk"
	lz4 "github.com/pierrec/lz4/v3"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
)

// compressMinSize is the smallest content length worth attempting to
// compress; below it LZ4's own framing overhead dominates.
const compressMinSize = 512

// Store is the durable, single-owner (per adult process) blob store.
// Read references it returns are immutable snapshots - callers never
// get a pointer into live internal state.
type Store struct {
	rootDir     string
	chunksDir   string
	maxCapacity uint64

	idx    *buntdb.DB
	exists *cuckoo.Filter

	mu   sync.Mutex // serializes put/delete index+filter+counter updates
	used atomic.Int64
}

// NewStore opens (or creates) a store rooted at rootDir. Durable
// across restart: the on-disk index and chunk files are the source
// of truth; the cuckoo filter and used-space counter are rebuilt from
// them on open.
func NewStore(rootDir string, maxCapacity uint64) (*Store, error) {
	chunksDir := filepath.Join(rootDir, "chunks")
	if err := os.MkdirAll(chunksDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "chunk: create %s", chunksDir)
	}

	idx, err := buntdb.Open(filepath.Join(rootDir, "index.db"))
	if err != nil {
		return nil, errors.Wrap(err, "chunk: open index")
	}

	s := &Store{
		rootDir:     rootDir,
		chunksDir:   chunksDir,
		maxCapacity: maxCapacity,
		idx:         idx,
		exists:      cuckoo.NewFilter(1 << 16),
	}

	if err := s.rebuildFromIndex(); err != nil {
		_ = idx.Close()
		return nil, err
	}

	if free, err := freeBytes(rootDir); err == nil && free > 0 {
		nlog.Infof("chunk: store opened at %s, free=%d used=%d", rootDir, free, s.used.Load())
	}

	return s, nil
}

func (s *Store) rebuildFromIndex() error {
	var total int64
	err := s.idx.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			var m BlobMeta
			if _, uerr := m.UnmarshalMsg([]byte(value)); uerr != nil {
				nlog.Warningln("chunk: dropping corrupt index entry", key, uerr)
				return true
			}
			s.exists.InsertUnique([]byte(key))
			total += m.DiskSize
			return true
		})
	})
	if err != nil {
		return errors.Wrap(err, "chunk: rebuild index")
	}
	s.used.Store(total)
	return nil
}

func (s *Store) Close() error { return s.idx.Close() }

func indexKey(addr meta.BlobAddress) string {
	return addr.Name.Full()
}

func (s *Store) path(addr meta.BlobAddress) string {
	return filepath.Join(s.chunksDir, addr.Name.Full()+".blob")
}

// Has is a pure query: present in the index, fronted by a cuckoo
// filter so read fan-out against adults that never held the chunk
// doesn't pay for an index lookup (spec.md §4.1, "Chunk-store round trip").
func (s *Store) Has(addr meta.BlobAddress) bool {
	key := indexKey(addr)
	if !s.exists.Lookup([]byte(key)) {
		return false
	}
	var found bool
	_ = s.idx.View(func(tx *buntdb.Tx) error {
		_, err := tx.Get(key)
		found = err == nil
		return nil
	})
	return found
}

// Put persists blob atomically. Returns ErrDataExists if the address
// is already occupied; the caller (C2) treats that as success. Any
// other failure is an Io-class error - the on-disk representation
// must survive a crash between the write and the index update, which
// is why the blob bytes are written to a temp file and renamed into
// place before the index (and therefore Has) ever observes them.
func (s *Store) Put(blob meta.Blob) error {
	addr := blob.Address()
	if s.Has(addr) {
		return ErrDataExists
	}

	checksum := xxhash.Checksum64(blob.Contents)
	payload := blob.Contents
	compressed := false
	if len(blob.Contents) >= compressMinSize {
		bound := lz4.CompressBlockBound(len(blob.Contents))
		dst := make([]byte, bound)
		n, err := lz4.CompressBlock(blob.Contents, dst, nil)
		if err == nil && n > 0 && n < len(blob.Contents) {
			payload = dst[:n]
			compressed = true
		}
	}

	if err := writeFileAtomic(s.path(addr), payload); err != nil {
		return errors.Wrapf(err, "chunk: put %s", addr)
	}

	m := BlobMeta{
		OrigSize:   int64(len(blob.Contents)),
		DiskSize:   int64(len(payload)),
		Variant:    uint8(blob.Variant),
		Owner:      blob.Owner,
		Checksum:   checksum,
		Compressed: compressed,
	}
	enc, err := m.MarshalMsg(nil)
	if err != nil {
		return errors.Wrap(err, "chunk: encode index entry")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := indexKey(addr)
	err = s.idx.Update(func(tx *buntdb.Tx) error {
		_, _, e := tx.Set(key, string(enc), nil)
		return e
	})
	if err != nil {
		_ = os.Remove(s.path(addr))
		return errors.Wrapf(err, "chunk: index %s", addr)
	}
	s.exists.InsertUnique([]byte(key))
	s.used.Add(m.DiskSize)
	return nil
}

// Get returns the stored blob, or ErrNoSuchKey.
func (s *Store) Get(addr meta.BlobAddress) (meta.Blob, error) {
	key := indexKey(addr)
	var (
		m     BlobMeta
		found bool
	)
	err := s.idx.View(func(tx *buntdb.Tx) error {
		val, verr := tx.Get(key)
		if verr != nil {
			return nil
		}
		found = true
		_, uerr := m.UnmarshalMsg([]byte(val))
		return uerr
	})
	if err != nil {
		return meta.Blob{}, errors.Wrapf(err, "chunk: read index %s", addr)
	}
	if !found {
		return meta.Blob{}, ErrNoSuchKey
	}

	raw, err := os.ReadFile(s.path(addr))
	if err != nil {
		return meta.Blob{}, errors.Wrapf(err, "chunk: read %s", addr)
	}

	contents := raw
	if m.Compressed {
		dst := make([]byte, m.OrigSize)
		n, derr := lz4.UncompressBlock(raw, dst)
		if derr != nil {
			return meta.Blob{}, errors.Wrapf(derr, "chunk: decompress %s", addr)
		}
		contents = dst[:n]
	}

	if xxhash.Checksum64(contents) != m.Checksum {
		return meta.Blob{}, errors.Errorf("chunk: checksum mismatch for %s", addr)
	}

	return meta.Blob{
		Contents: contents,
		Variant:  meta.BlobVariant(m.Variant),
		Owner:    m.Owner,
	}, nil
}

// Delete removes the blob if present. Per spec.md §4.1 it is NOT a
// silent no-op on an absent address - callers (C2) are expected to
// call Has first and skip calling Delete at all when it is false.
func (s *Store) Delete(addr meta.BlobAddress) error {
	if !s.Has(addr) {
		return ErrNoSuchKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := indexKey(addr)
	var m BlobMeta
	err := s.idx.Update(func(tx *buntdb.Tx) error {
		val, gerr := tx.Get(key)
		if gerr != nil {
			return gerr
		}
		if _, uerr := m.UnmarshalMsg([]byte(val)); uerr != nil {
			return uerr
		}
		_, derr := tx.Delete(key)
		return derr
	})
	if err != nil {
		return errors.Wrapf(err, "chunk: delete index %s", addr)
	}

	if rerr := os.Remove(s.path(addr)); rerr != nil && !os.IsNotExist(rerr) {
		return errors.Wrapf(rerr, "chunk: delete file %s", addr)
	}

	s.exists.Delete([]byte(key))
	s.used.Add(-m.DiskSize)
	return nil
}

// Keys enumerates the addresses currently stored, for migration and
// republish on adult loss. The index is authoritative; a directory
// walk is offered separately (ReconcileWithDisk) for integrity checks.
func (s *Store) Keys() []meta.BlobAddress {
	var out []meta.BlobAddress
	_ = s.idx.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			var m BlobMeta
			if _, err := m.UnmarshalMsg([]byte(value)); err != nil {
				return true
			}
			addr, err := addressFromKey(key, meta.BlobVariant(m.Variant))
			if err == nil {
				out = append(out, addr)
			}
			return true
		})
	})
	return out
}

func addressFromKey(key string, variant meta.BlobVariant) (meta.BlobAddress, error) {
	var name meta.XorName
	if len(key) != len(name)*2 {
		return meta.BlobAddress{}, errors.New("chunk: malformed index key")
	}
	if _, err := hexDecode(name[:], key); err != nil {
		return meta.BlobAddress{}, err
	}
	return meta.BlobAddress{Name: name, Variant: variant}, nil
}

// ReconcileWithDisk walks the chunk directory with godirwalk and
// reports addresses present on disk but absent from the index - blob
// files left behind by a crash between write and index-update. It
// does not repair anything; the caller decides policy.
func (s *Store) ReconcileWithDisk() ([]meta.XorName, error) {
	var orphans []meta.XorName
	err := godirwalk.Walk(s.chunksDir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			base := filepath.Base(osPathname)
			hexName := base[:len(base)-len(filepath.Ext(base))]
			var name meta.XorName
			if _, err := hexDecode(name[:], hexName); err != nil {
				return nil
			}
			if !s.exists.Lookup([]byte(hexName)) {
				orphans = append(orphans, name)
			}
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "chunk: reconcile")
	}
	return orphans, nil
}

// UsedSpaceRatio is currentSize / maxCapacity, clamped to [0,1].
func (s *Store) UsedSpaceRatio() float64 {
	if s.maxCapacity == 0 {
		return 1
	}
	r := float64(s.used.Load()) / float64(s.maxCapacity)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
