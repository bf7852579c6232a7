// Package history records completed decode and encode runs in a BoltDB file.
package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"iter"
	"linecode/internal/linecode"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketRuns = []byte("runs")
)

type Config struct {
	File string `yaml:"file"`
}

type Run struct {
	Mode     string         `json:"mode"`
	Source   string         `json:"source"`
	Digest   string         `json:"digest"`
	Variant  string         `json:"variant"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
	Stats    linecode.Stats `json:"stats"`
	Error    string         `json:"error,omitempty"`
}

type Store struct {
	db *bbolt.DB
}

func Open(config Config) (*Store, error) {
	if config.File == "" {
		return nil, fmt.Errorf("history: file is required")
	}

	err := os.MkdirAll(filepath.Dir(config.File), 0755)
	if err != nil {
		return nil, fmt.Errorf("history: create db dir: %w", err)
	}

	db, err := bbolt.Open(config.File, 0600, &bbolt.Options{
		Timeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("history: open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		if err != nil {
			return fmt.Errorf("create bucket %q: %w", bucketRuns, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: initialize buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("history: close bbolt db: %w", err)
	}
	return nil
}

func itob(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func runs(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket(bucketRuns)
	if b == nil {
		return nil, fmt.Errorf("history: runs bucket not found")
	}
	return b, nil
}

// Record stores run under the next sequence number and returns it.
func (s *Store) Record(run Run) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := runs(tx)
		if err != nil {
			return err
		}

		id, err = b.NextSequence()
		if err != nil {
			return fmt.Errorf("history: next sequence: %w", err)
		}

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("history: marshal run: %w", err)
		}
		return b.Put(itob(id), data)
	})
	return id, err
}

func (s *Store) Get(id uint64) (Run, bool, error) {
	var (
		run   Run
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := runs(tx)
		if err != nil {
			return err
		}

		data := b.Get(itob(id))
		if data == nil {
			return nil
		}
		found = true

		err = json.Unmarshal(data, &run)
		if err != nil {
			return fmt.Errorf("history: unmarshal run %d: %w", id, err)
		}
		return nil
	})
	return run, found, err
}

// Prune deletes all but the newest keep runs.
func (s *Store) Prune(keep int) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := runs(tx)
		if err != nil {
			return err
		}

		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}

		for len(keys)-removed > max(keep, 0) {
			if err := b.Delete(keys[removed]); err != nil {
				return fmt.Errorf("history: delete run: %w", err)
			}
			removed++
		}
		return nil
	})
	return removed, err
}

type entry struct {
	id  uint64
	run Run
}

// All yields runs oldest first. Runs are read in one transaction before the
// first yield, so the loop body may write to the store. It panics if the
// store cannot be read.
func (s *Store) All() iter.Seq2[uint64, Run] {
	return func(yield func(uint64, Run) bool) {
		var entries []entry
		err := s.db.View(func(tx *bbolt.Tx) error {
			b, err := runs(tx)
			if err != nil {
				return err
			}

			return b.ForEach(func(k, v []byte) error {
				id := binary.BigEndian.Uint64(k)

				var run Run
				err := json.Unmarshal(v, &run)
				if err != nil {
					return fmt.Errorf("history: unmarshal run %d: %w", id, err)
				}

				entries = append(entries, entry{id: id, run: run})
				return nil
			})
		})
		if err != nil {
			panic(fmt.Errorf("history: list runs: %w", err))
		}

		for _, e := range entries {
			if !yield(e.id, e.run) {
				return
			}
		}
	}
}
