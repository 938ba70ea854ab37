// Package boltjournal is a weather.Observer that keeps every received measurement in a BoltDB file.
//
// boltdb/bolt v1.3.1 predates checkptr, so binaries built with -race abort inside bolt.
// Tests that open a Journal are skipped when built with -race.
package boltjournal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/patterns/pkg/weather"
	"go.llib.dev/testcase/clock"
)

const ErrCorruptRecord errorkit.Error = "ErrCorruptRecord"

var bucketName = []byte("measurements")

// Record is a single journal entry.
type Record struct {
	Sequence     uint64               `json:"-"`
	Station      string               `json:"station"`
	Measurements weather.Measurements `json:"measurements"`
	RecordedAt   time.Time            `json:"recorded_at"`
}

// Journal appends every received Measurements to a bolt bucket.
type Journal struct {
	// Station is stored with every Record.
	Station string

	db *bolt.DB
}

var _ weather.Observer = &Journal{}

type Option func(*bolt.Options)

// Timeout sets how long Open waits for the file lock.
func Timeout(d time.Duration) Option {
	return func(o *bolt.Options) { o.Timeout = d }
}

// Open opens the journal file, creating it and its bucket when missing.
func Open(path string, opts ...Option) (*Journal, error) {
	options := &bolt.Options{Timeout: time.Second}
	for _, opt := range opts {
		opt(options)
	}
	db, err := bolt.Open(path, os.FileMode(0600), options)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		return nil, errorkit.Merge(err, db.Close())
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Update(ctx context.Context, m weather.Measurements) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		bs, err := json.Marshal(Record{
			Station:      j.Station,
			Measurements: m,
			RecordedAt:   clock.Now().UTC(),
		})
		if err != nil {
			return err
		}
		return b.Put(itob(seq), bs)
	})
}

// Records returns every Record in the order it was written.
func (j *Journal) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []Record
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return ErrCorruptRecord.F("invalid key length: %d", len(k))
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return ErrCorruptRecord.Wrap(err)
			}
			rec.Sequence = binary.BigEndian.Uint64(k)
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// itob encodes the sequence in big endian so bolt's byte ordering matches insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
