package persistence

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/qubicDB/emocore/pkg/core"
)

// Journal is the append-only interaction log. Each record is framed as
// [u32 length][msgpack payload][u32 crc32], little endian.
type Journal struct {
	path       string
	shouldSync func() bool
	syncDir    func(string) error

	mu      sync.Mutex
	records int
	size    int64
}

// OpenJournal opens the log at path, truncating a torn tail left by an
// interrupted append.
func OpenJournal(path string, shouldSync func() bool, syncDir func(string) error) (*Journal, error) {
	if shouldSync == nil {
		shouldSync = func() bool { return false }
	}
	if syncDir == nil {
		syncDir = func(string) error { return nil }
	}
	j := &Journal{path: path, shouldSync: shouldSync, syncDir: syncDir}

	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return j, nil
		}
		return nil, err
	}

	records, offset := scanFrames(data)
	j.records = len(records)
	j.size = int64(offset)
	if offset < len(data) {
		if err := j.truncateLocked(int64(offset)); err != nil {
			return nil, fmt.Errorf("repair interaction log: %w", err)
		}
	}
	return j, nil
}

// scanFrames decodes the valid prefix of data and returns the records and
// the byte offset where the prefix ends.
func scanFrames(data []byte) ([]core.InteractionRecord, int) {
	var records []core.InteractionRecord
	offset := 0
	for {
		if len(data)-offset < 8 {
			break
		}

		recordLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		if recordLen <= 0 || recordLen > len(data)-offset-8 {
			break
		}

		end := offset + 4 + recordLen + 4
		payload := data[offset+4 : offset+4+recordLen]
		checksum := binary.LittleEndian.Uint32(data[offset+4+recordLen : end])
		if crc32.ChecksumIEEE(payload) != checksum {
			break
		}

		var record core.InteractionRecord
		if err := msgpack.Unmarshal(payload, &record); err != nil {
			break
		}

		records = append(records, record)
		offset = end
	}
	return records, offset
}

// Append writes one record.
func (j *Journal) Append(record core.InteractionRecord) error {
	payload, err := msgpack.Marshal(record)
	if err != nil {
		return err
	}

	buf := make([]byte, 4+len(payload)+4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:4+len(payload)], payload)
	binary.LittleEndian.PutUint32(buf[4+len(payload):], crc32.ChecksumIEEE(payload))

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(buf); err != nil {
		return err
	}

	if j.shouldSync() {
		if err := f.Sync(); err != nil {
			return err
		}
		if err := j.syncDir(filepath.Dir(j.path)); err != nil {
			return err
		}
	}

	j.records++
	j.size += int64(len(buf))
	return nil
}

// ReadAll returns every intact record in append order.
func (j *Journal) ReadAll() ([]core.InteractionRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	records, _ := scanFrames(data)
	return records, nil
}

// Len returns the number of records in the log.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records
}

// Size returns the log size in bytes.
func (j *Journal) Size() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.size
}

func (j *Journal) truncateLocked(size int64) error {
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		return err
	}

	if j.shouldSync() {
		if err := f.Sync(); err != nil {
			return err
		}
		if err := j.syncDir(filepath.Dir(j.path)); err != nil {
			return err
		}
	}
	return nil
}
