package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"braces.dev/errtrace"
	"github.com/fxamacker/cbor/v2"

	"github.com/tickdown/tickdown-go/pkg/duration"
)

// FileExtension is appended to the key to form a record file name.
const FileExtension = ".timer"

// recordEncMode is the CBOR encoder mode for records. Timestamps keep their
// zone offset so a resumed timer sees the same instant that was saved.
var recordEncMode cbor.EncMode

// recordDecMode is the CBOR decoder mode for records.
var recordDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	recordEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create record CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	recordDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create record CBOR decoder mode: %v", err))
	}
}

// EncodeRecord encodes a record to CBOR.
func EncodeRecord(r *Record) ([]byte, error) {
	return errtrace.Wrap2(recordEncMode.Marshal(r))
}

// DecodeRecord decodes and validates a CBOR record.
func DecodeRecord(data []byte) (*Record, error) {
	r := &Record{}
	if err := recordDecMode.Unmarshal(data, r); err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%w: %w", ErrCorruptRecord, err))
	}
	if err := r.Validate(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return r, nil
}

// FileStore keeps one record file per key in a directory.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the directory holding the record files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path of the record for key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+FileExtension)
}

// lock serializes operations on a single key.
func (s *FileStore) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Save replaces the record for key.
func (s *FileStore) Save(key string, remaining duration.Duration, now time.Time) error {
	if err := ValidateKey(key); err != nil {
		return errtrace.Wrap(err)
	}

	data, err := EncodeRecord(NewRecord(key, remaining, now))
	if err != nil {
		return errtrace.Wrap(err)
	}

	unlock := s.lock(key)
	defer unlock()

	return errtrace.Wrap(atomicWrite(s.Path(key), data, 0644))
}

// Load reads the record for key.
// Returns nil, nil if the file doesn't exist.
func (s *FileStore) Load(key string) (*Record, error) {
	if err := ValidateKey(key); err != nil {
		return nil, errtrace.Wrap(err)
	}

	unlock := s.lock(key)
	defer unlock()

	data, err := os.ReadFile(s.Path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	r, err := DecodeRecord(data)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if r.Key != key {
		return nil, errtrace.Wrap(fmt.Errorf("%w: file for %q holds key %q", ErrCorruptRecord, key, r.Key))
	}
	return r, nil
}

// Delete removes the record file for key.
func (s *FileStore) Delete(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, errtrace.Wrap(err)
	}

	unlock := s.lock(key)
	defer unlock()

	err := os.Remove(s.Path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errtrace.Wrap(err)
	}
	return true, nil
}

// Exists reports whether a record file exists for key.
func (s *FileStore) Exists(key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, errtrace.Wrap(err)
	}

	_, err := os.Stat(s.Path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errtrace.Wrap(err)
	}
	return true, nil
}

// Keys lists the keys of all record files.
func (s *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, tmpPrefix) || !strings.HasSuffix(name, FileExtension) {
			continue
		}
		key := strings.TrimSuffix(name, FileExtension)
		if ValidateKey(key) != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; files are closed after every operation.
func (s *FileStore) Close() error {
	return nil
}

// Compile-time interface satisfaction check.
var _ Store = (*FileStore)(nil)
