package vector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"paperqa/internal/models"
	"paperqa/internal/util"
)

const fileVersion = 2

// Store is an in-memory list of embedded chunks persisted as one JSON file.
// All methods are safe for concurrent use within a process.
type Store struct {
	path string

	mu      sync.RWMutex
	records []models.Record

	// saveMu orders writers so the file always ends with the newest snapshot.
	saveMu sync.Mutex

	// stat of the file as last read or written, used by Refresh.
	modTime time.Time
	size    int64
}

type storeFile struct {
	Version int             `json:"version"`
	Records []models.Record `json:"records"`
}

// legacyFile is the parallel-list layout written by older builds.
type legacyFile struct {
	Vectors      [][]float32       `json:"vectors"`
	Documents    []string          `json:"documents"`
	MetadataList []models.Metadata `json:"metadata_list"`
}

func New(path string) *Store {
	return &Store{path: path, records: []models.Record{}}
}

// Open creates a store for path and loads it if the file exists.
func Open(path string) (*Store, error) {
	s := New(path)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Add appends one record per document, all sharing meta, then saves.
func (s *Store) Add(docs []string, vectors [][]float32, meta models.Metadata) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("add %d documents with %d vectors: %w", len(docs), len(vectors), util.ErrLengthMismatch)
	}
	s.mu.Lock()
	for i, doc := range docs {
		s.records = append(s.records, models.Record{Document: doc, Vector: vectors[i], Metadata: meta})
	}
	s.mu.Unlock()
	return s.Save()
}

func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.mu.RLock()
	snapshot := storeFile{Version: fileVersion, Records: s.records}
	err := util.WriteFileAtomic(s.path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(snapshot)
	})
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("save vector store: %w", err)
	}
	s.rememberStat()
	return nil
}

// Load replaces the in-memory records with the file contents. A missing file
// leaves the store empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.records = []models.Record{}
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read vector store %s: %w", s.path, err)
	}
	records, err := decodeStore(data)
	if err != nil {
		return fmt.Errorf("decode vector store %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	s.rememberStat()
	return nil
}

// Refresh reloads the file when another process has rewritten it since this
// store last read or wrote it.
func (s *Store) Refresh() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat vector store: %w", err)
	}
	s.mu.RLock()
	same := info.ModTime().Equal(s.modTime) && info.Size() == s.size
	s.mu.RUnlock()
	if same {
		return nil
	}
	return s.Load()
}

func (s *Store) rememberStat() {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.modTime, s.size = info.ModTime(), info.Size()
	s.mu.Unlock()
}

func (s *Store) Clear() error {
	s.mu.Lock()
	s.records = []models.Record{}
	s.mu.Unlock()
	return s.Save()
}

func (s *Store) Stats() models.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.StoreStats{TotalDocuments: len(s.records), TotalVectors: len(s.records)}
}

func decodeStore(data []byte) ([]models.Record, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["records"]; ok {
		var f storeFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		if f.Records == nil {
			f.Records = []models.Record{}
		}
		return f.Records, nil
	}
	var legacy legacyFile
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}
	n := min(len(legacy.Documents), len(legacy.Vectors))
	if legacy.MetadataList != nil {
		n = min(n, len(legacy.MetadataList))
	}
	out := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		md := models.DefaultMetadata()
		if legacy.MetadataList != nil {
			md = legacy.MetadataList[i]
		}
		out = append(out, models.Record{Document: legacy.Documents[i], Vector: legacy.Vectors[i], Metadata: md})
	}
	return out, nil
}
