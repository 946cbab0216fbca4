package vector

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"paperqa/internal/models"
	"paperqa/internal/util"

	"github.com/stretchr/testify/require"
)

func meta(title string) models.Metadata {
	m := models.DefaultMetadata()
	m.Title = title
	return m
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "vector_store.json"))
	require.NoError(t, err)
	return s
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s := newStore(t)
	require.Equal(t, models.StoreStats{}, s.Stats())
	require.Empty(t, s.Search([]float32{1, 0}, 3))
	require.NotNil(t, s.Search([]float32{1, 0}, 3))
}

func TestAddSearchRanksByCosine(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(
		[]string{"x-axis", "diagonal", "y-axis"},
		[][]float32{{1, 0}, {1, 1}, {0, 1}},
		meta("Geometry"),
	))
	got := s.Search([]float32{1, 0.1}, 2)
	require.Len(t, got, 2)
	require.Equal(t, "x-axis", got[0].Document)
	require.Equal(t, "diagonal", got[1].Document)
	require.Greater(t, got[0].Score, got[1].Score)
	require.Equal(t, "Geometry", got[0].Metadata.Title)
}

func TestSearchIdenticalOrthogonalNegated(t *testing.T) {
	s := newStore(t)
	q := []float32{0.6, 0.8, 0}
	require.NoError(t, s.Add(
		[]string{"identical", "orthogonal", "negated"},
		[][]float32{{0.6, 0.8, 0}, {0, 0, 1}, {-0.6, -0.8, 0}},
		meta("T"),
	))
	got := s.Search(q, 2)
	require.Len(t, got, 2)
	require.Equal(t, "identical", got[0].Document)
	require.InDelta(t, 1.0, got[0].Score, 1e-5)
	require.Equal(t, "orthogonal", got[1].Document)
	require.InDelta(t, 0.0, got[1].Score, 1e-5)

	all := s.Search(q, 3)
	require.Equal(t, "negated", all[2].Document)
	require.InDelta(t, -1.0, all[2].Score, 1e-5)
}

func TestSearchTopKBounds(t *testing.T) {
	s := newStore(t)
	docs := []string{"a", "b", "c", "d", "e"}
	vecs := [][]float32{{1, 0}, {0.9, 0.1}, {0.8, 0.2}, {0.7, 0.3}, {0.6, 0.4}}
	require.NoError(t, s.Add(docs, vecs, meta("T")))
	require.Len(t, s.Search([]float32{1, 0}, 0), DefaultTopK)
	require.Len(t, s.Search([]float32{1, 0}, -2), DefaultTopK)
	require.Len(t, s.Search([]float32{1, 0}, 50), 5)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add([]string{"first", "second", "third"}, [][]float32{{2, 0}, {1, 0}, {3, 0}}, meta("T")))
	got := s.Search([]float32{1, 0}, 3)
	require.Equal(t, []string{"first", "second", "third"}, []string{got[0].Document, got[1].Document, got[2].Document})
	for _, r := range got {
		require.InDelta(t, 1.0, r.Score, 1e-5)
	}
}

func TestSearchZeroNormScoresZero(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add([]string{"zero", "one"}, [][]float32{{0, 0}, {0, 1}}, meta("T")))
	got := s.Search([]float32{0, 1}, 2)
	require.Equal(t, "one", got[0].Document)
	require.Equal(t, 0.0, got[1].Score)
	require.Equal(t, 0.0, s.Search([]float32{0, 0}, 1)[0].Score)
}

func TestAddLengthMismatchDoesNotMutate(t *testing.T) {
	s := newStore(t)
	err := s.Add([]string{"a", "b"}, [][]float32{{1}}, meta("T"))
	require.True(t, errors.Is(err, util.ErrLengthMismatch))
	require.Equal(t, 0, s.Stats().TotalDocuments)
	_, statErr := os.Stat(s.Path())
	require.True(t, os.IsNotExist(statErr))
}

func TestAddPersistsAndReloads(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}, meta("Paper A")))
	require.NoError(t, s.Add([]string{"c"}, [][]float32{{1, 1}}, meta("Paper B")))

	reopened, err := Open(s.Path())
	require.NoError(t, err)
	require.Equal(t, models.StoreStats{TotalDocuments: 3, TotalVectors: 3}, reopened.Stats())
	got := reopened.Search([]float32{1, 1}, 1)
	require.Equal(t, "c", got[0].Document)
	require.Equal(t, "Paper B", got[0].Metadata.Title)
	require.Equal(t, []string{}, got[0].Metadata.Authors)
}

func TestClearPersistsEmpty(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add([]string{"a"}, [][]float32{{1}}, meta("T")))
	require.NoError(t, s.Clear())
	require.Equal(t, 0, s.Stats().TotalVectors)

	reopened, err := Open(s.Path())
	require.NoError(t, err)
	require.Equal(t, 0, reopened.Stats().TotalDocuments)
}

func TestLoadLegacyParallelLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `{"vectors":[[1,0],[0,1],[1,1]],"documents":["a","b"],"metadata_list":[{"title":"A"},{"title":"B"},{"title":"C"}]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 2, s.Stats().TotalDocuments)
	require.Equal(t, "B", s.Search([]float32{0, 1}, 1)[0].Metadata.Title)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Open(path)
	require.Error(t, err)
}

func TestConcurrentAddAndSearch(t *testing.T) {
	s := newStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			require.NoError(t, s.Add([]string{"d"}, [][]float32{{1, 0}}, meta("T")))
		}()
		go func() {
			defer wg.Done()
			_ = s.Search([]float32{1, 0}, 3)
		}()
	}
	wg.Wait()
	require.Equal(t, 8, s.Stats().TotalDocuments)
	reopened, err := Open(s.Path())
	require.NoError(t, err)
	require.Equal(t, 8, reopened.Stats().TotalDocuments)
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-5)
	require.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-5)
	require.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
}

func TestRefreshPicksUpOtherWriter(t *testing.T) {
	reader := newStore(t)
	require.NoError(t, reader.Refresh())

	writer, err := Open(reader.Path())
	require.NoError(t, err)
	require.NoError(t, writer.Add([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}, meta("T")))

	require.Equal(t, 0, reader.Stats().TotalDocuments)
	require.NoError(t, reader.Refresh())
	require.Equal(t, 2, reader.Stats().TotalDocuments)
	require.NoError(t, reader.Refresh())
	require.Equal(t, 2, reader.Stats().TotalDocuments)
}

func TestLoadLegacyWithoutMetadataList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"vectors":[[1,0]],"documents":["a"]}`), 0o644))
	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 1, s.Stats().TotalDocuments)
	require.Equal(t, "Unknown Title", s.Search([]float32{1, 0}, 1)[0].Metadata.Title)
}

func TestLoadEmptyObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":2}`), 0o644))
	s, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 0, s.Stats().TotalDocuments)
}
