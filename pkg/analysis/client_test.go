package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "course_1.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o644))
	return path
}

func TestTranscribeDecodesResponse(t *testing.T) {
	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/stt/transcribe", r.URL.Path)
		gotLanguage = r.URL.Query().Get("language")

		file, _, err := r.FormFile("audio_file")
		require.NoError(t, err)
		file.Close()

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"language": "es",
			"text":     "hola mundo",
			"segments": []map[string]any{{"text": "hola mundo", "detected_lang": "es"}},
			"duration": 3.2,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.Transcribe(context.Background(), writeTempAudio(t), "es")

	require.NoError(t, err)
	assert.Equal(t, "es", gotLanguage)
	assert.Equal(t, "es", result.Language)
	assert.Equal(t, "hola mundo", result.Text)
	assert.NotEmpty(t, result.Segments)
}

func TestTranscribeNon200IsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeTempAudio(t), "en")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestTranscribeSuccessFalseIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "model not loaded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Transcribe(context.Background(), writeTempAudio(t), "en")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestCreateEmbeddingsPayload(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embedding/create", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "chunks_added": len(got.Chunks)})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	chunks := []Chunk{
		{Text: "first", Source: "transcript", Index: 0},
		{Text: "second", Source: "document", Index: 1},
	}
	require.NoError(t, client.CreateEmbeddings(context.Background(), 42, chunks))

	assert.Equal(t, int64(42), got.CourseID)
	require.Len(t, got.Chunks, 2)
	assert.Equal(t, "transcript", got.Chunks[0].Source)
	assert.Equal(t, 1, got.Chunks[1].Index)
}

func TestCreateEmbeddingsSuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "empty chunk set"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.CreateEmbeddings(context.Background(), 1, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty chunk set")
}

func TestGenerateNotes(t *testing.T) {
	var got notesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/rag/generate_notes", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "notes": "# Course Notes"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	notes, err := client.GenerateNotes(context.Background(), 7, "ca", true)

	require.NoError(t, err)
	assert.Equal(t, "# Course Notes", notes)
	assert.Equal(t, int64(7), got.CourseID)
	assert.Equal(t, "ca", got.Language)
	assert.True(t, got.IncludeSources)
}

func TestSearchForwardsParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embedding/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "7", q.Get("course_id"))
		assert.Equal(t, "binary trees", q.Get("query"))
		assert.Equal(t, "3", q.Get("n_results"))
		assert.Equal(t, "en", q.Get("language_filter"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"documents": []string{"passage one", "passage two"},
			"metadatas": []map[string]any{{"source": "transcript"}, {"source": "document"}},
			"distances": []float64{0.1, 0.4},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.Search(context.Background(), 7, "binary trees", 3, "en")

	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, "passage one", result.Documents[0])
	assert.Len(t, result.Distances, 2)
}
