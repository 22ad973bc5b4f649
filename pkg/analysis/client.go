package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// Client talks to the analysis peer service (speech-to-text, embeddings, notes
// generation, semantic search). All calls are JSON over plain HTTP; a non-200
// response or a success=false body is a call failure.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

type TranscribeResult struct {
	Success  bool            `json:"success"`
	Language string          `json:"language"`
	Text     string          `json:"text"`
	Segments json.RawMessage `json:"segments"`
	Duration float64         `json:"duration"`
	Error    string          `json:"error"`
}

// Transcribe uploads the audio file as multipart form data and returns the
// decoded transcription.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) (*TranscribeResult, error) {
	audioFile, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer audioFile.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/api/stt/transcribe?language=" + url.QueryEscape(language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription service returned status %d", resp.StatusCode)
	}

	var result TranscribeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("transcription failed: %s", result.Error)
	}

	return &result, nil
}

// Chunk is one bounded span of text prepared for embedding, tagged with the
// source it came from and its sequence index across the whole set.
type Chunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Index  int    `json:"index"`
}

type embeddingRequest struct {
	CourseID int64   `json:"course_id"`
	Chunks   []Chunk `json:"chunks"`
}

type embeddingResponse struct {
	Success     bool   `json:"success"`
	Collection  string `json:"collection"`
	ChunksAdded int    `json:"chunks_added"`
	Error       string `json:"error"`
}

func (c *Client) CreateEmbeddings(ctx context.Context, courseID int64, chunks []Chunk) error {
	var result embeddingResponse
	err := c.postJSON(ctx, "/api/embedding/create", embeddingRequest{CourseID: courseID, Chunks: chunks}, &result)
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("embedding creation failed: %s", result.Error)
	}
	return nil
}

type notesRequest struct {
	CourseID       int64  `json:"course_id"`
	Language       string `json:"language"`
	IncludeSources bool   `json:"include_sources"`
}

type notesResponse struct {
	Success bool   `json:"success"`
	Notes   string `json:"notes"`
	Error   string `json:"error"`
}

func (c *Client) GenerateNotes(ctx context.Context, courseID int64, language string, includeSources bool) (string, error) {
	var result notesResponse
	err := c.postJSON(ctx, "/api/rag/generate_notes", notesRequest{
		CourseID:       courseID,
		Language:       language,
		IncludeSources: includeSources,
	}, &result)
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("notes generation failed: %s", result.Error)
	}
	if result.Notes == "" {
		return "", fmt.Errorf("notes generation returned an empty notes field")
	}
	return result.Notes, nil
}

type SearchResult struct {
	Success   bool             `json:"success"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
	Distances []float64        `json:"distances"`
	Error     string           `json:"error"`
}

func (c *Client) Search(ctx context.Context, courseID int64, query string, nResults int, languageFilter string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("course_id", strconv.FormatInt(courseID, 10))
	params.Set("query", query)
	params.Set("n_results", strconv.Itoa(nResults))
	if languageFilter != "" {
		params.Set("language_filter", languageFilter)
	}

	endpoint := c.baseURL + "/api/embedding/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("search failed: %s", result.Error)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analysis service returned status %d for %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}
