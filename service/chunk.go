package service

import (
	"strings"

	"github.com/SalieeriW/FIB-NETFLIX/pkg/analysis"
)

const (
	chunkSoftCap     = 500
	chunkPlaceholder = "No content available for this course."

	chunkSourceTranscript = "transcript"
	chunkSourceDocument   = "document"
)

// buildChunks prepares the embedding payload from transcript and document
// text. Each source is chunked independently; indices run across the combined
// set. An empty result is never returned: the embedding service rejects empty
// chunk sets, so a placeholder is substituted instead.
func buildChunks(transcriptText, documentText string) []analysis.Chunk {
	chunks := chunkText(transcriptText, chunkSourceTranscript)
	chunks = append(chunks, chunkText(documentText, chunkSourceDocument)...)

	if len(chunks) == 0 {
		chunks = append(chunks, analysis.Chunk{Text: chunkPlaceholder, Source: chunkSourceTranscript})
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// chunkText groups consecutive sentences while the running total stays within
// the soft cap. A single sentence longer than the cap becomes one oversized
// chunk; text is never truncated.
func chunkText(text, source string) []analysis.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []analysis.Chunk
	var current strings.Builder
	for _, sentence := range strings.Split(text, ". ") {
		if current.Len() > 0 && current.Len()+len(sentence) > chunkSoftCap {
			chunks = append(chunks, analysis.Chunk{Text: current.String(), Source: source})
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(". ")
	}

	if current.Len() > 0 {
		chunks = append(chunks, analysis.Chunk{Text: current.String(), Source: source})
	}
	return chunks
}
