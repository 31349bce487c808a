// Package uploader ships a collected document to the ingestion endpoint in
// fixed-size chunks, one record per chunk.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ChunkSize is the maximum payload carried by a single record.
const ChunkSize = 1024 * 1024 // 1MB

const uploadTimeout = 60 * time.Second

// Uploader posts document chunks to a single ingestion endpoint. Chunks are
// sent strictly in order so the records' insertion order matches the
// document order; the first failure aborts the upload.
type Uploader struct {
	endpoint   string
	httpClient *http.Client
	chunkSize  int
}

func New(endpoint string) *Uploader {
	return &Uploader{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: uploadTimeout},
		chunkSize:  ChunkSize,
	}
}

// Upload splits content into chunks and posts each as {"content": <chunk>}.
// Returns the number of chunks sent and an error naming the failed chunk if
// the upload aborts.
func (u *Uploader) Upload(ctx context.Context, content string) (int, error) {
	chunks := splitIntoChunks(content, u.chunkSize)

	for i, chunk := range chunks {
		if err := u.sendChunk(ctx, chunk); err != nil {
			return i, fmt.Errorf("failed to upload chunk %d/%d: %w", i+1, len(chunks), err)
		}
		slog.Debug("Chunk uploaded", "chunk", i+1, "total", len(chunks), "bytes", len(chunk))
	}

	return len(chunks), nil
}

func (u *Uploader) sendChunk(ctx context.Context, chunk string) error {
	body, err := json.Marshal(map[string]string{"content": chunk})
	if err != nil {
		return fmt.Errorf("failed to encode chunk: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// splitIntoChunks cuts content into byte-size chunks. The split is by bytes,
// matching the server's body accounting; a multi-byte rune on a boundary is
// split across chunks and reassembles on concatenation.
func splitIntoChunks(content string, size int) []string {
	if content == "" {
		return nil
	}

	chunks := make([]string, 0, len(content)/size+1)
	for start := 0; start < len(content); start += size {
		end := start + size
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, content[start:end])
	}
	return chunks
}
