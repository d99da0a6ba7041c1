package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scriptcue/internal/config"
)

// ProgressFunc receives (bytesRead, totalBytes) while the upload streams.
type ProgressFunc func(read, total int64)

// countingReader reports cumulative bytes read to a callback.
type countingReader struct {
	r     io.Reader
	n     int64
	total int64
	fn    ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.fn != nil {
		c.fn(c.n, c.total)
	}
	return n, err
}

var mimeByExt = map[string]string{
	".mp3":  "audio/mp3",
	".m4a":  "audio/m4a",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".aac":  "audio/aac",
	".mp4":  "video/mp4",
	".mov":  "video/mov",
}

func contentType(path string) string {
	if m, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "application/octet-stream"
}

// writeForm emits the request fields plus the media file into mw. The service
// contract: "model", "word_timestamps" and an optional "language" hint, then
// the file part with its real MIME type.
func writeForm(mw *multipart.Writer, f *os.File, path string, stt config.STTSettings, lang string) error {
	if err := mw.WriteField("model", stt.Model); err != nil {
		return err
	}
	if err := mw.WriteField("word_timestamps", "true"); err != nil {
		return err
	}
	if lang != "" && !strings.EqualFold(lang, "auto") {
		if err := mw.WriteField("language", lang); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	h.Set("Content-Type", contentType(path))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

// Fetch uploads a media file to the configured speech-to-text endpoint and
// decodes the utterance-level transcript it returns. The upload is streamed
// through a pipe so the file never sits in memory whole. One attempt, no
// retries; the caller owns pacing and failure policy.
func Fetch(ctx context.Context, stt config.STTSettings, path, lang string, progress ProgressFunc) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat media: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	formErr := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer mw.Close()
		formErr <- writeForm(mw, f, path, stt, lang)
	}()

	// Total is an estimate: the file plus roughly a KB of form framing.
	body := &countingReader{r: pr, total: stat.Size() + 1024, fn: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, stt.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if stt.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+stt.APIKey)
	}

	client := &http.Client{Timeout: time.Duration(stt.TimeoutMin) * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if err := <-formErr; err != nil {
		return nil, fmt.Errorf("write multipart form: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech-to-text service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var t Transcript
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &t, nil
}
