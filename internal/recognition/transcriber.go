// SPDX-License-Identifier: MIT
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"earshot/internal/audio"
)

// Transcript is a speech-to-text answer.
type Transcript struct {
	Text       string
	Confidence float64
	Final      bool
	Language   string
}

// Spoken reports whether the transcript carries a usable spoken-word signal.
func (t *Transcript) Spoken() bool {
	return t != nil && t.Final && strings.TrimSpace(t.Text) != ""
}

// Transcriber turns a buffer into text. It is optional; a recognition call
// carries on without it.
type Transcriber interface {
	Transcribe(ctx context.Context, buf *audio.Buffer) (*Transcript, error)
}

// DefaultTranscriptConfidence is used when the service reports no confidence.
const DefaultTranscriptConfidence = 0.7

type transSeg struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type asrResp struct {
	Segments   []transSeg `json:"segments"`
	Language   string     `json:"language"`
	Confidence *float64   `json:"confidence,omitempty"`
	Final      *bool      `json:"final,omitempty"`
}

// HTTPTranscriber posts the buffer as a 16-bit WAV to URL + "/transcribe" and
// reads back segments and a language code.
type HTTPTranscriber struct {
	URL string
	c   *http.Client
}

// NewHTTPTranscriber returns a client for the ASR service at url.
func NewHTTPTranscriber(url string, timeout time.Duration) *HTTPTranscriber {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &HTTPTranscriber{
		URL: strings.TrimRight(url, "/"),
		c:   &http.Client{Transport: tr, Timeout: timeout},
	}
}

func (h *HTTPTranscriber) Transcribe(ctx context.Context, buf *audio.Buffer) (*Transcript, error) {
	wav, err := audio.WAVBytes(buf, 16)
	if err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fw, err := w.CreateFormFile("file", "recording.wav")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = fw.Write(wav); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const maxErr = 4096
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErr))
		return nil, fmt.Errorf("asr %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out asrResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("asr decode: %w", err)
	}
	return out.transcript(), nil
}

func (r asrResp) transcript() *Transcript {
	parts := make([]string, 0, len(r.Segments))
	var confSum float64
	var confN int
	for _, s := range r.Segments {
		if text := strings.TrimSpace(s.Text); text != "" {
			parts = append(parts, text)
		}
		if s.Confidence != nil {
			confSum += *s.Confidence
			confN++
		}
	}

	t := &Transcript{
		Text:       strings.Join(parts, " "),
		Confidence: DefaultTranscriptConfidence,
		Final:      true,
		Language:   r.Language,
	}
	switch {
	case r.Confidence != nil:
		t.Confidence = *r.Confidence
	case confN > 0:
		t.Confidence = confSum / float64(confN)
	}
	t.Confidence = max(0, min(1, t.Confidence))
	if r.Final != nil {
		t.Final = *r.Final
	}
	return t
}
