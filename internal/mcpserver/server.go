// SPDX-License-Identifier: MIT

// Package mcpserver exposes recognition and the stored history as MCP tools
// over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"earshot/internal/audio"
	applog "earshot/internal/log"
	"earshot/internal/recognition"
	"earshot/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// Recognizer runs one recognition call.
type Recognizer interface {
	Recognize(ctx context.Context, buf *audio.Buffer, onProgress recognition.ProgressFunc) (*recognition.Result, error)
}

// History persists and lists results. A nil History disables the history tools.
type History interface {
	Save(ctx context.Context, source string, res *recognition.Result) (string, error)
	Recent(ctx context.Context, limit int) ([]store.Record, error)
	Get(ctx context.Context, id string) (*store.Record, error)
}

var _ History = (*store.Store)(nil)

// Server holds the tool handlers.
type Server struct {
	rec     Recognizer
	history History
	log     applog.Logger
}

// New returns handlers backed by rec and, when non-nil, history.
func New(rec Recognizer, history History) *Server {
	return &Server{rec: rec, history: history, log: applog.For("mcp")}
}

// MCPServer builds the MCP server advertising name and version.
func (s *Server) MCPServer(name, version string) *server.MCPServer {
	srv := server.NewMCPServer(name, version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("recognize_audio",
		mcp.WithDescription("Extract spectral features from a WAV file and return the fused recognition result as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a PCM WAV file")),
	), s.recognizeAudio)

	if s.history != nil {
		srv.AddTool(mcp.NewTool("recent_recognitions",
			mcp.WithDescription("List stored recognitions, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10, max 100)")),
			mcp.WithReadOnlyHintAnnotation(true),
		), s.recentRecognitions)

		srv.AddTool(mcp.NewTool("get_recognition",
			mcp.WithDescription("Return one stored recognition result by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Recognition id")),
			mcp.WithReadOnlyHintAnnotation(true),
		), s.getRecognition)
	}
	return srv
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio(name, version string) error {
	return server.ServeStdio(s.MCPServer(name, version))
}

func (s *Server) recognizeAudio(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	buf, err := audio.DecodeFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.rec.Recognize(ctx, buf, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recognition failed: %v", err)), nil
	}

	if s.history != nil {
		if _, err := s.history.Save(ctx, filepath.Base(path), res); err != nil {
			s.log.Warnf("could not store result %s: %v", res.ID, err)
		}
	}
	return jsonResult(res)
}

// recordSummary is the listing shape of a stored record; the full result is
// available through get_recognition.
type recordSummary struct {
	ID                 string  `json:"id"`
	Source             string  `json:"source"`
	PrimaryRecognition string  `json:"primary_recognition"`
	Confidence         float64 `json:"confidence"`
	AudioType          string  `json:"audio_type"`
	Transcription      string  `json:"transcription,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

func (s *Server) recentRecognitions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultRecentLimit)
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)

	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]recordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, recordSummary{
			ID:                 r.ID,
			Source:             r.Source,
			PrimaryRecognition: r.PrimaryRecognition,
			Confidence:         r.Confidence,
			AudioType:          r.AudioType,
			Transcription:      r.Transcription,
			CreatedAt:          r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return jsonResult(out)
}

func (s *Server) getRecognition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.history.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if r == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no recognition with id %q", id)), nil
	}
	return jsonResult(r.Result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
