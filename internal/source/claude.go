package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aliou/sesame/internal/model"
)

// AdapterIDClaude is the registry id of the Claude Code adapter.
const AdapterIDClaude = "claude-code"

// ClaudeAdapter parses Claude Code JSONL session files: one JSON object per
// line, routed by the top-level "type" field (summary/user/assistant), with
// message content as either a plain string or an array of typed blocks.
type ClaudeAdapter struct{}

// NewClaudeAdapter returns the Claude Code JSONL adapter.
func NewClaudeAdapter() *ClaudeAdapter {
	return &ClaudeAdapter{}
}

// ID implements Adapter.
func (a *ClaudeAdapter) ID() string { return AdapterIDClaude }

// rawEntry is a single JSONL line.
type rawEntry struct {
	Type      string      `json:"type"`
	Summary   string      `json:"summary,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Cwd       string      `json:"cwd,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
	Message   *rawMessage `json:"message,omitempty"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// rawBlock is one element of an array-form message content.
type rawBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     map[string]any  `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// CanParse accepts .jsonl files whose first non-empty line is a JSON
// object. Never errors: unreadable or malformed files return false.
func (a *ClaudeAdapter) CanParse(path string) bool {
	if filepath.Ext(path) != ".jsonl" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return strings.HasPrefix(line, "{") && json.Valid([]byte(line))
	}
	return false
}

// peekLines bounds the cheap id recovery: session ids appear on the first
// real entry, so a handful of lines is enough.
const peekLines = 10

// PeekSessionID recovers the session id without a full parse. The file
// name is the session uuid for Claude Code logs; the first entries carry a
// sessionId field as a cross-check when the name is not id-shaped.
func (a *ClaudeAdapter) PeekSessionID(path string) string {
	if id := fileStemID(path); id != "" {
		return id
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for i := 0; i < peekLines && scanner.Scan(); i++ {
		var e rawEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.SessionID != "" {
			return e.SessionID
		}
	}
	return ""
}

// Parse implements Adapter.
func (a *ClaudeAdapter) Parse(path string) (*model.ParsedSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	parsed := &model.ParsedSession{
		Source: AdapterIDClaude,
		Path:   path,
	}

	// Tool names by tool_use id, for attributing result events.
	toolNames := make(map[string]string)
	var minTime, maxTime time.Time

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 8*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry rawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if entry.SessionID != "" && parsed.ID == "" {
			parsed.ID = entry.SessionID
		}
		if entry.Cwd != "" && parsed.Cwd == "" {
			parsed.Cwd = entry.Cwd
		}
		if ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err == nil {
			if minTime.IsZero() || ts.Before(minTime) {
				minTime = ts
			}
			if ts.After(maxTime) {
				maxTime = ts
			}
		}

		switch entry.Type {
		case "summary":
			if entry.Summary != "" {
				parsed.Name = entry.Summary
			}
		case "user", "assistant", "system":
			if entry.Message == nil {
				continue
			}
			role := entry.Message.Role
			if role == "" {
				role = entry.Type
			}
			turns := parseContent(role, entry.Message.Content, toolNames)
			parsed.Turns = append(parsed.Turns, turns...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if parsed.ID == "" {
		parsed.ID = fallbackID(path)
	}
	if !minTime.IsZero() {
		parsed.CreatedAt = minTime.UTC().Format(time.RFC3339)
	}
	if !maxTime.IsZero() {
		parsed.ModifiedAt = maxTime.UTC().Format(time.RFC3339)
	}

	return parsed, nil
}

// parseContent turns one message payload into normalized turns. String
// content is one prose turn. Array content may mix text, tool_use, and
// tool_result blocks; results become their own message turns stamped with
// the originating tool's name and outcome.
func parseContent(role string, raw json.RawMessage, toolNames map[string]string) []model.Turn {
	if len(raw) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []model.Turn{{Role: role, Text: text}}
	}

	var blocks []rawBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}

	var turns []model.Turn
	var prose []string
	var calls []model.ToolCall

	for _, b := range blocks {
		switch b.Type {
		case "text":
			if strings.TrimSpace(b.Text) != "" {
				prose = append(prose, b.Text)
			}
		case "tool_use":
			if b.ID != "" {
				toolNames[b.ID] = b.Name
			}
			calls = append(calls, model.ToolCall{Name: b.Name, Args: b.Input})
		case "tool_result":
			status := model.StatusSuccess
			if b.IsError {
				status = model.StatusError
			}
			turns = append(turns, model.Turn{
				Role:     role,
				Text:     blockText(b.Content),
				ToolName: toolNames[b.ToolUseID],
				Status:   status,
			})
		}
	}

	if len(prose) > 0 || len(calls) > 0 {
		turns = append(turns, model.Turn{
			Role:      role,
			Text:      strings.Join(prose, "\n"),
			ToolCalls: calls,
		})
	}
	return turns
}

// blockText flattens a tool_result content payload, which is either a
// string or an array of text blocks.
func blockText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []rawBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// fileStemID returns the file name stem when it is uuid-shaped, else "".
func fileStemID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := uuid.Parse(stem); err == nil {
		return stem
	}
	return ""
}

// fallbackID derives a stable id for files that carry no session id. The
// uuid-shaped file name stem comes first so the result agrees with
// PeekSessionID and the mtime fast path keeps hitting; otherwise a UUIDv5
// of the absolute path, so re-indexing the same file always replaces the
// same session row.
func fallbackID(path string) string {
	if id := fileStemID(path); id != "" {
		return id
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}
