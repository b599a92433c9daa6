package format

import (
	"strings"
	"testing"

	"github.com/aliou/sesame/internal/model"
)

func TestToolCallContent_WriteFamily(t *testing.T) {
	got := ToolCallContent(model.ToolCall{
		Name: "Write",
		Args: map[string]any{
			"file_path": "cmd/main.go",
			"content":   "package main",
		},
	})
	want := "tool: Write\npath: cmd/main.go\ncontent:\npackage main"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToolCallContent_EditFamily(t *testing.T) {
	got := ToolCallContent(model.ToolCall{
		Name: "Edit",
		Args: map[string]any{
			"path":       "store.go",
			"old_string": "foo",
			"new_string": "bar",
		},
	})
	want := "tool: Edit\npath: store.go\nold:\nfoo\nnew:\nbar"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToolCallContent_ShellFamily(t *testing.T) {
	got := ToolCallContent(model.ToolCall{
		Name:   "Bash",
		Args:   map[string]any{"command": "go test ./..."},
		Result: "ok",
	})
	want := "tool: Bash\ncommand: go test ./...\noutput:\nok"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToolCallContent_FamilyIsCaseInsensitive(t *testing.T) {
	upper := ToolCallContent(model.ToolCall{Name: "BASH", Args: map[string]any{"command": "ls"}})
	if !strings.Contains(upper, "command: ls") {
		t.Errorf("uppercase name missed the shell layout: %q", upper)
	}
	// The rendered name keeps the original casing.
	if !strings.HasPrefix(upper, "tool: BASH\n") {
		t.Errorf("name casing not preserved: %q", upper)
	}
}

func TestToolCallContent_SynonymKeys(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"Write", map[string]any{"filePath": "a.go"}, "path: a.go"},
		{"Write", map[string]any{"path": "b.go"}, "path: b.go"},
		{"Bash", map[string]any{"cmd": "make"}, "command: make"},
		{"Bash", map[string]any{"script": "deploy.sh"}, "command: deploy.sh"},
		{"Edit", map[string]any{"path": "x", "oldText": "p", "newText": "q"}, "old:\np"},
	}
	for _, tt := range tests {
		got := ToolCallContent(model.ToolCall{Name: tt.name, Args: tt.args})
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s %v: %q missing %q", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestToolCallContent_SynonymPrecedence(t *testing.T) {
	got := ToolCallContent(model.ToolCall{
		Name: "Read",
		Args: map[string]any{"path": "first.go", "file_path": "second.go"},
	})
	if !strings.Contains(got, "path: first.go") {
		t.Errorf("first synonym key did not win: %q", got)
	}
}

func TestToolCallContent_GenericSortsKeys(t *testing.T) {
	got := ToolCallContent(model.ToolCall{
		Name:   "WebFetch",
		Args:   map[string]any{"url": "https://example.com", "prompt": "summarize", "max_len": 100},
		Result: "a page",
	})
	want := "tool: WebFetch\nmax_len: 100\nprompt: summarize\nurl: https://example.com\nresult:\na page"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestToolCallContent_EmptyName(t *testing.T) {
	if got := ToolCallContent(model.ToolCall{Args: map[string]any{"path": "x"}}); got != "" {
		t.Errorf("nameless call rendered %q, want empty", got)
	}
}

func TestToolCallContent_MissingArgsOmitted(t *testing.T) {
	got := ToolCallContent(model.ToolCall{Name: "Bash"})
	if got != "tool: Bash" {
		t.Errorf("got %q, want bare name line", got)
	}
}

func TestBuildChunks(t *testing.T) {
	parsed := &model.ParsedSession{
		ID: "s1",
		Turns: []model.Turn{
			{Role: "user", Text: "please fix the test"},
			{Role: "assistant", Text: "on it", ToolCalls: []model.ToolCall{
				{Name: "Bash", Args: map[string]any{"command": "go test"}},
			}},
			{Role: "user", Text: "   "}, // blank, dropped
			{Role: "user", Text: "tests pass now", ToolName: "Bash", Status: model.StatusSuccess},
		},
	}

	chunks := BuildChunks(parsed)
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}

	for i, c := range chunks {
		if c.Seq != i {
			t.Errorf("chunk %d has seq %d, want strictly increasing from 0", i, c.Seq)
		}
		if c.SessionID != "s1" {
			t.Errorf("chunk %d session = %q", i, c.SessionID)
		}
	}

	if chunks[0].Kind != model.KindMessage || chunks[0].Role != "user" {
		t.Errorf("chunk 0 = %+v", chunks[0])
	}
	if chunks[2].Kind != model.KindToolCall || chunks[2].ToolName != "Bash" {
		t.Errorf("chunk 2 = %+v", chunks[2])
	}
	last := chunks[3]
	if last.Kind != model.KindMessage || last.ToolName != "Bash" || last.Status != model.StatusSuccess {
		t.Errorf("tool-result chunk = %+v", last)
	}
}

func TestBuildChunks_DropsUnrenderableCalls(t *testing.T) {
	parsed := &model.ParsedSession{
		ID: "s1",
		Turns: []model.Turn{
			{Role: "assistant", ToolCalls: []model.ToolCall{{Name: ""}}},
		},
	}
	if chunks := BuildChunks(parsed); len(chunks) != 0 {
		t.Errorf("got %d chunks from an unrenderable call, want 0", len(chunks))
	}
}

func TestMessageCount(t *testing.T) {
	parsed := &model.ParsedSession{
		Turns: []model.Turn{
			{Text: "one"},
			{Text: "  "},
			{Text: "two", ToolCalls: []model.ToolCall{{Name: "Bash"}}},
			{ToolCalls: []model.ToolCall{{Name: "Read"}}},
		},
	}
	if got := MessageCount(parsed); got != 2 {
		t.Errorf("MessageCount = %d, want 2", got)
	}
}
