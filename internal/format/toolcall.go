// Package format renders heterogeneous session events into uniform
// searchable text and derives chunks from parsed sessions.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aliou/sesame/internal/model"
)

// Tool families, keyed by lowercased tool name. Unlisted names fall back to
// the generic rendering.
var (
	writeFamily = map[string]bool{
		"write": true, "create": true, "write_file": true,
		"create_file": true, "writefile": true,
	}
	editFamily = map[string]bool{
		"edit": true, "multiedit": true, "str_replace": true,
		"notebookedit": true, "edit_file": true,
	}
	shellFamily = map[string]bool{
		"bash": true, "shell": true, "exec": true,
		"run_command": true, "run_terminal_cmd": true,
	}
	readFamily = map[string]bool{
		"read": true, "read_file": true, "cat": true, "notebookread": true,
	}
)

// Historically-used synonym keys for common arguments. Adapters and tool
// versions disagree on naming; the first present key wins.
var (
	pathKeys    = []string{"path", "file_path", "filePath"}
	contentKeys = []string{"content", "text", "body"}
	commandKeys = []string{"command", "cmd", "script"}
	oldKeys     = []string{"old_string", "old", "oldText"}
	newKeys     = []string{"new_string", "new", "newText"}
)

// ToolCallContent renders one tool invocation into a single text blob.
// The per-family layouts keep structured calls searchable by the same
// ranking engine as prose. Returns "" only for a call with no name and no
// renderable fields.
func ToolCallContent(call model.ToolCall) string {
	name := strings.TrimSpace(call.Name)
	if name == "" {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "tool: %s\n", name)

	switch family := strings.ToLower(name); {
	case writeFamily[family]:
		writeField(&b, "path", argString(call.Args, pathKeys))
		writeBlock(&b, "content", argString(call.Args, contentKeys))
		writeBlock(&b, "result", call.Result)

	case editFamily[family]:
		writeField(&b, "path", argString(call.Args, pathKeys))
		writeBlock(&b, "old", argString(call.Args, oldKeys))
		writeBlock(&b, "new", argString(call.Args, newKeys))
		writeBlock(&b, "result", call.Result)

	case shellFamily[family]:
		writeField(&b, "command", argString(call.Args, commandKeys))
		writeBlock(&b, "output", call.Result)

	case readFamily[family]:
		writeField(&b, "path", argString(call.Args, pathKeys))
		writeBlock(&b, "content", call.Result)

	default:
		keys := make([]string, 0, len(call.Args))
		for k := range call.Args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeField(&b, k, renderValue(call.Args[k]))
		}
		writeBlock(&b, "result", call.Result)
	}

	return strings.TrimRight(b.String(), "\n")
}

// argString returns the first present, non-empty string value among the
// synonym keys.
func argString(args map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := args[k]; ok {
			if s := renderValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// renderValue gives non-string argument values their literal textual
// encoding.
func renderValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func writeField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", key, value)
}

func writeBlock(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s:\n%s\n", key, value)
}
