package format

import (
	"strings"

	"github.com/aliou/sesame/internal/model"
)

// BuildChunks derives the chunk list for a parsed session. One message
// chunk per turn with non-empty text, one tool_call chunk per invocation.
// Chunks whose rendered content trims to nothing are dropped; seq values
// stay strictly increasing in emission order.
func BuildChunks(parsed *model.ParsedSession) []model.Chunk {
	var chunks []model.Chunk
	seq := 0

	for _, turn := range parsed.Turns {
		if text := strings.TrimSpace(turn.Text); text != "" {
			chunks = append(chunks, model.Chunk{
				SessionID: parsed.ID,
				Kind:      model.KindMessage,
				Role:      turn.Role,
				ToolName:  turn.ToolName, // set for tool-result turns
				Seq:       seq,
				Content:   turn.Text,
				Status:    turn.Status,
			})
			seq++
		}

		for _, call := range turn.ToolCalls {
			content := ToolCallContent(call)
			if strings.TrimSpace(content) == "" {
				continue
			}
			chunks = append(chunks, model.Chunk{
				SessionID: parsed.ID,
				Kind:      model.KindToolCall,
				ToolName:  call.Name,
				Seq:       seq,
				Content:   content,
			})
			seq++
		}
	}

	return chunks
}

// MessageCount returns the number of turns carrying text, the figure
// stored on the session row.
func MessageCount(parsed *model.ParsedSession) int {
	n := 0
	for _, turn := range parsed.Turns {
		if strings.TrimSpace(turn.Text) != "" {
			n++
		}
	}
	return n
}
