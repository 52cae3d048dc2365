package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/smsledger/internal/model"
)

// maxLineSize bounds a single exported message line.
const maxLineSize = 1 << 20

// ReadMessages reads notifications from r. Each non-blank line is either a
// JSON object {"sender": ..., "body": ...} or, when it does not start with
// '{', a bare message body. Lines starting with '#' are comments.
func ReadMessages(r io.Reader) ([]model.RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var msgs []model.RawMessage
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.HasPrefix(line, "{") {
			msgs = append(msgs, model.RawMessage{Body: line})
			continue
		}

		var msg model.RawMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return nil, fmt.Errorf("line %d: invalid message: %w", lineNo, err)
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return msgs, nil
}
