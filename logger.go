package groceryagent

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// TurnLogger records one structured entry per handled utterance.
type TurnLogger interface {
	LogTurn(turn TurnLog) error
}

// NewTurnLogFilePath returns a file path based on a cleaned up backend or model name to make it easier to identify logs produced with various models.
func NewTurnLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// TurnLog represents a single user utterance and what the assistant did with it.
type TurnLog struct {
	Turn        int       `json:"turn"`
	Timestamp   time.Time `json:"timestamp"`
	Utterance   string    `json:"utterance"`
	LLMOutput   string    `json:"llm_output,omitempty"`
	Source      string    `json:"source"`
	Intent      string    `json:"intent"`
	Fallback    string    `json:"fallback_reason,omitempty"`
	Response    string    `json:"response"`
	GroceryList int       `json:"grocery_list_len"`
	Pantry      int       `json:"pantry_len"`
}

// FileTurnLogger logs to a writer, accumulating turns and flushing at the end
type FileTurnLogger struct {
	mu     sync.Mutex
	turns  []TurnLog
	writer io.Writer
}

func NewFileTurnLogger(writer io.Writer) *FileTurnLogger {
	return &FileTurnLogger{
		turns:  make([]TurnLog, 0),
		writer: writer,
	}
}

// LogTurn adds the turn to the buffer (does not flush immediately)
func (l *FileTurnLogger) LogTurn(turn TurnLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
	return nil
}

// Flush writes all accumulated turns to the writer
func (l *FileTurnLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"session": map[string]any{
			"timestamp": time.Now(),
			"turns":     l.turns,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal turn log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write turn log: %w", err)
	}

	l.turns = l.turns[:0]
	return nil
}

// NoOpTurnLogger discards all log entries
type NoOpTurnLogger struct{}

func NewNoOpTurnLogger() *NoOpTurnLogger {
	return &NoOpTurnLogger{}
}

func (nop *NoOpTurnLogger) LogTurn(turn TurnLog) error {
	return nil
}

// StdoutTurnLogger logs each turn as a JSON line (for Lambda/CloudWatch)
type StdoutTurnLogger struct {
	w io.Writer
}

func NewStdoutTurnLogger() *StdoutTurnLogger {
	return &StdoutTurnLogger{w: os.Stdout}
}

func (l *StdoutTurnLogger) LogTurn(turn TurnLog) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.w, string(data))
	return err
}
