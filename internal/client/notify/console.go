package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console prints notifications to w and reads confirmations from r.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	r  *bufio.Reader
}

func NewConsole(w io.Writer, r *bufio.Reader) *Console {
	return &Console{w: w, r: r}
}

func (c *Console) print(level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %s\n", strings.ToUpper(string(level)), msg)
}

func (c *Console) Success(msg string) { c.print(LevelSuccess, msg) }
func (c *Console) Info(msg string)    { c.print(LevelInfo, msg) }
func (c *Console) Warning(msg string) { c.print(LevelWarning, msg) }
func (c *Console) Error(msg string)   { c.print(LevelError, msg) }

// Confirm accepts y/yes (any case); anything else, including EOF, is no.
func (c *Console) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	fmt.Fprintf(c.w, "%s [y/N]: ", prompt)
	c.mu.Unlock()

	line, err := c.r.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
