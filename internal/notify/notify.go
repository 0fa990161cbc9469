package notify

import (
	"errors"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/forPelevin/wandlung/internal/types"
)

// Console prints one line per notification. Colour follows fatih/color
// rules (NO_COLOR, non-tty output).
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	log zerolog.Logger

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
}

func NewConsole(w io.Writer, log zerolog.Logger) *Console {
	return &Console{
		w:    w,
		log:  log,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
	}
}

func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ok.Fprint(c.w, "ok")
	io.WriteString(c.w, "  "+msg+"\n")
}

func (c *Console) Warning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warn.Fprint(c.w, "warning")
	io.WriteString(c.w, "  "+msg+"\n")
}

func (c *Console) Error(msg string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := msg
	if err != nil {
		line += ": " + err.Error()
	}
	c.bad.Fprint(c.w, "error")
	io.WriteString(c.w, "  "+line+"\n")

	var re *types.RequestError
	if errors.As(err, &re) {
		c.log.Debug().Str("op", re.Op).Int("status", re.Status).Msg("request failed")
	}
}
