package thriftc

import (
	"bytes"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var lineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// lineWriter prefixes every line the compiler prints so its output stands
// apart from taogen's own progress lines. A trailing partial line is held
// until the next newline or Flush.
type lineWriter struct {
	prefix string
	out    io.Writer
	buf    []byte
}

func newLineWriter(out io.Writer, prefix string) *lineWriter {
	return &lineWriter{prefix: prefix, out: out}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if err := w.writeLine(w.buf[:i]); err != nil {
			return 0, err
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush writes a pending partial line.
func (w *lineWriter) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	err := w.writeLine(w.buf)
	w.buf = w.buf[:0]
	return err
}

func (w *lineWriter) writeLine(line []byte) error {
	_, err := io.WriteString(w.out, lineStyle.Render(w.prefix+string(line))+"\n")
	return err
}
