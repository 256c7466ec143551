package evaluator

import (
	"fmt"
	"io"
	"os"
)

// Printer is the evaluator's only output channel. The host supplies it, so
// tests can capture print statements in a buffer.
type Printer interface {
	Print(text string)
}

type WriterPrinter struct {
	Out io.Writer
}

func (w *WriterPrinter) Print(text string) {
	fmt.Fprintln(w.Out, text)
}

func NewStdoutPrinter() *WriterPrinter {
	return &WriterPrinter{Out: os.Stdout}
}
