package repl

import (
	"bufio"
	"fmt"
	"io"
	"lox/internal/evaluator"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/parser"
)

const PROMPT = ">> "

// Start runs the read-eval-print loop. One root environment lives for the
// whole session, so bindings and closures persist across lines. The REPL
// skips the static resolver: interactive redefinition of names is expected
// here, and the evaluator's dynamic lookup handles it.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	env := evaluator.NewRootEnvironment()
	eval := evaluator.New(&evaluator.WriterPrinter{Out: out})

	for {
		fmt.Fprint(out, PROMPT)
		scanned := scanner.Scan()
		if !scanned {
			return
		}

		line := scanner.Text()
		l := lexer.New(line)
		p := parser.New(l)

		program := p.ParseProgram()
		if len(p.Errors()) != 0 {
			printParserErrors(out, p.Errors())
			continue
		}

		evaluated := eval.Eval(program, env)
		if evaluated != nil && evaluated != object.NIL {
			io.WriteString(out, evaluated.Inspect())
			io.WriteString(out, "\n")
		}
	}
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, "parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
