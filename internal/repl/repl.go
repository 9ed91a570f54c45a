package repl

import (
	"bufio"
	"fmt"
	"io"
	"mosa/internal/diag"
	"mosa/internal/evaluator"
	"mosa/internal/modules"
	"mosa/internal/object"
	"strings"

	"github.com/pkg/errors"
)

const (
	PROMPT     = ">> "
	ModuleName = "repl"
)

// Session evaluates input line by line in one long lived root scope, so
// declarations made on one line are visible on the next.
type Session struct {
	loader *modules.Loader
	scope  *object.Scope
}

// NewSession reads imported modules below root.
func NewSession(root string, natives *object.NativeRegistry) (*Session, error) {
	scope := object.NewRootScope(ModuleName, natives)
	if err := evaluator.DeclareGlobals(scope); err != nil {
		return nil, err
	}
	return &Session{
		loader: modules.NewLoader(root, modules.NewStorage()),
		scope:  scope,
	}, nil
}

func (s *Session) Storage() *modules.Storage {
	return s.loader.Storage
}

// Eval parses and runs one chunk of input.
func (s *Session) Eval(input string) (object.Object, error) {
	program, err := modules.Parse(ModuleName, input)
	if err != nil {
		return nil, err
	}
	for _, use := range modules.Imports(program) {
		if _, err := s.loader.Load(use, ""); err != nil {
			return nil, err
		}
	}
	return evaluator.New(program, s.loader.Storage).EvalProgram(s.scope)
}

func Start(in io.Reader, out io.Writer, session *Session) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		scanned := scanner.Scan()
		if !scanned {
			return
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		evaluated, err := session.Eval(line)
		var parseErr *modules.ParseError
		switch {
		case errors.As(err, &parseErr):
			printParserErrors(out, parseErr.Errors)
		case err != nil:
			diag.Report(out, err, session.Storage())
		case evaluated != evaluator.NULL:
			io.WriteString(out, evaluated.Inspect())
			io.WriteString(out, "\n")
		}
	}
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, " parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
