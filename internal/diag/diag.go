package diag

import (
	"fmt"
	"io"
	"mosa/internal/modules"
	"mosa/internal/object"
	"mosa/internal/util"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	location   = color.New(color.FgCyan)
	excerpt    = color.New(color.Faint)
)

// Report writes err for a person to read. Evaluation errors with a known
// position are shown with the offending source line.
func Report(w io.Writer, err error, storage *modules.Storage) {
	var evalErr *object.EvaluationError
	if !errors.As(err, &evalErr) {
		fmt.Fprintf(w, "%s %s\n", errorLabel.Sprint("[ERROR]"), err)
		return
	}

	fmt.Fprintf(w, "%s %s", errorLabel.Sprint("[ERROR]"), evalErr.Error())

	if evalErr.Position < 0 || storage == nil {
		fmt.Fprintln(w)
		return
	}
	mod, ok := storage.Get(evalErr.Module)
	if !ok {
		fmt.Fprintf(w, " @ %s\n", location.Sprint(evalErr.Module))
		return
	}

	line, col := util.GetLineAndColumn(mod.Src, evalErr.Position)
	fmt.Fprintf(w, " @ %s\n", location.Sprintf("%s:%d:%d", mod.Path, line, col))
	fmt.Fprintln(w, excerpt.Sprint(util.GetContextLines(mod.Src, line, col, evalErr.Kind.String())))
}
