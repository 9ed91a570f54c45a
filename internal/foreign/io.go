package foreign

import (
	"fmt"
	"log/slog"
	"mosa/internal/object"
	"strings"
)

func (h *Host) ioPrint(args []object.Object) object.Object {
	h.write(render(args))
	return object.NULL
}

func (h *Host) ioPrintLn(args []object.Object) object.Object {
	h.write(render(args) + "\n")
	return object.NULL
}

func (h *Host) write(s string) {
	if _, err := fmt.Fprint(h.Out, s); err != nil {
		slog.Warn("failed to write program output", slog.Any("error", err))
	}
}

// render joins the display form of every argument with a space.
func render(args []object.Object) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Inspect()
	}
	return strings.Join(parts, " ")
}
