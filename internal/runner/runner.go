package runner

import (
	"log/slog"
	"mosa/internal/evaluator"
	"mosa/internal/modules"
	"mosa/internal/object"
)

// Binding exposes a host function to programs under Path, e.g. "io:print".
type Binding struct {
	Path string
	Fn   object.NativeFunction
}

// Runner loads an entry file with everything it imports and evaluates it.
type Runner struct {
	Entry string
	// Root overrides the import root, which defaults to the entry's directory.
	Root string
	// DumpAST receives every module right after it is parsed.
	DumpAST func(m *modules.Module)

	bindings []Binding
	storage  *modules.Storage
}

func New(entry string) *Runner {
	return &Runner{Entry: entry, storage: modules.NewStorage()}
}

// AddBindings returns a copy of r with the bindings appended.
func (r *Runner) AddBindings(bindings ...Binding) *Runner {
	c := *r
	c.bindings = append(append([]Binding(nil), r.bindings...), bindings...)
	return &c
}

// Storage holds the loaded modules, also after a failed run.
func (r *Runner) Storage() *modules.Storage {
	return r.storage
}

func (r *Runner) Run() (object.Object, error) {
	loader := modules.NewLoader(r.Root, r.storage)
	loader.DumpAST = r.DumpAST
	entry, err := loader.LoadEntry(r.Entry)
	if err != nil {
		return nil, err
	}
	return r.eval(entry)
}

// RunSource evaluates src as the entry module name. Imports are read below Root.
func (r *Runner) RunSource(name, src string) (object.Object, error) {
	loader := modules.NewLoader(r.Root, r.storage)
	loader.DumpAST = r.DumpAST
	entry, err := loader.LoadSource(name, src)
	if err != nil {
		return nil, err
	}
	return r.eval(entry)
}

func (r *Runner) eval(entry *modules.Module) (object.Object, error) {
	scope := object.NewRootScope(entry.Name, object.NewNativeRegistry())
	for _, b := range r.bindings {
		scope.AddNativeFunction(b.Path, b.Fn)
	}

	slog.Debug("running program",
		slog.String("entry", entry.Path),
		slog.Any("modules", r.storage.Names()),
		slog.Int("natives", len(r.bindings)))

	return entry.ResolveIn(evaluator.ModuleEvaluator(r.storage), scope)
}
