package codegen

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/nativefx/nativegen/internal/catalogue"
	"github.com/nativefx/nativegen/internal/nameutil"
)

var (
	// ErrInvalidEntry is returned by Run for the first catalogue entry that
	// cannot be emitted, e.g. one without a name or hash. Generation stops
	// at that entry.
	ErrInvalidEntry = errors.New("invalid catalogue entry")

	// ErrNotInitialised is returned when WriteHeader or Run are called
	// before Initialise.
	ErrNotInitialised = errors.New("generator not initialised")
)

// Generator writes one C# source file exposing a typed wrapper for every
// native of a catalogue. Use it as:
//
//	g := NewGenerator(file, cat, opts, logger)
//	defer g.Close()
//	g.Initialise()
//	err := g.WriteHeader(version)
//	err = g.Run()
type Generator struct {
	sink   io.WriteCloser
	w      *bufio.Writer
	cat    *catalogue.Catalogue
	opts   Options
	logger logr.Logger

	written int
	classes map[string]string // Emitted class name -> group.
	closed  bool
}

// NewGenerator creates a Generator writing to sink, which is owned by the
// Generator from then on and closed by Close.
func NewGenerator(sink io.WriteCloser, cat *catalogue.Catalogue, opts Options, logger logr.Logger) *Generator {
	return &Generator{
		sink:   sink,
		cat:    cat,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Initialise prepares the emission state. Nothing is written yet.
func (g *Generator) Initialise() {
	g.w = bufio.NewWriter(g.sink)
	g.written = 0
	g.classes = make(map[string]string)
}

// WriteHeader emits the file preamble: the generated-file banner stamped with
// version, and the namespace declaration.
func (g *Generator) WriteHeader(version string) error {
	if g.w == nil {
		return errors.WithStack(ErrNotInitialised)
	}
	ctx := headerContext{
		Version:   version,
		Namespace: g.opts.Namespace,
		Groups:    g.cat.Len(),
		Functions: g.cat.FunctionCount(),
	}
	if err := headerTemplate.Execute(g.w, ctx); err != nil {
		return errors.Wrap(err, "render header template")
	}
	return nil
}

// Run emits one static class per group and one method per native, in
// catalogue order. It stops at the first invalid entry.
func (g *Generator) Run() error {
	if g.w == nil {
		return errors.WithStack(ErrNotInitialised)
	}

	var runErr error
	g.cat.EachGroup(func(group string, fns *catalogue.Group) bool {
		if fns == nil {
			return true
		}
		runErr = g.writeGroup(group, fns)
		return runErr == nil
	})
	if runErr != nil {
		return runErr
	}
	g.logger.V(1).Info("Wrote natives", "count", g.written)
	return nil
}

func (g *Generator) writeGroup(group string, fns *catalogue.Group) error {
	class := nameutil.PascalCase(group)
	if class == "" {
		return errors.Wrapf(ErrInvalidEntry, "group %q has no usable class name", group)
	}
	if other, ok := g.classes[class]; ok {
		return errors.Wrapf(ErrInvalidEntry, "groups %q and %q both map to class %s", other, group, class)
	}
	g.classes[class] = group
	g.logger.V(1).Info("Generating group", "group", group, "class", class, "natives", fns.Len())

	if err := classOpenTemplate.Execute(g.w, classContext{Name: class, Group: group}); err != nil {
		return errors.Wrapf(err, "render class %s", class)
	}
	first := true
	signatures := make(map[string]string, fns.Len())
	for pair := fns.Oldest(); pair != nil; pair = pair.Next() {
		def, err := newFunctionDef(pair.Value, g.opts)
		if err != nil {
			return errors.WithMessagef(err, "%s/%s", group, pair.Key)
		}
		if def.MethodName == class {
			return errors.Wrapf(ErrInvalidEntry, "%s/%s: method %s has the name of its class", group, pair.Key, class)
		}
		sig := def.signature()
		if other, ok := signatures[sig]; ok {
			return errors.Wrapf(ErrInvalidEntry, "%s/%s: method %s duplicates %s/%s", group, pair.Key, sig, group, other)
		}
		signatures[sig] = pair.Key
		if !first {
			if _, err := g.w.WriteString("\n"); err != nil {
				return errors.Wrap(err, "write output")
			}
		}
		first = false
		if err := functionTemplate.Execute(g.w, def); err != nil {
			return errors.Wrapf(err, "render native %s/%s", group, pair.Key)
		}
		g.written++
		g.logger.V(2).Info("Generated native", "group", group, "native", def.Native, "method", def.MethodName)
	}
	if _, err := g.w.WriteString(classClose); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

// newFunctionDef validates a catalogue entry and maps it to the template data.
func newFunctionDef(f *catalogue.Function, opts Options) (functionDef, error) {
	if f == nil {
		return functionDef{}, errors.Wrap(ErrInvalidEntry, "entry is null")
	}
	if f.Name == "" {
		return functionDef{}, errors.Wrap(ErrInvalidEntry, "missing name")
	}
	if !f.Hash.Set {
		return functionDef{}, errors.Wrapf(ErrInvalidEntry, "%s: missing hash", f.Name)
	}
	method := nameutil.PascalCase(f.Name)
	if method == "" {
		return functionDef{}, errors.Wrapf(ErrInvalidEntry, "%s: name is not a usable identifier", f.Name)
	}

	params := make([]paramDef, len(f.Params))
	// The wrapper body declares a local named hashLocal.
	seen := map[string]bool{hashLocal: true}
	for i, p := range f.Params {
		if strings.TrimSpace(p.Type) == "" {
			return functionDef{}, errors.Wrapf(ErrInvalidEntry, "%s: parameter %d has no type", f.Name, i)
		}
		name := nameutil.CamelCase(p.Name)
		if name == "" {
			name = fmt.Sprintf("p%d", i)
		}
		for base, n := name, i; seen[name]; n++ {
			name = fmt.Sprintf("%s%d", base, n)
		}
		seen[name] = true
		params[i] = paramDef{
			Name: nameutil.EscapeKeyword(name),
			Type: mapNativeType(p.Type, opts),
		}
	}

	return functionDef{
		Native:     f.Name,
		MethodName: method,
		Summary:    docLines(f.Comment),
		Remarks:    remarks(f),
		Obsolete:   f.Deprecated,
		ReturnType: mapNativeType(f.ReturnType, opts),
		HashType:   opts.HashType,
		HashLocal:  hashLocal,
		Hash:       f.Hash.String(),
		Params:     params,
	}, nil
}

// remarks describes where a native comes from: its name, hashes, build and
// former names.
func remarks(f *catalogue.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s", f.Name, f.Hash)
	if f.JHash.Set {
		fmt.Fprintf(&b, ", jhash %s", f.JHash)
	}
	b.WriteString(")")
	if f.Build != "" {
		fmt.Fprintf(&b, ", build %s", f.Build)
	}
	if len(f.OldNames) > 0 {
		fmt.Fprintf(&b, ", previously %s", strings.Join(f.OldNames, ", "))
	}
	b.WriteString(".")
	return xmlEscaper.Replace(b.String())
}

// Written returns the number of natives emitted by Run so far.
func (g *Generator) Written() int {
	return g.written
}

// Close flushes buffered output and closes the sink. Only the first call has
// an effect, so it can be deferred right after NewGenerator.
func (g *Generator) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true

	var flushErr error
	if g.w != nil {
		flushErr = g.w.Flush()
	}
	closeErr := g.sink.Close()
	if flushErr != nil {
		return errors.Wrap(flushErr, "flush output")
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "close output")
	}
	return nil
}

// Generate runs the whole sequence over sink and closes it.
func Generate(sink io.WriteCloser, cat *catalogue.Catalogue, opts Options, version string, logger logr.Logger) (err error) {
	g := NewGenerator(sink, cat, opts, logger)
	defer func() {
		if closeErr := g.Close(); err == nil {
			err = closeErr
		}
	}()

	g.Initialise()
	if err := g.WriteHeader(version); err != nil {
		return err
	}
	return g.Run()
}
