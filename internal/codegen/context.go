package codegen

import "strings"

// Defaults for Options.
const (
	DefaultHandleType = "int"
	DefaultHashType   = "uint"
	DefaultNamespace  = "NativeFx.Interop"
)

// Options controls the types and namespace of the generated file.
type Options struct {
	HandleType string // Type of entity, ped, vehicle... handles.
	HashType   string // Type of native hashes and Hash-typed values.
	Namespace  string // File-scoped namespace of the generated file.
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		HandleType: DefaultHandleType,
		HashType:   DefaultHashType,
		Namespace:  DefaultNamespace,
	}
}

func (o Options) withDefaults() Options {
	if o.HandleType == "" {
		o.HandleType = DefaultHandleType
	}
	if o.HashType == "" {
		o.HashType = DefaultHashType
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	return o
}

// headerContext holds the data of the file preamble.
type headerContext struct {
	Version   string
	Namespace string
	Groups    int
	Functions int
}

// classContext holds the data of one generated static class (one group).
type classContext struct {
	Name  string // Class name, e.g. "Entity".
	Group string // Group name as found in the catalogue, e.g. "ENTITY".
}

// functionDef holds everything needed to emit one native wrapper.
type functionDef struct {
	Native     string   // Native name as found in the catalogue (e.g., "DOES_ENTITY_EXIST")
	MethodName string   // PascalCase method (e.g., "DoesEntityExist")
	Summary    []string // Doc comment lines
	Remarks    string
	Obsolete   bool
	ReturnType string // Mapped return type ("void" when none)
	HashType   string
	HashLocal  string // Name of the local holding the hash
	Hash       string // Hex literal (e.g., "0x7239B21A38F536BA")
	Params     []paramDef
}

// signature identifies a method within its class for overload resolution:
// "DoesEntityExist(int)".
func (d functionDef) signature() string {
	types := make([]string, len(d.Params))
	for i, p := range d.Params {
		types[i] = p.Type
	}
	return d.MethodName + "(" + strings.Join(types, ", ") + ")"
}

// paramDef is a single mapped method parameter.
type paramDef struct {
	Name string // Escaped identifier
	Type string // Mapped type
}
