package codegen

import "strings"

// handleTypes are the native types that are opaque script handles.
var handleTypes = map[string]bool{
	"Any":       true,
	"Blip":      true,
	"Cam":       true,
	"Entity":    true,
	"FireId":    true,
	"Interior":  true,
	"Object":    true,
	"Ped":       true,
	"Pickup":    true,
	"Player":    true,
	"ScrHandle": true,
	"Vehicle":   true,
}

// mapNativeType maps a native type name to the generated type.
//
// It handles:
//   - Handle types (Entity, Ped, ...): the configured handle type
//   - Hash: the configured hash type
//   - BOOL: bool
//   - char* and const char*: string
//   - Pointers: the mapped element type followed by "*"
//   - Empty type: void
//   - Anything else is kept as is (int, float, Vector3, ...)
func mapNativeType(native string, opts Options) string {
	t := strings.TrimSpace(native)
	t = strings.TrimSpace(strings.TrimPrefix(t, "const "))

	if strings.HasSuffix(t, "*") {
		elem := strings.TrimSpace(strings.TrimSuffix(t, "*"))
		switch elem {
		case "char":
			return "string"
		case "void":
			return "nint"
		}
		return mapNativeType(elem, opts) + "*"
	}
	return mapSingleType(t, opts)
}

// mapSingleType maps a non-pointer native type.
func mapSingleType(t string, opts Options) string {
	switch {
	case t == "":
		return "void"
	case handleTypes[t]:
		return opts.HandleType
	case t == "Hash":
		return opts.HashType
	case t == "BOOL":
		return "bool"
	default:
		return t
	}
}
