package catalogue

import _ "embed"

// EmbeddedJSON is the catalogue bundled at build time. It is the source of
// last resort when no usable cache file exists, so the tool works offline.
//
//go:embed natives.json
var EmbeddedJSON []byte

// EmbeddedFilename is the filename of EmbeddedJSON.
const EmbeddedFilename = "natives.json"
