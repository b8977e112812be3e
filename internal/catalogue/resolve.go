package catalogue

import (
	"io/fs"
	"os"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// DefaultCachePath is the working-directory relative cache file refreshed
// from the network and read before the embedded fallback.
const DefaultCachePath = "natives_latest.json"

// Resolver obtains a catalogue from the local cache file, falling back to the
// embedded copy.
type Resolver struct {
	CachePath string
	Fallback  []byte // Defaults to EmbeddedJSON.
	Logger    logr.Logger
}

// NewResolver returns a Resolver reading cachePath with the embedded fallback.
func NewResolver(cachePath string, logger logr.Logger) *Resolver {
	return &Resolver{
		CachePath: cachePath,
		Fallback:  EmbeddedJSON,
		Logger:    logger,
	}
}

// Resolve returns the cached catalogue if it can be read and decoded, and the
// fallback catalogue otherwise. It never returns an error: cache failures are
// logged and the result is nil only when the fallback itself is unusable.
func (r *Resolver) Resolve() *Catalogue {
	if cat := r.fromCache(); cat != nil {
		return cat
	}

	fallback := r.Fallback
	if fallback == nil {
		fallback = EmbeddedJSON
	}
	cat, err := Decode(fallback)
	if err != nil {
		r.Logger.Error(err, "Embedded catalogue is unusable")
		return nil
	}
	r.Logger.V(1).Info("Loaded embedded catalogue", "groups", cat.Len(), "functions", cat.FunctionCount())
	return cat
}

func (r *Resolver) fromCache() *Catalogue {
	if r.CachePath == "" {
		return nil
	}
	data, err := os.ReadFile(r.CachePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.Logger.Info("No cached catalogue, using fallback", "path", r.CachePath)
			return nil
		}
		r.Logger.Error(err, "Unable to use the catalogue file on disk, using fallback", "path", r.CachePath)
		return nil
	}

	cat, err := Decode(data)
	if err != nil {
		r.Logger.Error(err, "Invalid catalogue file", "path", r.CachePath)
		r.Logger.Info("Using fallback.")
		return nil
	}
	r.Logger.V(1).Info("Loaded cached catalogue", "path", r.CachePath, "groups", cat.Len(), "functions", cat.FunctionCount())
	return cat
}
