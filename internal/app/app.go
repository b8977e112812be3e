// Package app sequences a generation run: refresh the cached catalogue,
// resolve it, and generate the interop file.
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/nativefx/nativegen/internal/catalogue"
	"github.com/nativefx/nativegen/internal/codegen"
	"github.com/nativefx/nativegen/internal/refresh"
)

// Process exit codes returned by Run.
const (
	ExitOK             = 0
	ExitNoCatalogue    = -1
	ExitGenerateFailed = 1
)

// ErrNoCatalogue is logged when neither the cache nor the embedded copy
// produced a catalogue.
var ErrNoCatalogue = errors.New("native data parsing failed")

// Options configures a run.
type Options struct {
	Offline    bool
	HandleType string
	HashType   string
	Namespace  string
	FileName   string
	CachePath  string
	SourceURL  string
	Timeout    time.Duration

	Fallback   []byte       // Catalogue of last resort; nil uses the embedded one.
	HTTPClient *http.Client // nil uses a default client.
}

// DefaultOptions returns the options of a run without flags.
func DefaultOptions() Options {
	gen := codegen.DefaultOptions()
	return Options{
		HandleType: gen.HandleType,
		HashType:   gen.HashType,
		Namespace:  gen.Namespace,
		FileName:   "Natives.g.cs",
		CachePath:  catalogue.DefaultCachePath,
		SourceURL:  refresh.DefaultURL,
		Timeout:    30 * time.Second,
	}
}

func (o Options) codegen() codegen.Options {
	return codegen.Options{
		HandleType: o.HandleType,
		HashType:   o.HashType,
		Namespace:  o.Namespace,
	}
}

// Run performs one generation and returns the process exit code. It never
// panics on bad input: every failure maps to an exit code.
func Run(ctx context.Context, opts Options, version string, logger logr.Logger) int {
	logger.Info("Starting nativegen", "version", version)

	r := refresh.New(opts.SourceURL, opts.CachePath, opts.Offline, logger.WithName("refresh"))
	r.UserAgent = "nativegen/" + version
	if opts.HTTPClient != nil {
		r.Client = opts.HTTPClient
	}
	refreshCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		refreshCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	r.Refresh(refreshCtx)
	cancel()

	resolver := catalogue.NewResolver(opts.CachePath, logger.WithName("catalogue"))
	if opts.Fallback != nil {
		resolver.Fallback = opts.Fallback
	}
	cat := resolver.Resolve()
	if cat == nil || cat.Len() == 0 {
		logger.Error(ErrNoCatalogue, "Native data parsing failed")
		return ExitNoCatalogue
	}

	logger.Info("Generating C# wrappers", "groups", cat.Len(), "natives", cat.FunctionCount(), "file", opts.FileName)
	start := time.Now()
	n, err := generate(cat, opts, version, logger.WithName("codegen"))
	elapsed := time.Since(start)
	if err != nil {
		logger.Error(err, "Generation failed", "file", opts.FileName)
		return ExitGenerateFailed
	}

	logger.Info("Generator complete", "natives", n, "elapsed", elapsed.String(), "elapsedMs", elapsed.Milliseconds())
	return ExitOK
}

func generate(cat *catalogue.Catalogue, opts Options, version string, logger logr.Logger) (n int, err error) {
	f, err := os.Create(opts.FileName)
	if err != nil {
		return 0, errors.Wrap(err, "create output file")
	}

	g := codegen.NewGenerator(f, cat, opts.codegen(), logger)
	defer func() {
		if closeErr := g.Close(); err == nil {
			err = closeErr
		}
	}()

	g.Initialise()
	if err := g.WriteHeader(version); err != nil {
		return 0, err
	}
	if err := g.Run(); err != nil {
		return g.Written(), err
	}
	return g.Written(), nil
}
