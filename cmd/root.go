package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/nativefx/nativegen/internal/app"
)

var appVersion = "dev"

func SetVersion(v string) {
	appVersion = v
}

var (
	opts     = app.DefaultOptions()
	exitCode = app.ExitOK
)

var rootCmd = &cobra.Command{
	Use:   "nativegen",
	Short: "Generate typed C# wrappers for a native function catalogue",
	Long: `nativegen downloads the latest native function catalogue, falls back to the
cached or bundled copy when that fails, and writes one C# file with a typed
wrapper per native.

Examples:
  # Refresh the catalogue and generate Natives.g.cs
  nativegen

  # Use the cached or bundled catalogue only
  nativegen --offline

  # Custom handle and hash types in a custom namespace
  nativegen -o --handle-type long --hash-type ulong -n MyMod.Natives -f MyNatives.cs`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&opts.Offline, "offline", "o", false, "do not download the latest natives.json from the Internet")
	f.StringVar(&opts.HandleType, "handle-type", opts.HandleType, "type for the handles of entities, peds, vehicles... in natives")
	f.StringVar(&opts.HashType, "hash-type", opts.HashType, "type for hashes (ulong holds 64-bit native hashes)")
	f.StringVarP(&opts.Namespace, "namespace", "n", opts.Namespace, "namespace of the generated file")
	f.StringVarP(&opts.FileName, "file", "f", opts.FileName, "path of the generated file")
	f.StringVar(&opts.CachePath, "cache", opts.CachePath, "path of the cached natives.json")
	f.StringVar(&opts.SourceURL, "url", opts.SourceURL, "URL of the latest natives.json")
	f.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "timeout for downloading natives.json")

	// klog flags (--v, --logtostderr, ...).
	goFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(goFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(goFlags)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := klog.NewKlogr()
	defer klog.Flush()

	exitCode = app.Run(cmd.Context(), opts, appVersion, logger)
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.Version = appVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("nativegen v%s\n", appVersion))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return app.ExitGenerateFailed
	}
	return exitCode
}
