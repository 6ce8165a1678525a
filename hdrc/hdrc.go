// Command hdrc renders layout descriptions (.layout or .json) into C++ headers
// holding one struct declaration and size assertion per structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gostdlib/base/context"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bearlytools/structhdr/internal/layout"
	"github.com/bearlytools/structhdr/internal/render"
	"github.com/bearlytools/structhdr/internal/render/cheader"
	"github.com/bearlytools/structhdr/internal/writer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	out      string
	zeroInit bool
	force    bool
	includes []string
	verbose  bool
}

func (o *options) renderOptions() []cheader.Option {
	return []cheader.Option{
		cheader.WithZeroInit(o.zeroInit),
		cheader.WithIncludes(o.includes...),
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "hdrc [flags] <file.layout|file.json>...",
		Short: "Render layout descriptions as C++ struct headers",
		Long: `Render layout descriptions as C++ struct headers.

Every structure becomes a struct declaration with a doc comment per field
giving its byte offset (and bit index for bit fields), followed by a
static_assert on the size of the struct.

Examples:
  hdrc engine.layout                  # Render to stdout
  hdrc -o generated/ engine.layout    # Write generated/engine.h if it changed
  hdrc --zero-init engine.json        # Zero initialize primitive fields`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args)
		},
	}
	root.PersistentFlags().StringVarP(&opts.out, "out", "o", "", "Output directory (default: stdout)")
	root.PersistentFlags().BoolVar(&opts.zeroInit, "zero-init", false, "Zero initialize non-array fields of primitive types")
	root.PersistentFlags().StringSliceVar(&opts.includes, "include", nil, "Headers to #include in the output")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	root.Flags().BoolVar(&opts.force, "force", false, "Write headers even if they have not changed")

	root.AddCommand(
		&cobra.Command{
			Use:   "check <file.layout|file.json>...",
			Short: "Check if generated headers are up to date",
			Long: `Check if the headers in --out match what would be rendered now.

Exits non-zero and lists the stale headers if any differ.`,
			Args: cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCheck(cmd, opts, args)
			},
		},
		&cobra.Command{
			Use:   "dump <file.layout|file.json>",
			Short: "Print a layout description as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDump(cmd, args[0])
			},
		},
	)
	return root
}

func runRender(cmd *cobra.Command, opts *options, args []string) error {
	ctx := context.Background()
	log, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	rendered, err := renderAll(ctx, log, opts, args)
	if err != nil {
		return err
	}

	if opts.out == "" {
		for _, r := range rendered {
			if _, err := cmd.OutOrStdout().Write(r.Native); err != nil {
				return errors.Wrap(err, "could not write to stdout")
			}
		}
		return nil
	}

	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return errors.Wrapf(err, "could not create output directory %s", opts.out)
	}
	wr, err := writer.New(opts.out, writer.WithLogger(log), writer.WithForceRegenerate(opts.force))
	if err != nil {
		return err
	}
	written, err := wr.Write(ctx, rendered)
	if err != nil {
		return err
	}
	log.Info("done", zap.Int("rendered", len(rendered)), zap.Int("written", len(written)))
	return nil
}

func runCheck(cmd *cobra.Command, opts *options, args []string) error {
	if opts.out == "" {
		return errors.New("check requires --out")
	}

	ctx := context.Background()
	log, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	rendered, err := renderAll(ctx, log, opts, args)
	if err != nil {
		return err
	}

	var stale []string
	for _, r := range rendered {
		p := filepath.Join(opts.out, r.Name)
		s, err := writer.Stale(p, r.Native)
		if err != nil {
			return err
		}
		if s {
			stale = append(stale, p)
		}
	}

	if len(stale) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "headers are up to date")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "headers are out of date:")
	for _, p := range stale {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
	}
	return errors.Errorf("%d header(s) out of date - run hdrc -o %s to update", len(stale), opts.out)
}

func runDump(cmd *cobra.Command, path string) error {
	ctx := context.Background()
	f, err := loadFile(ctx, path)
	if err != nil {
		return err
	}
	b, err := layout.EncodeJSON(f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
	return err
}

func renderAll(ctx context.Context, log *zap.Logger, opts *options, paths []string) ([]render.Rendered, error) {
	files := make([]*layout.File, 0, len(paths))
	for _, p := range paths {
		f, err := loadFile(ctx, p)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded layout", zap.String("path", p), zap.Int("structs", len(f.Structures)))
		files = append(files, f)
	}
	rendered, err := render.Render(ctx, files, opts.renderOptions()...)
	if err != nil {
		return nil, err
	}
	if err := checkNames(rendered); err != nil {
		return nil, errors.Wrap(err, "cannot render these files together")
	}
	return rendered, nil
}

// checkNames returns an error if two rendered headers would be written to the
// same file.
func checkNames(rendered []render.Rendered) error {
	sources := make(map[string]string, len(rendered))
	for _, r := range rendered {
		if prev, ok := sources[r.Name]; ok {
			return errors.Errorf("%s and %s both render to %s", prev, r.Source, r.Name)
		}
		sources[r.Name] = r.Source
	}
	return nil
}

// loadFile reads a layout description. Files ending in .json are decoded as
// JSON, everything else is parsed as the line format.
func loadFile(ctx context.Context, path string) (*layout.File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "problem reading file %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		f, err := layout.DecodeJSON(b)
		if err != nil {
			return nil, errors.Wrapf(err, "file %s", path)
		}
		if f.Source == "" {
			f.Source = path
		}
		return f, nil
	}

	f, err := layout.Parse(ctx, path, string(b))
	if err != nil {
		return nil, errors.Wrapf(err, "file %s", path)
	}
	return f, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "could not build logger")
	}
	return l, nil
}
