package cli

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	errs "github.com/matzehuels/regroup/pkg/errors"
	"github.com/matzehuels/regroup/pkg/io"
	"github.com/matzehuels/regroup/pkg/meter"
	"github.com/matzehuels/regroup/pkg/pipeline"
)

// loadConfig decodes a TOML style file into pipeline options. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func loadConfig(path string) (pipeline.Options, error) {
	var opts pipeline.Options
	if path == "" {
		return opts, nil
	}
	if err := errs.ValidatePath(path); err != nil {
		return opts, err
	}
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return opts, errs.Wrap(errs.ErrCodeConfiguration, err, "load config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return opts, errs.New(errs.ErrCodeConfiguration, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}

// =============================================================================
// Hierarchy Flags
// =============================================================================

// hierarchyFlags holds the flags shared by every command that builds a
// hierarchy. Values only override the config file when set explicitly.
type hierarchyFlags struct {
	signature      string
	levels         []int
	minimumPulse   int
	pulses         []string
	measure        string
	offsetsFile    string
	skipRatioCheck bool
	sameLevel      bool
	legacy         bool
	workers        int
	refresh        bool
}

// registerSource adds the hierarchy source flags.
func (f *hierarchyFlags) registerSource(fs *pflag.FlagSet) {
	fs.StringVarP(&f.signature, "signature", "s", "", "time signature, e.g. 6/8 or 2+2+3/8")
	fs.IntSliceVar(&f.levels, "levels", nil, "signature level indices to keep (0-6)")
	fs.IntVar(&f.minimumPulse, "minimum-pulse", pipeline.DefaultMinimumPulse, "finest denominator built for a signature")
	fs.StringSliceVarP(&f.pulses, "pulses", "p", nil, "pulse lengths in quarter notes, e.g. 3,1.5,1/2")
	fs.StringVar(&f.measure, "measure", "", "measure length for pulse lengths (default: largest pulse)")
	fs.StringVar(&f.offsetsFile, "offsets-file", "", "JSON file with explicit offsets per level")
	fs.BoolVar(&f.skipRatioCheck, "skip-ratio-check", false, "accept pulse lengths that do not divide each other")
	fs.BoolVar(&f.refresh, "refresh", false, "rebuild the hierarchy even if cached")
}

// registerSplit adds the source flags plus the splitting flags.
func (f *hierarchyFlags) registerSplit(fs *pflag.FlagSet) {
	f.registerSource(fs)
	fs.BoolVar(&f.sameLevel, "same-level", false, "split at boundaries of equal strength")
	fs.BoolVar(&f.legacy, "legacy", false, "split along flat pulse lengths without a hierarchy")
}

// registerBatch adds the split flags plus the worker count.
func (f *hierarchyFlags) registerBatch(fs *pflag.FlagSet) {
	f.registerSplit(fs)
	fs.IntVarP(&f.workers, "workers", "w", pipeline.DefaultWorkers, "concurrent splits in a batch")
}

// options merges the config file with the flags set on cmd.
func (f *hierarchyFlags) options(cmd *cobra.Command, configPath string) (pipeline.Options, error) {
	opts, err := loadConfig(configPath)
	if err != nil {
		return opts, err
	}
	if err := f.apply(cmd.Flags(), &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func (f *hierarchyFlags) apply(fs *pflag.FlagSet, opts *pipeline.Options) error {
	if fs.Changed("signature") {
		opts.Signature = f.signature
	}
	if fs.Changed("levels") {
		opts.Levels = f.levels
	}
	if fs.Changed("minimum-pulse") {
		opts.MinimumPulse = f.minimumPulse
	}
	if fs.Changed("pulses") {
		pulses, err := parseOffsets(f.pulses)
		if err != nil {
			return err
		}
		opts.Pulses = pulses
	}
	if fs.Changed("measure") {
		m, err := meter.ParseOffset(f.measure)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "measure %q", f.measure)
		}
		opts.MeasureLength = m
	}
	if fs.Changed("offsets-file") {
		offsets, err := io.ImportOffsets(f.offsetsFile)
		if err != nil {
			return err
		}
		opts.Offsets = offsets
	}
	if fs.Changed("skip-ratio-check") {
		opts.SkipRatioCheck = f.skipRatioCheck
	}
	if fs.Changed("same-level") {
		opts.SplitSameLevel = f.sameLevel
	}
	if fs.Changed("legacy") {
		opts.Legacy = f.legacy
	}
	if fs.Changed("workers") {
		opts.Workers = f.workers
	}
	opts.Refresh = f.refresh
	return nil
}

func parseOffsets(ss []string) ([]meter.Offset, error) {
	out := make([]meter.Offset, 0, len(ss))
	for _, s := range ss {
		o, err := meter.ParseOffset(strings.TrimSpace(s))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "pulse length %q", s)
		}
		out = append(out, o)
	}
	return out, nil
}
