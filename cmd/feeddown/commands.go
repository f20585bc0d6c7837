package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/hupe1980/feeddown"
	"github.com/hupe1980/feeddown/dataset"
	"github.com/hupe1980/feeddown/lattice"
	"github.com/hupe1980/feeddown/measurement"
)

type command struct {
	settings settings
	stdout   io.Writer
	stderr   io.Writer
}

func (c *command) flagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		fmt.Fprintf(c.stderr, "usage: feeddown %s [flags] %s\n\nflags:\n", name, args)
		fs.PrintDefaults()
	}
	c.settings.register(fs)
	return fs
}

// withAnalyzer runs fn with a configured Analyzer and flushes metrics
// afterwards.
func (c *command) withAnalyzer(ctx context.Context, fn func(a *feeddown.Analyzer) error) (err error) {
	a, finish, err := c.settings.analyzer(ctx, c.stderr)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := finish(); ferr != nil && err == nil {
			err = fmt.Errorf("write metrics: %w", ferr)
		}
	}()
	return fn(a)
}

func (c *command) build(ctx context.Context, args []string) error {
	fs := c.flagSet("build", "<scan>...")
	beam := fs.Int("beam", 1, "beam number (1 or 2)")
	model := fs.String("model", "", "model twiss file")
	ref := fs.String("ref", "", "reference measurement")
	rdts := fs.String("rdt", "f1200", "comma-separated RDTs")
	planes := fs.String("plane", "x", "comma-separated planes")
	knobName := fs.String("knob", "", "knob name")
	save := fs.Bool("save", true, "save the fitted datasets to the store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *model == "" || *ref == "" || fs.NArg() == 0 {
		fs.Usage()
		return errors.New("build needs -model, -ref and at least one scan")
	}

	combos, err := parseCombinations(*rdts, *planes)
	if err != nil {
		return err
	}
	m, err := lattice.Load(*model)
	if err != nil {
		return err
	}
	resolver, err := c.settings.resolver(ctx, *knobName)
	if err != nil {
		return err
	}

	return c.withAnalyzer(ctx, func(a *feeddown.Analyzer) error {
		results, err := a.BuildAll(ctx, dataset.BuildInput{
			Beam:      *beam,
			Model:     m,
			Reference: *ref,
			Scans:     fs.Args(),
			KnobName:  *knobName,
			Resolver:  resolver,
		}, combos)
		if err != nil {
			return err
		}
		for _, res := range results {
			printResult(c.stdout, res)
			if !*save {
				continue
			}
			name, err := a.SaveDataset(ctx, res.Dataset)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "saved %s\n", name)
		}
		return nil
	})
}

func (c *command) response(ctx context.Context, args []string) error {
	fs := c.flagSet("response", "")
	beam := fs.Int("beam", 1, "beam number (1 or 2)")
	ref := fs.String("ref", "", "simulated reference table or directory")
	scan := fs.String("scan", "", "simulated scan table or directory")
	rdt := fs.String("rdt", "f1200", "RDT")
	plane := fs.String("plane", "x", "plane")
	knobName := fs.String("knob", "", "knob name")
	angle := fs.Float64("angle", 0, "crossing angle of the scan")
	strength := fs.Float64("strength", 0, "knob strength of the scan")
	file := fs.String("file", "", "table name inside simulation directories (default rdts.tfs)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ref == "" || *scan == "" {
		fs.Usage()
		return errors.New("response needs -ref and -scan")
	}
	r, err := measurement.ParseRDT(*rdt)
	if err != nil {
		return err
	}

	return c.withAnalyzer(ctx, func(a *feeddown.Analyzer) error {
		resp, err := a.Response(ctx, dataset.ResponseInput{
			Beam:          *beam,
			Reference:     *ref,
			Scan:          *scan,
			RDT:           r,
			Plane:         *plane,
			KnobName:      *knobName,
			CrossingAngle: *angle,
			Strength:      *strength,
			Reader:        measurement.SimulationReader{FileName: *file},
		})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tREAL\tIMAG")
		for _, name := range resp.Names() {
			p := resp.Data[name]
			fmt.Fprintf(w, "%s\t%.6g\t%.6g\n", name, p.Real, p.Imag)
		}
		return w.Flush()
	})
}

func (c *command) group(ctx context.Context, args []string) error {
	fs := c.flagSet("group", "")
	prefix := fs.String("prefix", "", "store prefix holding the partial datasets")
	out := fs.String("out", "grouped", "store prefix for the merged datasets")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return c.withAnalyzer(ctx, func(a *feeddown.Analyzer) error {
		res, rejected, err := a.GroupStored(ctx, *prefix)
		if err != nil {
			return err
		}
		for _, name := range rejected {
			fmt.Fprintf(c.stdout, "rejected %s\n", name)
		}
		for _, beam := range []int{1, 2} {
			ds := res.Beam(beam)
			if ds == nil {
				continue
			}
			name, err := a.SaveDatasetAs(ctx, path.Join(*out, feeddown.DatasetName(ds.Metadata)), ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "beam %d: %d monitors, saved %s\n", beam, ds.Len(), name)
		}
		return nil
	})
}

func parseCombinations(rdts, planes string) ([]feeddown.Combination, error) {
	var combos []feeddown.Combination
	for _, s := range splitList(rdts) {
		r, err := measurement.ParseRDT(s)
		if err != nil {
			return nil, err
		}
		for _, p := range splitList(planes) {
			if !measurement.ValidPlane(p) {
				return nil, fmt.Errorf("invalid plane %q", p)
			}
			combos = append(combos, feeddown.Combination{RDT: r, Plane: strings.ToLower(p)})
		}
	}
	if len(combos) == 0 {
		return nil, errors.New("no RDT and plane given")
	}
	return combos, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func printResult(w io.Writer, res *feeddown.Result) {
	fmt.Fprintf(w, "%s: %d monitors, %d skipped scans, %d failed fits\n",
		res.Combination, res.Dataset.Len(), len(res.Report.Skipped), len(res.Failures))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KNOB\tSHIFT\tSTD")
	for i, k := range res.Shift.Knob {
		fmt.Fprintf(tw, "%g\t%.6g\t%.6g\n", k, res.Shift.Mean[i], res.Shift.Std[i])
	}
	_ = tw.Flush()
}
