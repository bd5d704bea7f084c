package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"graphtools/internal/config"
	"graphtools/internal/domain"
	"graphtools/internal/repository"
	"graphtools/internal/service"
	"graphtools/internal/validate"
)

type commandSpec struct {
	name, short, long string
	data              any
}

func commands(a *app) []commandSpec {
	return []commandSpec{
		{"chkmetis", "Validate a METIS graph", "Check header, bounds, weights and symmetry of a METIS graph.", &chkmetisCommand{app: a}},
		{"chkmetispart", "Evaluate a partition", "Report block sizes, edge cut and imbalance of a partition.", &chkmetispartCommand{app: a}},
		{"chkmetisclustering", "Evaluate a clustering", "Report cluster count, weighted cut and cluster weights of a clustering.", &chkmetisclusteringCommand{app: a}},
		{"statmetis", "Print graph statistics", "Print node and edge counts and degree statistics of METIS or binary graphs.", &statmetisCommand{app: a}},
		{"edgelist2metis", "Convert an edge list", "Convert an edge list, or the shards input_0, input_1, ..., to METIS.", &edgelist2metisCommand{conversion: conversion{app: a}}},
		{"metis2binary", "Convert METIS to binary", "Write the binary adjacency format with absolute byte offsets.", &metis2binaryCommand{conversion: conversion{app: a}}},
		{"metis2xtrapulp", "Convert METIS to xtrapulp", "Write 0-based directed edge pairs as 32- or 64-bit integers.", &metis2xtrapulpCommand{conversion: conversion{app: a}}},
		{"obj2metis", "Convert an OBJ mesh", "Convert the vertex adjacency of a Wavefront OBJ mesh to METIS.", &obj2metisCommand{conversion: conversion{app: a}}},
		{"stp2metis", "Convert a Steiner problem", "Convert the graph section of an STP file to METIS.", &stp2metisCommand{conversion: conversion{app: a}}},
		{"gr2metis", "Convert shortest-path arcs", "Convert the arcs of a GR file into an undirected METIS graph.", &gr2metisCommand{conversion: conversion{app: a}}},
		{"psb2metis", "Convert an image", "Convert an RGB PSB image into its 4-neighbour pixel grid.", &psb2metisCommand{conversion: conversion{app: a}}},
		{"trimmetis", "Strip weights", "Rewrite a METIS graph without node and edge weights.", &trimmetisCommand{conversion: conversion{app: a}}},
		{"convert", "Convert any supported format", "Pick the METIS conversion from the input file extension.", &convertCommand{conversion: conversion{app: a}}},
		{"runs", "List recorded runs", "List runs from the run catalog, or show one run with its diagnostics.", &runsCommand{app: a}},
		{"config", "Show the configuration", "Print the effective configuration, optionally writing a default file.", &configCommand{app: a}},
	}
}

// ===== Checks =====

type chkmetisCommand struct {
	Watch                  bool `short:"w" long:"watch" description:"Check again whenever the file changes"`
	Permissive             bool `long:"permissive" description:"Report every violation instead of stopping at the first"`
	AllowEdgeCountMismatch bool `long:"allow-edge-count-mismatch" description:"Treat a wrong edge count in the header as a warning"`
	Args                   struct {
		Graph string `positional-arg-name:"graph" description:"METIS graph"`
	} `positional-args:"yes" required:"yes"`

	app *app
}

func (c *chkmetisCommand) Execute([]string) error {
	a := c.app
	if c.Permissive {
		a.cfg.Check.Mode = config.CheckPermissive
	}
	if c.AllowEdgeCountMismatch {
		a.cfg.Check.AllowEdgeCountMismatch = true
	}

	if c.Watch {
		return a.svc.WatchGraph(a.ctx, c.Args.Graph, a.printReport)
	}
	report, err := a.svc.CheckGraph(a.ctx, c.Args.Graph)
	a.printReport(report, err)
	return err
}

func (a *app) printReport(report *validate.Report, err error) {
	if report == nil {
		return
	}
	status := "valid"
	if err != nil || !report.Valid() {
		status = "invalid"
	}
	fmt.Fprintf(a.stdout, "%s: %s (%s, %d node lines, %d edge entries, %d errors, %d warnings)\n",
		report.Path, status, report.Header, report.Nodes, report.Edges, report.Errors(), report.Warnings())
}

type chkmetispartCommand struct {
	Args struct {
		Graph     string `positional-arg-name:"graph" description:"METIS graph"`
		Partition string `positional-arg-name:"partition" description:"Block id per line"`
	} `positional-args:"yes" required:"yes"`

	app *app
}

func (c *chkmetispartCommand) Execute([]string) error {
	a := c.app
	report, err := a.svc.CheckPartition(a.ctx, c.Args.Graph, c.Args.Partition)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "k=%d cut=%d imbalance=%.5f\n", report.Blocks, report.Cut, report.Imbalance)
	for b, size := range report.BlockSizes {
		fmt.Fprintf(a.stdout, "block %d: %d nodes\n", b, size)
	}
	return nil
}

type chkmetisclusteringCommand struct {
	Args struct {
		Graph      string `positional-arg-name:"graph" description:"METIS graph"`
		Clustering string `positional-arg-name:"clustering" description:"Cluster id per line"`
	} `positional-args:"yes" required:"yes"`

	app *app
}

func (c *chkmetisclusteringCommand) Execute([]string) error {
	a := c.app
	report, err := a.svc.CheckClustering(a.ctx, c.Args.Graph, c.Args.Clustering)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "clusters=%d cut=%d max_cluster_weight=%d total_node_weight=%d\n",
		report.Clusters, report.Cut, report.MaxClusterWeight, report.TotalNodeWeight)
	return nil
}

type statmetisCommand struct {
	Fast      bool `short:"f" long:"fast" description:"Read only the header"`
	CSV       bool `short:"c" long:"csv" description:"Print one CSV row per graph"`
	CSVHeader bool `short:"H" long:"csv-header" description:"Print the CSV header first"`
	Args      struct {
		Graphs []string `positional-arg-name:"graph" description:"METIS (.graph) or binary (.bgf) graphs"`
	} `positional-args:"yes"`

	app *app
}

func (c *statmetisCommand) Execute([]string) error {
	a := c.app
	if !c.CSVHeader && len(c.Args.Graphs) == 0 {
		return fmt.Errorf("statmetis needs a graph: %w", domain.ErrUsage)
	}
	if c.CSVHeader {
		fmt.Fprintln(a.stdout, service.CSVHeader(c.Fast))
	}
	for _, path := range c.Args.Graphs {
		st, err := a.svc.Stat(a.ctx, path, c.Fast)
		if err != nil {
			return err
		}
		if c.CSV {
			fmt.Fprintln(a.stdout, st.CSVRow())
		} else {
			fmt.Fprint(a.stdout, st.Summary())
		}
	}
	return nil
}

// ===== Conversions =====

// conversion holds what every converter takes: one input and an output
type conversion struct {
	Output string `short:"o" long:"output" description:"Output file (default: input with the target extension)"`
	Args   struct {
		Input string `positional-arg-name:"input" description:"Input file"`
	} `positional-args:"yes" required:"yes"`

	app *app
}

func (c *conversion) finish(res *service.Result, err error) error {
	if err != nil {
		return err
	}
	c.app.printResult(res)
	return nil
}

type edgelist2metisCommand struct{ conversion }

func (c *edgelist2metisCommand) Execute([]string) error {
	return c.finish(c.app.svc.EdgeListToMetis(c.app.ctx, c.Args.Input, c.Output))
}

type metis2binaryCommand struct{ conversion }

func (c *metis2binaryCommand) Execute([]string) error {
	return c.finish(c.app.svc.MetisToBinary(c.app.ctx, c.Args.Input, c.Output))
}

type metis2xtrapulpCommand struct {
	Wide bool `long:"64" description:"Write 64-bit ids instead of the configured width"`
	conversion
}

func (c *metis2xtrapulpCommand) Execute([]string) error {
	var idBits uint
	if c.Wide {
		idBits = 64
	}
	return c.finish(c.app.svc.MetisToXtrapulp(c.app.ctx, c.Args.Input, c.Output, idBits))
}

type obj2metisCommand struct{ conversion }

func (c *obj2metisCommand) Execute([]string) error {
	return c.finish(c.app.svc.OBJToMetis(c.app.ctx, c.Args.Input, c.Output))
}

type stp2metisCommand struct {
	EdgeWeights bool `long:"edge-weights" description:"Keep edge weights"`
	conversion
}

func (c *stp2metisCommand) Execute([]string) error {
	return c.finish(c.app.svc.STPToMetis(c.app.ctx, c.Args.Input, c.Output, c.EdgeWeights))
}

type gr2metisCommand struct {
	EdgeWeights bool `long:"edge-weights" description:"Keep arc weights"`
	conversion
}

func (c *gr2metisCommand) Execute([]string) error {
	return c.finish(c.app.svc.GRToMetis(c.app.ctx, c.Args.Input, c.Output, c.EdgeWeights))
}

type psb2metisCommand struct {
	PeriodicBoundary bool `long:"periodic-boundary" description:"Wrap the grid around at every border"`
	conversion
}

func (c *psb2metisCommand) Execute([]string) error {
	return c.finish(c.app.svc.PSBToMetis(c.app.ctx, c.Args.Input, c.Output, c.PeriodicBoundary))
}

type trimmetisCommand struct{ conversion }

func (c *trimmetisCommand) Execute([]string) error {
	return c.finish(c.app.svc.TrimMetis(c.app.ctx, c.Args.Input, c.Output))
}

type convertCommand struct {
	EdgeWeights      bool `long:"edge-weights" description:"Keep edge weights (stp, gr)"`
	PeriodicBoundary bool `long:"periodic-boundary" description:"Wrap image grids around (psb)"`
	conversion
}

func (c *convertCommand) Execute([]string) error {
	opts := service.ConvertOptions{EdgeWeights: c.EdgeWeights, PeriodicBoundary: c.PeriodicBoundary}
	return c.finish(c.app.svc.Convert(c.app.ctx, c.Args.Input, c.Output, opts))
}

// ===== Catalog and configuration =====

type runsCommand struct {
	Tool    string `long:"tool" description:"Only runs of this tool"`
	Outcome string `long:"outcome" description:"Only runs with this outcome"`
	Limit   int    `short:"n" long:"limit" default:"20" description:"Maximum number of runs"`
	Args    struct {
		ID string `positional-arg-name:"id" description:"Show a single run"`
	} `positional-args:"yes"`

	app *app
}

func (c *runsCommand) needsCatalog() bool { return true }

func (c *runsCommand) Execute([]string) error {
	a := c.app
	if c.Args.ID != "" {
		run, err := a.svc.Run(a.ctx, c.Args.ID)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %s: %w", c.Args.ID, domain.ErrInputNotFound)
		}
		fmt.Fprintf(a.stdout, "%s %s %s -> %s\n", run.ID, run.Tool, run.Input, run.Output)
		fmt.Fprintf(a.stdout, "outcome %s after %s, n=%d m=%d\n", run.Outcome, run.Duration(), run.N, run.M)
		if run.Error != "" {
			fmt.Fprintf(a.stdout, "error: %s\n", run.Error)
		}
		if run.Digest != "" {
			fmt.Fprintf(a.stdout, "digest: %s\n", run.Digest)
		}
		for _, d := range run.Diagnostics {
			fmt.Fprintln(a.stdout, d)
		}
		return nil
	}

	runs, err := a.svc.Runs(a.ctx, repository.RunFilter{
		Tool:    c.Tool,
		Outcome: domain.Outcome(c.Outcome),
		Limit:   c.Limit,
	})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOOL\tOUTCOME\tSTARTED\tDURATION\tINPUT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Tool, run.Outcome, humanize.Time(run.StartedAt), run.Duration(), run.Input)
	}
	return tw.Flush()
}

type configCommand struct {
	Init bool `long:"init" description:"Write the effective configuration to the config path"`

	app *app
}

func (c *configCommand) Execute([]string) error {
	a := c.app
	if c.Init {
		path := a.configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := a.cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "wrote %s\n", path)
	}
	source := a.configPath
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(a.stdout, "Config: %s\n%s\n", source, a.cfg.Summary())
	return nil
}
