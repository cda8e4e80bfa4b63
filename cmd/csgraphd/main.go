// Command csgraphd is a thin demonstration harness over the indexer and
// query engine: an "index" subcommand that builds or refreshes the symbol
// graph for a project tree, and a "query" subcommand that runs one pattern
// against it and prints the matching locations. It is not the RPC service
// the real migration orchestrator talks to, just enough surface to drive
// the core by hand.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/csgraph/internal/config"
	"github.com/oxhq/csgraph/internal/core"
	"github.com/oxhq/csgraph/internal/csharp"
	"github.com/oxhq/csgraph/internal/frontend"
	"github.com/oxhq/csgraph/internal/graph"
	"github.com/oxhq/csgraph/internal/indexer"
	"github.com/oxhq/csgraph/internal/pattern"
	"github.com/oxhq/csgraph/internal/query"
	"github.com/oxhq/csgraph/internal/store"
	"github.com/oxhq/csgraph/internal/telemetry"
	"github.com/oxhq/csgraph/internal/xmlsym"
)

func main() {
	root := &cobra.Command{
		Use:   "csgraphd",
		Short: "Symbol graph indexer and query demo for C# source trees",
	}

	root.AddCommand(newIndexCmd(), newQueryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultRegistry() *frontend.Registry {
	reg := frontend.NewRegistry()
	reg.Register(".cs", csharp.Transform)
	reg.Register(".xml", xmlsym.Transform)
	return reg
}

func newIndexCmd() *cobra.Command {
	var storePath string
	var domain string
	var debug bool

	cmd := &cobra.Command{
		Use:   "index [project-root]",
		Short: "Build or refresh the symbol graph for a project tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if storePath != "" {
				cfg.StorePath = storePath
			}

			logger, err := telemetry.NewLogger(debug)
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := store.Open(cfg.StorePath, debug, nil)
			if err != nil {
				return err
			}

			g := graph.New()
			ix := indexer.New(g, st, defaultRegistry(), logger, cfg.Workers)

			summary, err := ix.Open(context.Background(), args[0], core.Domain(domain))
			if err != nil {
				return err
			}

			fmt.Printf("indexed %d files\n", summary.FilesIndexed)
			for path, ferr := range summary.FileErrors {
				fmt.Printf("  %s: %v\n", path, ferr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "backing store DSN (overrides CSGRAPH_STORE_PATH)")
	cmd.Flags().StringVar(&domain, "domain", string(core.DomainSource), "domain tag for discovered files (source|dependency|builtin)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable development logging and verbose SQL")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var storePath string
	var domainFilter string
	var location string
	var paths []string
	var jsonOut bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "query [pattern]",
		Short: "Find every location matching a dotted pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if storePath != "" {
				cfg.StorePath = storePath
			}

			logger, err := telemetry.NewLogger(debug)
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := store.Open(cfg.StorePath, debug, nil)
			if err != nil {
				return err
			}

			g, err := st.Restore()
			if err != nil {
				return err
			}

			p, err := pattern.Compile(args[0])
			if err != nil {
				return err
			}

			var pf query.PathFilter
			if len(paths) > 0 {
				pf = make(query.PathFilter, len(paths))
				for _, path := range paths {
					pf[path] = true
				}
			}

			engine := query.New(g, logger)
			results, err := engine.Find(context.Background(), p, core.DomainFilter(domainFilter), pf, core.LocationKind(location))
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, r := range results {
				fmt.Printf("%s:%d:%d-%d:%d\t%s\n", r.FileURI, r.StartLine, r.StartChar, r.EndLine, r.EndChar, r.FQDNString)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "backing store DSN (overrides CSGRAPH_STORE_PATH)")
	cmd.Flags().StringVar(&domainFilter, "domain", string(core.DomainFilterSourceOrDep), "domain filter: source, dependency, or source|dependency for both")
	cmd.Flags().StringVar(&location, "location", string(core.LocationAll), "location kind (namespace|class|method|field|all)")
	cmd.Flags().StringSliceVar(&paths, "path", nil, "restrict candidates to these file paths (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit results as JSON")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable development logging and verbose SQL")
	return cmd
}
