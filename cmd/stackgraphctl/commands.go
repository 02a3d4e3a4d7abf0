package main

import (
	"github.com/spf13/cobra"

	"github.com/github/stack-graphs/config"
)

var (
	graphPath string
	dbPath    string

	rootCmd = &cobra.Command{
		Use:   "stackgraphctl",
		Short: "Inspect and query stack-graphs name-resolution graphs",
		Long: `stackgraphctl loads a stack graph described as JSON, computes the
partial paths that resolve its references to their definitions, and answers
definition queries against the result.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
			initLogger()
			return initTelemetry()
		},
	}

	indexCmd = &cobra.Command{
		Use:   "index <dir>",
		Short: "Compute partial paths for every .sg.json fixture under dir",
		Long: `index walks dir for *.sg.json graph fixtures, runs the partial-path
stitcher from each fixture's join-relevant nodes (references, exported
scopes, and root), and stores the resulting partial paths in the database
named by --db (default .stackgraph/db, or storage.path from the config
file).`,
		Args: cobra.ExactArgs(1),
		RunE: runIndex,
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Answer a query against an indexed graph",
	}

	queryDefinitionCmd = &cobra.Command{
		Use:   "definition FILE:LINE:COL",
		Short: "Resolve the reference at a source position to its definitions",
		Args:  cobra.ExactArgs(1),
		RunE:  runQueryDefinition,
	}

	visualizeCmd = &cobra.Command{
		Use:   "visualize",
		Short: "Render the graph named by --graph as JSON on stdout",
		RunE:  runVisualize,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to the engine config file")
	rootCmd.PersistentFlags().StringVar(&graphPath, "graph", "", "path to an input .sg.json graph fixture (required by query and visualize)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "partial-path database directory (default .stackgraph/db, or storage.path from the config file)")

	queryCmd.AddCommand(queryDefinitionCmd)
	rootCmd.AddCommand(indexCmd, queryCmd, visualizeCmd)
}
