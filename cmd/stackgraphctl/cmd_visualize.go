package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/github/stack-graphs/jsonenc"
)

func runVisualize(cmd *cobra.Command, args []string) error {
	if graphPath == "" {
		return fmt.Errorf("stackgraphctl: --graph is required")
	}
	g, syms, _, err := loadGraphFile(graphPath)
	if err != nil {
		return err
	}

	rendered := jsonenc.RenderGraph(g, syms)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rendered)
}
