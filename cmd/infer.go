// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/utils"
)

// NewCommandInfer builds the "infer" subcommand: load the license feature
// table from --resources, run the rule chain, and print the resulting
// compatibility-graph edges as JSON.
func NewCommandInfer() *cobra.Command {
	command := &cobra.Command{
		Use:   "infer",
		Short: "Run the rule chain and print the resulting compatibility knowledge graph",
		RunE:  inferCmdImpl,
	}
	return command
}

func inferCmdImpl(cmd *cobra.Command, args []string) error {
	logger.Log().Enter()
	defer logger.Log().Exit()

	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	edges := rt.kg.CompatibleGraph.Edges()
	out, err := utils.MarshalAnyToFormattedJsonString(edges)
	if err != nil {
		return logger.Log().Error(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
