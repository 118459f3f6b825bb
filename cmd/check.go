// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/schema"
)

var flagCheckScope []string

// NewCommandCheck builds the "check" subcommand: a single point
// compatibility query between two SPDX ids.
func NewCommandCheck() *cobra.Command {
	command := &cobra.Command{
		Use:   "check <license-a> <license-b>",
		Short: "Check whether license-a is compatible with license-b",
		Args:  cobra.ExactArgs(2),
		RunE:  checkCmdImpl,
	}
	command.Flags().StringSliceVar(&flagCheckScope, "scope", nil, "usage scope tokens the query runs under, used verbatim as scope tokens (e.g. STATIC_LINK)")
	return command
}

func checkCmdImpl(cmd *cobra.Command, args []string) error {
	logger.Log().Enter(args)
	defer logger.Log().Exit()

	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	scope := scopeFromTokens(flagCheckScope)
	result := rt.checker.CheckCompatibility(args[0], args[1], scope)
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func scopeFromTokens(tokens []string) schema.Scope {
	if len(tokens) == 0 {
		return nil
	}
	pairs := make(map[schema.ScopeToken][]schema.ScopeToken, len(tokens))
	for _, t := range tokens {
		pairs[schema.ScopeToken(t)] = nil
	}
	return schema.NewScope(pairs)
}
