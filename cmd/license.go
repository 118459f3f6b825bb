// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/liscope/liscope/internal/logger"
)

const (
	subcommandLicenseList   = "list"
	subcommandLicensePolicy = "policy"
)

var validSubcommandsLicense = []string{subcommandLicenseList, subcommandLicensePolicy}

// NewCommandLicense builds the "license" subcommand: inspect the loaded
// license feature table and the active propagation/isolation policy.
func NewCommandLicense() *cobra.Command {
	command := &cobra.Command{
		Use:       "license",
		Short:     "Inspect the loaded license feature table and policy config",
		ValidArgs: validSubcommandsLicense,
		Args:      cobra.ExactValidArgs(1),
		RunE:      licenseCmdImpl,
	}
	return command
}

func licenseCmdImpl(cmd *cobra.Command, args []string) error {
	logger.Log().Enter(args)
	defer logger.Log().Exit()

	switch args[0] {
	case subcommandLicenseList:
		return licenseListImpl(cmd)
	case subcommandLicensePolicy:
		return licensePolicyImpl(cmd)
	}
	return logger.Log().Errorf("unknown subcommand: %q", args[0])
}

func licenseListImpl(cmd *cobra.Command) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	copyleft := color.New(color.FgYellow)
	plain := color.New(color.FgGreen)

	ids := make([]string, 0, len(rt.licenses))
	for id := range rt.licenses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := rt.checker.IsCopyleftSPDX(id)
		count := len(rt.licenses[id].Features())
		if c {
			copyleft.Fprintf(cmd.OutOrStdout(), "%-40s copyleft  (%d clauses)\n", id, count)
		} else {
			plain.Fprintf(cmd.OutOrStdout(), "%-40s permissive (%d clauses)\n", id, count)
		}
	}
	return nil
}

func licensePolicyImpl(cmd *cobra.Command) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "isolation boundaries: %v\n", rt.config.LicenseIsolations)
	fmt.Fprintf(cmd.OutOrStdout(), "spread conditions:    %v\n", rt.config.LicenseSpread.SpreadConditions)
	fmt.Fprintf(cmd.OutOrStdout(), "non-spread conditions: %v\n", rt.config.LicenseSpread.NonSpreadConditions)
	fmt.Fprintf(cmd.OutOrStdout(), "blacklist:            %v\n", rt.config.Blacklist)
	return nil
}
