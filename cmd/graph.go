// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
	"github.com/hokaccha/go-prettyjson"
	"github.com/iancoleman/orderedmap"
	"github.com/mrutkows/go-jsondiff"
	"github.com/mrutkows/go-jsondiff/formatter"
	"github.com/spf13/cobra"

	liscopecdx "github.com/liscope/liscope/internal/cyclonedx"
	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/project"
	"github.com/liscope/liscope/utils"
)

var (
	flagGraphBlacklist     []string
	flagGraphIgnoreUnknown bool
	flagGraphOutputDir     string
	flagGraphPretty        bool
)

// NewCommandGraph builds the "graph" subcommand family: propagate and check
// a CycloneDX BOM's component graph, and diff two prior reports.
func NewCommandGraph() *cobra.Command {
	command := &cobra.Command{
		Use:   "graph",
		Short: "Propagate and check license compatibility across a CycloneDX BOM's dependency graph",
	}
	command.AddCommand(newGraphCheckCommand())
	command.AddCommand(newGraphDiffCommand())
	return command
}

func newGraphCheckCommand() *cobra.Command {
	check := &cobra.Command{
		Use:   "check <bom.json>",
		Short: "Propagate declared licenses and report conflicts for a BOM",
		Args:  cobra.ExactArgs(1),
		RunE:  graphCheckCmdImpl,
	}
	check.Flags().StringSliceVar(&flagGraphBlacklist, "blacklist", nil, "SPDX ids that are never acceptable, regardless of compatibility")
	check.Flags().BoolVar(&flagGraphIgnoreUnknown, "ignore-unknown", false, "treat unrecognised SPDX ids as compatible rather than conflicting")
	check.Flags().StringVar(&flagGraphOutputDir, "output", "", "also save the report as <dir>/<run-id>.json, a fresh run id per invocation")
	check.Flags().BoolVar(&flagGraphPretty, "pretty", false, "colorize the JSON report for terminal viewing")
	return check
}

func graphCheckCmdImpl(cmd *cobra.Command, args []string) error {
	logger.Log().Enter(args)
	defer logger.Log().Exit()

	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return logger.Log().Error(err)
	}

	var bom cyclonedx.BOM
	if err := json.Unmarshal(data, &bom); err != nil {
		return logger.Log().Errorf("%s: not a valid CycloneDX JSON BOM: %v", args[0], err)
	}

	g, err := liscopecdx.BuildGraph(&bom)
	if err != nil {
		return err
	}

	if err := project.Propagate(g, rt.config, rt.checker); err != nil {
		return err
	}
	table, err := project.CheckConflicts(g, rt.checker, project.CheckOptions{
		Blacklist:     append(append([]string(nil), rt.config.Blacklist...), flagGraphBlacklist...),
		IgnoreUnknown: flagGraphIgnoreUnknown,
	})
	if err != nil {
		return err
	}

	report := buildReport(g, table)

	if flagGraphOutputDir != "" {
		runID := uuid.New().String()
		buf, err := utils.EncodeAnyToIndentedJSON(report)
		if err != nil {
			return logger.Log().Error(err)
		}
		path := filepath.Join(flagGraphOutputDir, runID+".json")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return logger.Log().Error(err)
		}
		logger.Log().Infof("saved report to %s", path)
	}

	if flagGraphPretty {
		colored, err := prettyjson.Marshal(report)
		if err != nil {
			return logger.Log().Error(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(colored))
		return nil
	}

	out, err := utils.MarshalAnyToFormattedJsonString(report)
	if err != nil {
		return logger.Log().Error(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// nodeReport is the JSON-serialisable view of one project.Node, omitting
// the falsy DualLicense fields a node never populated. ConflictGroup is
// plural: a node can be implicated by more than one independent conflict
// pattern elsewhere in the graph.
type nodeReport struct {
	ID               string      `json:"id"`
	Outbound         interface{} `json:"outbound,omitempty"`
	LicenseIsolation bool        `json:"license_isolation,omitempty"`
	ConflictGroup    []string    `json:"conflict_group,omitempty"`
}

// graphReport wraps the per-node rows and the conflict table in a
// top-level object rather than a bare array, so "graph diff" (which
// compares JSON objects) has something to key its paths off of.
type graphReport struct {
	Nodes     []nodeReport           `json:"nodes"`
	Conflicts *orderedmap.OrderedMap `json:"conflicts,omitempty"`
}

func buildReport(g *project.Graph, table *project.ConflictTable) graphReport {
	var nodes []nodeReport
	for _, id := range g.NodeIDs() {
		node := g.Node(id)
		r := nodeReport{ID: id, LicenseIsolation: node.LicenseIsolation, ConflictGroup: node.ConflictGroup}
		if node.HasOutbound {
			r.Outbound = node.Outbound
		}
		nodes = append(nodes, r)
	}
	return graphReport{Nodes: nodes, Conflicts: buildConflicts(table)}
}

// buildConflicts assembles the conflict_id -> {"conflicts": [...],
// <spdx>: [node_label,...]} mapping the conflict table publishes, keyed
// and ordered deterministically (§8) via orderedmap rather than a plain
// Go map.
func buildConflicts(table *project.ConflictTable) *orderedmap.OrderedMap {
	out := orderedmap.New()
	for _, record := range table.Records() {
		entry := orderedmap.New()
		entry.Set("conflicts", record.Conflicts)
		for _, spdxID := range record.SPDXIDs() {
			entry.Set(spdxID, record.NodeLabels(spdxID))
		}
		out.Set(record.ID, entry)
	}
	return out
}

func newGraphDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <before.json> <after.json>",
		Short: "Diff two prior 'graph check' JSON reports",
		Args:  cobra.ExactArgs(2),
		RunE:  graphDiffCmdImpl,
	}
}

func graphDiffCmdImpl(cmd *cobra.Command, args []string) error {
	beforeBytes, err := os.ReadFile(args[0])
	if err != nil {
		return logger.Log().Error(err)
	}
	afterBytes, err := os.ReadFile(args[1])
	if err != nil {
		return logger.Log().Error(err)
	}

	differ := gojsondiff.New()
	d, err := differ.Compare(beforeBytes, afterBytes)
	if err != nil {
		return logger.Log().Error(err)
	}
	if !d.Modified() {
		fmt.Fprintln(cmd.OutOrStdout(), "no differences")
		return nil
	}

	var beforeDoc map[string]interface{}
	if err := json.Unmarshal(beforeBytes, &beforeDoc); err != nil {
		return logger.Log().Error(err)
	}

	formatted, err := formatter.NewAsciiFormatter(beforeDoc, formatter.AsciiFormatterConfig{}).Format(d)
	if err != nil {
		return logger.Log().Error(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatted)
	return nil
}
