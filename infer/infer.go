// SPDX-License-Identifier: Apache-2.0
package infer

import (
	"sort"

	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/schema"
)

// KnowledgeGraph is the materialised result of running the rule chain over
// a license feature table: a compatibility multi-digraph and a flat
// property-fact table, the Go equivalent of a populated CompatibleInfer.
type KnowledgeGraph struct {
	Schemas         schema.Schemas
	CompatibleGraph *Graph
	PropertyGraph   *PropertyGraph
}

// Generate builds the full knowledge graph for a license feature table,
// mirroring generate_knowledge_graph's uncached path: run the rule chain
// over every ordered pair, record per-license properties, then
// deduplicate and order the result for deterministic output (§8).
func Generate(schemas schema.Schemas, licenses map[string]schema.LicenseFeature) (*KnowledgeGraph, error) {
	kg := &KnowledgeGraph{
		Schemas:         schemas,
		CompatibleGraph: NewGraph(),
		PropertyGraph:   NewPropertyGraph(),
	}

	if err := checkCompatibility(schemas, licenses, kg.CompatibleGraph); err != nil {
		return nil, err
	}

	ids := sortedIDs(licenses)
	for _, id := range ids {
		kg.PropertyGraph.RecordLicense(licenses[id])
	}

	kg.CompatibleGraph.Deduplicate()
	return kg, nil
}

func sortedIDs(licenses map[string]schema.LicenseFeature) []string {
	ids := make([]string, 0, len(licenses))
	for id := range licenses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// checkCompatibility runs the rule chain for every ordered pair of
// distinct licenses, then drains the queued callbacks FIFO, mirroring
// CompatibleInfer.check_compatibility. Pairs are iterated in sorted-id
// order (rather than Python dict iteration order) so the resulting graph
// is deterministic across runs, per §8.
func checkCompatibility(schemas schema.Schemas, licenses map[string]schema.LicenseFeature, graph *Graph) error {
	ids := sortedIDs(licenses)

	var callbacks []callback
	ctx := &ruleContext{
		schemas:       schemas,
		allLicenseIDs: ids,
		addCB: func(cb callback) {
			callbacks = append(callbacks, cb)
		},
	}
	rules := ruleTable()

	for _, idA := range ids {
		for _, idB := range ids {
			if idA == idB {
				continue
			}
			a, b := licenses[idA], licenses[idB]

			var edge *Edge
			visited := make(map[string]struct{})
			current := RulePublicDomain
			for current != RuleEnd {
				if _, seen := visited[current]; seen {
					return logger.Log().Error(schema.NewInferenceLoopError(current, a.SPDXID, b.SPDXID))
				}
				visited[current] = struct{}{}

				fn, ok := rules[current]
				if !ok {
					return logger.Log().Error(schema.NewInferenceLoopError(current, a.SPDXID, b.SPDXID))
				}
				next, result := fn(ctx, graph, a, b, edge)
				edge = result
				current = next
			}
		}
	}

	for len(callbacks) > 0 {
		cb := callbacks[0]
		callbacks = callbacks[1:]
		cb(licenses, graph)
	}
	return nil
}
