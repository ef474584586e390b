package e2e

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
	"github.com/packmate/mission-packing-optimizer/pkg/config"
	"github.com/packmate/mission-packing-optimizer/pkg/solver"
)

const catalogYAML = `alice-pack: |
  maxWeightGrams: 9000
  tareWeightGrams: 1100
  unitCount: 1
supply-crate: |
  maxWeightGrams: 25000
  tareWeightGrams: 4000
  unitCount: 2
day-hike: |
  categoryMinimums:
    water: 1
    food: 1
`

const requestJSON = `{
  "candidates": [
    {"id": "water-filter", "utility_score": 0.92, "weight_grams": 450, "category": "water", "tags": ["purification"]},
    {"id": "canteen", "utility_score": 0.4, "weight_grams": 600, "category": "water", "available_quantity": 2},
    {"id": "dehydrated-meals", "utility_score": 0.75, "weight_grams": 900, "category": "food", "available_quantity": 4},
    {"id": "field-stove", "utility_score": 0.6, "weight_grams": 1800, "category": "food"},
    {"id": "anvil", "utility_score": 0.1, "weight_grams": 30000}
  ],
  "containers": [
    {"id": "lead-pack", "catalog_ref": "alice-pack"},
    {"id": "base-crate", "catalog_ref": "supply-crate"}
  ]
}`

var _ = Describe("End-to-end solve", func() {
	var (
		ctx     context.Context
		catalog *config.Catalog
		opt     *solver.Optimizer
	)

	BeforeEach(func() {
		ctx = context.Background()

		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "catalog.yaml")
		Expect(os.WriteFile(path, []byte(catalogYAML), 0o644)).To(Succeed())

		var err error
		catalog, err = config.LoadCatalog(path)
		Expect(err).NotTo(HaveOccurred())

		opt, err = solver.NewOptimizer(&config.Config{
			NodeExpansionCeiling: config.DefaultNodeExpansionCeiling,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	decode := func() *apiv1.SolveRequest {
		req := &apiv1.SolveRequest{}
		Expect(json.Unmarshal([]byte(requestJSON), req)).To(Succeed())
		for i, c := range req.Containers {
			resolved, err := catalog.ResolveContainer(c)
			Expect(err).NotTo(HaveOccurred())
			req.Containers[i] = resolved
		}
		return req
	}

	It("solves a catalog-resolved request end to end", func() {
		res, err := opt.Optimize(ctx, decode())
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Status).To(Equal(apiv1.StatusOptimal))
		Expect(res.Assignments).NotTo(BeEmpty())
		Expect(res.RejectedItems).To(ContainElement(
			apiv1.RejectedItem{ItemID: "anvil", Reason: apiv1.ReasonOverCapacity},
		))

		// The anvil exceeds every single container instance, everything else
		// fits into the pooled 49900g comfortably.
		var packedWeight float64
		for _, u := range res.WeightUtilization {
			packedWeight += u.PackedWeightGrams
		}
		Expect(packedWeight).To(BeNumerically("<=", 49900))

		// The result must serialize cleanly for downstream consumers.
		raw, err := json.Marshal(res)
		Expect(err).NotTo(HaveOccurred())
		roundTripped := &apiv1.SolveResult{}
		Expect(json.Unmarshal(raw, roundTripped)).To(Succeed())
		Expect(roundTripped.Status).To(Equal(res.Status))
	})

	It("applies a mission profile from the catalog", func() {
		req := decode()
		profile, ok := catalog.Profile("day-hike")
		Expect(ok).To(BeTrue())
		req.Constraints = profile.Constraints()

		res, err := opt.Optimize(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Status).To(Equal(apiv1.StatusOptimal))
		Expect(res.RelaxedConstraints).To(BeEmpty())

		categories := map[string]bool{}
		for _, a := range res.Assignments {
			switch a.ItemID {
			case "water-filter", "canteen":
				categories["water"] = true
			case "dehydrated-meals", "field-stove":
				categories["food"] = true
			}
		}
		Expect(categories).To(HaveKey("water"))
		Expect(categories).To(HaveKey("food"))
	})

	It("degrades instead of hanging on a hostile budget", func() {
		req := decode()
		req.NodeExpansionCeiling = 5

		res, err := opt.Optimize(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(apiv1.StatusDegradedGreedy))
		Expect(res.NodesExpanded).To(BeNumerically("<=", 5))
	})
})
