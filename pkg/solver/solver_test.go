package solver_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
	"github.com/packmate/mission-packing-optimizer/pkg/config"
	"github.com/packmate/mission-packing-optimizer/pkg/core"
	"github.com/packmate/mission-packing-optimizer/pkg/solver"
)

func newOptimizer() *solver.Optimizer {
	opt, err := solver.NewOptimizer(&config.Config{
		NodeExpansionCeiling: config.DefaultNodeExpansionCeiling,
	})
	Expect(err).NotTo(HaveOccurred())
	return opt
}

func assignment(res *apiv1.SolveResult, itemID string) (apiv1.PackingAssignment, bool) {
	for _, a := range res.Assignments {
		if a.ItemID == itemID {
			return a, true
		}
	}
	return apiv1.PackingAssignment{}, false
}

var _ = Describe("Optimizer", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with a plainly feasible request", func() {
		It("returns the optimal packing", func() {
			req := &apiv1.SolveRequest{
				Candidates: []apiv1.CandidateItem{
					{ID: "filter", UtilityScore: 0.9, WeightGrams: 2000},
					{ID: "stove", UtilityScore: 0.8, WeightGrams: 3000},
					{ID: "shelter", UtilityScore: 0.95, WeightGrams: 5000},
				},
				Containers: []apiv1.Container{
					{ID: "pack", MaxWeightGrams: 7000},
				},
			}

			res, err := newOptimizer().Optimize(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Status).To(Equal(apiv1.StatusOptimal))
			// shelter + filter is exactly 7000g and beats every other pair.
			Expect(res.ObjectiveValue).To(BeNumerically("~", 1.85, 1e-9))
			Expect(res.Assignments).To(HaveLen(2))
			_, packed := assignment(res, "shelter")
			Expect(packed).To(BeTrue())
			_, packed = assignment(res, "filter")
			Expect(packed).To(BeTrue())
			Expect(res.RelaxedConstraints).To(BeEmpty())
			Expect(res.RejectedItems).To(ConsistOf(
				apiv1.RejectedItem{ItemID: "stove", Reason: apiv1.ReasonOverCapacity},
			))
			Expect(res.AggregateUtilization).To(BeNumerically("~", 1.0, 1e-9))
			Expect(res.NodesExpanded).To(BeNumerically(">", 0))
		})
	})

	Context("when a required tag is carried by no candidate", func() {
		It("relaxes tag coverage and reports the dropped tier", func() {
			req := &apiv1.SolveRequest{
				Candidates: []apiv1.CandidateItem{
					{ID: "rations", UtilityScore: 0.7, WeightGrams: 800, Category: "food"},
					{ID: "bivy", UtilityScore: 0.8, WeightGrams: 1500, Category: "shelter"},
				},
				Containers: []apiv1.Container{
					{ID: "pack", MaxWeightGrams: 5000},
				},
				Constraints: apiv1.MissionConstraints{
					RequiredTags: []string{"medical"},
				},
			}

			res, err := newOptimizer().Optimize(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Status).To(Equal(apiv1.StatusFeasibleRelaxed))
			Expect(res.RelaxedConstraints).To(Equal([]string{"required_tags"}))
			Expect(res.Assignments).To(HaveLen(2))
			Expect(res.ObjectiveValue).To(BeNumerically("~", 1.5, 1e-9))
		})
	})

	Context("when no candidate fits any container instance", func() {
		It("reports infeasibility with every candidate rejected", func() {
			req := &apiv1.SolveRequest{
				Candidates: []apiv1.CandidateItem{
					{ID: "generator", UtilityScore: 0.9, WeightGrams: 40000},
				},
				Containers: []apiv1.Container{
					{ID: "pack", MaxWeightGrams: 9000, UnitCount: 3},
				},
			}

			res, err := newOptimizer().Optimize(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Status).To(Equal(apiv1.StatusInfeasible))
			Expect(res.Assignments).To(BeEmpty())
			Expect(res.ObjectiveValue).To(BeZero())
			Expect(res.RejectedItems).To(ConsistOf(
				apiv1.RejectedItem{ItemID: "generator", Reason: apiv1.ReasonOverCapacity},
			))
		})
	})

	Context("with a diversity minimum", func() {
		It("packs distinct items per category even at a utility cost", func() {
			req := &apiv1.SolveRequest{
				Candidates: []apiv1.CandidateItem{
					{ID: "purifier", UtilityScore: 0.9, WeightGrams: 300, Category: "water", AvailableQuantity: 3},
					{ID: "bottle", UtilityScore: 0.2, WeightGrams: 300, Category: "water"},
				},
				Containers: []apiv1.Container{
					{ID: "pack", MaxWeightGrams: 900},
				},
				Constraints: apiv1.MissionConstraints{
					CategoryMinimums: map[string]int{"water": 2},
				},
			}

			res, err := newOptimizer().Optimize(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Status).To(Equal(apiv1.StatusOptimal))
			a, ok := assignment(res, "purifier")
			Expect(ok).To(BeTrue())
			Expect(a.Quantity).To(Equal(2))
			b, ok := assignment(res, "bottle")
			Expect(ok).To(BeTrue())
			Expect(b.Quantity).To(Equal(1))
		})
	})

	Context("with a tiny node expansion ceiling", func() {
		It("degrades to a heuristic packing instead of failing", func() {
			candidates := make([]apiv1.CandidateItem, 0, 12)
			for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
				candidates = append(candidates, apiv1.CandidateItem{
					ID: id, UtilityScore: 0.5, WeightGrams: 100, AvailableQuantity: 4,
				})
			}
			req := &apiv1.SolveRequest{
				Candidates:           candidates,
				Containers:           []apiv1.Container{{ID: "pack", MaxWeightGrams: 1500}},
				NodeExpansionCeiling: 10,
			}

			res, err := newOptimizer().Optimize(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Status).To(Equal(apiv1.StatusDegradedGreedy))
			Expect(res.Assignments).NotTo(BeEmpty())
			Expect(res.NodesExpanded).To(BeNumerically("<=", 10))
		})
	})

	Context("with malformed input", func() {
		It("rejects it before any search", func() {
			req := &apiv1.SolveRequest{
				Candidates: []apiv1.CandidateItem{
					{ID: "a", UtilityScore: 1.5, WeightGrams: 100},
				},
				Containers: []apiv1.Container{{ID: "pack", MaxWeightGrams: 1000}},
			}

			_, err := newOptimizer().Optimize(ctx, req)
			Expect(err).To(MatchError(core.ErrInvalidInput))
		})

		It("rejects an unparsable deadline", func() {
			req := &apiv1.SolveRequest{
				Candidates: []apiv1.CandidateItem{
					{ID: "a", UtilityScore: 0.5, WeightGrams: 100},
				},
				Containers: []apiv1.Container{{ID: "pack", MaxWeightGrams: 1000}},
				Deadline:   "soonish",
			}

			_, err := newOptimizer().Optimize(ctx, req)
			Expect(err).To(MatchError(core.ErrInvalidInput))
		})
	})

	Context("solving the same request repeatedly", func() {
		It("produces identical results", func() {
			build := func() *apiv1.SolveRequest {
				return &apiv1.SolveRequest{
					Candidates: []apiv1.CandidateItem{
						{ID: "alpha", UtilityScore: 0.5, WeightGrams: 400, Category: "gear", AvailableQuantity: 2},
						{ID: "bravo", UtilityScore: 0.5, WeightGrams: 400, Category: "gear", AvailableQuantity: 2},
						{ID: "charlie", UtilityScore: 0.5, WeightGrams: 400, Category: "gear", AvailableQuantity: 2},
					},
					Containers: []apiv1.Container{
						{ID: "left", MaxWeightGrams: 800},
						{ID: "right", MaxWeightGrams: 800},
					},
				}
			}

			opt := newOptimizer()
			first, err := opt.Optimize(ctx, build())
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 5; i++ {
				again, err := opt.Optimize(ctx, build())
				Expect(err).NotTo(HaveOccurred())
				Expect(again.Assignments).To(Equal(first.Assignments))
				Expect(again.ObjectiveValue).To(Equal(first.ObjectiveValue))
				Expect(again.NodesExpanded).To(Equal(first.NodesExpanded))
			}
		})
	})
})
