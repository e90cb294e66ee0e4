package dataset

import (
	"math"

	"healthplots/pkg/contracts/domain"
)

// Binner maps a value to the label of the right-closed interval
// (Edges[i], Edges[i+1]] that contains it.
type Binner struct {
	Edges  []float64
	Labels []string
}

// Label returns the bucket label for v, or "" when v lies outside every
// bucket.
func (b Binner) Label(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	for i := 0; i+1 < len(b.Edges) && i < len(b.Labels); i++ {
		if v > b.Edges[i] && v <= b.Edges[i+1] {
			return b.Labels[i]
		}
	}
	return ""
}

var (
	LengthStayBins = Binner{
		Edges:  []float64{1, 7, 15, 30, 45, 60, 90},
		Labels: domain.LengthStayGroups,
	}
	AgeBins = Binner{
		Edges:  []float64{0, 18, 30, 45, 60, 75, 100},
		Labels: domain.AgeGroups,
	}
	BillingBins = Binner{
		Edges:  []float64{0, 10000, 20000, 30000, 40000, math.Inf(1)},
		Labels: domain.BillingCategories,
	}
)
