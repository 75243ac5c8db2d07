package boost

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// regTree is a depth-limited regression tree fit to per-cell gradient
// and Hessian statistics. Leaf values follow the Newton step
// -G / (H + lambda).
type regTree struct {
	feature   int
	threshold float64
	left      *regTree
	right     *regTree
	isLeaf    bool
	value     float64
}

type treeBuilder struct {
	X      *mat.Dense
	grad   []float64
	hess   []float64
	lambda float64

	maxDepth       int
	minSamplesLeaf int
	minGain        float64
}

func (b *treeBuilder) build(indices []int, depth int) *regTree {
	sumG, sumH := b.sums(indices)

	if depth >= b.maxDepth || len(indices) < 2*b.minSamplesLeaf {
		return b.leaf(sumG, sumH)
	}

	split, ok := b.bestSplit(indices, sumG, sumH)
	if !ok {
		return b.leaf(sumG, sumH)
	}

	var leftIdx, rightIdx []int
	for _, i := range indices {
		if b.X.At(i, split.feature) <= split.threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &regTree{
		feature:   split.feature,
		threshold: split.threshold,
		left:      b.build(leftIdx, depth+1),
		right:     b.build(rightIdx, depth+1),
	}
}

func (b *treeBuilder) leaf(sumG, sumH float64) *regTree {
	return &regTree{isLeaf: true, value: -sumG / (sumH + b.lambda)}
}

func (b *treeBuilder) sums(indices []int) (sumG, sumH float64) {
	for _, i := range indices {
		sumG += b.grad[i]
		sumH += b.hess[i]
	}
	return sumG, sumH
}

type splitCandidate struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit scans every feature with a sorted prefix sweep and returns
// the split maximizing the usual boosting gain
// GL^2/(HL+lambda) + GR^2/(HR+lambda) - G^2/(H+lambda).
func (b *treeBuilder) bestSplit(indices []int, sumG, sumH float64) (splitCandidate, bool) {
	_, cols := b.X.Dims()
	parentScore := sumG * sumG / (sumH + b.lambda)

	best := splitCandidate{gain: b.minGain}
	found := false

	sorted := make([]int, len(indices))
	for feature := 0; feature < cols; feature++ {
		copy(sorted, indices)
		f := feature
		sort.Slice(sorted, func(a, c int) bool {
			return b.X.At(sorted[a], f) < b.X.At(sorted[c], f)
		})

		var leftG, leftH float64
		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			leftG += b.grad[i]
			leftH += b.hess[i]

			cur := b.X.At(i, f)
			next := b.X.At(sorted[pos+1], f)
			if cur == next {
				continue
			}
			if pos+1 < b.minSamplesLeaf || len(sorted)-pos-1 < b.minSamplesLeaf {
				continue
			}

			rightG := sumG - leftG
			rightH := sumH - leftH
			gain := leftG*leftG/(leftH+b.lambda) + rightG*rightG/(rightH+b.lambda) - parentScore
			if gain > best.gain {
				best = splitCandidate{feature: f, threshold: (cur + next) / 2, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

func (t *regTree) predict(row []float64) float64 {
	node := t
	for !node.isLeaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
