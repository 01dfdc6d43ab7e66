// Package ensemble implements the bagged regression tree model used
// for price prediction: regression trees grown by variance-reduction
// splits, combined into a random forest.
package ensemble

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Node is a single node in a regression tree. Children are referenced
// by index into the tree's flat node slice.
type Node struct {
	NodeID     int
	LeftChild  int // -1 for leaves
	RightChild int // -1 for leaves

	// Split information for internal nodes.
	SplitFeature int
	Threshold    float64
	Gain         float64

	// Leaf information.
	LeafValue float64
	LeafCount int
}

// IsLeaf reports whether the node is a terminal node.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree is a single regression tree.
type Tree struct {
	Nodes     []Node
	NumLeaves int
}

// Predict walks the tree for one sample row of X.
func (t *Tree) Predict(X mat.Matrix, row int) float64 {
	nodeIdx := 0
	for nodeIdx >= 0 && nodeIdx < len(t.Nodes) {
		node := &t.Nodes[nodeIdx]
		if node.IsLeaf() {
			return node.LeafValue
		}
		if X.At(row, node.SplitFeature) <= node.Threshold {
			nodeIdx = node.LeftChild
		} else {
			nodeIdx = node.RightChild
		}
	}
	return 0.0
}

// splitInfo describes a candidate split of a node.
type splitInfo struct {
	feature    int
	threshold  float64
	gain       float64
	leftCount  int
	rightCount int
}

// treeBuilder grows one regression tree on a subset of rows.
type treeBuilder struct {
	x           *mat.Dense
	y           []float64
	maxDepth    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand
}

// build grows a tree on the given row indices.
func (b *treeBuilder) build(indices []int) Tree {
	tree := Tree{}
	b.buildNode(&tree, indices, 0)
	for i := range tree.Nodes {
		if tree.Nodes[i].IsLeaf() {
			tree.NumLeaves++
		}
	}
	return tree
}

// buildNode recursively adds nodes and returns the new node's index.
func (b *treeBuilder) buildNode(tree *Tree, indices []int, depth int) int {
	nodeIdx := len(tree.Nodes)

	if (b.maxDepth > 0 && depth >= b.maxDepth) || len(indices) < 2*b.minLeaf {
		tree.Nodes = append(tree.Nodes, b.leaf(nodeIdx, indices))
		return nodeIdx
	}

	best := b.findBestSplit(indices)
	if best.gain <= 0 {
		tree.Nodes = append(tree.Nodes, b.leaf(nodeIdx, indices))
		return nodeIdx
	}

	tree.Nodes = append(tree.Nodes, Node{
		NodeID:       nodeIdx,
		SplitFeature: best.feature,
		Threshold:    best.threshold,
		Gain:         best.gain,
		LeftChild:    -1,
		RightChild:   -1,
	})

	var leftIndices, rightIndices []int
	for _, idx := range indices {
		if b.x.At(idx, best.feature) <= best.threshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}

	leftChild := b.buildNode(tree, leftIndices, depth+1)
	rightChild := b.buildNode(tree, rightIndices, depth+1)
	tree.Nodes[nodeIdx].LeftChild = leftChild
	tree.Nodes[nodeIdx].RightChild = rightChild
	return nodeIdx
}

func (b *treeBuilder) leaf(nodeIdx int, indices []int) Node {
	sum := 0.0
	for _, idx := range indices {
		sum += b.y[idx]
	}
	value := 0.0
	if len(indices) > 0 {
		value = sum / float64(len(indices))
	}
	return Node{
		NodeID:     nodeIdx,
		LeftChild:  -1,
		RightChild: -1,
		LeafValue:  value,
		LeafCount:  len(indices),
	}
}

// findBestSplit searches a random feature subset for the split with
// the largest reduction in squared error.
func (b *treeBuilder) findBestSplit(indices []int) splitInfo {
	_, cols := b.x.Dims()

	features := b.sampleFeatures(cols)
	best := splitInfo{gain: -math.MaxFloat64}
	for _, j := range features {
		split := b.findBestSplitForFeature(indices, j)
		if split.gain > best.gain {
			best = split
		}
	}
	return best
}

// sampleFeatures picks maxFeatures distinct feature indices.
func (b *treeBuilder) sampleFeatures(cols int) []int {
	k := b.maxFeatures
	if k <= 0 || k > cols {
		k = cols
	}
	perm := b.rng.Perm(cols)
	features := perm[:k]
	sort.Ints(features)
	return features
}

// findBestSplitForFeature scans the sorted values of one feature.
// The gain is the decrease in the node's sum of squared errors, which
// for a mean predictor reduces to sumL^2/nL + sumR^2/nR - sum^2/n.
func (b *treeBuilder) findBestSplitForFeature(indices []int, feature int) splitInfo {
	values := make([]struct {
		value  float64
		target float64
	}, len(indices))
	for i, idx := range indices {
		values[i].value = b.x.At(idx, feature)
		values[i].target = b.y[idx]
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].value < values[j].value
	})

	totalSum := 0.0
	for _, v := range values {
		totalSum += v.target
	}
	n := len(values)
	parentScore := totalSum * totalSum / float64(n)

	best := splitInfo{feature: feature, gain: -math.MaxFloat64}

	leftSum := 0.0
	for i := 0; i < n-1; i++ {
		leftSum += values[i].target
		leftCount := i + 1

		if values[i].value == values[i+1].value {
			continue
		}

		rightCount := n - leftCount
		if leftCount < b.minLeaf || rightCount < b.minLeaf {
			continue
		}

		rightSum := totalSum - leftSum
		gain := leftSum*leftSum/float64(leftCount) +
			rightSum*rightSum/float64(rightCount) - parentScore

		if gain > best.gain {
			best.gain = gain
			best.threshold = (values[i].value + values[i+1].value) / 2
			best.leftCount = leftCount
			best.rightCount = rightCount
		}
	}
	return best
}
