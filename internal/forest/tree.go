package forest

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

const leaf = -1

// Node is one entry of a tree's flat node array. Leaves have Feature == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Class     int     `json:"c"`
}

// Tree is a CART decision tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// predict walks the tree: values <= Threshold go left.
func (t *Tree) predict(row []float64) int {
	if len(t.Nodes) == 0 {
		return leaf
	}
	n := &t.Nodes[0]
	for n.Feature != leaf {
		if row[n.Feature] <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n.Class
}

// validate checks node references. Children must come after their parent,
// which also rules out cycles.
func (t *Tree) validate(features, classes int) error {
	if len(t.Nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range t.Nodes {
		if n.Feature == leaf {
			if n.Class < 0 || n.Class >= classes {
				return fmt.Errorf("node %d: class %d out of range [0, %d)", i, n.Class, classes)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= features {
			return fmt.Errorf("node %d: feature %d out of range [0, %d)", i, n.Feature, features)
		}
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return fmt.Errorf("node %d: child %d out of range (%d, %d)", i, c, i, len(t.Nodes))
			}
		}
	}
	return nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Feature == leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

type grower struct {
	X           [][]float64
	y           []int
	classes     int
	maxDepth    int
	minSplit    int
	maxFeatures int
	rng         *rand.Rand
	nodes       []Node
}

func (g *grower) build(idx []int) Tree {
	g.nodes = nil
	g.grow(idx, 0)
	return Tree{Nodes: g.nodes}
}

func (g *grower) grow(idx []int, depth int) int {
	counts := g.count(idx)
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{Feature: leaf, Class: argmax(counts)})

	if isPure(counts) || len(idx) < g.minSplit || (g.maxDepth > 0 && depth >= g.maxDepth) {
		return id
	}

	feature, threshold, ok := g.bestSplit(idx, counts)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if g.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[id] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r, Class: g.nodes[id].Class}
	return id
}

func (g *grower) count(idx []int) []int {
	counts := make([]int, g.classes)
	for _, i := range idx {
		counts[g.y[i]]++
	}
	return counts
}

// bestSplit tries features in random order until maxFeatures non-constant ones
// have been evaluated and returns the split with the lowest weighted gini.
func (g *grower) bestSplit(idx []int, total []int) (feature int, threshold float64, ok bool) {
	width := len(g.X[idx[0]])
	bestScore := 0.0

	sorted := make([]int, len(idx))
	leftCounts := make([]int, g.classes)
	rightCounts := make([]int, g.classes)

	tried := 0
	for _, f := range g.rng.Perm(width) {
		if tried >= g.maxFeatures {
			break
		}

		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return g.X[sorted[a]][f] < g.X[sorted[b]][f] })
		if g.X[sorted[0]][f] == g.X[sorted[len(sorted)-1]][f] {
			continue
		}
		tried++

		clear(leftCounts)
		copy(rightCounts, total)
		n := len(sorted)
		for k := 0; k < n-1; k++ {
			c := g.y[sorted[k]]
			leftCounts[c]++
			rightCounts[c]--

			lo, hi := g.X[sorted[k]][f], g.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}

			nl, nr := k+1, n-k-1
			score := (float64(nl)*gini(leftCounts, nl) + float64(nr)*gini(rightCounts, nr)) / float64(n)
			if !ok || score < bestScore {
				t := lo + (hi-lo)/2
				if t >= hi {
					t = lo
				}
				feature, threshold, bestScore, ok = f, t, score, true
			}
		}
	}
	return feature, threshold, ok
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
