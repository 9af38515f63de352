package boosting

import (
	"math"
	"math/rand"
	"sort"
)

// Node is a split or a leaf. Value is the node's output: the leaf value for
// leaves, and for splits the value the node would have had as a leaf.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
	Gain      float64 `json:"gain"`
}

func (n Node) IsLeaf() bool { return n.Left < 0 }

// Tree is stored flat; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// goesLeft sends missing values left.
func goesLeft(v, threshold float64) bool {
	return v <= threshold || math.IsNaN(v)
}

func (t *Tree) leaf(x []float64) int {
	id := 0
	for !t.Nodes[id].IsLeaf() {
		n := t.Nodes[id]
		if goesLeft(x[n.Feature], n.Threshold) {
			id = n.Left
		} else {
			id = n.Right
		}
	}
	return id
}

func (t *Tree) Predict(x []float64) float64 {
	return t.Nodes[t.leaf(x)].Value
}

func (t *Tree) NumLeaves() int {
	c := 0
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			c++
		}
	}
	return c
}

type leafStats struct {
	g, h float64
	n    int
}

type candidate struct {
	ok        bool
	gain      float64
	feature   int
	threshold float64
}

// grower fits one tree to a fixed set of gradients, best-first.
type grower struct {
	x     [][]float64
	order [][]int
	grad  []float64
	hess  []float64
	p     Params
}

// presort returns, per feature, row indices ordered by value.
func presort(x [][]float64) [][]int {
	if len(x) == 0 {
		return nil
	}
	order := make([][]int, len(x[0]))
	for f := range order {
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]][f] < x[idx[b]][f] })
		order[f] = idx
	}
	return order
}

func sampleFeatures(rng *rand.Rand, total int, fraction float64) []int {
	k := int(fraction*float64(total) + 0.5)
	if k < 1 {
		k = 1
	}
	if k >= total {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := rng.Perm(total)[:k]
	sort.Ints(picked)
	return picked
}

func (g *grower) score(s leafStats) float64 {
	d := s.h + g.p.Lambda
	if d <= 1e-12 {
		return 0
	}
	return s.g * s.g / d
}

func (g *grower) output(s leafStats) float64 {
	d := s.h + g.p.Lambda
	if d <= 1e-12 {
		return 0
	}
	return -s.g / d * g.p.LearningRate
}

// grow builds a tree over the allowed features and returns it with the leaf
// index of every training row.
func (g *grower) grow(features []int) (*Tree, []int) {
	leafOf := make([]int, len(g.x))
	var root leafStats
	for i := range g.x {
		root.g += g.grad[i]
		root.h += g.hess[i]
		root.n++
	}

	t := &Tree{Nodes: []Node{{Left: -1, Right: -1}}}
	stats := []leafStats{root}
	cands := []candidate{g.bestSplit(0, root, leafOf, features)}

	for leaves := 1; leaves < g.p.NumLeaves; leaves++ {
		best := -1
		for id, c := range cands {
			if c.ok && (best < 0 || c.gain > cands[best].gain) {
				best = id
			}
		}
		if best < 0 {
			break
		}
		c := cands[best]
		l, r := len(t.Nodes), len(t.Nodes)+1
		t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1}, Node{Left: -1, Right: -1})
		t.Nodes[best].Feature = c.feature
		t.Nodes[best].Threshold = c.threshold
		t.Nodes[best].Left = l
		t.Nodes[best].Right = r
		t.Nodes[best].Gain = c.gain

		var ls, rs leafStats
		for i := range leafOf {
			if leafOf[i] != best {
				continue
			}
			if goesLeft(g.x[i][c.feature], c.threshold) {
				leafOf[i] = l
				ls.g, ls.h, ls.n = ls.g+g.grad[i], ls.h+g.hess[i], ls.n+1
			} else {
				leafOf[i] = r
				rs.g, rs.h, rs.n = rs.g+g.grad[i], rs.h+g.hess[i], rs.n+1
			}
		}
		stats = append(stats, ls, rs)
		cands[best] = candidate{}
		cands = append(cands, g.bestSplit(l, ls, leafOf, features), g.bestSplit(r, rs, leafOf, features))
	}

	for id := range t.Nodes {
		t.Nodes[id].Value = g.output(stats[id])
		t.Nodes[id].Count = stats[id].n
	}
	return t, leafOf
}

// bestSplit scans every allowed feature in sorted order for the threshold
// with the largest gain that leaves MinDataInLeaf rows on both sides.
func (g *grower) bestSplit(node int, st leafStats, leafOf []int, features []int) candidate {
	minData := g.p.MinDataInLeaf
	if st.n < 2*minData {
		return candidate{}
	}
	parent := g.score(st)
	var best candidate
	for _, f := range features {
		var left leafStats
		prev := 0.0
		for _, i := range g.order[f] {
			if leafOf[i] != node {
				continue
			}
			v := g.x[i][f]
			if left.n > 0 && v > prev && left.n >= minData && st.n-left.n >= minData {
				right := leafStats{g: st.g - left.g, h: st.h - left.h, n: st.n - left.n}
				if left.h >= g.p.MinSumHessian && right.h >= g.p.MinSumHessian {
					gain := g.score(left) + g.score(right) - parent
					if gain > 1e-12 && (!best.ok || gain > best.gain) {
						th := prev + (v-prev)/2
						if th >= v {
							th = prev
						}
						best = candidate{ok: true, gain: gain, feature: f, threshold: th}
					}
				}
			}
			left.g += g.grad[i]
			left.h += g.hess[i]
			left.n++
			prev = v
		}
	}
	return best
}
