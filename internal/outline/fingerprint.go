package outline

import (
	"fmt"
	"math/bits"
	"strings"
)

// Feature weights for the simhash accumulator. Skeleton dominates because
// local tree shape is the strongest repetition signal; raw text never
// participates, so rows differing only in content still collide.
const (
	weightSkeleton = 5
	weightShape    = 3
	weightDepth    = 2
	weightDefault  = 1
)

// Fingerprint vocabulary: structurally significant types counted within the
// first three levels below a node for the type-count feature.
var countedTypes = []string{"button", "link", "text", "image", "heading", "checkbox", "radio"}

// cursorMarker flags lines the source renderer tagged as pointer targets.
const cursorMarker = "[cursor=pointer]"

// Fingerprinter computes and memoizes 32-bit structural fingerprints.
// The cache is keyed by node ID, so one Fingerprinter must only be reused
// across snapshots after an explicit ClearCache; node IDs restart at zero
// for every parsed snapshot.
//
// A Fingerprinter is not safe for concurrent use. Each compression call
// owns its own instance.
type Fingerprinter struct {
	cache map[int]uint32
}

// NewFingerprinter returns an empty-cache instance.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{cache: make(map[int]uint32)}
}

// ClearCache drops all memoized fingerprints. Call between unrelated
// snapshots when reusing an instance.
func (f *Fingerprinter) ClearCache() {
	f.cache = make(map[int]uint32)
}

// Fingerprint returns the node's structural simhash, memoized by node ID.
// Deterministic for a given tree shape: two calls on the same built tree
// return identical values.
func (f *Fingerprinter) Fingerprint(n *Node) uint32 {
	if fp, ok := f.cache[n.ID]; ok {
		return fp
	}
	fp := simhash(features(n))
	f.cache[n.ID] = fp
	return fp
}

// HammingDistance counts differing bits between two fingerprints.
func HammingDistance(a, b uint32) int {
	return bits.OnesCount32(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits.
func Similar(a, b uint32, threshold int) bool {
	return HammingDistance(a, b) <= threshold
}

// weightedFeature is one extracted feature string plus its accumulator
// weight.
type weightedFeature struct {
	value  string
	weight int
}

// features extracts the structural feature strings for one node.
func features(n *Node) []weightedFeature {
	out := make([]weightedFeature, 0, 5)
	out = append(out,
		weightedFeature{skeletonFeature(n), weightSkeleton},
		weightedFeature{shapeFeature(n), weightShape},
		weightedFeature{fmt.Sprintf("depth:%d", subtreeDepth(n)), weightDepth},
	)
	if tc := typeCountFeature(n); tc != "" {
		out = append(out, weightedFeature{tc, weightDefault})
	}
	if isInteractiveSubtree(n, 2) || strings.Contains(n.Line, cursorMarker) {
		out = append(out, weightedFeature{"interactive", weightDefault})
	}
	return out
}

// skeletonFeature captures local tree shape: own type, the first five
// children's types, and (when the first child has children of its own) the
// first three grandchild types under it.
func skeletonFeature(n *Node) string {
	var sb strings.Builder
	sb.WriteString("skel:")
	sb.WriteString(n.Type)
	for i, c := range n.Children {
		if i >= 5 {
			break
		}
		sb.WriteByte('|')
		sb.WriteString(c.Type)
	}
	if len(n.Children) > 0 && len(n.Children[0].Children) > 0 {
		sb.WriteByte('/')
		for i, gc := range n.Children[0].Children {
			if i >= 3 {
				break
			}
			sb.WriteByte('|')
			sb.WriteString(gc.Type)
		}
	}
	return sb.String()
}

// shapeFeature captures branching width: own child count followed by the
// child counts of the first three children.
func shapeFeature(n *Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "shape:%d", len(n.Children))
	for i, c := range n.Children {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&sb, ",%d", len(c.Children))
	}
	return sb.String()
}

// typeCountFeature emits a compact first-letter+count code for each counted
// type present within the first three levels below the node, in vocabulary
// order. Empty when none are present.
func typeCountFeature(n *Node) string {
	counts := make(map[string]int, len(countedTypes))
	countTypes(n, 3, counts)
	var sb strings.Builder
	for _, t := range countedTypes {
		if c := counts[t]; c > 0 {
			fmt.Fprintf(&sb, "%c%d", t[0], c)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "types:" + sb.String()
}

// countTypes tallies counted vocabulary types up to levels below n.
func countTypes(n *Node, levels int, counts map[string]int) {
	if levels == 0 {
		return
	}
	for _, c := range n.Children {
		for _, t := range countedTypes {
			if c.Type == t {
				counts[t]++
				break
			}
		}
		countTypes(c, levels-1, counts)
	}
}

// isInteractiveSubtree reports whether the node or any descendant within
// levels is a known interactive type.
func isInteractiveSubtree(n *Node, levels int) bool {
	if n.IsInteractive() {
		return true
	}
	if levels == 0 {
		return false
	}
	for _, c := range n.Children {
		if isInteractiveSubtree(c, levels-1) {
			return true
		}
	}
	return false
}

// subtreeDepth returns the maximum depth of the subtree rooted at n,
// measured in levels below n (a leaf is 0).
func subtreeDepth(n *Node) int {
	max := 0
	for _, c := range n.Children {
		if d := subtreeDepth(c) + 1; d > max {
			max = d
		}
	}
	return max
}

// hashString is the 32-bit multiplicative string hash (djb2, seed 5381)
// used for every feature.
func hashString(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return h
}

// simhash folds weighted feature hashes into a 32-bit locality-sensitive
// fingerprint: each hash adds or subtracts its weight per bit position, and
// the final bit is set where the accumulator stays positive.
func simhash(fs []weightedFeature) uint32 {
	var bins [32]int
	for _, f := range fs {
		h := hashString(f.value)
		for i := 0; i < 32; i++ {
			if h&(1<<uint(i)) != 0 {
				bins[i] += f.weight
			} else {
				bins[i] -= f.weight
			}
		}
	}
	var fp uint32
	for i := 0; i < 32; i++ {
		if bins[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}
