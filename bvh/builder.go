package bvh

import (
	"math"
	"time"

	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/swatinair123/OSprayLoadObj/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// Axes whose centroid extent is below this threshold are not split.
	minSideLength float32 = 1e-3

	// Number of centroid bins evaluated per axis.
	numBins = 16
)

var (
	// A split scoring strategy that uses the surface area heuristic (SAH).
	SurfaceAreaHeuristic = surfaceAreaHeuristic{}
)

// The BoundedVolume interface is implemented by all primitives that can
// be partitioned by the bvh builder.
type BoundedVolume interface {
	BBox() [2]types.Vec3
	Center() types.Vec3
}

// A callback that is called whenever the BVH builder creates a new leaf.
type LeafCallback func(leaf *Node, itemList []BoundedVolume)

// A split scoring strategy. Lower scores are better.
type ScoreStrategy interface {
	// Score a candidate split into two non-empty halves.
	ScoreSplit(left, right Bounds) float32

	// Score keeping all items in a single leaf.
	ScorePartition(all Bounds) float32
}

// An axis aligned box enclosing Count items.
type Bounds struct {
	Min, Max types.Vec3
	Count    int
}

func emptyBounds() Bounds {
	return Bounds{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

func (b *Bounds) grow(bbox [2]types.Vec3) {
	b.Min = types.MinVec3(b.Min, bbox[0])
	b.Max = types.MaxVec3(b.Max, bbox[1])
	b.Count++
}

func (b *Bounds) merge(other Bounds) {
	if other.Count == 0 {
		return
	}
	b.Min = types.MinVec3(b.Min, other.Min)
	b.Max = types.MaxVec3(b.Max, other.Max)
	b.Count += other.Count
}

// Half the surface area of the box.
func (b Bounds) HalfArea() float32 {
	if b.Count == 0 {
		return 0
	}
	side := b.Max.Sub(b.Min)
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}

// The best split found along one axis. Items whose centroid falls in a bin
// with index < splitBin go to the left child.
type axisSplit struct {
	axis     Axis
	splitBin int
	score    float32
	valid    bool
}

type stats struct {
	partitionedItems int
	totalItems       int
	nodes            int
	leafs            int
	maxDepth         int
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list
	nodes []Node

	// A callback invoked to set up BVH leafs.
	leafCb LeafCallback

	// The minimum number of items that are required for creating a leaf.
	minLeafItems int

	// The split scoring strategy to use.
	scoreStrategy ScoreStrategy

	stats stats
}

// Construct a BVH from a set of bounded volumes. The root node is always
// stored at index 0.
//
// Work lists with at most minLeafItems items always become leafs. Larger
// lists are split when the best binned split scores better than keeping
// them together.
func Build(workList []BoundedVolume, minLeafItems int, leafCb LeafCallback, scoreStrategy ScoreStrategy) []Node {
	b := &builder{
		logger:        log.New("bvh"),
		nodes:         make([]Node, 0, 2*len(workList)),
		leafCb:        leafCb,
		minLeafItems:  minLeafItems,
		scoreStrategy: scoreStrategy,
		stats: stats{
			totalItems: len(workList),
		},
	}

	start := time.Now()
	b.partition(workList, 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, items: %d, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.totalItems, b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)
	return b.nodes
}

// Partition worklist and return node index.
func (b *builder) partition(workList []BoundedVolume, depth int) uint32 {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	all := emptyBounds()
	centroids := emptyBounds()
	for _, item := range workList {
		all.grow(item.BBox())
		c := item.Center()
		centroids.grow([2]types.Vec3{c, c})
	}
	node := Node{Min: all.Min, Max: all.Max}

	if len(workList) <= b.minLeafItems {
		return b.createLeaf(&node, workList)
	}

	// Bin each axis in parallel
	splitChan := make(chan axisSplit, 3)
	for axis := XAxis; axis <= ZAxis; axis++ {
		go func(axis Axis) {
			splitChan <- b.bestAxisSplit(workList, axis, centroids)
		}(axis)
	}
	var splits [3]axisSplit
	for i := 0; i < 3; i++ {
		split := <-splitChan
		splits[split.axis] = split
	}

	// Ties resolve to the lowest axis
	bestScore := b.scoreStrategy.ScorePartition(all)
	var best *axisSplit
	for idx := range splits {
		if splits[idx].valid && splits[idx].score < bestScore {
			bestScore = splits[idx].score
			best = &splits[idx]
		}
	}
	if best == nil {
		return b.createLeaf(&node, workList)
	}

	leftWorkList := make([]BoundedVolume, 0, len(workList)/2)
	rightWorkList := make([]BoundedVolume, 0, len(workList)/2)
	for _, item := range workList {
		if binIndex(item.Center()[best.axis], centroids, best.axis) < best.splitBin {
			leftWorkList = append(leftWorkList, item)
		} else {
			rightWorkList = append(rightWorkList, item)
		}
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	leftNodeIndex := b.partition(leftWorkList, depth+1)
	rightNodeIndex := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex].SetChildNodes(leftNodeIndex, rightNodeIndex)

	return uint32(nodeIndex)
}

// Sort item centroids into bins along axis and score the numBins-1 bin
// boundaries using a prefix sweep from the left and a suffix sweep from the
// right.
func (b *builder) bestAxisSplit(workList []BoundedVolume, axis Axis, centroids Bounds) axisSplit {
	split := axisSplit{axis: axis}
	if centroids.Max[axis]-centroids.Min[axis] < minSideLength {
		return split
	}

	var bins [numBins]Bounds
	for idx := range bins {
		bins[idx] = emptyBounds()
	}
	for _, item := range workList {
		bins[binIndex(item.Center()[axis], centroids, axis)].grow(item.BBox())
	}

	var rightAccum [numBins]Bounds
	acc := emptyBounds()
	for idx := numBins - 1; idx > 0; idx-- {
		acc.merge(bins[idx])
		rightAccum[idx] = acc
	}

	left := emptyBounds()
	for splitBin := 1; splitBin < numBins; splitBin++ {
		left.merge(bins[splitBin-1])
		right := rightAccum[splitBin]
		if left.Count == 0 || right.Count == 0 {
			continue
		}
		score := b.scoreStrategy.ScoreSplit(left, right)
		if !split.valid || score < split.score {
			split.splitBin = splitBin
			split.score = score
			split.valid = true
		}
	}
	return split
}

// Map a centroid coordinate to its bin along axis.
func binIndex(coord float32, centroids Bounds, axis Axis) int {
	extent := centroids.Max[axis] - centroids.Min[axis]
	if extent <= 0 {
		return 0
	}
	idx := int(numBins * (coord - centroids.Min[axis]) / extent)
	if idx < 0 {
		return 0
	} else if idx >= numBins {
		return numBins - 1
	}
	return idx
}

// Setup the given node item as a leaf node containing all items in the work list.
// Returns the index to the node in the bvh node array.
func (b *builder) createLeaf(node *Node, workList []BoundedVolume) uint32 {
	b.leafCb(node, workList)

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, *node)

	b.stats.leafs++
	b.stats.partitionedItems += len(workList)

	return uint32(nodeIndex)
}

// Scores splits with the surface area heuristic:
//
//	left count * left area + right count * right area
type surfaceAreaHeuristic struct{}

func (h surfaceAreaHeuristic) ScoreSplit(left, right Bounds) float32 {
	return float32(left.Count)*left.HalfArea() + float32(right.Count)*right.HalfArea()
}

// Returns MaxFloat32 for an empty partition.
func (h surfaceAreaHeuristic) ScorePartition(all Bounds) float32 {
	if all.Count == 0 {
		return math.MaxFloat32
	}
	return float32(all.Count) * all.HalfArea()
}
