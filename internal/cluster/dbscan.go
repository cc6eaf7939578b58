// Package cluster groups face embeddings into person-identities using
// density-based clustering (DBSCAN) over euclidean embedding space.
//
// Clustering is global and non-incremental: every run partitions the entire
// corpus from scratch. For a fixed input, the partition (and the labels) is
// deterministic, so reruns over an unchanged corpus are idempotent.
package cluster

import (
	"fmt"

	"github.com/google/uuid"
)

// Member identifies one detected face: a photo plus the index of the
// embedding within that photo.
type Member struct {
	PhotoID   uuid.UUID
	FaceIndex int
}

// Point is a cluster input: one face embedding and its provenance.
type Point struct {
	Member
	Vector []float32
}

// Params are the DBSCAN tuning knobs. Defaults come from config
// (epsilon 0.5, minSamples 1).
type Params struct {
	// Epsilon is the neighborhood radius (euclidean).
	Epsilon float64
	// MinSamples is the density threshold for core points. With 1, every
	// point is core and outliers survive as singleton clusters; with
	// higher values, sub-density points are dropped as noise.
	MinSamples int
}

// Cluster is one identity: the set of faces believed to depict one person.
// Labels are stable within a run only.
type Cluster struct {
	Label   int
	Members []Member
}

const (
	labelUnvisited = -2
	labelNoise     = -1
)

// Run partitions the given points. An empty input yields an empty result.
// Mixed vector dimensions are a contract violation and abort the run before
// any distance is computed.
func Run(points []Point, params Params) ([]Cluster, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if params.Epsilon <= 0 {
		return nil, fmt.Errorf("epsilon must be positive, got %g", params.Epsilon)
	}
	if params.MinSamples < 1 {
		params.MinSamples = 1
	}

	dim := len(points[0].Vector)
	for i, p := range points {
		if len(p.Vector) != dim {
			return nil, fmt.Errorf("point %d (photo %s face %d): dimension %d, want %d",
				i, p.PhotoID, p.FaceIndex, len(p.Vector), dim)
		}
	}

	epsSq := params.Epsilon * params.Epsilon
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = labelUnvisited
	}

	nextLabel := 0
	for i := range points {
		if labels[i] != labelUnvisited {
			continue
		}

		neighbors := regionQuery(points, i, epsSq)
		if len(neighbors) < params.MinSamples {
			labels[i] = labelNoise
			continue
		}

		labels[i] = nextLabel
		expand(points, labels, neighbors, nextLabel, epsSq, params.MinSamples)
		nextLabel++
	}

	clusters := make([]Cluster, nextLabel)
	for label := range clusters {
		clusters[label].Label = label
	}
	for i, p := range points {
		label := labels[i]
		if label == labelNoise {
			continue
		}
		clusters[label].Members = append(clusters[label].Members, p.Member)
	}
	return clusters, nil
}

// expand grows a cluster from a core point's neighborhood (classic DBSCAN
// seed-set expansion). Iterates the frontier in discovery order so labels
// are deterministic for a fixed input order.
func expand(points []Point, labels []int, frontier []int, label int, epsSq float64, minSamples int) {
	for cursor := 0; cursor < len(frontier); cursor++ {
		j := frontier[cursor]
		switch labels[j] {
		case labelNoise:
			// Border point: density-reachable but not core.
			labels[j] = label
			continue
		case labelUnvisited:
			labels[j] = label
		default:
			continue
		}

		neighbors := regionQuery(points, j, epsSq)
		if len(neighbors) >= minSamples {
			frontier = append(frontier, neighbors...)
		}
	}
}

// regionQuery returns the indices of all points within epsilon of point i,
// including i itself, in input order.
func regionQuery(points []Point, i int, epsSq float64) []int {
	var neighbors []int
	for j := range points {
		if SquaredEuclidean(points[i].Vector, points[j].Vector) <= epsSq {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// CorpusPoints flattens resolved photos into cluster input, preserving photo
// order and face order within each photo. Pending and faceless photos
// contribute nothing.
func CorpusPoints(photos []Photo) []Point {
	var points []Point
	for _, ph := range photos {
		for idx, emb := range ph.Embeddings {
			points = append(points, Point{
				Member: Member{PhotoID: ph.ID, FaceIndex: idx},
				Vector: emb,
			})
		}
	}
	return points
}

// Photo is the minimal view of a photo the clustering corpus needs.
type Photo struct {
	ID         uuid.UUID
	Embeddings [][]float32
}
