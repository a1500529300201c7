package detector

import (
	"fmt"
	"sort"
)

// Decode turns a YOLOv8-style output tensor of shape [1, 4+classes, anchors]
// into detections. Each anchor keeps only its best class, and anchors below
// minConfidence are dropped.
func Decode(output []float32, shape []int64, classes []string, minConfidence float32) ([]Detection, error) {
	if len(shape) != 3 || shape[0] != 1 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	rows, anchors := int(shape[1]), int(shape[2])
	numClasses := rows - 4
	if numClasses <= 0 || numClasses != len(classes) {
		return nil, fmt.Errorf("output has %d class rows, metadata lists %d classes", numClasses, len(classes))
	}
	if len(output) < rows*anchors {
		return nil, fmt.Errorf("output has %d values, shape needs %d", len(output), rows*anchors)
	}

	at := func(row, anchor int) float32 {
		return output[row*anchors+anchor]
	}

	var detections []Detection
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 0; c < numClasses; c++ {
			if score := at(4+c, i); score > bestScore {
				best, bestScore = c, score
			}
		}
		if best < 0 || bestScore < minConfidence {
			continue
		}
		detections = append(detections, Detection{
			Label:      classes[best],
			Confidence: bestScore,
			Box:        Box{CX: at(0, i), CY: at(1, i), W: at(2, i), H: at(3, i)},
		})
	}
	return detections, nil
}

// NonMaxSuppression keeps the most confident box of every overlapping group
// of same-label boxes. The result is ordered by descending confidence.
func NonMaxSuppression(detections []Detection, iouThreshold float32) []Detection {
	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for _, candidate := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.Label == candidate.Label && k.Box.IoU(candidate.Box) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// Labels flattens detections into one label per instance.
func Labels(detections []Detection) []string {
	labels := make([]string, len(detections))
	for i, d := range detections {
		labels[i] = d.Label
	}
	return labels
}
