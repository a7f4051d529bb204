package compose

import "math/rand"

// Crop is a centre crop rectangle in source pixels.
type Crop struct {
	W, H, X, Y int
}

// CenterCrop returns the largest centred window of a srcW x srcH frame with
// the aspect ratio of dstW x dstH.
func CenterCrop(srcW, srcH, dstW, dstH int) Crop {
	target := float64(dstW) / float64(dstH)
	if float64(srcW)/float64(srcH) > target {
		w := int(float64(srcH) * target)
		w -= w % 2
		return Crop{W: w, H: srcH, X: (srcW - w) / 2, Y: 0}
	}
	h := int(float64(srcW) / target)
	h -= h % 2
	return Crop{W: srcW, H: h, X: 0, Y: (srcH - h) / 2}
}

// ClipPlan says how to cut one background clip to a segment.
type ClipPlan struct {
	Offset float64
	Loop   bool
}

// PlanClip picks a random start when the clip is longer than needed and
// loops it when shorter. The last second of a long clip is never used as a
// start point.
func PlanClip(clipDuration, need float64, rng *rand.Rand) ClipPlan {
	if clipDuration <= 0 {
		return ClipPlan{Loop: true}
	}
	if clipDuration < need {
		return ClipPlan{Loop: true}
	}
	maxStart := clipDuration - need - 1
	if maxStart <= 0 {
		return ClipPlan{}
	}
	return ClipPlan{Offset: rng.Float64() * maxStart}
}
