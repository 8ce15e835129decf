// Mapping from continuous controls onto discrete algorithm knobs
package pipeline

import "math"

const (
	// smoothSharpBoundary splits Gaussian smoothing from unsharp masking
	smoothSharpBoundary = 0.5

	unsharpKernel  = 5
	etchingKernel  = 3
	comicMaxSide   = 800
	comicScale     = 0.6
	halftoneScale  = 0.5
	maxSampleValue = 255
)

// blurKernelSize maps a smooth fraction below the boundary onto an odd kernel edge
func blurKernelSize(f float64) int {
	k := int(math.Round(5 + 10*(smoothSharpBoundary-f)))
	return k | 1
}

// unsharpWeights returns the weights of the original and blurred images
func unsharpWeights(f float64) (original, blurred float64) {
	return 1.5 + f, -0.5 - f
}

// cannyThresholds returns the weak and strong hysteresis thresholds.
// Fractions above 1 would go negative and are floored at 0; negative fractions push
// both thresholds above their nominal maxima and are kept as is.
func cannyThresholds(f float64) (low, high float64) {
	low = math.Max(50*(1-f), 0)
	high = math.Max(150*(1-f), 0)
	return low, high
}

// stampLevel is the binarization cut level driven by light/dark
func stampLevel(lightDark float64) float64 {
	return clampLevel(255 * (1 - lightDark))
}

// etchingLevel is the binarization cut level driven by the etching threshold
func etchingLevel(f float64) float64 {
	return clampLevel(128 * (1 - f))
}

// stampDilationKernel is only active above the boundary; thinning is never applied
func stampDilationKernel(thickThin float64) (int, bool) {
	if thickThin <= 0.5 {
		return 0, false
	}
	return int(math.Round(1 + 2*(thickThin-0.5))), true
}

// comicDilationKernel spans 1..3 over the full range
func comicDilationKernel(thickThin float64) int {
	return int(math.Round(1 + 2*thickThin))
}

// contrastCoefficients returns the gain in [1,2] and the brightness offset in [-25,25]
func contrastCoefficients(lightDark float64) (alpha, beta float64) {
	alpha = 1 + lightDark
	if lightDark > 0.5 {
		beta = -50 * (lightDark - 0.5)
	} else {
		beta = 50 * (0.5 - lightDark)
	}
	return alpha, beta
}

// fitOddKernel shrinks an odd kernel edge so it never exceeds the image
func fitOddKernel(k, width, height int) int {
	limit := min(width, height)
	if limit%2 == 0 {
		limit--
	}
	return max(min(k, limit), 1)
}

// fitKernel shrinks a kernel edge so it never exceeds the image
func fitKernel(k, width, height int) int {
	return max(min(k, width, height), 1)
}

// scaledSide rounds a scaled dimension, never going below one pixel
func scaledSide(n int, factor float64) int {
	return max(int(math.Round(float64(n)*factor)), 1)
}

func clampLevel(v float64) float64 {
	return math.Min(math.Max(v, 0), maxSampleValue)
}
