// Package cvhist computes frame histograms with OpenCV.
package cvhist

import (
	"fmt"

	"gocv.io/x/gocv"

	"race-clock/internal/scene"
)

// Source is a scene.HistogramSource reading frames with OpenCV. Channel
// indices follow OpenCV's BGR order, so 0 is blue.
type Source struct {
	Channel int
}

var _ scene.HistogramSource = Source{}

// NewSource returns a source over the blue channel.
func NewSource() Source {
	return Source{Channel: 0}
}

// Histogram implements scene.HistogramSource.
func (s Source) Histogram(frame string) (scene.Histogram, error) {
	img := gocv.IMRead(frame, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("failed to read image %s", frame)
	}

	mask := gocv.NewMat()
	defer mask.Close()
	hist := gocv.NewMat()
	defer hist.Close()

	gocv.CalcHist([]gocv.Mat{img}, []int{s.Channel}, mask, &hist, []int{scene.Bins}, []float64{0, scene.Bins}, false)

	out := make(scene.Histogram, scene.Bins)
	for i := range out {
		out[i] = float64(hist.GetFloatAt(i, 0))
	}
	return out, nil
}
