package scene

import (
	"fmt"
	"image"

	"race-clock/internal/frames"
)

// Bins is the number of histogram bins, one per 8-bit level.
const Bins = 256

// Channel selects the color channel a histogram is computed over.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// ImageHistograms decodes frames from disk and histograms one channel.
type ImageHistograms struct {
	Channel Channel
}

// NewImageHistograms returns a source over the blue channel.
func NewImageHistograms() ImageHistograms {
	return ImageHistograms{Channel: Blue}
}

// Histogram implements HistogramSource.
func (s ImageHistograms) Histogram(frame string) (Histogram, error) {
	img, err := frames.Load(frame)
	if err != nil {
		return nil, err
	}
	return ChannelHistogram(img, s.Channel), nil
}

// ChannelHistogram counts the 8-bit levels of channel c over img.
func ChannelHistogram(img image.Image, c Channel) Histogram {
	h := make(Histogram, Bins)
	b := img.Bounds()

	switch src := img.(type) {
	case *image.RGBA:
		countPix(h, src.Pix, src.Stride, b.Dx(), b.Dy(), int(c))
		return h
	case *image.NRGBA:
		countPix(h, src.Pix, src.Stride, b.Dx(), b.Dy(), int(c))
		return h
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			var v uint32
			switch c {
			case Red:
				v = r
			case Green:
				v = g
			default:
				v = bl
			}
			h[v>>8]++
		}
	}
	return h
}

func countPix(h Histogram, pix []byte, stride, w, ht, channel int) {
	for y := 0; y < ht; y++ {
		row := pix[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			h[row[x*4+channel]]++
		}
	}
}
