package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Limits used by AnalyzeColor.
const (
	ColorAnalysisMaxSide    = 500
	ColorAnalysisMaxSamples = 10000
	ColorHistogramBins      = 50
	DominantColorCount      = 8
)

// ChannelStats is the distribution of one colour channel over the sample.
type ChannelStats struct {
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"std"`
	Histogram []float64 `json:"histogram"`
}

// ColorAnalysis describes the colour distribution of a slide, the basis for
// telling stains apart.
type ColorAnalysis struct {
	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
	AnalysisWidth  int `json:"analysis_width"`
	AnalysisHeight int `json:"analysis_height"`
	Samples        int `json:"samples"`

	// RGB channels in 0-255; HSV hue in degrees, saturation and value in
	// percent. Histograms hold ColorHistogramBins counts each.
	Red        ChannelStats `json:"red"`
	Green      ChannelStats `json:"green"`
	Blue       ChannelStats `json:"blue"`
	Hue        ChannelStats `json:"hue"`
	Saturation ChannelStats `json:"saturation"`
	Value      ChannelStats `json:"value"`

	Dominant []ColorFrequency `json:"dominant_colors"`

	// ExplainedVariance is the fraction of RGB variance carried by each
	// principal component, largest first.
	ExplainedVariance []float64 `json:"pca_explained_variance"`
}

// AnalyzeColor downsamples img so its longer side is at most
// ColorAnalysisMaxSide, takes an evenly strided sample of at most
// ColorAnalysisMaxSamples pixels and summarises it.
func AnalyzeColor(img image.Image) *ColorAnalysis {
	b := img.Bounds()
	res := &ColorAnalysis{OriginalWidth: b.Dx(), OriginalHeight: b.Dy()}

	small := img
	if b.Dx() > ColorAnalysisMaxSide || b.Dy() > ColorAnalysisMaxSide {
		small = imaging.Fit(img, ColorAnalysisMaxSide, ColorAnalysisMaxSide, imaging.Box)
	}
	sb := small.Bounds()
	res.AnalysisWidth, res.AnalysisHeight = sb.Dx(), sb.Dy()

	pixels := samplePixels(small, ColorAnalysisMaxSamples)
	res.Samples = len(pixels)
	if len(pixels) == 0 {
		return res
	}

	n := len(pixels)
	r, g, bl := make([]float64, n), make([]float64, n), make([]float64, n)
	h, s, v := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range pixels {
		r[i], g[i], bl[i] = float64(p.R), float64(p.G), float64(p.B)
		hsv := rgbToHSV(p)
		h[i], s[i], v[i] = hsv.H, hsv.S, hsv.V
	}

	res.Red = channelStats(r, 0, 256)
	res.Green = channelStats(g, 0, 256)
	res.Blue = channelStats(bl, 0, 256)
	res.Hue = channelStats(h, 0, 360)
	res.Saturation = channelStats(s, 0, 100)
	res.Value = channelStats(v, 0, 100)

	res.Dominant = DominantColors(pixels, DominantColorCount)
	res.ExplainedVariance = explainedVariance(r, g, bl)
	return res
}

// samplePixels reads every k-th pixel so that at most limit are returned.
func samplePixels(img image.Image, limit int) []RGBColor {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total <= 0 {
		return nil
	}
	step := 1
	if total > limit {
		step = int(math.Ceil(float64(total) / float64(limit)))
	}

	out := make([]RGBColor, 0, total/step+1)
	for i := 0; i < total; i += step {
		x := b.Min.X + i%b.Dx()
		y := b.Min.Y + i/b.Dx()
		r, g, bl, _ := img.At(x, y).RGBA()
		out = append(out, RGBColor{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)})
	}
	return out
}

// channelStats bins x into ColorHistogramBins equal bins over [lo, hi].
// The top edge is inclusive so that a fully saturated value is counted.
func channelStats(x []float64, lo, hi float64) ChannelStats {
	mean, std := stat.PopMeanStdDev(x, nil)
	hist := make([]float64, ColorHistogramBins)
	width := (hi - lo) / ColorHistogramBins
	for _, val := range x {
		bin := int((val - lo) / width)
		if bin < 0 {
			bin = 0
		}
		if bin >= ColorHistogramBins {
			bin = ColorHistogramBins - 1
		}
		hist[bin]++
	}
	return ChannelStats{Mean: mean, StdDev: std, Histogram: hist}
}

func explainedVariance(r, g, b []float64) []float64 {
	n := len(r)
	if n < 2 {
		return nil
	}
	data := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		data.Set(i, 0, r[i])
		data.Set(i, 1, g[i])
		data.Set(i, 2, b[i])
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil
	}
	vars := pc.VarsTo(nil)

	total := 0.0
	for _, v := range vars {
		total += v
	}
	if total == 0 {
		return make([]float64, len(vars))
	}
	ratios := make([]float64, len(vars))
	for i, v := range vars {
		ratios[i] = v / total
	}
	return ratios
}
