package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	"tradegate/internal/domain"
	"tradegate/internal/trend"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	chartWidth  = 960
	chartHeight = 540

	priceLabel = "close"
	trendLabel = "MA30"
)

var (
	colBackground = color.RGBA{R: 250, G: 252, B: 255, A: 255}
	colGrid       = color.RGBA{R: 225, G: 232, B: 240, A: 255}
	colFrame      = color.RGBA{R: 104, G: 122, B: 146, A: 255}
	colPrice      = color.RGBA{R: 62, G: 106, B: 214, A: 255}
	colTrend      = color.RGBA{R: 255, G: 149, B: 0, A: 255}
	colText       = color.RGBA{R: 58, G: 64, B: 90, A: 255}
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderRegimeChart draws the close series over the full candle range and the
// moving average over its defined suffix, with title, legend and price/time
// labels. It produces PNG bytes and touches nothing else.
func (r *Renderer) RenderRegimeChart(candles []domain.Candle, ma trend.MovingAverage, title string) ([]byte, error) {
	if len(candles) < 2 {
		return nil, fmt.Errorf("need at least 2 candles to render chart, have %d", len(candles))
	}

	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fillRect(img, img.Bounds(), colBackground)

	plot := image.Rect(70, 40, chartWidth-24, chartHeight-50)
	drawGrid(img, plot, 8, 6)

	minV, maxV := priceBounds(candles, ma)
	if maxV <= minV {
		maxV = minV + 1
	}

	// Price over the whole range.
	prevX, prevY := -1, -1
	for i, c := range candles {
		x := xAt(i, len(candles), plot)
		y := yAt(c.Close, minV, maxV, plot)
		if prevX >= 0 {
			drawLine(img, prevX, prevY, x, y, colPrice)
		}
		prevX, prevY = x, y
	}

	// Trend line only where it is defined.
	prevX, prevY = -1, -1
	for i, v := range ma.Values {
		x := xAt(ma.Offset+i, len(candles), plot)
		y := yAt(v, minV, maxV, plot)
		if prevX >= 0 {
			drawLine(img, prevX, prevY, x, y, colTrend)
		}
		prevX, prevY = x, y
	}

	drawString(img, plot.Min.X, 24, colText, title)
	drawLegend(img, plot)

	drawString(img, 6, plot.Min.Y+10, colText, formatPrice(maxV))
	drawString(img, 6, plot.Max.Y, colText, formatPrice(minV))
	drawString(img, plot.Min.X, chartHeight-16, colText, candles[0].OpenTime.UTC().Format("01-02 15:04"))
	last := candles[len(candles)-1].OpenTime.UTC().Format("01-02 15:04")
	drawString(img, plot.Max.X-7*len(last), chartHeight-16, colText, last)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func priceBounds(candles []domain.Candle, ma trend.MovingAverage) (float64, float64) {
	minV := math.Inf(1)
	maxV := math.Inf(-1)
	for _, c := range candles {
		minV = math.Min(minV, c.Close)
		maxV = math.Max(maxV, c.Close)
	}
	for _, v := range ma.Values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if math.IsInf(minV, 1) || math.IsInf(maxV, -1) {
		return 0, 1
	}
	return minV, maxV
}

func drawLegend(img *image.RGBA, plot image.Rectangle) {
	x := plot.Max.X - 150
	y := plot.Min.Y + 14
	drawLine(img, x, y-4, x+24, y-4, colPrice)
	drawString(img, x+30, y, colText, priceLabel)
	drawLine(img, x, y+12, x+24, y+12, colTrend)
	drawString(img, x+30, y+16, colText, trendLabel)
}

func formatPrice(v float64) string {
	switch {
	case math.Abs(v) >= 1000:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case math.Abs(v) >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
}

func drawString(img *image.RGBA, x, y int, col color.RGBA, s string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawGrid(img *image.RGBA, rect image.Rectangle, verticalLines, horizontalLines int) {
	for i := 0; i <= verticalLines; i++ {
		x := rect.Min.X + (rect.Dx()*i)/verticalLines
		drawLine(img, x, rect.Min.Y, x, rect.Max.Y, colGrid)
	}
	for i := 0; i <= horizontalLines; i++ {
		y := rect.Min.Y + (rect.Dy()*i)/horizontalLines
		drawLine(img, rect.Min.X, y, rect.Max.X, y, colGrid)
	}
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Min.X, rect.Max.Y, colFrame)
	drawLine(img, rect.Min.X, rect.Max.Y, rect.Max.X, rect.Max.Y, colFrame)
}

func xAt(idx, total int, rect image.Rectangle) int {
	if total <= 1 {
		return rect.Min.X
	}
	return rect.Min.X + (idx*(rect.Dx()-1))/(total-1)
}

func yAt(value, minV, maxV float64, rect image.Rectangle) int {
	ratio := (value - minV) / (maxV - minV)
	ratio = math.Max(0, math.Min(1, ratio))
	return rect.Max.Y - int(ratio*float64(rect.Dy()-1))
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.RGBA) {
	r := rect.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
