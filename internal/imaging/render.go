package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/mattn/go-sixel"
	"github.com/muesli/termenv"
	"golang.org/x/image/draw"
)

// CellSize is the pixel size of one terminal cell.
type CellSize struct {
	W, H int
}

// DefaultCellSize is assumed when the terminal does not report pixel sizes.
var DefaultCellSize = CellSize{W: 8, H: 16}

// Cover scales src to exactly w x h pixels, preserving aspect ratio by
// cropping the overflowing dimension equally on both sides.
func Cover(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	sb := src.Bounds()
	if w <= 0 || h <= 0 || sb.Empty() {
		return dst
	}

	crop := sb
	// Compare sw/sh with w/h without floating point.
	if sb.Dx()*h > w*sb.Dy() {
		cw := sb.Dy() * w / h
		x0 := sb.Min.X + (sb.Dx()-cw)/2
		crop = image.Rect(x0, sb.Min.Y, x0+cw, sb.Max.Y)
	} else if sb.Dx()*h < w*sb.Dy() {
		ch := sb.Dx() * h / w
		y0 := sb.Min.Y + (sb.Dy()-ch)/2
		crop = image.Rect(sb.Min.X, y0, sb.Max.X, y0+ch)
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

// Render draws img into a cols x rows cell region and returns one string per
// row. Graphics protocols put the whole image in the first row and leave the
// remaining rows blank.
func Render(img image.Image, cols, rows int, cell CellSize, proto Protocol) ([]string, error) {
	if cols <= 0 || rows <= 0 || img == nil {
		return nil, nil
	}
	if cell.W <= 0 || cell.H <= 0 {
		cell = DefaultCellSize
	}

	if proto == Halfblocks {
		return renderHalfblocks(img, cols, rows), nil
	}

	scaled := Cover(img, cols*cell.W, rows*cell.H)
	var seq string
	var err error
	switch proto {
	case Kitty:
		seq, err = encodeKitty(scaled, cols, rows)
	case ITerm2:
		seq, err = encodeITerm2(scaled, cols, rows)
	case Sixel:
		seq, err = encodeSixel(scaled)
	}
	if err != nil {
		return nil, err
	}

	blank := strings.Repeat(" ", cols)
	lines := make([]string, rows)
	lines[0] = seq + blank
	for i := 1; i < rows; i++ {
		lines[i] = blank
	}
	return lines, nil
}

func renderHalfblocks(img image.Image, cols, rows int) []string {
	scaled := Cover(img, cols, rows*2)
	p := termenv.TrueColor
	lines := make([]string, rows)
	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.Reset()
		for c := 0; c < cols; c++ {
			top := hex(scaled.RGBAAt(c, r*2))
			bottom := hex(scaled.RGBAAt(c, r*2+1))
			b.WriteString(p.String("▀").Foreground(p.Color(top)).Background(p.Color(bottom)).String())
		}
		lines[r] = b.String()
	}
	return lines
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// kittyChunk is the largest payload per kitty graphics escape.
const kittyChunk = 4096

func encodeKitty(img image.Image, cols, rows int) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	payload := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	first := true
	for len(payload) > 0 {
		n := min(kittyChunk, len(payload))
		chunk := payload[:n]
		payload = payload[n:]
		more := 0
		if len(payload) > 0 {
			more = 1
		}
		if first {
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,q=2,C=1,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, chunk)
			first = false
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, chunk)
		}
	}
	return b.String(), nil
}

func encodeITerm2(img image.Image, cols, rows int) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("\x1b]1337;File=inline=1;size=%d;width=%d;height=%d;preserveAspectRatio=0:%s\a",
		len(data), cols, rows, base64.StdEncoding.EncodeToString(data)), nil
}

func encodeSixel(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := sixel.NewEncoder(&buf).Encode(img); err != nil {
		return "", err
	}
	return buf.String(), nil
}
