package regdesk

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"strings"
	"sync"

	"github.com/boombuler/barcode/code39"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Barcode layout defaults
const (
	// DefaultModuleWidth is the width in pixels of one narrow bar
	DefaultModuleWidth = 2
	// DefaultBarHeight is the bar height in pixels
	DefaultBarHeight = 80
	// DefaultQuietZone is the blank margin on each side, in modules
	DefaultQuietZone = 10

	// DefaultCanvasWidth and DefaultCanvasHeight size the composite image
	DefaultCanvasWidth  = 600
	DefaultCanvasHeight = 480

	// DefaultFallbackWidth and DefaultFallbackHeight size the placeholder image
	DefaultFallbackWidth  = 400
	DefaultFallbackHeight = 280

	// DefaultTextSize is the point size of the composite text block
	DefaultTextSize = 12
)

// Composite layout, in canvas pixels
const (
	textBlockX      = 10
	textBlockY      = 30
	textBlockWidth  = 500
	textBlockHeight = 100
	textBlockPad    = 4
	barcodeTop      = 141

	barPadding      = 4
	maxCanvasPixels = 1 << 26
)

var barcodePalette = color.Palette{color.White, color.Black}

// BarcodeComposer renders Code 39 barcodes and composes them with a text block.
// Rendering is serialized, so a composer may be shared between goroutines.
type BarcodeComposer struct {
	mu sync.Mutex

	moduleWidth   int
	barHeight     int
	quietZone     int
	humanReadable bool
	checksum      bool
	fullASCII     bool
	canvas        image.Point
	fallback      image.Point
	textFace      font.Face
	labelFace     font.Face
	logger        *slog.Logger
}

// ComposerOption configures a BarcodeComposer.
type ComposerOption func(*BarcodeComposer)

// WithModuleWidth sets the narrow bar width in pixels.
func WithModuleWidth(px int) ComposerOption {
	return func(c *BarcodeComposer) {
		if px > 0 {
			c.moduleWidth = px
		}
	}
}

// WithBarHeight sets the bar height in pixels.
func WithBarHeight(px int) ComposerOption {
	return func(c *BarcodeComposer) {
		if px > 0 {
			c.barHeight = px
		}
	}
}

// WithQuietZone sets the blank margin on each side, in modules.
func WithQuietZone(modules int) ComposerOption {
	return func(c *BarcodeComposer) {
		if modules >= 0 {
			c.quietZone = modules
		}
	}
}

// WithHumanReadable toggles the payload text line under the bars.
func WithHumanReadable(enabled bool) ComposerOption {
	return func(c *BarcodeComposer) {
		c.humanReadable = enabled
	}
}

// WithChecksum appends the modulo 43 check character.
func WithChecksum(enabled bool) ComposerOption {
	return func(c *BarcodeComposer) {
		c.checksum = enabled
	}
}

// WithFullASCII enables the extended Code 39 character set.
func WithFullASCII(enabled bool) ComposerOption {
	return func(c *BarcodeComposer) {
		c.fullASCII = enabled
	}
}

// WithCanvasSize sets the composite canvas size.
func WithCanvasSize(width, height int) ComposerOption {
	return func(c *BarcodeComposer) {
		if width > 0 && height > 0 {
			c.canvas = image.Pt(width, height)
		}
	}
}

// WithFallbackSize sets the placeholder image size.
func WithFallbackSize(width, height int) ComposerOption {
	return func(c *BarcodeComposer) {
		if width > 0 && height > 0 {
			c.fallback = image.Pt(width, height)
		}
	}
}

// WithTextFace sets the face used for the composite text block.
func WithTextFace(face font.Face) ComposerOption {
	return func(c *BarcodeComposer) {
		if face != nil {
			c.textFace = face
		}
	}
}

// WithComposerLogger sets the logger used to report render failures.
func WithComposerLogger(logger *slog.Logger) ComposerOption {
	return func(c *BarcodeComposer) {
		c.logger = logger
	}
}

// NewBarcodeComposer creates a composer with the default layout.
func NewBarcodeComposer(opts ...ComposerOption) *BarcodeComposer {
	c := &BarcodeComposer{
		moduleWidth:   DefaultModuleWidth,
		barHeight:     DefaultBarHeight,
		quietZone:     DefaultQuietZone,
		humanReadable: true,
		canvas:        image.Pt(DefaultCanvasWidth, DefaultCanvasHeight),
		fallback:      image.Pt(DefaultFallbackWidth, DefaultFallbackHeight),
		labelFace:     basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.textFace == nil {
		c.textFace = defaultTextFace()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// defaultTextFace returns Go Regular at DefaultTextSize, or the basic bitmap
// face if the embedded font cannot be loaded.
func defaultTextFace() font.Face {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    DefaultTextSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// RenderBarcode renders payload as a two-colour image: quiet zones, bars and,
// when enabled, the payload text under the bars.
func (c *BarcodeComposer) RenderBarcode(payload string) (*image.Paletted, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderBarcode(payload)
}

func (c *BarcodeComposer) renderBarcode(payload string) (*image.Paletted, error) {
	if payload == "" {
		return nil, &RenderError{Payload: payload, Stage: "encode", Err: ErrEmptyPayload}
	}
	bc, err := code39.Encode(payload, c.checksum, c.fullASCII)
	if err != nil {
		return nil, &RenderError{Payload: payload, Stage: "encode", Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
	}

	modules := bc.Bounds().Dx()
	width := (modules + 2*c.quietZone) * c.moduleWidth
	height := barPadding + c.barHeight + barPadding
	if c.humanReadable {
		height += c.labelFace.Metrics().Height.Ceil() + barPadding
	}
	if err := checkCanvas(width, height); err != nil {
		return nil, &RenderError{Payload: payload, Stage: "canvas", Err: err}
	}

	img := image.NewPaletted(image.Rect(0, 0, width, height), barcodePalette)
	left := c.quietZone * c.moduleWidth
	for m := range modules {
		if !isDark(bc.At(m, 0)) {
			continue
		}
		x0 := left + m*c.moduleWidth
		for y := barPadding; y < barPadding+c.barHeight; y++ {
			for x := x0; x < x0+c.moduleWidth; x++ {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	if c.humanReadable {
		d := &font.Drawer{Dst: img, Src: image.Black, Face: c.labelFace}
		textWidth := d.MeasureString(payload).Ceil()
		baseline := barPadding + c.barHeight + barPadding + c.labelFace.Metrics().Ascent.Ceil()
		d.Dot = fixed.P((width-textWidth)/2, baseline)
		d.DrawString(payload)
	}
	return img, nil
}

// RenderComposite draws caption in the upper text block of a fixed-size white
// canvas and the barcode centred below it. Bars that extend past the canvas are
// clipped; the symbol itself is never shortened.
func (c *BarcodeComposer) RenderComposite(payload, caption string) (*image.NRGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bars, err := c.renderBarcode(payload)
	if err != nil {
		return nil, err
	}
	if err := checkCanvas(c.canvas.X, c.canvas.Y); err != nil {
		return nil, &RenderError{Payload: payload, Stage: "canvas", Err: err}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, c.canvas.X, c.canvas.Y))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	block := image.Rect(textBlockX, textBlockY, textBlockX+textBlockWidth, textBlockY+textBlockHeight).Intersect(canvas.Bounds())
	if sub, ok := canvas.SubImage(block).(*image.NRGBA); ok && !block.Empty() {
		c.drawText(sub, caption)
	}

	bw := bars.Bounds().Dx()
	at := image.Pt(c.canvas.X/2-bw/2, barcodeTop)
	draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(bars.Bounds().Size())}, bars, image.Point{}, draw.Src)
	return canvas, nil
}

// drawText writes caption into dst line by line, wrapping words to dst's width.
// Text past the bottom of dst is clipped.
func (c *BarcodeComposer) drawText(dst *image.NRGBA, caption string) {
	bounds := dst.Bounds()
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: c.textFace}
	metrics := c.textFace.Metrics()
	lineHeight := metrics.Height.Ceil()
	maxWidth := bounds.Dx() - 2*textBlockPad

	y := bounds.Min.Y + textBlockPad + metrics.Ascent.Ceil()
	for _, line := range wrapText(d, caption, maxWidth) {
		if y-metrics.Ascent.Ceil() >= bounds.Max.Y {
			return
		}
		d.Dot = fixed.P(bounds.Min.X+textBlockPad, y)
		d.DrawString(line)
		y += lineHeight
	}
}

// wrapText splits text on newlines, then greedily fills each line with words
// that fit in maxWidth pixels. A single word wider than maxWidth gets its own line.
func wrapText(d *font.Drawer, text string, maxWidth int) []string {
	var out []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if d.MeasureString(candidate).Ceil() > maxWidth {
				out = append(out, line)
				line = w
				continue
			}
			line = candidate
		}
		out = append(out, line)
	}
	return out
}

// Barcode returns the barcode-only PNG (1-bit palette).
func (c *BarcodeComposer) Barcode(payload string) ([]byte, error) {
	img, err := c.RenderBarcode(payload)
	if err != nil {
		return nil, err
	}
	return encodePNG(payload, img)
}

// Composite returns the composite PNG.
func (c *BarcodeComposer) Composite(payload, caption string) ([]byte, error) {
	img, err := c.RenderComposite(payload, caption)
	if err != nil {
		return nil, err
	}
	return encodePNG(payload, img)
}

// Compose renders the barcode-only image when caption is empty and the
// composite image otherwise. Failures are *RenderError.
func (c *BarcodeComposer) Compose(payload, caption string) ([]byte, error) {
	if caption == "" {
		return c.Barcode(payload)
	}
	return c.Composite(payload, caption)
}

// ComposeOrFallback is Compose with failures logged and replaced by the
// blank placeholder image.
func (c *BarcodeComposer) ComposeOrFallback(payload, caption string) []byte {
	out, err := c.Compose(payload, caption)
	if err == nil {
		return out
	}
	c.logger.Error("barcode rendering failed", "payload", payload, "error", err)
	return c.FallbackPNG()
}

// Fallback returns the blank, fully transparent placeholder image.
func (c *BarcodeComposer) Fallback() *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, c.fallback.X, c.fallback.Y))
}

// FallbackPNG returns the placeholder image as PNG.
func (c *BarcodeComposer) FallbackPNG() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.Fallback()); err != nil {
		c.logger.Error("placeholder encoding failed", "error", err)
		return nil
	}
	return buf.Bytes()
}

// Size returns the composite canvas size.
func (c *BarcodeComposer) Size() image.Point {
	return c.canvas
}

func encodePNG(payload string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &RenderError{Payload: payload, Stage: "encode png", Err: err}
	}
	return buf.Bytes(), nil
}

func checkCanvas(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if width > maxCanvasPixels/height {
		return errors.New("canvas too large")
	}
	return nil
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return (r+g+b)/3 < 0x8000
}
