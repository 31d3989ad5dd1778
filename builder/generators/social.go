package generators

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/spf13/afero"

	"frost/builder/config"
)

const (
	cardWidth  = 1200
	cardHeight = 630

	cardMarginX   = 80.0
	headerY       = 90.0
	titleStartY   = 180.0
	titleFontSize = 80.0
	descFontSize  = 40.0
	iconSize      = 48.0
	brandFontSize = 28.0
	dateFontSize  = 24.0

	fontBold    = "Inter-Bold.ttf"
	fontMedium  = "Inter-Medium.ttf"
	fontRegular = "Inter-Regular.ttf"
)

// CardRenderer draws social share cards using TTF fonts from the
// site's fonts directory. Safe for concurrent Render calls.
type CardRenderer struct {
	srcFs       afero.Fs
	fontsDir    string
	cfg         *config.SocialCardsConfig
	siteTitle   string
	faviconPath string

	fontMu    sync.RWMutex
	fonts     map[string]*truetype.Font
	favicon   image.Image
	favOnce   sync.Once
	available bool
}

// NewCardRenderer prepares a card renderer. When the bold font is
// missing Available reports false and Render refuses to run, so sites
// without bundled fonts freeze cleanly.
func NewCardRenderer(srcFs afero.Fs, fontsDir string, cfg *config.SocialCardsConfig, siteTitle, faviconPath string) *CardRenderer {
	c := &CardRenderer{
		srcFs:       srcFs,
		fontsDir:    fontsDir,
		cfg:         cfg,
		siteTitle:   siteTitle,
		faviconPath: faviconPath,
		fonts:       make(map[string]*truetype.Font),
	}
	if ok, err := afero.Exists(srcFs, filepath.Join(fontsDir, fontBold)); err == nil && ok {
		c.available = true
	}
	return c
}

// Available reports whether the required fonts were found.
func (c *CardRenderer) Available() bool { return c.available }

// Render draws one card and writes it to destPath as lossy WebP.
func (c *CardRenderer) Render(destFs afero.Fs, destPath, title, description, dateStr string) error {
	if !c.available {
		return fmt.Errorf("social card fonts not found in %s", c.fontsDir)
	}

	img, err := c.draw(title, description, dateStr)
	if err != nil {
		return err
	}

	if err := destFs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	f, err := destFs.Create(destPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return webp.Encode(f, img, &webp.Options{Lossless: false, Quality: 85})
}

func (c *CardRenderer) loadFont(name string) (*truetype.Font, error) {
	c.fontMu.RLock()
	if f, ok := c.fonts[name]; ok {
		c.fontMu.RUnlock()
		return f, nil
	}
	c.fontMu.RUnlock()

	c.fontMu.Lock()
	defer c.fontMu.Unlock()
	if f, ok := c.fonts[name]; ok {
		return f, nil
	}

	data, err := afero.ReadFile(c.srcFs, filepath.Join(c.fontsDir, name))
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", name, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	c.fonts[name] = f
	return f, nil
}

func (c *CardRenderer) setFontFace(dc *gg.Context, name string, points float64) error {
	f, err := c.loadFont(name)
	if err != nil {
		return err
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: points, DPI: 72}))
	return nil
}

func (c *CardRenderer) loadFavicon() image.Image {
	c.favOnce.Do(func() {
		if c.faviconPath == "" {
			return
		}
		f, err := c.srcFs.Open(c.faviconPath)
		if err != nil {
			return
		}
		defer func() { _ = f.Close() }()
		if img, _, err := image.Decode(f); err == nil {
			c.favicon = img
		}
	})
	return c.favicon
}

func (c *CardRenderer) draw(title, description, dateStr string) (image.Image, error) {
	dc := gg.NewContext(cardWidth, cardHeight)

	stops := append([]string{c.cfg.Background}, c.cfg.Gradient...)
	drawGradient(dc, cardWidth, cardHeight, stops, c.cfg.Angle)
	drawDotPattern(dc, cardWidth, cardHeight)

	maxWidth := float64(cardWidth) - cardMarginX*2
	textColor := hexToRGBA(c.cfg.TextColor)
	accentColor := hexToRGBA(c.cfg.AccentColor)
	secondary := textColor
	secondary.A = uint8(float64(textColor.A) * 0.75)

	// Header row: favicon, site title, date.
	currentX := cardMarginX
	if im := c.loadFavicon(); im != nil {
		scale := iconSize / float64(im.Bounds().Dx())
		dc.Push()
		dc.Scale(scale, scale)
		dc.DrawImage(im, int(currentX/scale), int((headerY-35)/scale))
		dc.Pop()
		currentX += iconSize + 20
	}
	if err := c.setFontFace(dc, fontBold, brandFontSize); err == nil {
		dc.SetColor(accentColor)
		dc.DrawString(c.siteTitle, currentX, headerY)
	}
	if err := c.setFontFace(dc, fontMedium, dateFontSize); err == nil {
		dc.SetColor(accentColor)
		w, _ := dc.MeasureString(dateStr)
		dc.DrawString(dateStr, float64(cardWidth)-cardMarginX-w, headerY)
	}

	const titleSpacing = 1.1
	if err := c.setFontFace(dc, fontBold, titleFontSize); err != nil {
		return nil, err
	}
	dc.SetColor(textColor)
	dc.DrawStringWrapped(title, cardMarginX, titleStartY, 0, 0, maxWidth, titleSpacing, gg.AlignLeft)

	titleLines := dc.WordWrap(title, maxWidth)
	titleHeight := float64(len(titleLines)) * titleFontSize * titleSpacing

	if err := c.setFontFace(dc, fontRegular, descFontSize); err == nil {
		dc.SetColor(secondary)
		dc.DrawStringWrapped(description, cardMarginX, titleStartY+titleHeight+25, 0, 0, maxWidth, 1.4, gg.AlignLeft)
	}

	return dc.Image(), nil
}

// hexToRGBA parses "#rrggbb"; anything else comes back opaque black.
func hexToRGBA(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{0, 0, 0, 255}
	}
	r, _ := strconv.ParseUint(hex[0:2], 16, 8)
	g, _ := strconv.ParseUint(hex[2:4], 16, 8)
	b, _ := strconv.ParseUint(hex[4:6], 16, 8)
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}

// drawGradient fills the context with a linear gradient across the
// given stops. A single stop paints a solid fill.
func drawGradient(dc *gg.Context, w, h int, stops []string, angle int) {
	if len(stops) < 2 {
		bg := "#faf8f5"
		if len(stops) == 1 {
			bg = stops[0]
		}
		dc.SetColor(hexToRGBA(bg))
		dc.Clear()
		return
	}

	parsed := make([]color.RGBA, len(stops))
	for i, s := range stops {
		parsed[i] = hexToRGBA(s)
	}

	angle = angle % 360
	if angle < 0 {
		angle += 360
	}
	horizontal := angle >= 45 && angle < 135 || angle >= 225 && angle < 315
	steps := w
	if horizontal {
		steps = h
	}

	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		pos := t * float64(len(parsed)-1)
		idx := int(pos)
		next := idx + 1
		if next >= len(parsed) {
			next = len(parsed) - 1
		}
		local := pos - float64(idx)
		c1, c2 := parsed[idx], parsed[next]

		r := uint8(float64(c1.R)*(1-local) + float64(c2.R)*local)
		g := uint8(float64(c1.G)*(1-local) + float64(c2.G)*local)
		b := uint8(float64(c1.B)*(1-local) + float64(c2.B)*local)
		dc.SetRGBA(float64(r)/255, float64(g)/255, float64(b)/255, 1)

		if horizontal {
			dc.DrawRectangle(0, float64(i), float64(w), 1)
		} else {
			dc.DrawRectangle(float64(i), 0, 1, float64(h))
		}
		dc.Fill()
	}
}

// drawDotPattern overlays a faint dot grid.
func drawDotPattern(dc *gg.Context, w, h int) {
	dc.SetRGBA255(120, 100, 80, 70)
	const spacing = 32
	for x := spacing / 2; x < w; x += spacing {
		for y := spacing / 2; y < h; y += spacing {
			dc.DrawCircle(float64(x), float64(y), 2.0)
			dc.Fill()
		}
	}
}
