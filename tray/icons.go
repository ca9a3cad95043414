// Package tray maps the cached component status to the tray icon.
// This file contains generation of the fixed per-color icon assets.
package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/yllada/leaf-vpn/common"
)

type symbol int

const (
	symbolLock symbol = iota
	symbolCheck
	symbolCross
	symbolBang
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size        int
	FillColor   color.RGBA
	BorderColor color.RGBA
	AccentColor color.RGBA
	SymbolColor color.RGBA
	symbol      symbol
}

// IconConfigFor returns the shield palette used for c.
func IconConfigFor(c Color) IconConfig {
	white := color.RGBA{255, 255, 255, 255}
	switch c {
	case Green:
		return IconConfig{
			Size:        common.TrayIconSize,
			FillColor:   color.RGBA{56, 142, 60, 255},
			BorderColor: color.RGBA{76, 175, 80, 255},
			AccentColor: color.RGBA{200, 230, 201, 255},
			SymbolColor: white,
			symbol:      symbolCheck,
		}
	case Red:
		return IconConfig{
			Size:        common.TrayIconSize,
			FillColor:   color.RGBA{198, 40, 40, 255},
			BorderColor: color.RGBA{229, 57, 53, 255},
			AccentColor: color.RGBA{255, 205, 210, 255},
			SymbolColor: white,
			symbol:      symbolCross,
		}
	case Yellow:
		return IconConfig{
			Size:        common.TrayIconSize,
			FillColor:   color.RGBA{249, 168, 37, 255},
			BorderColor: color.RGBA{253, 216, 53, 255},
			AccentColor: color.RGBA{255, 249, 196, 255},
			SymbolColor: color.RGBA{66, 66, 66, 255},
			symbol:      symbolBang,
		}
	default:
		return IconConfig{
			Size:        common.TrayIconSize,
			FillColor:   color.RGBA{117, 117, 117, 255},
			BorderColor: color.RGBA{158, 158, 158, 255},
			AccentColor: color.RGBA{189, 189, 189, 255},
			SymbolColor: white,
			symbol:      symbolLock,
		}
	}
}

// IconGenerator renders a shield icon as PNG.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() ([]byte, error) {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawShield(img)
	switch g.config.symbol {
	case symbolCheck:
		g.plot(img, checkPoints)
	case symbolCross:
		g.plot(img, crossPoints)
	case symbolBang:
		g.plot(img, bangPoints)
	default:
		g.drawLock(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *IconGenerator) drawShield(img *image.RGBA) {
	size := g.config.Size
	centerX := float64(size) / 2
	topY := 1.0
	bottomY := float64(size) - 2
	shieldWidth := float64(size) - 4

	inside := func(x, y float64) bool {
		relY := (y - topY) / (bottomY - topY)
		if relY < 0 || relY > 1 {
			return false
		}
		var halfWidth float64
		if relY < 0.5 {
			halfWidth = shieldWidth/2 - relY*0.5
		} else {
			progress := (relY - 0.5) * 2
			halfWidth = (shieldWidth/2 - 0.25) * (1 - progress*progress)
		}
		return x >= centerX-halfWidth && x <= centerX+halfWidth
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if !inside(fx, fy) {
				continue
			}
			switch {
			case !inside(fx-1, fy) || !inside(fx+1, fy) || !inside(fx, fy-1) || !inside(fx, fy+1):
				img.Set(x, y, g.config.BorderColor)
			case float64(y)/float64(size) < 0.3:
				img.Set(x, y, g.config.AccentColor)
			default:
				img.Set(x, y, g.config.FillColor)
			}
		}
	}
}

type point struct{ x, y int }

var (
	checkPoints = []point{
		{6, 11}, {7, 11}, {7, 12}, {8, 12}, {8, 13}, {9, 13},
		{9, 12}, {10, 12}, {10, 11}, {11, 11}, {11, 10}, {12, 10},
		{12, 9}, {13, 9}, {13, 8}, {14, 8},
	}
	crossPoints = []point{
		{7, 7}, {8, 8}, {9, 9}, {10, 10}, {11, 11}, {12, 12}, {13, 13},
		{13, 7}, {12, 8}, {11, 9}, {9, 11}, {8, 12}, {7, 13},
	}
	bangPoints = []point{
		{10, 5}, {11, 5}, {10, 6}, {11, 6}, {10, 7}, {11, 7},
		{10, 8}, {11, 8}, {10, 9}, {11, 9}, {10, 10}, {11, 10},
		{10, 13}, {11, 13}, {10, 14}, {11, 14},
	}
)

func (g *IconGenerator) plot(img *image.RGBA, points []point) {
	for _, p := range points {
		if p.x >= 0 && p.x < g.config.Size && p.y >= 0 && p.y < g.config.Size {
			img.Set(p.x, p.y, g.config.SymbolColor)
		}
	}
}

func (g *IconGenerator) drawLock(img *image.RGBA) {
	c := g.config.SymbolColor

	for y := 10; y <= 15; y++ {
		for x := 8; x <= 14; x++ {
			if y == 10 || y == 15 || x == 8 || x == 14 {
				img.Set(x, y, c)
			}
		}
	}
	for y := 6; y <= 8; y++ {
		img.Set(9, y, c)
		img.Set(13, y, c)
	}
	for x := 9; x <= 13; x++ {
		img.Set(x, 6, c)
	}
}

var (
	assetsOnce sync.Once
	assets     map[Color][]byte
	assetsErr  error
)

// Asset returns the PNG bytes of the icon for c. Assets are rendered once
// and reused for the lifetime of the process.
func Asset(c Color) ([]byte, error) {
	assetsOnce.Do(func() {
		assets = make(map[Color][]byte, 4)
		for _, col := range []Color{Grey, Green, Red, Yellow} {
			data, err := NewIconGenerator(IconConfigFor(col)).Generate()
			if err != nil {
				assetsErr = fmt.Errorf("render %s icon: %w", col, err)
				return
			}
			assets[col] = data
		}
	})
	if assetsErr != nil {
		return nil, assetsErr
	}
	data, ok := assets[c]
	if !ok {
		return nil, fmt.Errorf("%w: no asset for %s", common.ErrIconDecode, c)
	}
	return data, nil
}

// Icon is a decoded tray icon.
type Icon struct {
	Color  Color
	PNG    []byte
	Bitmap *image.RGBA
}

// LoadIcon decodes the asset for c into an RGBA bitmap.
func LoadIcon(c Color) (Icon, error) {
	data, err := Asset(c)
	if err != nil {
		return Icon{}, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return Icon{}, fmt.Errorf("%w: %v", common.ErrIconDecode, err)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	return Icon{Color: c, PNG: data, Bitmap: rgba}, nil
}
