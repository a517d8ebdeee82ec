package chart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Kind selects how a series is drawn.
type Kind string

const (
	KindLine Kind = "line"
	KindArea Kind = "area"
	KindBar  Kind = "bar"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindLine, KindArea, KindBar}

// ParseKind converts a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLine, KindArea, KindBar:
		return k, nil
	}
	return "", fmt.Errorf("unknown chart kind %q (want line, area or bar)", s)
}

// Config holds the render parameters for one chart.
type Config struct {
	Kind Kind
	// StrokeColor is rgb(r,g,b), rgba(r,g,b,a) or #rrggbb.
	StrokeColor   string
	Width         int
	Height        int
	ShowGridLines bool
	// Format renders label values. Nil prints one decimal place.
	Format func(float64) string
}

// DefaultStroke is used when a config carries no usable color.
var DefaultStroke = drawing.Color{R: 59, G: 130, B: 246, A: 255}

// Validate reports config values that would render incorrectly.
func (c Config) Validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if _, err := ParseColor(c.StrokeColor); err != nil {
		return err
	}
	if c.Width < 0 || c.Height < 0 {
		return errors.New("chart size must not be negative")
	}
	return nil
}

func (c Config) format(v float64) string {
	if c.Format != nil {
		return c.Format(v)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ParseColor accepts rgb(r,g,b), rgba(r,g,b,a) with a in [0,1], #rgb and #rrggbb.
func ParseColor(s string) (drawing.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return drawing.Color{}, fmt.Errorf("unrecognised color %q", s)
}

func parseFunc(body string, want int) (drawing.Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return drawing.Color{}, fmt.Errorf("color %q: expected %d components", body, want)
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return drawing.Color{}, fmt.Errorf("color %q: component %d out of range", body, i+1)
		}
		rgb[i] = uint8(n)
	}
	c := drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return drawing.Color{}, fmt.Errorf("color %q: alpha must be between 0 and 1", body)
		}
		c.A = uint8(a*255 + 0.5)
	}
	return c, nil
}

func parseHex(h string) (drawing.Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return drawing.Color{}, fmt.Errorf("hex color #%s must have 3 or 6 digits", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("hex color #%s: %w", h, err)
	}
	return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
