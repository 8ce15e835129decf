package pipeline

import (
	"fmt"
	"strings"
)

// Style selects the composition procedure run by the engine
type Style int

const (
	// StyleNone passes the source through unmodified
	StyleNone Style = iota
	StyleGrayscale
	StyleEtching
	StyleStamp
	StyleComic
)

var styleNames = map[Style]string{
	StyleNone:      "none",
	StyleGrayscale: "grayscale",
	StyleEtching:   "etching",
	StyleStamp:     "stamp",
	StyleComic:     "comic",
}

// Styles lists every style in display order
func Styles() []Style {
	return []Style{StyleNone, StyleGrayscale, StyleEtching, StyleStamp, StyleComic}
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// ParseStyle resolves a style by name, ignoring case. "original" is accepted as an alias of none.
func ParseStyle(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "original" {
		return StyleNone, nil
	}
	for style, styleName := range styleNames {
		if styleName == name {
			return style, nil
		}
	}
	return StyleNone, fmt.Errorf("%w: unknown style %q", ErrInvalidInput, name)
}

// MarshalText implements encoding.TextMarshaler
func (s Style) MarshalText() ([]byte, error) {
	if _, ok := styleNames[s]; !ok {
		return nil, fmt.Errorf("%w: unknown style %d", ErrInvalidInput, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Style) UnmarshalText(text []byte) error {
	style, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = style
	return nil
}
