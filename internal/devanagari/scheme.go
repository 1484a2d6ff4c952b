package devanagari

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme identifies a Roman transliteration convention.
type Scheme string

const (
	ITRANS       Scheme = "itrans"
	HarvardKyoto Scheme = "hk"
	IAST         Scheme = "iast"
)

// Schemes lists every supported scheme in the order variants are generated.
var Schemes = []Scheme{ITRANS, HarvardKyoto, IAST}

var (
	ErrUnknownScheme = errors.New("unknown transliteration scheme")
	ErrUnsupported   = errors.New("input not supported by scheme")
)

// ParseScheme accepts a scheme name case-insensitively, including the
// spelled-out "harvard-kyoto".
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "itrans":
		return ITRANS, nil
	case "hk", "harvard-kyoto", "harvardkyoto":
		return HarvardKyoto, nil
	case "iast":
		return IAST, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

func (s Scheme) String() string {
	return string(s)
}

// index returns the column of s in the conversion tables.
func (s Scheme) index() (int, bool) {
	switch s {
	case ITRANS:
		return 0, true
	case HarvardKyoto:
		return 1, true
	case IAST:
		return 2, true
	default:
		return 0, false
	}
}
