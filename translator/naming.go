package translator

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"
)

const (
	VariablePrefix  = "var"
	TemporaryPrefix = "temp"

	temporaryNameLength = 16
)

// NameGenerator produces identifiers that do not collide with names in use.
type NameGenerator interface {
	// Variable derives a variable name from a pin name.
	Variable(base string, taken func(string) bool) string
	// Temporary returns a compiler-internal name drawn from rng.
	Temporary(rng *rand.Rand, taken func(string) bool) string
}

// DefaultNames prefixes variables with "var" and temporaries with "temp".
type DefaultNames struct{}

// Variable implements NameGenerator. The first candidate carries no suffix;
// later ones count up from 2.
func (DefaultNames) Variable(base string, taken func(string) bool) string {
	base = capitalize(Sanitize(base))
	for i := 1; ; i++ {
		name := VariablePrefix + base
		if i > 1 {
			name += strconv.Itoa(i)
		}
		if !taken(name) {
			return name
		}
	}
}

// Temporary implements NameGenerator.
func (DefaultNames) Temporary(rng *rand.Rand, taken func(string) bool) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	for {
		var sb strings.Builder
		sb.WriteString(TemporaryPrefix)
		for i := len(TemporaryPrefix); i < temporaryNameLength; i++ {
			c := letters[rng.IntN(len(letters))]
			if i == len(TemporaryPrefix) {
				c -= 'a' - 'A'
			}
			sb.WriteByte(c)
		}
		if name := sb.String(); !taken(name) {
			return name
		}
	}
}

var nameReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	"+", "_",
	" ", "_",
	"[", "",
	"]", "Array",
	",", "",
)

// Sanitize turns a pin or parameter name into an identifier fragment.
func Sanitize(name string) string {
	name = nameReplacer.Replace(name)
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
			sb.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
