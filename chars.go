package formula

// charClass is the lexical class of a character.
type charClass int8

const (
	charInvalid charClass = iota
	charSpace
	charAlpha
	charDigit
	charPunct
)

// chartab classifies the ASCII range. Zero entries are invalid.
var chartab = [128]charClass{
	' ': charSpace, '\t': charSpace, '\n': charSpace, '\v': charSpace, '\f': charSpace, '\r': charSpace,

	'!': charPunct, '%': charPunct, '&': charPunct, '(': charPunct, ')': charPunct,
	'*': charPunct, '+': charPunct, ',': charPunct, '-': charPunct, '.': charPunct,
	'/': charPunct, ':': charPunct, ';': charPunct, '<': charPunct, '=': charPunct,
	'>': charPunct, '?': charPunct, '[': charPunct, ']': charPunct, '^': charPunct,
	'{': charPunct, '|': charPunct, '}': charPunct, '~': charPunct,

	'0': charDigit, '1': charDigit, '2': charDigit, '3': charDigit, '4': charDigit,
	'5': charDigit, '6': charDigit, '7': charDigit, '8': charDigit, '9': charDigit,

	'_': charAlpha,
	'A': charAlpha, 'B': charAlpha, 'C': charAlpha, 'D': charAlpha, 'E': charAlpha,
	'F': charAlpha, 'G': charAlpha, 'H': charAlpha, 'I': charAlpha, 'J': charAlpha,
	'K': charAlpha, 'L': charAlpha, 'M': charAlpha, 'N': charAlpha, 'O': charAlpha,
	'P': charAlpha, 'Q': charAlpha, 'R': charAlpha, 'S': charAlpha, 'T': charAlpha,
	'U': charAlpha, 'V': charAlpha, 'W': charAlpha, 'X': charAlpha, 'Y': charAlpha,
	'Z': charAlpha,
	'a': charAlpha, 'b': charAlpha, 'c': charAlpha, 'd': charAlpha, 'e': charAlpha,
	'f': charAlpha, 'g': charAlpha, 'h': charAlpha, 'i': charAlpha, 'j': charAlpha,
	'k': charAlpha, 'l': charAlpha, 'm': charAlpha, 'n': charAlpha, 'o': charAlpha,
	'p': charAlpha, 'q': charAlpha, 'r': charAlpha, 's': charAlpha, 't': charAlpha,
	'u': charAlpha, 'v': charAlpha, 'w': charAlpha, 'x': charAlpha, 'y': charAlpha,
	'z': charAlpha,
}

func classify(r rune) charClass {
	if r < 0 || int(r) >= len(chartab) {
		return charInvalid
	}
	return chartab[r]
}

// isIdent reports whether s is a valid identifier.
func isIdent(s string) bool {
	for i, r := range s {
		switch classify(r) {
		case charAlpha:
		case charDigit:
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}
