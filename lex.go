package formula

import (
	"strconv"

	"github.com/pkg/errors"
)

type lexToken struct {
	text string
	kind tokenKind
	// pos is the rune offset of the token in the source.
	pos int
	// num is the value of a tokenNum.
	num float64
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

// describe names the token for error messages.
func (t lexToken) describe() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenNum:
		return "number " + t.text
	case tokenIdent:
		return "identifier " + t.text
	default:
		return strconv.Quote(t.text)
	}
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF ends every token sequence exactly once.
	tokenEOF
	// tokenNum is a numeric literal.
	tokenNum
	// tokenIdent is a variable, constant, or function name.
	tokenIdent
	// tokenPunct is an operator symbol or one of ( ) , ? :.
	tokenPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenEOF:
		return "EOF"
	case tokenNum:
		return "Num"
	case tokenIdent:
		return "Ident"
	case tokenPunct:
		return "Punct"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// maxOpLen is the longest operator symbol the tokenizer will try to match.
const maxOpLen = 4

// tokenize scans all of src. The result always ends with a single tokenEOF.
// Operator symbols are resolved against reg, so the same text may split
// differently under different registries.
func tokenize(src string, reg *Registry) ([]lexToken, error) {
	s := []rune(src)
	toks := make([]lexToken, 0, len(s)/2+1)
	for i := 0; i < len(s); {
		r := s[i]
		switch classify(r) {
		case charSpace:
			i++
		case charDigit:
			start := i
			// A lone "." right before the digits is a decimal point.
			if n := len(toks); n > 0 {
				last := toks[n-1]
				if last.kind == tokenPunct && last.text == "." && last.pos == i-1 {
					toks = toks[:n-1]
					start = i - 1
				}
			}
			tok, err := scanNum(s, start)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = start + len([]rune(tok.text))
		case charAlpha:
			j := i + 1
			for j < len(s) && (classify(s[j]) == charAlpha || classify(s[j]) == charDigit) {
				j++
			}
			toks = append(toks, lexToken{text: string(s[i:j]), kind: tokenIdent, pos: i})
			i = j
		case charPunct:
			j := i + 1
			for j < len(s) && classify(s[j]) == charPunct {
				j++
			}
			for i < j {
				n := longestOp(reg, s[i:j])
				toks = append(toks, lexToken{text: string(s[i : i+n]), kind: tokenPunct, pos: i})
				i += n
			}
		default:
			return nil, &TokenizeError{Offset: i, Text: string(r), Char: r}
		}
	}
	toks = append(toks, lexToken{kind: tokenEOF, pos: len(s)})
	return toks, nil
}

// longestOp returns the length of the longest operator symbol at the start of
// run, or 1 if no operator matches.
func longestOp(reg *Registry, run []rune) int {
	n := len(run)
	if n > maxOpLen {
		n = maxOpLen
	}
	for ; n > 1; n-- {
		if reg.isOperator(string(run[:n])) {
			return n
		}
	}
	return 1
}

// scanNum scans a numeric literal starting at s[start], which is either a
// digit or a decimal point followed by a digit.
func scanNum(s []rune, start int) (lexToken, error) {
	isdigit := func(k int) bool { return k < len(s) && classify(s[k]) == charDigit }
	j := start
	for isdigit(j) {
		j++
	}
	if j < len(s) && s[j] == '.' && isdigit(j+1) {
		j++
		for isdigit(j) {
			j++
		}
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if !isdigit(k) {
			end := k
			if end < len(s) {
				end++
			}
			return lexToken{}, &TokenizeError{Offset: start, Text: string(s[start:end]), Kind: "number"}
		}
		for isdigit(k) {
			k++
		}
		j = k
	}
	if j < len(s) && classify(s[j]) == charAlpha {
		return lexToken{}, &TokenizeError{Offset: start, Text: string(s[start : j+1]), Kind: "number"}
	}
	text := string(s[start:j])
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		// The scanner only accepts strings ParseFloat understands.
		panic("formula: unparsed number " + strconv.Quote(text) + ": " + err.Error())
	}
	return lexToken{text: text, kind: tokenNum, pos: start, num: v}, nil
}

// lexer is a cursor over a token sequence.
type lexer struct {
	toks []lexToken
	i    int
}

func lex(src string, reg *Registry) (*lexer, error) {
	toks, err := tokenize(src, reg)
	if err != nil {
		return nil, err
	}
	return &lexer{toks: toks}, nil
}

// next scans the next token. Past the end, the result is the EOF token.
func (l *lexer) next() lexToken {
	t := l.peek()
	l.i++
	return t
}

// peek returns the next token without consuming it.
func (l *lexer) peek() lexToken {
	if l.i >= len(l.toks) {
		return l.toks[len(l.toks)-1]
	}
	return l.toks[l.i]
}

// push unreads the last token returned from next. Panics if nothing has been
// read.
func (l *lexer) push() {
	if l.i == 0 {
		panic("formula: push before next")
	}
	l.i--
}
