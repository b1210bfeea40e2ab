package formula

import "strconv"

// TokenizeError indicates text that cannot be split into tokens: an invalid
// character or a malformed numeric literal. It implements InputError.
type TokenizeError struct {
	// Offset is the rune offset of the invalid character or the start of the
	// malformed literal.
	Offset int
	// Text is the invalid character or the literal scanned so far, including
	// the rune that made it invalid.
	Text string
	// Char is the invalid character. It is zero for malformed literals.
	Char rune
	// Kind is "number" for malformed literals and empty otherwise.
	Kind string
}

func (err *TokenizeError) Error() string {
	if err.Kind == "" {
		return errpos(err.Offset, "invalid character "+strconv.QuoteRune(err.Char))
	}
	return errpos(err.Offset, "malformed "+err.Kind+" literal "+strconv.Quote(err.Text))
}

func (err *TokenizeError) Pos() int {
	return err.Offset
}

// SyntaxError indicates a token sequence that does not form an expression.
// It implements InputError.
type SyntaxError struct {
	// Offset is the position of the token the parser could not accept.
	Offset int
	// Token is the text of that token. It is empty at end of input.
	Token string
	// Msg describes the problem.
	Msg string
}

func (err *SyntaxError) Error() string {
	return errpos(err.Offset, err.Msg)
}

func (err *SyntaxError) Pos() int {
	return err.Offset
}

// unexpected creates a SyntaxError for a token the parser cannot use here.
func unexpected(tok lexToken, want string) *SyntaxError {
	msg := "unexpected " + tok.describe()
	if want != "" {
		msg += ", expected " + want
	}
	return &SyntaxError{Offset: tok.pos, Token: tok.text, Msg: msg}
}

// SemanticError indicates a well-formed expression that uses a name wrongly:
// an unknown function, a function used as a value or a value called as a
// function, a call with the wrong number of arguments, a variable that is not
// allowed, or a bad variable list for positional compilation. It implements
// InputError.
type SemanticError struct {
	// Offset is the position of the name in the source, or -1 when the error
	// is not tied to a position.
	Offset int
	// Name is the offending identifier.
	Name string
	// Msg describes the problem.
	Msg string
}

func (err *SemanticError) Error() string {
	return errpos(err.Offset, err.Msg)
}

func (err *SemanticError) Pos() int {
	return err.Offset
}

// RegistrationError indicates a rejected change to a Registry. Its position is
// always -1.
type RegistrationError struct {
	// Name is the definition name, possibly empty.
	Name string
	// Msg describes the problem.
	Msg string
	// Err holds the individual problems when a definition fails validation.
	Err error
}

func (err *RegistrationError) Error() string {
	s := "cannot register " + strconv.Quote(err.Name) + ": " + err.Msg
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

func (err *RegistrationError) Pos() int {
	return -1
}

func (err *RegistrationError) Unwrap() error {
	return err.Err
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	if pos < 0 {
		return msg
	}
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input or a rejected registration implements InputError.
type InputError interface {
	error
	// Pos returns the rune offset of the token that caused the error, or -1
	// if the error has no source position.
	Pos() int
}

var (
	_ InputError = (*TokenizeError)(nil)
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*SemanticError)(nil)
	_ InputError = (*RegistrationError)(nil)
)
