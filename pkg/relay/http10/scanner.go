package http10

// tokenType classifies one lexeme out of a header blob.
type tokenType int

const (
	tokName tokenType = iota
	tokColon
	// tokCRLF matches "\r\n", and bare "\n" too.
	tokCRLF
	// tokBlanks matches a run of spaces/tabs.
	tokBlanks
	tokEOF
	tokError
	// tokCustom is returned only by skipWhile.
	tokCustom
)

type token struct {
	lexeme []byte
	typ    tokenType
}

// scanner tokenizes a buffered header blob the same way the recursive-
// descent parser below consumes it: byte classes for name characters,
// URI-graphic characters, and CRLF-vs-everything-else.
type scanner struct {
	src []byte
	at  int
}

func newScanner(src []byte) scanner { return scanner{src: src} }

func isNameChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '-'
}

func isURIChar(c byte) bool {
	// isgraph(3): any printable character except space.
	return c > ' ' && c < 0x7f
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

func isNotCRLF(c byte) bool { return c != '\r' && c != '\n' }

func (s *scanner) getc() (byte, bool) {
	if s.at == len(s.src) {
		return 0, false
	}
	c := s.src[s.at]
	s.at++
	return c, true
}

func (s *scanner) peekc() (byte, bool) {
	if s.at == len(s.src) {
		return 0, false
	}
	return s.src[s.at], true
}

func (s *scanner) ungetc() {
	if s.at > 0 {
		s.at--
	}
}

// skipWhile consumes characters matching predicate and returns the span
// covered, without classifying it beyond tokCustom.
func (s *scanner) skipWhile(predicate func(byte) bool) token {
	start := s.at
	for {
		c, ok := s.getc()
		if !ok || !predicate(c) {
			if ok {
				s.ungetc()
			}
			break
		}
	}
	return token{typ: tokCustom, lexeme: s.src[start:s.at]}
}

func (s *scanner) skipBlanks() { s.skipWhile(isBlank) }

// next returns the next token in the stream.
func (s *scanner) next() token {
	start := s.at
	c, ok := s.getc()
	if !ok {
		return token{typ: tokEOF, lexeme: s.src[start:s.at]}
	}

	switch {
	case c == ':':
		return token{typ: tokColon, lexeme: s.src[start:s.at]}
	case c == '\n':
		return token{typ: tokCRLF, lexeme: s.src[start:s.at]}
	case c == '\r':
		if p, ok := s.peekc(); ok && p == '\n' {
			s.getc()
		}
		return token{typ: tokCRLF, lexeme: s.src[start:s.at]}
	case isBlank(c):
		tok := s.skipWhile(isBlank)
		tok.typ = tokBlanks
		tok.lexeme = s.src[start:s.at]
		return tok
	case isNameChar(c):
		tok := s.skipWhile(isNameChar)
		tok.typ = tokName
		tok.lexeme = s.src[start:s.at]
		return tok
	default:
		return token{typ: tokError, lexeme: s.src[start:s.at]}
	}
}

// skipWhileTok behaves like skipWhile but starting fresh from the current
// position, matching scanner_skip_while's role of producing a token the
// parser inspects directly (used for the URI and header-value spans that
// are not simple token classes).
func (s *scanner) skipWhileTok(predicate func(byte) bool) token {
	return s.skipWhile(predicate)
}
