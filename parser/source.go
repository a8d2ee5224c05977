package parser

// charSource is the indexed input of the tokenizer. The cursor only moves
// forward; reconsuming is the tokenizer's job, not the source's.
type charSource struct {
	input []rune
	pos   int
}

func newCharSource(html string) *charSource {
	return &charSource{input: []rune(html)}
}

// consume returns the rune under the cursor and advances. Once the input is
// used up it reports eof and moves the cursor past the end, after which
// isExhausted holds.
func (s *charSource) consume() (rune, bool) {
	if s.pos >= len(s.input) {
		s.pos = len(s.input) + 1
		return 0, true
	}
	r := s.input[s.pos]
	s.pos++
	return s.normalizeNewlines(r), false
}

// peek returns the rune under the cursor without advancing.
func (s *charSource) peek() (rune, bool) {
	if s.pos >= len(s.input) {
		return 0, false
	}
	return s.input[s.pos], true
}

func (s *charSource) isExhausted() bool {
	return s.pos > len(s.input)
}

// CR and CRLF both become a single LF.
func (s *charSource) normalizeNewlines(r rune) rune {
	if r != '\u000D' {
		return r
	}
	if next, ok := s.peek(); ok && next == '\u000A' {
		s.pos++
	}
	return '\u000A'
}
