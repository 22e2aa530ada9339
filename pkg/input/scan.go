package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SyntaxError reports a malformed token or a premature end of input.
type SyntaxError struct {
	Line int // 1-based; 0 when the input ended early
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return "syntax error at end of input: " + e.Msg
	}
	return fmt.Sprintf("syntax error on line %d: %s", e.Line, e.Msg)
}

type token struct {
	text string
	line int
}

// tokenizer splits whitespace-separated tokens and drops '#' comments.
type tokenizer struct {
	toks []token
	pos  int
}

func tokenize(r io.Reader) (*tokenizer, error) {
	t := &tokenizer{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, f := range strings.Fields(text) {
			t.toks = append(t.toks, token{text: f, line: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return t, nil
}

func (t *tokenizer) next(what string) (token, error) {
	if t.pos >= len(t.toks) {
		return token{}, &SyntaxError{Msg: "expected " + what}
	}
	tok := t.toks[t.pos]
	t.pos++
	return tok, nil
}

func (t *tokenizer) int(what string) (int, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok.text)
	if err != nil {
		return 0, &SyntaxError{Line: tok.line, Msg: fmt.Sprintf("%s: %q is not an integer", what, tok.text)}
	}
	return v, nil
}

func (t *tokenizer) float(what string) (float64, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil {
		return 0, &SyntaxError{Line: tok.line, Msg: fmt.Sprintf("%s: %q is not a number", what, tok.text)}
	}
	return v, nil
}

// remaining is the number of unread tokens. Declared counts are never
// trusted beyond it when preallocating.
func (t *tokenizer) remaining() int {
	return len(t.toks) - t.pos
}

// done fails if tokens remain.
func (t *tokenizer) done() error {
	if t.pos < len(t.toks) {
		tok := t.toks[t.pos]
		return &SyntaxError{Line: tok.line, Msg: fmt.Sprintf("unexpected trailing token %q", tok.text)}
	}
	return nil
}
