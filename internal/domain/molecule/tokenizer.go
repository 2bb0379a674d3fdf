package molecule

import (
	"fmt"

	"github.com/turtacn/funcgroup/pkg/errors"
)

// TokenKind classifies a SMILES token.
type TokenKind int

const (
	TokenAtom TokenKind = iota + 1
	TokenBond
	TokenRingDigit
	TokenBranchOpen
	TokenBranchClose
)

func (k TokenKind) String() string {
	switch k {
	case TokenAtom:
		return "atom"
	case TokenBond:
		return "bond"
	case TokenRingDigit:
		return "ring"
	case TokenBranchOpen:
		return "("
	case TokenBranchClose:
		return ")"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of the accepted grammar.  Bracket groups are
// reduced to a single atom token carrying the charge; hydrogen counts and
// chirality marks inside brackets are dropped.
type Token struct {
	Kind TokenKind
	// Pos is the 0-based byte offset of the token in the input.
	Pos int
	// Code is the internal atom code, the bond symbol ('-', '=', '#') or the
	// ring-closure digit.
	Code byte
	// Charge is the formal charge of a bracketed atom.
	Charge int
	// Aromatic is set for atoms written lower-case.
	Aromatic bool
	// Bracketed is set for atoms written inside [...].
	Bracketed bool
	// Atom is the vertex index of an atom token, -1 for other kinds.
	Atom int
}

// IsAtom reports whether the token is an atom with the given internal code.
func (t Token) IsAtom(code byte) bool {
	return t.Kind == TokenAtom && t.Code == code
}

// Symbol returns the vertex symbol for an atom token.
func (t Token) Symbol() string {
	return string(t.Code) + chargeSuffix(t.Charge)
}

func (t Token) String() string {
	switch t.Kind {
	case TokenAtom:
		return ElementSymbol(t.Code) + chargeSuffix(t.Charge)
	case TokenBond, TokenRingDigit:
		return string(t.Code)
	default:
		return t.Kind.String()
	}
}

func syntaxError(smiles string, pos int, msg string) error {
	return errors.New(errors.CodeSMILESSyntax, msg).
		WithDetailf("smiles=%s pos=%d", smiles, pos)
}

// Tokenize splits a host-molecule SMILES string into tokens.  The wildcard
// atom R is rejected.
func Tokenize(smiles string) ([]Token, error) {
	return tokenize(smiles, false)
}

// TokenizePattern is Tokenize for template patterns, which may contain R.
func TokenizePattern(pattern string) ([]Token, error) {
	return tokenize(pattern, true)
}

func tokenize(s string, wildcard bool) ([]Token, error) {
	if s == "" {
		return nil, errors.New(errors.CodeEmptyInput, "SMILES string is empty")
	}

	tokens := make([]Token, 0, len(s))
	atoms := 0
	addAtom := func(t Token) {
		t.Kind = TokenAtom
		t.Atom = atoms
		atoms++
		tokens = append(tokens, t)
	}
	add := func(kind TokenKind, pos int, code byte) {
		tokens = append(tokens, Token{Kind: kind, Pos: pos, Code: code, Atom: -1})
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'C' && i+1 < len(s) && s[i+1] == 'l':
			addAtom(Token{Pos: i, Code: CodeChlorine})
			i++
		case c == 'B' && i+1 < len(s) && s[i+1] == 'r':
			addAtom(Token{Pos: i, Code: CodeBromine})
			i++
		case c == 'B', c == 'C', c == 'N', c == 'O', c == 'P', c == 'S', c == 'F', c == 'I':
			addAtom(Token{Pos: i, Code: c})
		case c >= 'a' && c <= 'z' && aromaticCodes[c-'a'+'A']:
			addAtom(Token{Pos: i, Code: c - 'a' + 'A', Aromatic: true})
		case c == CodeWildcard:
			if !wildcard {
				return nil, syntaxError(s, i, "wildcard atom R is only valid in templates")
			}
			addAtom(Token{Pos: i, Code: CodeWildcard})
		case c == '[':
			t, end, err := scanBracket(s, i)
			if err != nil {
				return nil, err
			}
			addAtom(t)
			i = end
		case c == '(':
			add(TokenBranchOpen, i, c)
		case c == ')':
			add(TokenBranchClose, i, c)
		case c == '=', c == '#', c == '-':
			add(TokenBond, i, c)
		case c == '/', c == '\\':
			// Directional bonds only carry stereo information.
			add(TokenBond, i, '-')
		case c >= '1' && c <= '9':
			add(TokenRingDigit, i, c)
		case c == '%':
			return nil, syntaxError(s, i, "two-digit ring closures are not supported")
		case c == '.':
			return nil, syntaxError(s, i, "disconnected structures are not supported")
		default:
			return nil, syntaxError(s, i, fmt.Sprintf("unexpected character %q", c))
		}
	}
	return tokens, nil
}

// scanBracket parses the bracket group starting at s[start] == '['.  It
// returns the atom token and the offset of the closing ']'.
func scanBracket(s string, start int) (Token, int, error) {
	end := -1
	for j := start + 1; j < len(s); j++ {
		if s[j] == ']' {
			end = j
			break
		}
		if s[j] == '[' {
			break
		}
	}
	if end < 0 {
		return Token{}, 0, syntaxError(s, start, "unclosed bracket atom")
	}

	body := s[start+1 : end]
	tok := Token{Pos: start, Bracketed: true}
	j := 0
	at := func() int { return start + 1 + j }

	if len(body) == 0 {
		return Token{}, 0, syntaxError(s, start, "empty bracket atom")
	}
	if body[0] >= '0' && body[0] <= '9' {
		return Token{}, 0, syntaxError(s, at(), "isotopes are not supported")
	}

	switch {
	case len(body) >= 2 && body[:2] == "Cl":
		tok.Code, j = CodeChlorine, 2
	case len(body) >= 2 && body[:2] == "Br":
		tok.Code, j = CodeBromine, 2
	case len(body) >= 2 && body[:2] == "Si":
		tok.Code, j = CodeSilicon, 2
	case IsKnownCode(body[0]) && body[0] != CodeWildcard && body[0] != CodeChlorine &&
		body[0] != CodeBromine && body[0] != CodeSilicon:
		tok.Code, j = body[0], 1
	case body[0] >= 'a' && body[0] <= 'z' && aromaticCodes[body[0]-'a'+'A']:
		tok.Code, tok.Aromatic, j = body[0]-'a'+'A', true, 1
	default:
		return Token{}, 0, syntaxError(s, at(), fmt.Sprintf("unsupported bracket element %q", body))
	}

	// Chirality is accepted and discarded.
	for j < len(body) && body[j] == '@' {
		j++
	}

	// Explicit hydrogens are reconstructed from valence later.
	if j < len(body) && body[j] == 'H' {
		j++
		for j < len(body) && body[j] >= '0' && body[j] <= '9' {
			j++
		}
	}

	if j < len(body) && (body[j] == '+' || body[j] == '-') {
		sign := body[j]
		n := 1
		j++
		switch {
		case j < len(body) && body[j] >= '1' && body[j] <= '9':
			n = int(body[j] - '0')
			j++
		default:
			for j < len(body) && body[j] == sign {
				n++
				j++
			}
		}
		if sign == '-' {
			n = -n
		}
		tok.Charge = n
	}

	if j != len(body) {
		return Token{}, 0, syntaxError(s, at(), fmt.Sprintf("unexpected %q in bracket atom", body[j]))
	}
	return tok, end, nil
}
