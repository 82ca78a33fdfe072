package expr

type TokenKind int

const (
	TokenNone TokenKind = iota // whitespace, recognized but never stored
	TokenEqual
	TokenNotEqual
	TokenPlus
	TokenMinus
	TokenNegate
	TokenMultiply
	TokenDeref
	TokenDivide
	TokenModulo
	TokenLeftParen
	TokenRightParen
	TokenLogicalNot
	TokenBitXor
	TokenBitAnd
	TokenBitOr
	TokenBitNot
	TokenShiftLeft
	TokenShiftRight
	TokenLogicalAnd
	TokenLogicalOr
	TokenLess
	TokenLessEqual
	TokenGreater
	TokenGreaterEqual
	TokenHex
	TokenBinary
	TokenDecimal
	TokenRegister
	TokenVariable
)

var tokenKindNames = map[TokenKind]string{
	TokenNone:         "space",
	TokenEqual:        "==",
	TokenNotEqual:     "!=",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenNegate:       "neg",
	TokenMultiply:     "*",
	TokenDeref:        "deref",
	TokenDivide:       "/",
	TokenModulo:       "%",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLogicalNot:   "!",
	TokenBitXor:       "^",
	TokenBitAnd:       "&",
	TokenBitOr:        "|",
	TokenBitNot:       "~",
	TokenShiftLeft:    "<<",
	TokenShiftRight:   ">>",
	TokenLogicalAnd:   "&&",
	TokenLogicalOr:    "||",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenHex:          "hex",
	TokenBinary:       "bin",
	TokenDecimal:      "dec",
	TokenRegister:     "reg",
	TokenVariable:     "var",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// carriesText reports whether tokens of this kind keep the matched text.
func (k TokenKind) carriesText() bool {
	switch k {
	case TokenHex, TokenBinary, TokenDecimal, TokenRegister, TokenVariable:
		return true
	}
	return false
}

// isOperand reports whether a token of this kind can end an operand, which
// decides if a following '-' or '*' is binary.
func (k TokenKind) isOperand() bool {
	return k.carriesText() || k == TokenRightParen
}

type Token struct {
	Kind TokenKind
	Text string // only set for literal, register and variable tokens
	Pos  int    // byte offset in the expression where the token starts
}

// Limits bounds the size of a token sequence and of any token text.
type Limits struct {
	MaxTokens    int
	MaxTokenText int
}

var DefaultLimits = Limits{
	MaxTokens:    32,
	MaxTokenText: 31,
}

func (l Limits) withDefaults() Limits {
	if l.MaxTokens <= 0 {
		l.MaxTokens = DefaultLimits.MaxTokens
	}
	if l.MaxTokenText <= 0 {
		l.MaxTokenText = DefaultLimits.MaxTokenText
	}
	return l
}

// TokenSequence is the ordered output of the tokenizer. It never grows past
// the capacity it was created with.
type TokenSequence struct {
	tokens   []Token
	capacity int
}

func newTokenSequence(capacity int) TokenSequence {
	return TokenSequence{tokens: make([]Token, 0, capacity), capacity: capacity}
}

func (s *TokenSequence) push(tok Token) error {
	if len(s.tokens) >= s.capacity {
		return Errors.TooManyTokens(tok.Pos, s.capacity)
	}
	s.tokens = append(s.tokens, tok)
	return nil
}

func (s TokenSequence) Len() int {
	return len(s.tokens)
}

func (s TokenSequence) At(i int) Token {
	return s.tokens[i]
}

func (s TokenSequence) Cap() int {
	return s.capacity
}

// last returns the most recently accepted token, if any.
func (s TokenSequence) last() (Token, bool) {
	if len(s.tokens) == 0 {
		return Token{}, false
	}
	return s.tokens[len(s.tokens)-1], true
}

// Kinds lists the kind of each token, mostly useful for tests and traces.
func (s TokenSequence) Kinds() []TokenKind {
	kinds := make([]TokenKind, len(s.tokens))
	for i, tok := range s.tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}
