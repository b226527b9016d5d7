package text

import "fmt"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokEOF    TokenKind = iota
	TokDot              // .
	TokLParen           // (
	TokRParen           // )
	TokEq               // = or ==
	TokNeq              // != or <>
	TokGt               // >
	TokGte              // >=
	TokLt               // <
	TokLte              // <=
	TokMinus            // -
	TokIdent            // identifier
	TokString           // "string literal" or 'string literal'
	TokNumber           // 42, 3.14
	TokAnd              // and
	TokOr               // or
	TokNot              // not
	TokLike             // like
)

// Token is a single lexical token produced by the lexer.
type Token struct {
	Kind TokenKind
	Lit  string // raw text of the token; unescaped contents for strings
	Pos  int    // rune offset in input
}

func (t Token) String() string {
	if t.Lit != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Lit)
	}
	return t.Kind.String()
}

var kindNames = map[TokenKind]string{
	TokEOF:    "EOF",
	TokDot:    ".",
	TokLParen: "(",
	TokRParen: ")",
	TokEq:     "=",
	TokNeq:    "!=",
	TokGt:     ">",
	TokGte:    ">=",
	TokLt:     "<",
	TokLte:    "<=",
	TokMinus:  "-",
	TokIdent:  "identifier",
	TokString: "string",
	TokNumber: "number",
	TokAnd:    "AND",
	TokOr:     "OR",
	TokNot:    "NOT",
	TokLike:   "LIKE",
}

func (k TokenKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// keywords are matched case-insensitively.
var keywords = map[string]TokenKind{
	"and":  TokAnd,
	"or":   TokOr,
	"not":  TokNot,
	"like": TokLike,
}
