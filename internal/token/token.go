package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // add, foobar, x, y, ...
	NUMBER = "NUMBER" // 1343456, 3.14
	STRING = "STRING" // "foobar"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	EQ     = "=="
	NOT_EQ = "!="

	ARROW       = "->"
	PIPE        = "->>"
	TILDE_ARROW = "~>"
	RANGE       = ".."
	REPEAT      = "?:"
	CARET       = "^"
	HASH        = "#"
	AT          = "@"

	// Delimiters
	PERIOD       = "."
	COMMA        = ","
	SEMICOLON    = ";"
	COLON        = ":"
	DOUBLE_COLON = "::"

	LPAREN = "("
	RPAREN = ")"
	LBRACE = "{"
	RBRACE = "}"

	// Keywords
	LET      = "LET"
	CONST    = "CONST"
	IMMUT    = "IMMUT"
	FUNCTION = "FUNCTION"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	IF       = "IF"
	ELSE     = "ELSE"
	ONCE     = "ONCE"
	FOR      = "FOR"
	BLOCK    = "BLOCK"
	USE      = "USE"
	NATIVE   = "NATIVE"
	ENUM     = "ENUM"
	LAYOUT   = "LAYOUT"
	MIX      = "MIX"
	TIED     = "TIED"
	EXP      = "EXP"
	TYPEOF   = "TYPEOF"
	NUL      = "NUL"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

var keywords = map[string]TokenType{
	// constants
	"true":  TRUE,
	"false": FALSE,

	// declarations
	"let":    LET,
	"const":  CONST,
	"immut":  IMMUT,
	"fn":     FUNCTION,
	"enum":   ENUM,
	"layout": LAYOUT,
	"mix":    MIX,
	"tied":   TIED,
	"exp":    EXP,
	"nul":    NUL,

	// flow control
	"if":    IF,
	"else":  ELSE,
	"once":  ONCE,
	"for":   FOR,
	"block": BLOCK,

	// modules
	"use":    USE,
	"native": NATIVE,

	"typeof": TYPEOF,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
