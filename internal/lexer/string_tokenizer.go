package lexer

import (
	"mosa/internal/token"
	"strings"
)

type StringTokenizer struct {
	lexer *Lexer
}

func NewStringTokenizer(lexer *Lexer) *StringTokenizer {
	return &StringTokenizer{lexer: lexer}
}

func (s *StringTokenizer) NextToken() token.Token {
	var result strings.Builder
	// position of the opening quote
	startPosition := s.lexer.position - 1

	// the opening `"` has already been read
	for {
		if s.lexer.ch == 0 {
			s.lexer.switchMode(NewGeneralTokenizer(s.lexer))
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Position: startPosition}
		}

		if s.lexer.ch == '"' {
			s.lexer.readChar() // Consume the closing `"`
			break
		}

		if s.lexer.ch == '\\' {
			s.lexer.readChar() // Move to the escaped character
			switch s.lexer.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			case '"':
				result.WriteRune('"')
			default:
				result.WriteRune('\\')
				result.WriteRune(s.lexer.ch)
			}
		} else {
			result.WriteRune(s.lexer.ch)
		}

		s.lexer.readChar()
	}

	s.lexer.switchMode(NewGeneralTokenizer(s.lexer))

	return token.Token{
		Type:     token.STRING,
		Literal:  result.String(),
		Position: startPosition,
	}
}
