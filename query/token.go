// Package query implements the SQL front-end and the operator pipeline.
//
// A statement moves through three stages: the lexer tokenizes it, the parser
// builds an AST, and the planner turns the AST into a tree of operators that
// execute against a catalog of columnar tables. The package includes the
// expression evaluator with SQL three-valued logic.
//
// Example usage:
//
//	stmt, err := query.Parse("select name from pokemon where id > 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plan, err := query.BuildPlan(stmt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := plan.Execute(&query.ExecContext{Catalog: catalog})
package query

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenNot
	TokenNull
	TokenAs
	TokenGroup
	TokenBy
	TokenHaving
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenOffset
	TokenDistinct
	TokenIs
	TokenJoin
	TokenInner
	TokenLeft
	TokenOuter
	TokenOn
	TokenCreate
	TokenTable
	TokenCopy
	TokenTo

	// Operators
	TokenEqual        // =
	TokenNotEqual     // <> or !=
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )
	TokenSemicolon  // ;

	// Special
	TokenEOF
	TokenError
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
}

// tokenNames maps token types to display names for error messages.
var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenNull:         "NULL",
	TokenAs:           "AS",
	TokenGroup:        "GROUP",
	TokenBy:           "BY",
	TokenHaving:       "HAVING",
	TokenOrder:        "ORDER",
	TokenAsc:          "ASC",
	TokenDesc:         "DESC",
	TokenLimit:        "LIMIT",
	TokenOffset:       "OFFSET",
	TokenDistinct:     "DISTINCT",
	TokenIs:           "IS",
	TokenJoin:         "JOIN",
	TokenInner:        "INNER",
	TokenLeft:         "LEFT",
	TokenOuter:        "OUTER",
	TokenOn:           "ON",
	TokenCreate:       "CREATE",
	TokenTable:        "TABLE",
	TokenCopy:         "COPY",
	TokenTo:           "TO",
	TokenEqual:        "=",
	TokenNotEqual:     "<>",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenString:       "string literal",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenComma:        ",",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenSemicolon:    ";",
	TokenEOF:          "end of statement",
	TokenError:        "invalid token",
}

// String returns a display name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown token"
}
