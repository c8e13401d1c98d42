package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vegasq/csvql/table"
)

// Parser parses SQL statements into AST nodes
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return fmt.Errorf("expected %v, got %v %q", tokType, p.current().Type, p.current().Value)
	}
	p.advance()
	return nil
}

// Parse parses a single SQL statement
func Parse(input string) (Statement, error) {
	tokens := Tokenize(input)
	parser := NewParser(tokens)

	stmt, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}

	// Optional trailing semicolon, then the statement must be fully consumed.
	if parser.current().Type == TokenSemicolon {
		parser.advance()
	}
	if parser.current().Type == TokenError {
		return nil, &UnsupportedSyntaxError{Token: parser.current().Value}
	}
	if parser.current().Type != TokenEOF {
		return nil, &UnsupportedSyntaxError{Token: parser.current().Value}
	}

	return stmt, nil
}

// parseStatement dispatches on the leading keyword
func (p *Parser) parseStatement() (Statement, error) {
	switch p.current().Type {
	case TokenSelect:
		return p.parseSelect()
	case TokenCreate:
		return p.parseCreateTable()
	case TokenCopy:
		return p.parseCopy()
	default:
		return nil, &UnsupportedSyntaxError{Token: p.current().Value}
	}
}

// parseSelect parses: SELECT [DISTINCT] list FROM table [alias] [JOIN ...]
// [WHERE expr] [GROUP BY cols] [HAVING expr] [ORDER BY ...] [LIMIT n [OFFSET m]]
func (p *Parser) parseSelect() (*SelectStmt, error) {
	if err := p.expect(TokenSelect); err != nil {
		return nil, err
	}

	stmt := &SelectStmt{}

	if p.current().Type == TokenDistinct {
		stmt.Distinct = true
		p.advance()
	}

	items, err := p.parseSelectList()
	if err != nil {
		return nil, fmt.Errorf("failed to parse SELECT list: %w", err)
	}
	stmt.Items = items

	if err := p.expect(TokenFrom); err != nil {
		return nil, fmt.Errorf("expected FROM after SELECT list: %w", err)
	}

	from, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	for p.current().Type == TokenJoin || p.current().Type == TokenInner || p.current().Type == TokenLeft {
		join, err := p.parseJoin()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JOIN: %w", err)
		}
		stmt.Joins = append(stmt.Joins, *join)
	}

	if p.current().Type == TokenWhere {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = expr
	}

	if p.current().Type == TokenGroup {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, fmt.Errorf("expected BY after GROUP: %w", err)
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = cols
	}

	if p.current().Type == TokenHaving {
		if len(stmt.GroupBy) == 0 && !HasAggregate(stmt.Items) {
			return nil, &UnsupportedSyntaxError{Token: "HAVING"}
		}
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = expr
	}

	if p.current().Type == TokenOrder {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, fmt.Errorf("expected BY after ORDER: %w", err)
		}
		orderBy, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = orderBy
	}

	if p.current().Type == TokenLimit {
		p.advance()
		limit, err := p.parseIntValue("LIMIT")
		if err != nil {
			return nil, err
		}
		stmt.Limit = &limit

		if p.current().Type == TokenOffset {
			p.advance()
			offset, err := p.parseIntValue("OFFSET")
			if err != nil {
				return nil, err
			}
			stmt.Offset = &offset
		}
	}

	return stmt, nil
}

// parseSelectList parses the comma-separated SELECT items
func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem

	for {
		var item SelectItem

		if p.current().Type == TokenStar {
			item.Expr = &ColumnRef{Name: "*"}
			p.advance()
		} else {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item.Expr = expr

			// Optional alias: AS name or a bare identifier.
			if p.current().Type == TokenAs {
				p.advance()
				if p.current().Type != TokenIdent {
					return nil, fmt.Errorf("expected alias after AS, got %q", p.current().Value)
				}
				item.Alias = p.current().Value
				p.advance()
			} else if p.current().Type == TokenIdent {
				item.Alias = p.current().Value
				p.advance()
			}
		}

		items = append(items, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	return items, nil
}

// parseTableRef parses a table name with an optional alias
func (p *Parser) parseTableRef() (TableRef, error) {
	if p.current().Type != TokenIdent {
		return TableRef{}, fmt.Errorf("expected table name, got %q", p.current().Value)
	}
	ref := TableRef{Name: p.current().Value}
	p.advance()

	if p.current().Type == TokenAs {
		p.advance()
	}
	if p.current().Type == TokenIdent {
		ref.Alias = p.current().Value
		p.advance()
	}

	return ref, nil
}

// parseJoin parses: [INNER] JOIN table [alias] ON col = col
// and LEFT [OUTER] JOIN table [alias] ON col = col.
// Only equi-joins on a single column pair are supported.
func (p *Parser) parseJoin() (*JoinClause, error) {
	joinType := JoinInner

	switch p.current().Type {
	case TokenInner:
		p.advance()
	case TokenLeft:
		joinType = JoinLeftOuter
		p.advance()
		if p.current().Type == TokenOuter {
			p.advance()
		}
	}

	if err := p.expect(TokenJoin); err != nil {
		return nil, err
	}

	ref, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenOn); err != nil {
		return nil, fmt.Errorf("expected ON after JOIN table: %w", err)
	}

	if p.current().Type != TokenIdent {
		return nil, &UnsupportedSyntaxError{Token: p.current().Value}
	}
	leftKey := p.current().Value
	p.advance()

	if p.current().Type != TokenEqual {
		return nil, &UnsupportedSyntaxError{Token: p.current().Value}
	}
	p.advance()

	if p.current().Type != TokenIdent {
		return nil, &UnsupportedSyntaxError{Token: p.current().Value}
	}
	rightKey := p.current().Value
	p.advance()

	return &JoinClause{Type: joinType, Table: ref, LeftKey: leftKey, RightKey: rightKey}, nil
}

// parseIdentList parses a comma-separated list of identifiers
func (p *Parser) parseIdentList() ([]string, error) {
	var names []string
	for {
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected column name, got %q", p.current().Value)
		}
		names = append(names, p.current().Value)
		p.advance()

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return names, nil
}

// parseOrderBy parses the ORDER BY column list
func (p *Parser) parseOrderBy() ([]OrderByItem, error) {
	var items []OrderByItem
	for {
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected column name in ORDER BY, got %q", p.current().Value)
		}
		item := OrderByItem{Column: p.current().Value}
		p.advance()

		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			item.Desc = true
			p.advance()
		}
		items = append(items, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return items, nil
}

// parseIntValue parses a non-negative integer for LIMIT/OFFSET
func (p *Parser) parseIntValue(clause string) (int64, error) {
	if p.current().Type != TokenNumber {
		return 0, fmt.Errorf("expected number after %s, got %q", clause, p.current().Value)
	}
	n, err := strconv.ParseInt(p.current().Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s value %q is not an integer", clause, p.current().Value)
	}
	p.advance()
	return n, nil
}

// parseCreateTable parses: CREATE TABLE name (col TYPE, ...)
// and CREATE TABLE name AS SELECT ...
func (p *Parser) parseCreateTable() (*CreateTableStmt, error) {
	if err := p.expect(TokenCreate); err != nil {
		return nil, err
	}
	if err := p.expect(TokenTable); err != nil {
		return nil, fmt.Errorf("expected TABLE after CREATE: %w", err)
	}
	if p.current().Type != TokenIdent {
		return nil, fmt.Errorf("expected table name, got %q", p.current().Value)
	}
	stmt := &CreateTableStmt{Name: p.current().Value}
	p.advance()

	if p.current().Type == TokenAs {
		p.advance()
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.As = sel
		return stmt, nil
	}

	if err := p.expect(TokenLeftParen); err != nil {
		return nil, fmt.Errorf("expected column list after table name: %w", err)
	}

	for {
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected column name, got %q", p.current().Value)
		}
		name := p.current().Value
		p.advance()

		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected column type for %q, got %q", name, p.current().Value)
		}
		typ, err := typeFromName(p.current().Value)
		if err != nil {
			return nil, err
		}
		p.advance()

		stmt.Columns = append(stmt.Columns, ColumnDef{Name: name, Type: typ})

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return stmt, nil
}

// typeFromName maps a SQL type name onto an engine type
func typeFromName(name string) (table.Type, error) {
	switch strings.ToLower(name) {
	case "integer", "int", "bigint":
		return table.TypeInteger, nil
	case "float", "double", "real":
		return table.TypeFloat, nil
	case "text", "varchar", "string":
		return table.TypeString, nil
	case "boolean", "bool":
		return table.TypeBoolean, nil
	default:
		return table.TypeNull, &UnsupportedSyntaxError{Token: name}
	}
}

// parseCopy parses:
//
//	COPY name FROM 'path' [(option value, ...)]
//	COPY name TO 'path' [(option value, ...)]
//	COPY (SELECT ...) TO 'path' [(option value, ...)]
func (p *Parser) parseCopy() (*CopyStmt, error) {
	if err := p.expect(TokenCopy); err != nil {
		return nil, err
	}

	stmt := &CopyStmt{}

	if p.current().Type == TokenLeftParen {
		p.advance()
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		stmt.Query = sel
	} else {
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected table name after COPY, got %q", p.current().Value)
		}
		stmt.Table = p.current().Value
		p.advance()
	}

	switch p.current().Type {
	case TokenFrom:
		if stmt.Query != nil {
			return nil, &UnsupportedSyntaxError{Token: "FROM"}
		}
		p.advance()
	case TokenTo:
		stmt.To = true
		p.advance()
	default:
		return nil, fmt.Errorf("expected FROM or TO in COPY, got %q", p.current().Value)
	}

	if p.current().Type != TokenString {
		return nil, fmt.Errorf("expected quoted file path, got %q", p.current().Value)
	}
	stmt.Path = p.current().Value
	p.advance()

	if p.current().Type == TokenLeftParen {
		opts, err := p.parseCopyOptions()
		if err != nil {
			return nil, err
		}
		stmt.Options = opts
	}

	return stmt, nil
}

// parseCopyOptions parses the parenthesized COPY option list
func (p *Parser) parseCopyOptions() (CopyOptions, error) {
	opts := CopyOptions{}

	if err := p.expect(TokenLeftParen); err != nil {
		return opts, err
	}

	for {
		if p.current().Type != TokenIdent {
			return opts, fmt.Errorf("expected COPY option name, got %q", p.current().Value)
		}
		key := strings.ToLower(p.current().Value)
		p.advance()

		switch key {
		case "format":
			if p.current().Type != TokenIdent {
				return opts, fmt.Errorf("expected format name, got %q", p.current().Value)
			}
			format := strings.ToLower(p.current().Value)
			if format != "csv" && format != "json" && format != "parquet" {
				return opts, &UnsupportedSyntaxError{Token: p.current().Value}
			}
			opts.Format = format
			p.advance()
		case "header":
			if p.current().Type != TokenBool {
				return opts, fmt.Errorf("expected true or false for HEADER, got %q", p.current().Value)
			}
			header := strings.EqualFold(p.current().Value, "true")
			opts.Header = &header
			p.advance()
		case "delimiter":
			if p.current().Type != TokenString || len(p.current().Value) != 1 {
				return opts, fmt.Errorf("expected single-character string for DELIMITER, got %q", p.current().Value)
			}
			opts.Delimiter = rune(p.current().Value[0])
			p.advance()
		default:
			return opts, &UnsupportedSyntaxError{Token: key}
		}

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenRightParen); err != nil {
		return opts, err
	}
	return opts, nil
}
