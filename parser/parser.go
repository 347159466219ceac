// Package parser implements a recursive-descent parser with
// precedence-climbed expression parsing over the token stream the lexer
// produces.  It has a single token of lookahead and aborts with an *Error
// on the first violation; there is no error recovery.
package parser

import (
	"github.com/skx/math-compiler/ast"
	"github.com/skx/math-compiler/lexer"
	"github.com/skx/math-compiler/token"
)

// Parser holds the one-token lookahead cursor over the lexer's output.
type Parser struct {
	lex *lexer.Lexer

	curr token.Token
	peek token.Token
}

// New creates a Parser over the given مُعرّب source text.
func New(input string) (*Parser, error) {
	p := &Parser{lex: lexer.New(input)}

	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// advance shifts the lookahead window forward by one token.
func (p *Parser) advance() error {
	p.curr = p.peek
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) expect(kind token.Kind, what string) (token.Token, error) {
	if p.curr.Kind != kind {
		return token.Token{}, &Error{Expected: what, Found: p.curr, Pos: p.curr.Pos}
	}
	tok := p.curr
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// ParseProgram parses the whole input as `FuncDef+ EOF`.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}

	for p.curr.Kind != token.EOF {
		fn, err := p.parseFuncDef()
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, fn)
	}

	if len(prog.Funcs) == 0 {
		return nil, &Error{Expected: "at least one function definition", Found: p.curr, Pos: p.curr.Pos}
	}

	return prog, nil
}

// parseFuncDef parses `FUNC IDENT LPAREN Params? RPAREN Block`.
func (p *Parser) parseFuncDef() (*ast.FuncDef, error) {
	pos := p.curr.Pos
	if _, err := p.expect(token.FUNC, "'دالة'"); err != nil {
		return nil, err
	}

	nameTok, err := p.expect(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}

	var params []string
	if p.curr.Kind != token.RPAREN {
		for {
			paramTok, err := p.expect(token.IDENT, "parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, paramTok.Lexeme)
			if p.curr.Kind != token.COMMA {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.FuncDef{Name: nameTok.Lexeme, Params: params, Body: body, Pos: pos}, nil
}

// parseBlock parses `LBRACE Statement* RBRACE`.
func (p *Parser) parseBlock() (*ast.Block, error) {
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}

	block := &ast.Block{}
	for p.curr.Kind != token.RBRACE {
		if p.curr.Kind == token.EOF {
			return nil, &Error{Expected: "'}'", Found: p.curr, Pos: p.curr.Pos}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}

	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseStatement dispatches on the current token's kind.
func (p *Parser) parseStatement() (*ast.Stmt, error) {
	switch p.curr.Kind {
	case token.VAR:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.PRINT:
		return p.parsePrint()
	case token.IDENT:
		if p.peek.Kind == token.ASSIGN {
			return p.parseAssign()
		}
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseVarDecl() (*ast.Stmt, error) {
	pos := p.curr.Pos
	if _, err := p.expect(token.VAR, "'متغير'"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "'؛'"); err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.VarDecl, Name: nameTok.Lexeme, Expr: expr, Pos: pos}, nil
}

func (p *Parser) parseAssign() (*ast.Stmt, error) {
	pos := p.curr.Pos
	nameTok, err := p.expect(token.IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "'؛'"); err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.Assign, Name: nameTok.Lexeme, Expr: expr, Pos: pos}, nil
}

func (p *Parser) parseIf() (*ast.Stmt, error) {
	pos := p.curr.Pos
	if _, err := p.expect(token.IF, "'اذا'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBlock *ast.Block
	if p.curr.Kind == token.ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	return &ast.Stmt{Kind: ast.If, Cond: cond, Then: then, Else: elseBlock, Pos: pos}, nil
}

func (p *Parser) parseWhile() (*ast.Stmt, error) {
	pos := p.curr.Pos
	if _, err := p.expect(token.WHILE, "'بينما'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.While, Cond: cond, Then: body, Pos: pos}, nil
}

func (p *Parser) parseReturn() (*ast.Stmt, error) {
	pos := p.curr.Pos
	if _, err := p.expect(token.RETURN, "'ارجع'"); err != nil {
		return nil, err
	}

	var expr *ast.Expr
	if p.curr.Kind != token.SEMI {
		var err error
		expr, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.SEMI, "'؛'"); err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.Return, Expr: expr, Pos: pos}, nil
}

func (p *Parser) parsePrint() (*ast.Stmt, error) {
	pos := p.curr.Pos
	if _, err := p.expect(token.PRINT, "'اطبع'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "'؛'"); err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.Print, Expr: expr, Pos: pos}, nil
}

func (p *Parser) parseExprStmt() (*ast.Stmt, error) {
	pos := p.curr.Pos
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "'؛'"); err != nil {
		return nil, err
	}
	return &ast.Stmt{Kind: ast.ExprStmt, Expr: expr, Pos: pos}, nil
}

// parseExpr is the grammar's `Expr := Comparison` entry point.
func (p *Parser) parseExpr() (*ast.Expr, error) {
	return p.parseComparison()
}

var comparisonOps = map[token.Kind]ast.BinOp{
	token.EQ:  ast.OpEq,
	token.NEQ: ast.OpNeq,
	token.LT:  ast.OpLt,
	token.GT:  ast.OpGt,
	token.LE:  ast.OpLe,
	token.GE:  ast.OpGe,
}

// parseComparison implements left-associative chaining of comparison
// operators: `a < b < c` parses as `(a < b) < c`.  This matches spec
// behavior and is intentionally not redesigned.
func (p *Parser) parseComparison() (*ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := comparisonOps[p.curr.Kind]
		if !ok {
			return left, nil
		}
		pos := p.curr.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Expr{Kind: ast.BinaryOp, Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *Parser) parseAdditive() (*ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.curr.Kind == token.PLUS || p.curr.Kind == token.MINUS {
		op := ast.OpAdd
		if p.curr.Kind == token.MINUS {
			op = ast.OpSub
		}
		pos := p.curr.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Expr{Kind: ast.BinaryOp, Op: op, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (*ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.curr.Kind == token.STAR || p.curr.Kind == token.SLASH {
		op := ast.OpMul
		if p.curr.Kind == token.SLASH {
			op = ast.OpDiv
		}
		pos := p.curr.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Expr{Kind: ast.BinaryOp, Op: op, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

func (p *Parser) parseUnary() (*ast.Expr, error) {
	if p.curr.Kind == token.MINUS {
		pos := p.curr.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.UnaryMinus, Left: operand, Pos: pos}, nil
	}
	return p.parsePrimary()
}

// parsePrimary implements `NUMBER | IDENT ( LPAREN Args? RPAREN )? | LPAREN Expr RPAREN`.
func (p *Parser) parsePrimary() (*ast.Expr, error) {
	pos := p.curr.Pos

	switch p.curr.Kind {
	case token.NUMBER:
		val := p.curr.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.IntLiteral, IntValue: val, Pos: pos}, nil

	case token.IDENT:
		name := p.curr.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curr.Kind != token.LPAREN {
			return &ast.Expr{Kind: ast.Identifier, Name: name, Pos: pos}, nil
		}

		if err := p.advance(); err != nil { // consume '('
			return nil, err
		}
		var args []*ast.Expr
		if p.curr.Kind != token.RPAREN {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.curr.Kind != token.COMMA {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.Call, Name: name, Args: args, Pos: pos}, nil

	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, &Error{Expected: "expression", Found: p.curr, Pos: pos}
	}
}
