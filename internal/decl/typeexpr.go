package decl

import (
	"fmt"
	"strings"
	"unicode"

	"cinder/internal/types"
)

// ParseType resolves a fixture type expression to an interned TypeID.
//
// Grammar:
//
//	type    := prim '?'*
//	prim    := 'unit' | 'bool' | 'int' | 'float' | 'string' | 'buffer'
//	         | '(' [type (',' type)*] ')'
//	         | 'ref' IDENT
//	         | 'box' type
//	         | 'inout' type
//	         | 'opaque' IDENT
//	         | 'metatype' type
//	         | 'dynself'
//	         | ('fn' | 'block') '(' [type (',' type)*] ')' ['->' type]
func ParseType(in *types.Interner, src string) (types.TypeID, error) {
	p := &typeParser{in: in, toks: tokenizeType(src)}
	id, err := p.parseType()
	if err != nil {
		return types.NoTypeID, fmt.Errorf("decl: parse type %q: %w", src, err)
	}
	if p.pos != len(p.toks) {
		return types.NoTypeID, fmt.Errorf("decl: parse type %q: trailing %q", src, p.toks[p.pos])
	}
	return id, nil
}

type typeParser struct {
	in   *types.Interner
	toks []string
	pos  int
}

func tokenizeType(src string) []string {
	var toks []string
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == ')' || c == ',' || c == '?':
			toks = append(toks, string(c))
			i++
		case c == '-' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, "->")
			i += 2
		default:
			j := i
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_') {
				j++
			}
			if j == i {
				toks = append(toks, string(c))
				i++
				continue
			}
			toks = append(toks, src[i:j])
			i = j
		}
	}
	return toks
}

func (p *typeParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *typeParser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *typeParser) expect(tok string) error {
	if got := p.next(); got != tok {
		return fmt.Errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *typeParser) parseType() (types.TypeID, error) {
	id, err := p.parsePrim()
	if err != nil {
		return types.NoTypeID, err
	}
	for p.peek() == "?" {
		p.next()
		id = p.in.Intern(types.MakeOptional(id))
	}
	return id, nil
}

func (p *typeParser) parsePrim() (types.TypeID, error) {
	b := p.in.Builtins()
	switch tok := p.next(); tok {
	case "unit":
		return b.Unit, nil
	case "bool":
		return b.Bool, nil
	case "int":
		return b.Int, nil
	case "float":
		return b.Float, nil
	case "string":
		return b.String, nil
	case "buffer":
		return b.UnsafeBuffer, nil
	case "(":
		return p.parseTuple()
	case "ref":
		name := p.next()
		if !isIdent(name) {
			return types.NoTypeID, fmt.Errorf("ref: expected class name, got %q", name)
		}
		inst := p.in.RegisterOpaque(name, 0)
		return p.in.Intern(types.MakeRef(inst)), nil
	case "box":
		elem, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Intern(types.MakeBox(elem)), nil
	case "inout":
		elem, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Intern(types.MakeInOut(elem)), nil
	case "opaque":
		name := p.next()
		if !isIdent(name) {
			return types.NoTypeID, fmt.Errorf("opaque: expected name, got %q", name)
		}
		return p.in.RegisterOpaque(name, 0), nil
	case "metatype":
		inst, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Intern(types.MakeMetatype(inst, false)), nil
	case "dynself":
		self := p.in.RegisterOpaque("Self", 0)
		return p.in.Intern(types.MakeMetatype(self, true)), nil
	case "fn", "block":
		return p.parseFunc(tok == "block")
	default:
		return types.NoTypeID, fmt.Errorf("unexpected token %q", tok)
	}
}

func (p *typeParser) parseTuple() (types.TypeID, error) {
	if p.peek() == ")" {
		p.next()
		return p.in.Builtins().Unit, nil
	}
	var elems []types.TypeID
	for {
		elem, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		elems = append(elems, elem)
		if p.peek() != "," {
			break
		}
		p.next()
	}
	if err := p.expect(")"); err != nil {
		return types.NoTypeID, err
	}
	if len(elems) == 1 {
		// Parenthesized type, not a tuple.
		return elems[0], nil
	}
	return p.in.RegisterTuple(elems), nil
}

func (p *typeParser) parseFunc(block bool) (types.TypeID, error) {
	if err := p.expect("("); err != nil {
		return types.NoTypeID, err
	}
	var params []types.TypeID
	for p.peek() != ")" {
		param, err := p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
		params = append(params, param)
		if p.peek() == "," {
			p.next()
		}
	}
	p.next() // ")"
	result := p.in.Builtins().Unit
	if p.peek() == "->" {
		p.next()
		var err error
		result, err = p.parseType()
		if err != nil {
			return types.NoTypeID, err
		}
	}
	rep := types.RepThick
	if block {
		rep = types.RepBlock
	}
	return p.in.RegisterFunc(params, result, rep), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return !strings.ContainsAny(s, "(),?")
}
