package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:[A-Za-z]+)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
		{Name: "Symbol", Pattern: `[:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)

	quantityParser = participle.MustBuild[QuantityList](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "Newline"),
	)
)

// File is the root AST node of a label-format definition file:
//
//	format avery-5160 "Avery 5160 Address" {
//	  columns: 3
//	  cell: 2.625in 1in
//	  compatible: "5260" "8160"
//	}
type File struct {
	Formats []*FormatDecl `parser:"Newline* ( @@ Newline* )*"`
}

// FormatDecl declares one label stock.
type FormatDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"'format' @Ident"`
	Name  StringLiteral  `parser:"@String"`
	Props []*Property    `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Property uses colon syntax (key: value value ...).
type Property struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Key    string         `parser:"@Ident ':'"`
	Values []*Value       `parser:"@@+"`
}

// Value is a number (with optional unit suffix), a string or a bare word.
type Value struct {
	Number *string        `parser:"  @Number"`
	String *StringLiteral `parser:"| @String"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the value as written (strings unquoted).
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.Number != nil:
		return *v.Number
	case v.String != nil:
		return string(*v.String)
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Texts joins all values of a property with single spaces.
func (p *Property) Texts() []string {
	out := make([]string, 0, len(p.Values))
	for _, v := range p.Values {
		out = append(out, v.Text())
	}
	return out
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// QuantityList is a whitespace separated list of numbers with unit suffixes.
type QuantityList struct {
	Items []string `parser:"@Number*"`
}

// Quantity is a parsed number token; Unit is the lower-cased suffix ("" if none).
type Quantity struct {
	Value float64
	Unit  string
}

// Parse parses a definition file from an io.Reader.
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString parses a definition file held in memory.
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}

// ParseQuantities parses "8pt 12pt" style input into numbers and units.
func ParseQuantities(input string) ([]Quantity, error) {
	list, err := quantityParser.ParseString("", input)
	if err != nil {
		return nil, err
	}
	out := make([]Quantity, 0, len(list.Items))
	for _, item := range list.Items {
		q, err := SplitQuantity(item)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// SplitQuantity splits a single Number token ("2.625in") into value and unit.
func SplitQuantity(token string) (Quantity, error) {
	idx := strings.IndexFunc(token, unicode.IsLetter)
	num, unit := token, ""
	if idx >= 0 {
		num, unit = token[:idx], strings.ToLower(token[idx:])
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("无效数值 %q: %w", token, err)
	}
	return Quantity{Value: v, Unit: unit}, nil
}
