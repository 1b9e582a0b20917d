// Package highlight classifies WebAssembly Text tokens for display.
//
// The grammar is a static table in the shape of a Monarch tokenizer: a keyword
// list, an operator list, bracket pairs and an ordered rule list. At each
// position the first rule that matches wins; text no rule claims is Plain.
package highlight

import (
	"regexp"
	"strings"
)

// Class is the category assigned to a token.
type Class int

const (
	Plain Class = iota
	Keyword
	String
	Number
	Comment
	Operator
	Bracket
)

var classNames = [...]string{
	Plain:    "",
	Keyword:  "keyword",
	String:   "string",
	Number:   "number",
	Comment:  "comment",
	Operator: "operator",
	Bracket:  "delimiter.parenthesis",
}

// String returns the token name used by editor themes.
func (c Class) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// BracketPair describes matching delimiters.
type BracketPair struct {
	Open  string
	Close string
	Token string
}

// Rule maps a pattern to a class. Patterns are anchored at the current
// position; WordStart rules only apply when the previous byte is not a word
// character, emulating a leading \b against the whole line.
type Rule struct {
	Pattern   *regexp.Regexp
	Class     Class
	WordStart bool
}

// Grammar is a token-classification table.
type Grammar struct {
	DefaultToken string
	TokenPostfix string
	Keywords     []string
	Operators    []string
	Brackets     []BracketPair
	Rules        []Rule
}

// IsKeyword reports whether word is in the keyword list.
func (g *Grammar) IsKeyword(word string) bool {
	for _, k := range g.Keywords {
		if k == word {
			return true
		}
	}
	return false
}

// IsOperator reports whether op is in the operator list.
func (g *Grammar) IsOperator(op string) bool {
	for _, o := range g.Operators {
		if o == op {
			return true
		}
	}
	return false
}

var watKeywords = []string{
	"module", "func", "param", "result",
	"i32", "i64", "f32", "f64",
	"export", "import", "memory", "data", "global", "local", "table", "type",
	"elem", "start", "offset",
	"loop", "block", "if", "else", "then", "end",
	"call", "call_indirect",
	"get_local", "set_local", "tee_local", "get_global", "set_global",
	"br", "br_if", "return", "unreachable", "nop", "drop", "select",
	"externref",
}

var watOperators = []string{
	"+", "-", "*", "/", "%", "&&", "||", "!",
	"==", "!=", "<", "<=", ">", ">=",
}

func anchored(expr string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + expr + `)`)
}

func newWAT() *Grammar {
	return &Grammar{
		DefaultToken: "",
		TokenPostfix: ".wat",
		Keywords:     watKeywords,
		Operators:    watOperators,
		Brackets:     []BracketPair{{Open: "(", Close: ")", Token: "delimiter.parenthesis"}},
		Rules: []Rule{
			{Pattern: anchored(`(` + strings.Join(watKeywords, "|") + `)\b`), Class: Keyword, WordStart: true},
			{Pattern: anchored(`".*?"`), Class: String},
			{Pattern: anchored(`\d+(\.\d+)?\b`), Class: Number, WordStart: true},
			{Pattern: anchored(`;;.*$`), Class: Comment},
			{Pattern: anchored(`[+\-*/%=!<>|&]+`), Class: Operator},
			{Pattern: anchored(`[()]`), Class: Bracket},
		},
	}
}

// WAT is the grammar for WebAssembly Text source.
var WAT = newWAT()
