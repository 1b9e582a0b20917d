package highlight

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Token is a classified span of a single line.
type Token struct {
	Text  string
	Class Class
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// Tokenize classifies one line of source. Adjacent plain text is merged.
func (g *Grammar) Tokenize(line string) []Token {
	var tokens []Token
	plainStart := -1

	flushPlain := func(end int) {
		if plainStart >= 0 {
			tokens = append(tokens, Token{Text: line[plainStart:end], Class: Plain})
			plainStart = -1
		}
	}

	for pos := 0; pos < len(line); {
		matched := false
		for _, r := range g.Rules {
			if r.WordStart && pos > 0 && isWordByte(line[pos-1]) {
				continue
			}
			loc := r.Pattern.FindStringIndex(line[pos:])
			if loc == nil || loc[1] == 0 {
				continue
			}
			flushPlain(pos)
			tokens = append(tokens, Token{Text: line[pos : pos+loc[1]], Class: r.Class})
			pos += loc[1]
			matched = true
			break
		}
		if matched {
			continue
		}
		if plainStart < 0 {
			plainStart = pos
		}
		_, size := utf8.DecodeRuneInString(line[pos:])
		pos += size
	}
	flushPlain(len(line))
	return tokens
}

// Theme assigns a style to each class. Classes without an entry render as-is.
type Theme map[Class]lipgloss.Style

// DefaultTheme follows a dark editor palette.
var DefaultTheme = Theme{
	Keyword:  lipgloss.NewStyle().Foreground(lipgloss.Color("#569CD6")),
	String:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CE9178")),
	Number:   lipgloss.NewStyle().Foreground(lipgloss.Color("#B5CEA8")),
	Comment:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6A9955")).Italic(true),
	Operator: lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D4")),
	Bracket:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
}

// Render colourises multi-line source.
func (g *Grammar) Render(source string, theme Theme) string {
	lines := strings.Split(source, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, tok := range g.Tokenize(line) {
			if style, ok := theme[tok.Class]; ok {
				b.WriteString(style.Render(tok.Text))
			} else {
				b.WriteString(tok.Text)
			}
		}
	}
	return b.String()
}
