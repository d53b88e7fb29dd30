package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdCodeBlockRe  = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	mdHeadingRe    = regexp.MustCompile(`<h([1-3]) id="[^"]*">(.*?)</h[1-3]>`)
	mdStrongRe     = regexp.MustCompile(`<strong>(.*?)</strong>`)
	mdEmRe         = regexp.MustCompile(`<em>(.*?)</em>`)
	mdInlineCodeRe = regexp.MustCompile(`<code>([^<]+)</code>`)
	mdBlockquoteRe = regexp.MustCompile(`(?s)<blockquote>(.*?)</blockquote>`)
	mdListRe       = regexp.MustCompile(`(?s)<(ul|ol)>(.*?)</(?:ul|ol)>`)
	mdItemRe       = regexp.MustCompile(`<li>(.*?)</li>`)
	mdTagRe        = regexp.MustCompile(`<[^>]+>`)
	mdBlankRunsRe  = regexp.MustCompile(`\n{3,}`)
)

// ScriptRenderer turns the assistant's markdown (scene headings, dialogue
// blocks, fenced excerpts) into styled terminal text.
type ScriptRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	codeStyle *chroma.Style
	theme     Theme
}

func NewScriptRenderer(theme Theme) *ScriptRenderer {
	return &ScriptRenderer{
		md: goldmark.New(
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
			goldmark.WithExtensions(extension.GFM),
		),
		formatter: formatters.Get("terminal256"),
		codeStyle: styles.Get("friendly"),
		theme:     theme,
	}
}

// Render converts markdown to terminal output. On any conversion failure the
// raw content comes back unchanged; a screenplay is still readable as text.
func (r *ScriptRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.toTerminal(buf.String(), width)
}

func (r *ScriptRenderer) toTerminal(htmlContent string, width int) string {
	if width < 24 {
		width = 24
	}
	out := htmlContent

	// Fenced blocks first, stashed so later passes can't touch them.
	var stashed []string
	out = mdCodeBlockRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdCodeBlockRe.FindStringSubmatch(m)
		code := decodeEntities(sub[2])
		block := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(r.theme.Border).
			Padding(0, 2).
			Width(width - 4).
			Render(r.highlight(code, sub[1]))
		stashed = append(stashed, block)
		return fmt.Sprintf("\n{{FD_BLOCK_%d}}\n", len(stashed)-1)
	})

	out = mdInlineCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdInlineCodeRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Foreground(r.theme.Accent2).Render(decodeEntities(sub[1]))
	})

	out = mdHeadingRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdHeadingRe.FindStringSubmatch(m)
		style := lipgloss.NewStyle().Bold(true).Foreground(r.theme.Accent)
		if sub[1] == "1" {
			style = style.BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(r.theme.Border).
				Width(width - 2)
		}
		return style.Render(mdTagRe.ReplaceAllString(sub[2], "")) + "\n"
	})

	out = mdStrongRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdStrongRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Bold(true).Render(sub[1])
	})
	out = mdEmRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdEmRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Italic(true).Render(sub[1])
	})

	out = mdBlockquoteRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdBlockquoteRe.FindStringSubmatch(m)
		text := strings.TrimSpace(mdTagRe.ReplaceAllString(sub[1], ""))
		return lipgloss.NewStyle().
			Foreground(r.theme.TextFaint).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(r.theme.Accent).
			PaddingLeft(1).
			Width(width - 2).
			Render(text) + "\n"
	})

	out = mdListRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := mdListRe.FindStringSubmatch(m)
		ordered := sub[1] == "ol"
		var b strings.Builder
		for i, item := range mdItemRe.FindAllStringSubmatch(sub[2], -1) {
			marker := "  • "
			if ordered {
				marker = fmt.Sprintf("  %d. ", i+1)
			}
			b.WriteString(lipgloss.NewStyle().Foreground(r.theme.Accent).Render(marker))
			b.WriteString(mdTagRe.ReplaceAllString(item[1], ""))
			b.WriteString("\n")
		}
		return b.String()
	})

	out = strings.NewReplacer(
		"<p>", "", "</p>", "\n",
		"<br>", "\n", "<br/>", "\n", "<br />", "\n",
	).Replace(out)

	for i, block := range stashed {
		out = strings.ReplaceAll(out, fmt.Sprintf("{{FD_BLOCK_%d}}", i), block)
	}

	out = mdTagRe.ReplaceAllString(out, "")
	out = decodeEntities(out)
	out = mdBlankRunsRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func (r *ScriptRenderer) highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.codeStyle, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&#x60;", "`",
	"&nbsp;", " ",
	"&hellip;", "...",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}
