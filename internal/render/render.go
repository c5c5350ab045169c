// Package render provides markdown rendering and syntax highlighting for revision comments.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/editorial/internal/cache"
	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/util"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

func formatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WrapLongLines(true),
	)
}

func HighlightCode(code, language, syntaxTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	style := styles.Get(syntaxTheme)
	var buf strings.Builder
	if err := formatter().Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// codeBlockHook renders fenced code through chroma.
func codeBlockHook(syntaxTheme string) md_html.RenderNodeFunc {
	return func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		code, ok := node.(*ast.CodeBlock)
		if !ok || !entering {
			return ast.GoToNext, false
		}

		var lang string
		if info := code.Info; info != nil {
			lang = string(info)
		}
		fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(code.Literal), lang, syntaxTheme))
		return ast.GoToNext, true
	}
}

// RenderMarkdown renders md with the named renderer. Raw HTML in the input
// is never passed through.
func RenderMarkdown(md []byte, renderer, syntaxTheme string) []byte {
	switch renderer {
	case config.RendererClassic:
		return RenderMarkdownClassic(md, syntaxTheme)
	default:
		return RenderMarkdownMmark(md, syntaxTheme)
	}
}

func RenderMarkdownClassic(md []byte, syntaxTheme string) []byte {
	opts := md_html.RendererOptions{
		Flags:          md_html.CommonFlags | md_html.HrefTargetBlank | md_html.SkipHTML,
		RenderNodeHook: codeBlockHook(syntaxTheme),
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough |
			parser.BackslashLineBreak | parser.SuperSubscript | parser.DefinitionLists |
			parser.OrderedListStart | parser.NonBlockingSpace,
	).Parse(md)

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

func RenderMarkdownMmark(md []byte, syntaxTheme string) []byte {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions((mparser.Extensions | parser.NoIntraEmphasis) &^ parser.Includes)
	p.Opts = parser.Options{
		ParserHook: mparser.Hook,
		Flags:      parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)

	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New("en"),
	}
	highlight := codeBlockHook(syntaxTheme)

	opts := md_html.RendererOptions{
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := highlight(w, node, entering); handled {
				return status, true
			}
			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.SkipHTML,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// Mutex to protect the check-render-set operation in RenderComment
var renderCacheMutex sync.Mutex

// RenderComment renders the text of a comment, caching the result by content.
func RenderComment(text, renderer, syntaxTheme string) []byte {
	contentHash := util.ContentHashString(text)

	if cached, found := cache.GetRenderedComment(contentHash, renderer, syntaxTheme); found {
		renderLogger.Debug().Str("contentHash", contentHash).Msg("Cache hit for rendered comment")
		return cached
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetRenderedComment(contentHash, renderer, syntaxTheme); found {
		return cached
	}

	renderLogger.Debug().Str("contentHash", contentHash).Str("renderer", renderer).Msg("Cache miss for rendered comment")
	html := RenderMarkdown([]byte(text), renderer, syntaxTheme)
	cache.SetRenderedComment(contentHash, renderer, syntaxTheme, html)
	return html
}

// SyntaxCSS returns the stylesheet for the classes emitted by HighlightCode.
func SyntaxCSS(syntaxTheme string) string {
	if css, ok := cache.GetSyntaxCSS(syntaxTheme); ok {
		return css
	}

	var buf strings.Builder
	style := styles.Get(syntaxTheme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Chroma themes without a text colour need one picked for their background
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := formatter().WriteCSS(&buf, style); err != nil {
		renderLogger.Error().Err(err).Str("theme", syntaxTheme).Msg("Error generating syntax CSS")
		return ""
	}

	css := buf.String()
	cache.SetSyntaxCSS(syntaxTheme, css)
	return css
}

// Themes lists the available syntax themes.
func Themes() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}
