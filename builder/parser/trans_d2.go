package parser

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"frost/builder/diagram"
)

var d2OrderedKey = parser.NewContextKey()

// D2SVGPair stores both theme renderings of one diagram.
type D2SVGPair struct {
	Light string
	Dark  string
}

// GetD2SVGPairSlice returns the rendered diagrams in source order.
func GetD2SVGPairSlice(pc parser.Context) []D2SVGPair {
	if v := pc.Get(d2OrderedKey); v != nil {
		return v.([]D2SVGPair)
	}
	return nil
}

// d2Transformer renders fenced d2 blocks to SVG during parsing and
// stashes the results in the context for post-processing.
type d2Transformer struct {
	Renderer *diagram.Renderer
	Cache    *sync.Map
}

func (t *d2Transformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var codes []string

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if n.Kind() == ast.KindFencedCodeBlock {
			fcb := n.(*ast.FencedCodeBlock)
			lang := strings.ToLower(strings.TrimSpace(string(fcb.Language(source))))

			if lang == "d2" {
				var codeBuilder bytes.Buffer
				lines := fcb.Lines()
				for i := 0; i < lines.Len(); i++ {
					line := lines.At(i)
					codeBuilder.Write(line.Value(source))
				}
				if code := strings.TrimSpace(codeBuilder.String()); code != "" {
					codes = append(codes, code)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	if len(codes) == 0 {
		return
	}

	results := make([]D2SVGPair, len(codes))
	var wg sync.WaitGroup

	for i, code := range codes {
		wg.Add(1)
		go func(idx int, code string) {
			defer wg.Done()

			hash := diagram.HashContent("d2", code)
			lightHash := hash + "_light"
			darkHash := hash + "_dark"

			lightCached, lightExists := t.Cache.Load(lightHash)
			darkCached, darkExists := t.Cache.Load(darkHash)
			if lightExists && darkExists {
				results[idx] = D2SVGPair{Light: lightCached.(string), Dark: darkCached.(string)}
				return
			}

			lightSVG, err := t.Renderer.RenderD2(code, diagram.ThemeLight)
			if err != nil {
				log.Printf("   ⚠️  D2 light theme render failed: %v", err)
				return
			}
			darkSVG, err := t.Renderer.RenderD2(code, diagram.ThemeDark)
			if err != nil {
				log.Printf("   ⚠️  D2 dark theme render failed: %v", err)
				return
			}

			results[idx] = D2SVGPair{Light: lightSVG, Dark: darkSVG}
			t.Cache.Store(lightHash, lightSVG)
			t.Cache.Store(darkHash, darkSVG)
		}(i, code)
	}
	wg.Wait()

	pc.Set(d2OrderedKey, results)
}

// d2PreRegex matches the highlighted d2 code blocks in rendered HTML.
var d2PreRegex = regexp.MustCompile(`(?s)<div class="code-wrapper" data-lang="d2">.*?</div>`)

// ReplaceD2Blocks swaps highlighted d2 code blocks for their rendered
// SVG pairs, in order. CSS shows one theme at a time.
func ReplaceD2Blocks(html string, pairs []D2SVGPair) string {
	if len(pairs) == 0 {
		return html
	}

	pairIndex := 0

	return d2PreRegex.ReplaceAllStringFunc(html, func(match string) string {
		if pairIndex >= len(pairs) {
			return match
		}

		pair := pairs[pairIndex]
		pairIndex++

		if pair.Light == "" && pair.Dark == "" {
			return match
		}

		return fmt.Sprintf(`<div class="d2-container" data-diagram="true"><div class="d2-light">%s</div><div class="d2-dark">%s</div></div>`,
			pair.Light, pair.Dark)
	})
}
