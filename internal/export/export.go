package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"

	"deckflow/internal/assets"
	"deckflow/internal/models"
)

// Layout names accepted by the export endpoint.
const (
	LayoutWidescreen  = "widescreen"
	LayoutA4Landscape = "a4-landscape"
)

// Embed modes for HTML export.
const (
	EmbedInline = "inline"
	EmbedIframe = "iframe"
)

// Options control a single export.
type Options struct {
	Layout     string // widescreen (default) or a4-landscape
	Embed      string // inline (default) or iframe
	WithAgenda bool   // prepend an agenda page built from slide titles
}

// pageSize holds print dimensions in inches.
type pageSize struct {
	width  float64
	height float64
}

func sizeFor(layout string) pageSize {
	if layout == LayoutA4Landscape {
		return pageSize{width: 11.69, height: 8.27}
	}
	return pageSize{width: 10.67, height: 6}
}

// Exporter renders decks to standalone HTML and PDF.
type Exporter struct {
	assets     *assets.Manager
	chromePath string
	markdown   goldmark.Markdown
}

// NewExporter creates an exporter. chromePath may be empty to let chromedp
// find the browser itself.
func NewExporter(assetManager *assets.Manager, chromePath string) *Exporter {
	return &Exporter{
		assets:     assetManager,
		chromePath: chromePath,
		markdown:   goldmark.New(),
	}
}

// BuildHTML renders the deck as one standalone HTML document with each slide
// on its own page.
func (e *Exporter) BuildHTML(deck *models.Deck, opts Options) (string, error) {
	if len(deck.Slides) == 0 {
		return "", fmt.Errorf("deck has no slides to export")
	}

	size := sizeFor(opts.Layout)

	var pagesHTML bytes.Buffer
	if opts.WithAgenda {
		agenda, err := e.agendaHTML(deck)
		if err != nil {
			return "", err
		}
		pagesHTML.WriteString(fmt.Sprintf("<div class=\"slide-page slide\">%s</div>\n", agenda))
	}

	for i, slide := range deck.Slides {
		content := slide.Content.HTMLContent
		if opts.Embed == EmbedIframe {
			content = fmt.Sprintf(`<iframe class="slide-frame" srcdoc="%s"></iframe>`, html.EscapeString(content))
		}
		pagesHTML.WriteString(fmt.Sprintf("<div class=\"slide-page slide slide-%d\">%s</div>\n", i+1, content))
	}

	doc := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css" rel="stylesheet">
    <style>
        @page {
            size: %.2fin %.2fin;
            margin: 0;
        }

        * {
            box-sizing: border-box;
        }

        html, body {
            margin: 0;
            padding: 0;
        }

        .slide-page {
            width: %.2fin;
            height: %.2fin;
            page-break-after: always;
            page-break-inside: avoid;
            position: relative;
            overflow: hidden;
        }

        .slide-page:last-child {
            page-break-after: auto;
        }

        .slide-frame {
            width: 100%%;
            height: 100%%;
            border: 0;
        }

        @media print {
            .slide-page {
                page-break-after: always !important;
                page-break-inside: avoid !important;
            }
            .slide-page:last-child {
                page-break-after: auto !important;
            }
        }

        %s
    </style>
</head>
<body>
%s
</body>
</html>`, html.EscapeString(deck.DeckTitle), size.width, size.height, size.width, size.height,
		e.assets.DeckCSS(deck.ColorTheme), pagesHTML.String())

	return doc, nil
}

// agendaHTML builds an agenda page from slide titles via markdown rendering.
func (e *Exporter) agendaHTML(deck *models.Deck) (string, error) {
	var md bytes.Buffer
	md.WriteString("# Agenda\n\n")
	for _, slide := range deck.Slides {
		fmt.Fprintf(&md, "%d. %s\n", slide.Order, slide.Plan.SlideTitle)
	}

	var out bytes.Buffer
	if err := e.markdown.Convert(md.Bytes(), &out); err != nil {
		return "", fmt.Errorf("failed to render agenda: %w", err)
	}
	return out.String(), nil
}

// ExportPDF renders the deck to a PDF using headless Chrome.
func (e *Exporter) ExportPDF(ctx context.Context, deck *models.Deck, opts Options) ([]byte, string, error) {
	// Iframes don't print reliably, force inline for PDF.
	opts.Embed = EmbedInline
	htmlContent, err := e.BuildHTML(deck, opts)
	if err != nil {
		return nil, "", err
	}

	size := sizeFor(opts.Layout)
	pdf, err := e.renderPDF(ctx, htmlContent, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	filename := sanitizeFilename(deck.DeckTitle) + ".pdf"
	log.Printf("🎯 [EXPORT] Generated PDF %s (%d bytes, %d pages)", filename, len(pdf), len(deck.Slides))
	return pdf, filename, nil
}

func (e *Exporter) renderPDF(ctx context.Context, htmlContent string, size pageSize) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)
	if e.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 60*time.Second)
	defer cancel()

	var pdfBuffer []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.Sleep(3*time.Second), // Wait for fonts and stylesheet to load
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// PreferCSSPageSize makes Chrome respect the CSS page-break properties
			pdfBuffer, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPaperWidth(size.width).
				WithPaperHeight(size.height).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

// sanitizeFilename removes invalid characters from filename
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	if len(result) > 50 {
		result = result[:50]
	}
	if strings.TrimSpace(result) == "" {
		result = "presentation"
	}
	return result
}
