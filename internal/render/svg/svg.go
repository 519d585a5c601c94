// Package svg draws a computed layout as a standalone, responsive SVG.
package svg

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/labviz/internal/domain/layout"
	"github.com/okian/labviz/internal/domain/scale"
)

const tickSize = 6

// Render writes l as SVG to w.
func Render(w io.Writer, l layout.Layout, st Style) error {
	_, err := io.WriteString(w, String(l, st))
	return err
}

// String returns l as an SVG document.
func String(l layout.Layout, st Style) string {
	bg := st.Background
	if bg == "" {
		bg = DefaultBackground
	}
	vw, vh := l.Viewport.Width, l.Viewport.Height

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" class="labviz" width="%s" height="%s" viewBox="0 0 %s %s" style="background-color: %s">`,
		num(vw), num(vh), num(vw), num(vh), escape(bg))
	b.WriteString("\n")
	fmt.Fprintf(&b, `<rect class="background" width="100%%" height="100%%" fill="%s"/>`, escape(bg))
	b.WriteString("\n")
	if st.Title != "" {
		fmt.Fprintf(&b, `<title>%s</title>`, escape(st.Title))
		b.WriteString("\n")
	}

	if len(l.XTicks) > 0 && l.XScale != nil {
		xAxis(&b, l)
	}
	if len(l.YTicks) > 0 && l.YScale != nil {
		yAxis(&b, l)
	}

	colors := categoryColors(l, st.ColorBy)
	b.WriteString(`<g class="vizgroup">`)
	b.WriteString("\n")
	for _, p := range l.Points {
		class := "datagroup"
		opacity := ""
		if st.Highlight != nil {
			if st.Highlight(p.Record) {
				class += " highlight"
			} else {
				opacity = ` opacity="0.2"`
			}
		}
		fill := st.Fill
		if st.ColorBy != "" {
			if v, ok := p.Record.Text(st.ColorBy); ok {
				fill = colors[v]
			}
		}
		fmt.Fprintf(&b, `<g class="%s" data-index="%d" transform="translate(%s,%s)"%s>`,
			class, p.Record.Index, num(p.X), num(p.Y), opacity)
		if st.Glyph != "" {
			scaleBy := st.GlyphScale
			if scaleBy == 0 {
				scaleBy = 1
			}
			fmt.Fprintf(&b, `<g transform="scale(%s)">%s</g>`, num(scaleBy), st.Glyph)
		} else {
			fillAttr := ""
			if fill != "" {
				fillAttr = fmt.Sprintf(` fill="%s"`, escape(fill))
			}
			fmt.Fprintf(&b, `<circle cx="0" cy="0" r="%s"%s/>`, num(p.R), fillAttr)
		}
		b.WriteString("</g>\n")
	}
	b.WriteString("</g>\n</svg>\n")
	return b.String()
}

func xAxis(b *strings.Builder, l layout.Layout) {
	r0, r1 := l.XScale.Range()
	y := l.Viewport.Height - l.Padding.Bottom
	fmt.Fprintf(b, `<g class="xaxis" transform="translate(0,%s)" fill="none" font-size="10" font-family="sans-serif" text-anchor="middle">`, num(y))
	fmt.Fprintf(b, `<path class="domain" stroke="currentColor" d="M%s,%dV0H%sV%d"/>`, num(r0), tickSize, num(r1), tickSize)
	for _, t := range l.XTicks {
		tick(b, t, "translate(%s,0)", `<line stroke="currentColor" y2="6"/><text fill="currentColor" y="9" dy="0.71em">%s</text>`)
	}
	b.WriteString("</g>\n")
}

func yAxis(b *strings.Builder, l layout.Layout) {
	r0, r1 := l.YScale.Range()
	fmt.Fprintf(b, `<g class="yaxis" transform="translate(%s,0)" fill="none" font-size="10" font-family="sans-serif" text-anchor="end">`, num(l.Padding.Left))
	fmt.Fprintf(b, `<path class="domain" stroke="currentColor" d="M-%d,%sH0V%sH-%d"/>`, tickSize, num(r0), num(r1), tickSize)
	for _, t := range l.YTicks {
		tick(b, t, "translate(0,%s)", `<line stroke="currentColor" x2="-6"/><text fill="currentColor" x="-9" dy="0.32em">%s</text>`)
	}
	b.WriteString("</g>\n")
}

func tick(b *strings.Builder, t scale.Tick, transform, body string) {
	fmt.Fprintf(b, `<g class="tick" opacity="1" transform="`+transform+`">`, num(t.Pos))
	fmt.Fprintf(b, body, escape(t.Label))
	b.WriteString("</g>")
}

func categoryColors(l layout.Layout, field string) map[string]string {
	if field == "" {
		return nil
	}
	colors := make(map[string]string)
	for _, p := range l.Points {
		v, ok := p.Record.Text(field)
		if !ok {
			continue
		}
		if _, seen := colors[v]; !seen {
			colors[v] = Palette[len(colors)%len(Palette)]
		}
	}
	return colors
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
