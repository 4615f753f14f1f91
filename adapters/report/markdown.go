package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"evoloop/domain/evolution"
	"evoloop/internal/trajectory"
)

// RenderMarkdown formats a report as a human-readable markdown summary.
func RenderMarkdown(rep evolution.Report) string {
	var b strings.Builder

	b.WriteString("# Evolution Report\n\n")
	fmt.Fprintf(&b, "Generations completed: %d\n\n", rep.CurrentGeneration-1)
	fmt.Fprintf(&b, "Improvements applied: %d\n\n", rep.TotalImprovements)

	b.WriteString("| Metric | Baseline | Current | Progress |\n")
	b.WriteString("|---|---|---|---|\n")
	names := make([]string, 0, len(rep.BaselinePerformance))
	for name := range rep.BaselinePerformance {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "| %s | %.1f | %.1f | %+.1f |\n",
			name, rep.BaselinePerformance[name], rep.CurrentPerformance[name], rep.OverallProgress[name])
	}

	if summary, err := trajectory.Summarize(rep.ImprovementHistory); err == nil {
		fmt.Fprintf(&b, "\nGain per applied improvement: mean %.2f, median %.2f, stddev %.2f (min %.2f, max %.2f)\n",
			summary.Mean, summary.Median, summary.StdDev, summary.Min, summary.Max)
	}

	return b.String()
}

// RenderHTML converts the markdown summary to HTML for the API surface.
func RenderHTML(rep evolution.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(RenderMarkdown(rep)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
