package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	reportTitle        = "Sent Documents Report"
	reportSnippetLimit = 500
	reportLineHeight   = 14.0
	reportMarginLeft   = 50.0
	reportTopY         = 790.0
	reportBottomY      = 50.0
	reportMaxLineRunes = 95
)

// reportPage and friends mirror the pdfcpu create JSON form, which renders
// positioned text boxes onto empty pages.
type reportText struct {
	Value    string     `json:"value"`
	Position [2]float64 `json:"position"`
	Font     reportFont `json:"font"`
}

type reportFont struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

type reportContent struct {
	Text []reportText `json:"text"`
}

type reportPage struct {
	Content reportContent `json:"content"`
}

type reportForm struct {
	Paper string                `json:"paper"`
	Pages map[string]reportPage `json:"pages"`
}

// RenderSentReport lays out the sent documents as a paginated PDF: a header,
// the generation and filter range line, then one numbered block per document
// with its sent date, destinations and a content snippet.
func RenderSentReport(rows []ReportRow, start, end *time.Time) ([]byte, error) {
	form := reportForm{
		Paper: "A4",
		Pages: map[string]reportPage{},
	}

	pageNum := 1
	y := reportTopY
	var texts []reportText

	flush := func() {
		if len(texts) == 0 {
			return
		}
		form.Pages[fmt.Sprintf("%d", pageNum)] = reportPage{Content: reportContent{Text: texts}}
		pageNum++
		texts = nil
		y = reportTopY
	}

	emit := func(line string, size float64) {
		if y < reportBottomY {
			flush()
		}
		texts = append(texts, reportText{
			Value:    line,
			Position: [2]float64{reportMarginLeft, y},
			Font:     reportFont{Name: "Helvetica", Size: size},
		})
		y -= reportLineHeight * (size / 10)
	}

	emit(reportTitle, 16)
	emit(reportRangeLine(start, end), 9)
	emit("", 9)

	for i, row := range rows {
		emit(fmt.Sprintf("%d. %s", i+1, row.Title), 11)
		emit(fmt.Sprintf("   Sent: %s", formatSentAt(row.SentAt)), 9)
		if row.Destinations != "" {
			emit(fmt.Sprintf("   To: %s", row.Destinations), 9)
		}
		for _, line := range wrapSnippet(row.Content) {
			emit("   "+line, 9)
		}
		emit("", 9)
	}

	if len(rows) == 0 {
		emit("No sent documents in the selected range.", 10)
	}

	flush()

	payload, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("marshal report form: %w", err)
	}

	var buf bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(payload), &buf, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func reportRangeLine(start, end *time.Time) string {
	generated := time.Now().Format("2006-01-02 15:04")
	switch {
	case start != nil && end != nil:
		return fmt.Sprintf("Generated %s, range %s to %s", generated,
			start.Format(DocDateLayout), end.Format(DocDateLayout))
	case start != nil:
		return fmt.Sprintf("Generated %s, from %s", generated, start.Format(DocDateLayout))
	case end != nil:
		return fmt.Sprintf("Generated %s, until %s", generated, end.Format(DocDateLayout))
	default:
		return fmt.Sprintf("Generated %s, all sent documents", generated)
	}
}

func formatSentAt(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// wrapSnippet truncates the content to the report limit and soft-wraps it to
// printable line widths.
func wrapSnippet(content string) []string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) > reportSnippetLimit {
		runes = append(runes[:reportSnippetLimit], []rune("...")...)
	}

	var lines []string
	words := strings.Fields(string(runes))
	var current strings.Builder
	for _, w := range words {
		if current.Len() > 0 && current.Len()+1+len(w) > reportMaxLineRunes {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(w)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
