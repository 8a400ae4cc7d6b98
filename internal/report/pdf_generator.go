package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/pyair_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11.693 * inchToMm // A4 landscape
	pdfPageHeightLandscape = 8.267 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// Image keys understood by BuildWindReport.
const (
	ImageWindRose    = "rose"
	ImageSpeedHisto  = "speed_histo"
	ImageDirHisto    = "direction_histo"
	ImageWindHeatmap = "heatmap"
)

const (
	pdfTableFontSize   = 8
	pdfDefaultFontSize = 10
)

// WindSummary is the content of a wind report.
type WindSummary struct {
	Title  string
	Source string
	Filter *analysis.WindFilter // nil when the data was not filtered
	Table  *analysis.WindTable
}

// pdfStyler keeps the vertical position of flowing content.
// Text goes through tr so that accents survive the cp1252 core fonts.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	tr          func(string) string
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		lineHeight:  6,
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", pdfDefaultFontSize)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", pdfTableFontSize)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", pdfTableFontSize)
		s.pdf.SetTextColor(50, 50, 50)
	}
	return s
}

func (s *pdfStyler) applyStyle(name string) {
	if fn, ok := s.styles[name]; ok {
		fn()
		return
	}
	s.styles["normal"]()
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text, styleName, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.tr(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// addTable draws a bordered table; the first row is the header.
func (s *pdfStyler) addTable(rows [][]string, colWidths []float64) {
	s.checkAddPage(s.lineHeight * float64(len(rows)))
	for r, row := range rows {
		s.checkAddPage(s.lineHeight)
		fill := r == 0
		if fill {
			s.applyStyle("tableHeader")
		} else {
			s.applyStyle("tableCell")
		}
		x := pdfMargin
		for c, cell := range row {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidths[c], s.lineHeight, s.tr(cell), "1", 0, "C", fill, 0, "")
			x += colWidths[c]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		height *= pdfContentWidth / width
		width = pdfContentWidth
	}
	s.checkAddPage(height + s.lineHeight)
	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.Image(imageName, x, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height
	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// frequencyRows lays the wind table out with one row per speed class and
// one column per sector, plus totals.
func frequencyRows(t *analysis.WindTable) [][]string {
	header := []string{"m/s"}
	for s := 0; s < t.NSector; s++ {
		name := fmt.Sprintf("%.0f", float64(s)*t.SectorWidth())
		if t.NSector == len(analysis.DirectionLabels) && analysis.DirectionLabels[s] != "" {
			name = analysis.DirectionLabels[s]
		}
		header = append(header, name)
	}
	header = append(header, "Total")

	format := "%.0f"
	if t.Normed {
		format = "%.1f"
	}
	rows := [][]string{header}
	speedTotals := t.SpeedTotals()
	for k, line := range t.Table {
		row := []string{classLabel(t.SpeedClasses, k)}
		for _, v := range line {
			row = append(row, fmt.Sprintf(format, v))
		}
		rows = append(rows, append(row, fmt.Sprintf(format, speedTotals[k])))
	}
	total := []string{"Total"}
	sum := 0.0
	for _, v := range t.DirectionTotals() {
		total = append(total, fmt.Sprintf(format, v))
		sum += v
	}
	return append(rows, append(total, fmt.Sprintf(format, sum)))
}

// BuildWindReport writes a PDF with the filter statistics, the frequency
// table and the charts found in images. Missing charts are noted in the
// report instead of failing it.
func BuildWindReport(filepath string, summary WindSummary, images map[string][]byte) error {
	if summary.Table == nil {
		return fmt.Errorf("%w: wind report needs a frequency table", analysis.ErrNoData)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	styler := newPDFStyler(pdf)
	styler.newPage()

	title := summary.Title
	if title == "" {
		title = "Rose des vents"
	}
	styler.writeParagraph(title, "h1", "C")
	if summary.Source != "" {
		styler.writeParagraph(fmt.Sprintf("Source: %s", summary.Source), "normal", "C")
	}
	styler.addSpacer(4)

	styler.writeParagraph("Données", "h2", "L")
	stats := [][]string{
		{"Observations", "Retenues", "Exclues"},
		{
			fmt.Sprintf("%d", summary.Table.Counted+summary.Table.Excluded),
			fmt.Sprintf("%d", summary.Table.Counted),
			fmt.Sprintf("%d", summary.Table.Excluded),
		},
	}
	if f := summary.Filter; f != nil {
		stats[0] = append(stats[0], "Directions nulles", fmt.Sprintf("Vents calmes (< %g m/s)", f.CalmLimit))
		stats[1] = append(stats[1],
			fmt.Sprintf("%d (%.1f %%)", f.NullDirections, f.NullDirectionPct()),
			fmt.Sprintf("%d (%.1f %%)", f.CalmWinds, f.CalmPct()),
		)
	}
	statWidths := make([]float64, len(stats[0]))
	for i := range statWidths {
		statWidths[i] = pdfContentWidth / float64(len(statWidths))
	}
	styler.addTable(stats, statWidths)
	styler.addSpacer(5)

	styler.writeParagraph("Fréquences par classe de vitesse et secteur", "h2", "L")
	freq := frequencyRows(summary.Table)
	freqWidths := make([]float64, len(freq[0]))
	first := pdfContentWidth * 0.12
	freqWidths[0] = first
	for i := 1; i < len(freqWidths); i++ {
		freqWidths[i] = (pdfContentWidth - first) / float64(len(freqWidths)-1)
	}
	styler.addTable(freq, freqWidths)

	plotDefs := []struct {
		Key, Title    string
		Width, Height float64
	}{
		{ImageWindRose, "Rose des vents", 150, 150},
		{ImageSpeedHisto, "Histogramme des vitesses", 110, 90},
		{ImageDirHisto, "Histogramme des directions", 200, 88},
		{ImageWindHeatmap, "Fréquences (secteur x vitesse)", 200, 88},
	}
	for _, def := range plotDefs {
		img, ok := images[def.Key]
		if def.Key == ImageWindHeatmap && !ok {
			continue // optional
		}
		styler.newPage()
		styler.writeParagraph(def.Title, "h2", "L")
		if !ok || len(img) == 0 {
			styler.writeParagraph(fmt.Sprintf("Graphique %s non disponible.", def.Title), "normal", "L")
			continue
		}
		styler.addImage(img, def.Key, def.Width, def.Height, "")
	}

	return pdf.OutputFileAndClose(filepath)
}
