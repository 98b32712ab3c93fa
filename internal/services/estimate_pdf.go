package services

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"builddesk-estimates/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Page geometry in millimeters (A4 portrait).
const (
	pageMarginLeft  = 15.0
	pageMarginRight = 15.0
	pageMarginTop   = 15.0
	footerReserve   = 30.0 // vertical space kept free for the footer
	lineHeight      = 4.5
)

type rgbColor struct {
	R, G, B int
}

// Accent and neutral palette shared across sections.
var (
	accentColor    = rgbColor{37, 99, 235}
	textColor      = rgbColor{17, 24, 39}
	mutedColor     = rgbColor{100, 100, 100}
	warningColor   = rgbColor{220, 38, 38}
	stripeColor    = rgbColor{248, 249, 250}
	boxFillColor   = rgbColor{241, 245, 249}
	categoryFill   = rgbColor{226, 232, 240}
	categoryText   = rgbColor{51, 65, 85}
	discountColor  = rgbColor{220, 38, 38}
	separatorColor = rgbColor{203, 213, 225}
)

// statusStyle is the badge color pair for an estimate status.
type statusStyle struct {
	Background rgbColor
	Text       rgbColor
}

var statusStyles = map[string]statusStyle{
	models.EstimateStatusDraft:    {rgbColor{107, 114, 128}, rgbColor{255, 255, 255}},
	models.EstimateStatusSent:     {rgbColor{59, 130, 246}, rgbColor{255, 255, 255}},
	models.EstimateStatusViewed:   {rgbColor{139, 92, 246}, rgbColor{255, 255, 255}},
	models.EstimateStatusAccepted: {rgbColor{34, 197, 94}, rgbColor{255, 255, 255}},
	models.EstimateStatusRejected: {rgbColor{239, 68, 68}, rgbColor{255, 255, 255}},
	models.EstimateStatusExpired:  {rgbColor{245, 158, 11}, rgbColor{255, 255, 255}},
}

// StatusStyleFor returns the badge colors for a status, falling back to
// the draft styling for unrecognized values.
func StatusStyleFor(status string) statusStyle {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return statusStyles[models.EstimateStatusDraft]
}

// watermarkSpec describes the diagonal status watermark.
type watermarkSpec struct {
	Text  string
	Color rgbColor
}

var watermarks = map[string]watermarkSpec{
	models.EstimateStatusAccepted: {"ACCEPTED", rgbColor{22, 163, 74}},
	models.EstimateStatusRejected: {"DECLINED", rgbColor{220, 38, 38}},
}

// WatermarkFor returns the watermark for a status, or false when the
// status does not get one.
func WatermarkFor(status string) (watermarkSpec, bool) {
	wm, ok := watermarks[status]
	return wm, ok
}

// EstimatePDFService renders estimates to PDF documents
type EstimatePDFService struct{}

func NewEstimatePDFService() *EstimatePDFService {
	return &EstimatePDFService{}
}

// EstimateFilename returns the default download filename for an estimate
func EstimateFilename(estimate *models.Estimate) string {
	return fmt.Sprintf("estimate-%s.pdf", estimate.EstimateNumber)
}

// GenerateEstimatePDF renders the estimate to PDF bytes. Generation is
// all-or-nothing: any layout failure is logged and surfaced as a single
// generic error, and no partial document is returned.
func (s *EstimatePDFService) GenerateEstimatePDF(estimate *models.Estimate, company *models.CompanyInfo) ([]byte, error) {
	if estimate == nil {
		return nil, fmt.Errorf("estimate cannot be nil")
	}
	if company == nil {
		company = models.DefaultCompanyInfo()
	}

	layout := newEstimateLayout(estimate, company)
	if err := layout.build(); err != nil {
		log.Printf("EstimatePDFService: layout failed for estimate %s: %v", estimate.EstimateNumber, err)
		return nil, fmt.Errorf("failed to generate estimate PDF: %v", err)
	}

	var buf bytes.Buffer
	if err := layout.pdf.Output(&buf); err != nil {
		log.Printf("EstimatePDFService: output failed for estimate %s: %v", estimate.EstimateNumber, err)
		return nil, fmt.Errorf("failed to generate estimate PDF: %v", err)
	}

	pdfBytes := buf.Bytes()
	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return nil, fmt.Errorf("failed to generate estimate PDF: invalid PDF content")
	}

	return pdfBytes, nil
}

// estimateLayout holds the rendering cursor state for one generation
// call. Instances are never shared across calls.
type estimateLayout struct {
	pdf      *gofpdf.Fpdf
	estimate *models.Estimate
	company  *models.CompanyInfo
	totals   EstimateTotals

	pageWidth  float64
	pageHeight float64
	currentY   float64

	// set before the first manual page break so every footer knows
	// whether page numbers apply
	multiPage bool

	qrRegistered bool
}

func newEstimateLayout(estimate *models.Estimate, company *models.CompanyInfo) *estimateLayout {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginLeft, pageMarginTop, pageMarginRight)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	w, h := pdf.GetPageSize()

	l := &estimateLayout{
		pdf:        pdf,
		estimate:   estimate,
		company:    company,
		totals:     CalculateEstimateTotals(estimate.LineItems, estimate.MarkupPercentage, estimate.TaxPercentage, estimate.DiscountAmount),
		pageWidth:  w,
		pageHeight: h,
	}

	// Scan-back QR in the footer corner. A failed encode just drops
	// the image, not the document.
	if qrPNG, err := qrcode.Encode(EstimatePayload(estimate.EstimateNumber), qrcode.Low, 128); err == nil {
		pdf.RegisterImageOptionsReader("estimate-qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
		l.qrRegistered = true
	}

	pdf.SetFooterFunc(l.drawFooter)
	return l
}

func (l *estimateLayout) usableWidth() float64 {
	return l.pageWidth - pageMarginLeft - pageMarginRight
}

// checkPageSpace starts a new page when the needed height would run
// into the footer reserve.
func (l *estimateLayout) checkPageSpace(needed float64) {
	if l.currentY+needed > l.pageHeight-footerReserve {
		l.multiPage = true
		l.pdf.AddPage()
		l.currentY = pageMarginTop
	}
}

func (l *estimateLayout) setColor(c rgbColor) {
	l.pdf.SetTextColor(c.R, c.G, c.B)
}

func (l *estimateLayout) setFill(c rgbColor) {
	l.pdf.SetFillColor(c.R, c.G, c.B)
}

func (l *estimateLayout) setDraw(c rgbColor) {
	l.pdf.SetDrawColor(c.R, c.G, c.B)
}

// wrapText splits text to the given width, honoring embedded newlines.
func (l *estimateLayout) wrapText(text string, width float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, l.pdf.SplitText(paragraph, width)...)
	}
	return lines
}

// build renders every section in the fixed order.
func (l *estimateLayout) build() error {
	l.pdf.AddPage()
	l.currentY = pageMarginTop

	l.drawHeader()
	l.drawParties()
	l.drawDetailBox()
	l.drawScopeDescription()
	l.drawLineItemsTable()
	l.drawTotalsBlock()
	l.drawTextSection("Notes", l.estimate.Notes)
	l.drawTextSection("Terms & Conditions", l.estimate.TermsAndConditions)
	l.drawAcceptanceBlock()

	return l.pdf.Error()
}

// drawHeader renders the fixed title block: company identity on the
// left, document title and estimate number on the right.
func (l *estimateLayout) drawHeader() {
	pdf := l.pdf

	pdf.SetFont("Arial", "B", 18)
	l.setColor(accentColor)
	pdf.SetXY(pageMarginLeft, l.currentY)
	pdf.CellFormat(l.usableWidth()/2, 9, l.company.Name, "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(l.usableWidth()/2, 9, "ESTIMATE", "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	l.setColor(textColor)
	pdf.SetXY(pageMarginLeft, l.currentY+10)
	pdf.CellFormat(l.usableWidth(), 5, "# "+l.estimate.EstimateNumber, "", 1, "R", false, 0, "")

	l.currentY += 18
}

// drawParties renders the FROM and PREPARED FOR columns side by side
// and advances the cursor past the taller of the two.
func (l *estimateLayout) drawParties() {
	colWidth := l.usableWidth()/2 - 5

	fromLines := []string{l.company.Name}
	if l.company.Address != nil && *l.company.Address != "" {
		fromLines = append(fromLines, l.wrapText(*l.company.Address, colWidth)...)
	}
	if l.company.Phone != nil && *l.company.Phone != "" {
		fromLines = append(fromLines, "Phone: "+*l.company.Phone)
	}
	if l.company.Email != nil && *l.company.Email != "" {
		fromLines = append(fromLines, "Email: "+*l.company.Email)
	}
	if l.company.License != nil && *l.company.License != "" {
		fromLines = append(fromLines, "License: "+*l.company.License)
	}

	var clientLines []string
	if l.estimate.ClientName != nil && *l.estimate.ClientName != "" {
		clientLines = append(clientLines, *l.estimate.ClientName)
	}
	if l.estimate.ClientEmail != nil && *l.estimate.ClientEmail != "" {
		clientLines = append(clientLines, *l.estimate.ClientEmail)
	}
	if l.estimate.ClientPhone != nil && *l.estimate.ClientPhone != "" {
		clientLines = append(clientLines, *l.estimate.ClientPhone)
	}
	if l.estimate.SiteAddress != nil && *l.estimate.SiteAddress != "" {
		clientLines = append(clientLines, l.wrapText("Site: "+*l.estimate.SiteAddress, colWidth)...)
	}
	if l.estimate.ProjectName != nil && *l.estimate.ProjectName != "" {
		clientLines = append(clientLines, "Project: "+*l.estimate.ProjectName)
	}

	leftHeight := l.drawPartyColumn(pageMarginLeft, colWidth, "FROM", fromLines)
	rightHeight := l.drawPartyColumn(pageMarginLeft+colWidth+10, colWidth, "PREPARED FOR", clientLines)

	height := leftHeight
	if rightHeight > height {
		height = rightHeight
	}
	if height < 28 {
		height = 28
	}
	l.currentY += height + 4
}

func (l *estimateLayout) drawPartyColumn(x, width float64, label string, lines []string) float64 {
	pdf := l.pdf

	pdf.SetFont("Arial", "B", 9)
	l.setColor(accentColor)
	pdf.SetXY(x, l.currentY)
	pdf.CellFormat(width, 5, label, "", 2, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	l.setColor(textColor)
	for i, line := range lines {
		if i == 0 {
			pdf.SetFont("Arial", "B", 9)
		} else {
			pdf.SetFont("Arial", "", 9)
		}
		pdf.CellFormat(width, lineHeight, line, "", 2, "L", false, 0, "")
	}

	return 6 + float64(len(lines))*lineHeight
}

// drawDetailBox renders the bordered summary box: title, dates, status
// badge and the caller-supplied grand total.
func (l *estimateLayout) drawDetailBox() {
	pdf := l.pdf
	boxHeight := 26.0

	l.setFill(boxFillColor)
	l.setDraw(separatorColor)
	pdf.Rect(pageMarginLeft, l.currentY, l.usableWidth(), boxHeight, "FD")

	// Title
	pdf.SetFont("Arial", "B", 12)
	l.setColor(textColor)
	pdf.SetXY(pageMarginLeft+4, l.currentY+4)
	pdf.CellFormat(100, 6, l.estimate.Title, "", 2, "L", false, 0, "")

	// Dates
	pdf.SetFont("Arial", "", 9)
	l.setColor(mutedColor)
	pdf.CellFormat(100, 5, "Date: "+FormatDate(l.estimate.EstimateDate), "", 2, "L", false, 0, "")

	if l.estimate.ValidUntil != nil {
		if l.estimate.ValidUntil.Before(time.Now()) {
			l.setColor(warningColor)
		}
		pdf.CellFormat(100, 5, "Valid until: "+FormatDate(*l.estimate.ValidUntil), "", 2, "L", false, 0, "")
	} else {
		pdf.CellFormat(100, 5, "Valid until: No expiration", "", 2, "L", false, 0, "")
	}

	// Status badge
	style := StatusStyleFor(l.estimate.Status)
	badgeText := strings.ToUpper(l.estimate.Status)
	badgeWidth := 28.0
	badgeX := pageMarginLeft + l.usableWidth() - badgeWidth - 4
	l.setFill(style.Background)
	pdf.Rect(badgeX, l.currentY+4, badgeWidth, 7, "F")
	pdf.SetFont("Arial", "B", 8)
	l.setColor(style.Text)
	pdf.SetXY(badgeX, l.currentY+4)
	pdf.CellFormat(badgeWidth, 7, badgeText, "", 0, "C", false, 0, "")

	// Grand total, as supplied by the caller
	pdf.SetFont("Arial", "B", 14)
	l.setColor(accentColor)
	pdf.SetXY(badgeX-42, l.currentY+14)
	pdf.CellFormat(badgeWidth+42, 8, FormatCurrency(l.estimate.TotalAmount), "", 0, "R", false, 0, "")

	l.currentY += boxHeight + 6
}

// drawScopeDescription renders the wrapped description, if any.
func (l *estimateLayout) drawScopeDescription() {
	if l.estimate.Description == nil || *l.estimate.Description == "" {
		return
	}

	l.checkPageSpace(12)
	pdf := l.pdf
	pdf.SetFont("Arial", "B", 11)
	l.setColor(accentColor)
	pdf.SetXY(pageMarginLeft, l.currentY)
	pdf.CellFormat(l.usableWidth(), 6, "Scope of Work", "", 1, "L", false, 0, "")
	l.currentY += 7

	pdf.SetFont("Arial", "", 9)
	l.setColor(textColor)
	for _, line := range l.wrapText(*l.estimate.Description, l.usableWidth()) {
		l.checkPageSpace(lineHeight)
		pdf.SetXY(pageMarginLeft, l.currentY)
		pdf.CellFormat(l.usableWidth(), lineHeight, line, "", 1, "L", false, 0, "")
		l.currentY += lineHeight
	}
	l.currentY += 4
}

// Line-item table column widths, summing to the usable width.
var tableColWidths = [6]float64{36, 60, 14, 16, 26, 28}

var tableColTitles = [6]string{"Item", "Description", "Qty", "Unit", "Unit Cost", "Total"}

var tableColAligns = [6]string{"L", "L", "R", "C", "R", "R"}

func (l *estimateLayout) drawTableHeader() {
	pdf := l.pdf
	pdf.SetFont("Arial", "B", 9)
	l.setColor(rgbColor{255, 255, 255})
	l.setFill(accentColor)

	pdf.SetXY(pageMarginLeft, l.currentY)
	for i, title := range tableColTitles {
		last := 0
		if i == len(tableColTitles)-1 {
			last = 1
		}
		pdf.CellFormat(tableColWidths[i], 8, title, "1", last, tableColAligns[i], true, 0, "")
	}
	l.currentY += 8
}

// drawLineItemsTable renders the 6-column table with alternating row
// striping, category header rows, and per-row page-break checks. The
// column header is redrawn after every page break.
func (l *estimateLayout) drawLineItemsTable() {
	rows := BuildLineItemRows(l.estimate.LineItems)

	l.drawTableHeader()

	pdf := l.pdf
	fill := false
	for _, row := range rows {
		if row.IsCategoryHeader {
			l.checkRowSpace(7)
			l.setFill(categoryFill)
			pdf.SetFont("Arial", "B", 9)
			l.setColor(categoryText)
			pdf.SetXY(pageMarginLeft, l.currentY)
			pdf.CellFormat(l.usableWidth(), 7, row.Name, "1", 1, "L", true, 0, "")
			l.currentY += 7
			fill = false
			continue
		}

		nameLines := l.wrapTextFor(row.Name, tableColWidths[0]-2, 9)
		descLines := l.wrapTextFor(row.Description, tableColWidths[1]-2, 8)
		lineCount := len(nameLines)
		if len(descLines) > lineCount {
			lineCount = len(descLines)
		}
		rowHeight := float64(lineCount)*4 + 3
		if rowHeight < 7 {
			rowHeight = 7
		}

		l.checkRowSpace(rowHeight)

		// Row background and cell borders
		x := pageMarginLeft
		l.setFill(stripeColor)
		l.setDraw(separatorColor)
		mode := "D"
		if fill {
			mode = "FD"
		}
		for _, w := range tableColWidths {
			pdf.Rect(x, l.currentY, w, rowHeight, mode)
			x += w
		}

		l.setColor(textColor)
		l.drawCellLines(pageMarginLeft, tableColWidths[0], nameLines, "L", 9, "")
		l.drawCellLines(pageMarginLeft+tableColWidths[0], tableColWidths[1], descLines, "L", 8, "")
		l.drawCellLines(pageMarginLeft+tableColWidths[0]+tableColWidths[1], tableColWidths[2], []string{row.Quantity}, "R", 9, "")
		l.drawCellLines(pageMarginLeft+tableColWidths[0]+tableColWidths[1]+tableColWidths[2], tableColWidths[3], []string{row.Unit}, "C", 9, "")
		l.drawCellLines(pageMarginLeft+tableColWidths[0]+tableColWidths[1]+tableColWidths[2]+tableColWidths[3], tableColWidths[4], []string{row.UnitCost}, "R", 9, "")
		l.drawCellLines(pageMarginLeft+tableColWidths[0]+tableColWidths[1]+tableColWidths[2]+tableColWidths[3]+tableColWidths[4], tableColWidths[5], []string{row.Total}, "R", 9, "B")

		l.currentY += rowHeight
		fill = !fill
	}
	l.currentY += 6
}

// checkRowSpace breaks the page before a table row and redraws the
// column header on the new page.
func (l *estimateLayout) checkRowSpace(rowHeight float64) {
	if l.currentY+rowHeight > l.pageHeight-footerReserve {
		l.multiPage = true
		l.pdf.AddPage()
		l.currentY = pageMarginTop
		l.drawTableHeader()
	}
}

func (l *estimateLayout) wrapTextFor(text string, width float64, fontSize float64) []string {
	l.pdf.SetFont("Arial", "", fontSize)
	return l.wrapText(text, width)
}

func (l *estimateLayout) drawCellLines(x, width float64, lines []string, align string, fontSize float64, fontStyle string) {
	pdf := l.pdf
	pdf.SetFont("Arial", fontStyle, fontSize)
	y := l.currentY + 1.5
	for _, line := range lines {
		pdf.SetXY(x+1, y)
		pdf.CellFormat(width-2, 4, line, "", 0, align, false, 0, "")
		y += 4
	}
}

// drawTotalsBlock renders the right-aligned summary rows. Markup,
// discount and tax rows are suppressed when zero; the grand total row
// prints the caller-supplied amount, not the internally computed one.
func (l *estimateLayout) drawTotalsBlock() {
	type totalsRow struct {
		label    string
		value    string
		color    *rgbColor
	}

	rows := []totalsRow{{label: "Subtotal", value: FormatCurrency(l.totals.Subtotal)}}

	if l.totals.MarkupAmount > 0 {
		label := "Markup"
		if l.estimate.MarkupPercentage != nil {
			label = fmt.Sprintf("Markup (%s%%)", FormatQuantity(*l.estimate.MarkupPercentage))
		}
		rows = append(rows, totalsRow{label: label, value: FormatCurrency(l.totals.MarkupAmount)})
	}
	if l.totals.DiscountAmount > 0 {
		rows = append(rows, totalsRow{label: "Discount", value: "-" + FormatCurrency(l.totals.DiscountAmount), color: &discountColor})
	}
	if l.totals.TaxAmount > 0 {
		label := "Tax"
		if l.estimate.TaxPercentage != nil {
			label = fmt.Sprintf("Tax (%s%%)", FormatQuantity(*l.estimate.TaxPercentage))
		}
		rows = append(rows, totalsRow{label: label, value: FormatCurrency(l.totals.TaxAmount)})
	}

	blockHeight := float64(len(rows))*6 + 12
	l.checkPageSpace(blockHeight)

	pdf := l.pdf
	labelWidth := 40.0
	valueWidth := 30.0
	x := pageMarginLeft + l.usableWidth() - labelWidth - valueWidth

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		if row.color != nil {
			l.setColor(*row.color)
		} else {
			l.setColor(textColor)
		}
		pdf.SetXY(x, l.currentY)
		pdf.CellFormat(labelWidth, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valueWidth, 6, row.value, "", 1, "R", false, 0, "")
		l.currentY += 6
	}

	l.setDraw(separatorColor)
	pdf.Line(x, l.currentY+1, x+labelWidth+valueWidth, l.currentY+1)
	l.currentY += 3

	pdf.SetFont("Arial", "B", 12)
	l.setColor(accentColor)
	pdf.SetXY(x, l.currentY)
	pdf.CellFormat(labelWidth, 8, "ESTIMATED TOTAL", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueWidth, 8, FormatCurrency(l.estimate.TotalAmount), "", 1, "R", false, 0, "")
	l.currentY += 12
}

// drawTextSection renders an optional labeled free-text block with
// per-line page-space checks.
func (l *estimateLayout) drawTextSection(heading string, body *string) {
	if body == nil || *body == "" {
		return
	}

	l.checkPageSpace(12)
	pdf := l.pdf
	pdf.SetFont("Arial", "B", 11)
	l.setColor(accentColor)
	pdf.SetXY(pageMarginLeft, l.currentY)
	pdf.CellFormat(l.usableWidth(), 6, heading, "", 1, "L", false, 0, "")
	l.currentY += 7

	pdf.SetFont("Arial", "", 9)
	l.setColor(textColor)
	for _, line := range l.wrapText(*body, l.usableWidth()) {
		l.checkPageSpace(lineHeight)
		pdf.SetXY(pageMarginLeft, l.currentY)
		pdf.CellFormat(l.usableWidth(), lineHeight, line, "", 1, "L", false, 0, "")
		l.currentY += lineHeight
	}
	l.currentY += 4
}

// drawAcceptanceBlock renders the static signature box.
func (l *estimateLayout) drawAcceptanceBlock() {
	boxHeight := 38.0
	l.checkPageSpace(boxHeight + 4)

	pdf := l.pdf
	l.setDraw(separatorColor)
	pdf.Rect(pageMarginLeft, l.currentY, l.usableWidth(), boxHeight, "D")

	pdf.SetFont("Arial", "B", 10)
	l.setColor(textColor)
	pdf.SetXY(pageMarginLeft+4, l.currentY+4)
	pdf.CellFormat(l.usableWidth()-8, 5, "Acceptance", "", 2, "L", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	l.setColor(mutedColor)
	pdf.CellFormat(l.usableWidth()-8, 4,
		"By signing below, you accept the scope, pricing, and terms described in this estimate.", "", 2, "L", false, 0, "")

	lineY := l.currentY + 24
	l.setDraw(textColor)

	// Signature and date
	pdf.Line(pageMarginLeft+8, lineY, pageMarginLeft+78, lineY)
	pdf.Line(pageMarginLeft+90, lineY, pageMarginLeft+130, lineY)
	pdf.SetFont("Arial", "", 7)
	pdf.SetXY(pageMarginLeft+8, lineY+1)
	pdf.CellFormat(70, 4, "Signature", "", 0, "L", false, 0, "")
	pdf.SetXY(pageMarginLeft+90, lineY+1)
	pdf.CellFormat(40, 4, "Date", "", 0, "L", false, 0, "")

	// Printed name
	nameY := lineY + 9
	pdf.Line(pageMarginLeft+8, nameY, pageMarginLeft+78, nameY)
	pdf.SetXY(pageMarginLeft+8, nameY+1)
	pdf.CellFormat(70, 4, "Print Name", "", 0, "L", false, 0, "")

	l.currentY += boxHeight + 4
}

// drawFooter runs on every page close. It must not touch currentY.
func (l *estimateLayout) drawFooter() {
	pdf := l.pdf
	footerY := l.pageHeight - 22

	l.setDraw(separatorColor)
	pdf.Line(pageMarginLeft, footerY, l.pageWidth-pageMarginRight, footerY)

	validity := "This estimate is valid upon acceptance"
	if l.estimate.ValidUntil != nil {
		validity = "This estimate is valid until " + FormatDate(*l.estimate.ValidUntil)
	}

	pdf.SetFont("Arial", "", 8)
	l.setColor(mutedColor)
	pdf.SetXY(pageMarginLeft, footerY+2)
	pdf.CellFormat(l.usableWidth(), 4, validity+"  |  "+l.company.Name, "", 1, "C", false, 0, "")

	if l.company.Website != nil && *l.company.Website != "" {
		pdf.SetX(pageMarginLeft)
		pdf.CellFormat(l.usableWidth(), 4, *l.company.Website, "", 1, "C", false, 0, "")
	}

	if l.multiPage {
		pdf.SetX(pageMarginLeft)
		pdf.CellFormat(l.usableWidth(), 4, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 1, "C", false, 0, "")
	}

	if l.qrRegistered {
		pdf.ImageOptions("estimate-qr", l.pageWidth-pageMarginRight-13, footerY+2, 13, 13, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	l.drawWatermark()
}

// drawWatermark draws the faint diagonal status text over the page.
// It runs from the footer hook so every page carries the stamp. Only
// accepted and rejected estimates get one.
func (l *estimateLayout) drawWatermark() {
	wm, ok := WatermarkFor(l.estimate.Status)
	if !ok {
		return
	}

	pdf := l.pdf
	pdf.SetFont("Arial", "B", 80)
	l.setColor(wm.Color)
	pdf.SetAlpha(0.15, "Normal")

	cx := l.pageWidth / 2
	cy := l.pageHeight / 2
	pdf.TransformBegin()
	pdf.TransformRotate(45, cx, cy)
	textWidth := pdf.GetStringWidth(wm.Text)
	pdf.Text(cx-textWidth/2, cy, wm.Text)
	pdf.TransformEnd()

	pdf.SetAlpha(1.0, "Normal")
}
