package enum

import "strings"

// InvoiceFormat is an output format for a rendered invoice.
type InvoiceFormat string

const (
	InvoiceFormatPDF     InvoiceFormat = "pdf"
	InvoiceFormatHTML    InvoiceFormat = "html"
	InvoiceFormatReceipt InvoiceFormat = "receipt"
	InvoiceFormatPNG     InvoiceFormat = "png"
)

// ParseInvoiceFormat maps a query value to a format. Empty input means PDF.
func ParseInvoiceFormat(s string) (InvoiceFormat, bool) {
	switch InvoiceFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", InvoiceFormatPDF:
		return InvoiceFormatPDF, true
	case InvoiceFormatHTML:
		return InvoiceFormatHTML, true
	case InvoiceFormatReceipt:
		return InvoiceFormatReceipt, true
	case InvoiceFormatPNG:
		return InvoiceFormatPNG, true
	}
	return "", false
}

// ContentType is the MIME type served for the format.
func (f InvoiceFormat) ContentType() string {
	switch f {
	case InvoiceFormatHTML:
		return "text/html; charset=utf-8"
	case InvoiceFormatReceipt:
		return "application/octet-stream"
	case InvoiceFormatPNG:
		return "image/png"
	default:
		return "application/pdf"
	}
}

// Extension is the file suffix used for downloads.
func (f InvoiceFormat) Extension() string {
	switch f {
	case InvoiceFormatHTML:
		return ".html"
	case InvoiceFormatReceipt:
		return ".bin"
	case InvoiceFormatPNG:
		return ".png"
	default:
		return ".pdf"
	}
}
