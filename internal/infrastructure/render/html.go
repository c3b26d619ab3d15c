package render

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice { max-width: 820px; margin: 0 auto; }
    .header {
      border-bottom: 2px solid #111827;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .header h1 { margin: 0 0 4px; font-size: 24px; }
    .header div { font-size: 13px; color: #374151; }
    .title { text-align: center; font-size: 20px; letter-spacing: 0.08em; margin-bottom: 16px; }
    .meta { display: flex; justify-content: space-between; font-size: 14px; margin-bottom: 24px; }
    .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .section { margin-bottom: 24px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 10px; border-bottom: 1px solid #e5e7eb; text-align: left; }
    th { text-transform: uppercase; font-size: 11px; letter-spacing: 0.04em; color: #6b7280; }
    td.num, th.num { text-align: right; }
    .totals { margin-left: auto; width: 320px; font-size: 14px; }
    .totals div { display: flex; justify-content: space-between; padding: 4px 0; }
    .totals .grand { border-top: 2px solid #111827; font-size: 16px; font-weight: bold; }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <h1>{{.Business.Name}}</h1>
      {{if .Business.Address}}<div>{{.Business.Address}}</div>{{end}}
      <div>Tel: {{.Business.Phone}}</div>
      {{if .Business.Email}}<div>{{.Business.Email}}</div>{{end}}
      {{if .Business.GSTIN}}<div>GSTIN: {{.Business.GSTIN}}</div>{{end}}
    </div>

    <div class="title"><strong>INVOICE</strong></div>

    <div class="meta">
      <div>Bill #{{.Number}}</div>
      <div>{{.Date}}</div>
    </div>

    <div class="section">
      <div class="label">Bill To</div>
      <div><strong>{{.Customer.Name}}</strong></div>
      <div>{{.Customer.Phone}}</div>
      {{if .Customer.Email}}<div>{{.Customer.Email}}</div>{{end}}
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Item</th>
            <th class="num">Qty</th>
            <th class="num">Price</th>
            <th class="num">Subtotal</th>
          </tr>
        </thead>
        <tbody>
          {{range .Lines}}
          <tr>
            <td>{{.Name}}</td>
            <td class="num">{{.Quantity}}</td>
            <td class="num">{{money .Price}}</td>
            <td class="num">{{money .Subtotal}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
    </div>

    <div class="totals">
      <div><span>Subtotal</span><span>{{money .Subtotal}}</span></div>
      <div><span>{{.CGSTLabel}}</span><span>{{money .CGST}}</span></div>
      <div><span>{{.SGSTLabel}}</span><span>{{money .SGST}}</span></div>
      <div class="grand"><span>Total</span><span>{{money .Total}}</span></div>
    </div>
  </div>
</body>
</html>
`

const htmlCurrency = "₹"

// HTMLRenderer renders a printable HTML invoice
type HTMLRenderer struct {
	tpl *template.Template
	loc *time.Location
}

func NewHTMLRenderer(loc *time.Location) *HTMLRenderer {
	funcs := template.FuncMap{
		"money": func(amount string) string { return htmlCurrency + amount },
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
		loc: loc,
	}
}

func (r *HTMLRenderer) Format() enum.InvoiceFormat { return enum.InvoiceFormatHTML }

func (r *HTMLRenderer) Render(ctx context.Context, bill *entity.Bill) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := newInvoiceView(bill, r.loc, htmlCurrency)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
