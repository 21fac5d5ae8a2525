package extract

import (
	"html/template"
	"strings"
)

// fragmentTemplate is the self-contained summary view: embedded stylesheet,
// filter controls, and one table row per listing. Rows carry the boolean
// data attributes the filter engine reads back; nothing outside this
// fragment is required to present it.
var fragmentTemplate = template.Must(template.New("fragment").Parse(`<div class="pricelens">
<style>
.pricelens { background: #1e1e24; color: #e8e8ea; font: 13px/1.4 sans-serif; padding: 8px; }
.pricelens-controls { display: flex; gap: 6px; margin-bottom: 8px; }
.pricelens-controls input { flex: 1; background: #2a2a32; color: #e8e8ea; border: 1px solid #44444e; border-radius: 3px; padding: 4px 8px; }
.pricelens-controls button { background: #2a2a32; color: #e8e8ea; border: 1px solid #44444e; border-radius: 3px; padding: 4px 10px; cursor: pointer; }
.pricelens-controls button.active { background: #3b5bd9; border-color: #3b5bd9; }
.pricelens table { width: 100%; border-collapse: collapse; }
.pricelens th, .pricelens td { text-align: left; padding: 4px 6px; border-bottom: 1px solid #33333c; }
.pricelens a { color: #8ab4f8; text-decoration: none; }
.pricelens .coupon-badge { color: #f2b01e; margin-left: 4px; }
.pricelens tr.row-hidden { display: none; }
</style>
  <div class="pricelens-controls">
    <input id="filter-input" type="text" placeholder="Filter listings">
    <button id="filter-today" type="button">Today</button>
    <button id="filter-tomorrow" type="button">Tomorrow</button>
    <button id="filter-clear" type="button">Clear</button>
  </div>
  <table>
    <thead>
      <tr><th>Price</th><th>Item</th><th>Delivery</th></tr>
    </thead>
    <tbody id="listing-rows">
{{- range . }}
      <tr class="listing-row" data-today="{{ .Today }}" data-tomorrow="{{ .Tomorrow }}">
        <td class="price-cell">{{ .DisplayPrice }}</td>
        <td class="title-cell"><a href="{{ .URL }}" target="_blank" rel="noopener">{{ .Title }}</a>{{ if .HasCoupon }}<span class="coupon-badge" title="coupon applied">&#9733;</span>{{ end }}</td>
        <td class="delivery-cell">{{ .Delivery.String }}</td>
      </tr>
{{- end }}
    </tbody>
  </table>
</div>
`))

// Render serializes already-sorted listings into the summary fragment.
func Render(listings []Listing) (string, error) {
	var b strings.Builder
	if err := fragmentTemplate.Execute(&b, listings); err != nil {
		return "", err
	}
	return b.String(), nil
}
