package project

import (
	"fmt"
	"strings"
)

// BillCSV renders one bill as semicolon-separated rows, grouped by tax
// rate in ascending order.
func (p *Project) BillCSV(t BillType) (string, error) {
	offer, invoice, err := p.Bills()
	if err != nil {
		return "", err
	}
	bill := offer
	if t == BillInvoice {
		bill = invoice
	}

	var b strings.Builder
	b.WriteString(strings.Join([]string{"#", "Bezeichnung", "Menge", "EP", "Steuer", "Preis"}, ";"))
	b.WriteByte('\n')

	for _, rate := range bill.TaxRates() {
		for i, item := range bill.Items(rate) {
			fmt.Fprintf(&b, "%d;%s;%s;%.2f;%.2f;%.2f\n",
				i, item.Product.Name, trimFloat(item.Amount),
				item.Product.Price, item.Product.Tax, item.Sum())
		}
	}
	return b.String(), nil
}
