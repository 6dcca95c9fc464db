package project

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/farbraum/projektor/internal/yamlpath"
)

// ErrUnknownFormat means the document has no recognizable products section.
// A missing product list is a hard error, not an empty bill.
var ErrUnknownFormat = errors.New("project: unknown products format")

// Product is one priced position on a bill.
type Product struct {
	Name  string
	Unit  string
	Price float64
	Tax   float64
}

// BillItem pairs a quantity with a product.
type BillItem struct {
	Amount  float64
	Product Product
}

// Sum returns the net value of the item.
func (i BillItem) Sum() float64 { return i.Amount * i.Product.Price }

// Bill groups priced items by tax rate for tax-segmented totals.
type Bill struct {
	itemsByTax map[float64][]BillItem
}

// NewBill returns an empty bill.
func NewBill() *Bill {
	return &Bill{itemsByTax: make(map[float64][]BillItem)}
}

// Add appends an item to its tax group.
func (b *Bill) Add(item BillItem) {
	b.itemsByTax[item.Product.Tax] = append(b.itemsByTax[item.Product.Tax], item)
}

// AddItem appends amount × product.
func (b *Bill) AddItem(amount float64, p Product) {
	b.Add(BillItem{Amount: amount, Product: p})
}

// IsEmpty reports whether the bill has no items.
func (b *Bill) IsEmpty() bool { return len(b.itemsByTax) == 0 }

// TaxRates returns the tax groups present, ascending.
func (b *Bill) TaxRates() []float64 {
	rates := make([]float64, 0, len(b.itemsByTax))
	for rate := range b.itemsByTax {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)
	return rates
}

// Items returns the items of one tax group in insertion order.
func (b *Bill) Items(rate float64) []BillItem {
	return b.itemsByTax[rate]
}

// NetByTax returns the net total of one tax group.
func (b *Bill) NetByTax(rate float64) float64 {
	var sum float64
	for _, item := range b.itemsByTax[rate] {
		sum += item.Sum()
	}
	return sum
}

// NetTotal returns the net total over all groups.
func (b *Bill) NetTotal() float64 {
	var sum float64
	for rate := range b.itemsByTax {
		sum += b.NetByTax(rate)
	}
	return sum
}

// TaxTotal returns the summed tax over all groups.
func (b *Bill) TaxTotal() float64 {
	var sum float64
	for rate := range b.itemsByTax {
		sum += b.NetByTax(rate) * rate
	}
	return sum
}

// GrossTotal returns net plus tax over all groups.
func (b *Bill) GrossTotal() float64 {
	return b.NetTotal() + b.TaxTotal()
}

// taxValue is the document-level default tax rate for products that carry
// none of their own.
func (p *Project) taxValue() float64 {
	if tax, ok := yamlpath.GetFloat(p.tree, "tax"); ok {
		return tax
	}
	return 0
}

// Bills builds the offer and invoice bills: a synthetic service position
// from recorded hours (skipped when hours are zero), plus one item per
// product entry. Items with non-normal quantities are dropped from the
// respective bill. A missing products section is ErrUnknownFormat.
func (p *Project) Bills() (offer, invoice *Bill, err error) {
	offer = NewBill()
	invoice = NewBill()

	if total, ok := p.Hours().Total(); ok && isNormal(total) {
		salary, _ := p.Hours().Salary()
		service := Product{Name: "Service", Unit: "h", Price: salary, Tax: 0}
		offer.AddItem(total, service)
		invoice.AddItem(total, service)
	}

	raw, ok := yamlpath.GetMap(p.tree, "products")
	if !ok {
		return nil, nil, fmt.Errorf("%w: no products section", ErrUnknownFormat)
	}

	// Sorted for deterministic bill order; YAML mapping order is not
	// preserved by the parser.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		offered, sold, product, err := p.productFrom(name)
		if err != nil {
			return nil, nil, err
		}
		if isNormal(offered) {
			offer.AddItem(offered, product)
		}
		if isNormal(sold) {
			invoice.AddItem(sold, product)
		}
	}
	return offer, invoice, nil
}

// productFrom reads one products entry: offered amount, sold amount
// (explicit `sold`, else offered minus `returned`), and the priced product.
func (p *Project) productFrom(name string) (offered, sold float64, product Product, err error) {
	base := "products/" + name

	price, ok := yamlpath.GetFloat(p.tree, base+"/price")
	if !ok {
		return 0, 0, Product{}, fmt.Errorf("project: product %q: missing price", name)
	}
	tax, ok := yamlpath.GetFloat(p.tree, base+"/tax")
	if !ok {
		tax = p.taxValue()
	}
	unit, _ := yamlpath.GetString(p.tree, base+"/unit")

	offered, _ = yamlpath.GetFloat(p.tree, base+"/amount")

	if s, ok := yamlpath.GetFloat(p.tree, base+"/sold"); ok {
		sold = s
	} else if returned, ok := yamlpath.GetFloat(p.tree, base+"/returned"); ok {
		sold = offered - returned
	} else {
		sold = offered
	}

	return offered, sold, Product{Name: name, Unit: unit, Price: price, Tax: tax}, nil
}

// SumSold returns the net total actually invoiced.
func (p *Project) SumSold() (float64, error) {
	_, invoice, err := p.Bills()
	if err != nil {
		return 0, err
	}
	return invoice.NetTotal(), nil
}

// Wages returns the total wage cost of the project.
func (p *Project) Wages() (float64, bool) {
	return p.Hours().Wages()
}

// isNormal rejects zero, negative, NaN, and infinite quantities.
func isNormal(f float64) bool {
	return f > 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// trimFloat renders a float without trailing zeros.
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatCurrency renders an amount with two decimals.
func formatCurrency(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
