package project

import (
	"fmt"
	"time"

	"github.com/farbraum/projektor/internal/yamlpath"
)

// Invoice is a view over the invoice section of a project.
type Invoice struct {
	p *Project
}

// Invoice returns the view over the invoice section.
func (p *Project) Invoice() Invoice { return Invoice{p: p} }

// Number returns the raw invoice sequence number.
func (i Invoice) Number() (int, bool) {
	return yamlpath.GetInt(i.p.tree, "invoice/number")
}

// NumberStr returns the pretty invoice number: "R042".
func (i Invoice) NumberStr() (string, bool) {
	n, ok := i.Number()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("R%03d", n), true
}

// NumberLongStr returns the invoice number including year: "R2026-042".
func (i Invoice) NumberLongStr() (string, bool) {
	n, ok := i.Number()
	if !ok {
		return "", false
	}
	date, ok := i.Date()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("R%d-%03d", date.Year(), n), true
}

// Date returns the invoice date as a concrete calendar date.
func (i Invoice) Date() (time.Time, bool) {
	return i.p.dateAt("invoice/date")
}

// PayedDate returns the date the client settled the invoice.
func (i Invoice) PayedDate() (time.Time, bool) {
	return i.p.dateAt("invoice/payed_date")
}

// Validate accumulates the missing invoice number and flags an invoice
// date that does not parse to a calendar date.
func (i Invoice) Validate() Report {
	r := i.p.missingFields("invoice/number")
	if _, ok := i.Date(); !ok {
		r = append(r, "invoice_date")
	}
	return r
}
