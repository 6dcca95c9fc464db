package project

import (
	"fmt"
	"time"

	"github.com/farbraum/projektor/internal/yamlpath"
)

// Offer is a view over the offer section of a project.
type Offer struct {
	p *Project
}

// Offer returns the view over the offer section.
func (p *Project) Offer() Offer { return Offer{p: p} }

// Date returns the offer date as a concrete calendar date.
func (o Offer) Date() (time.Time, bool) {
	return o.p.dateAt("offer/date")
}

// Appendix returns the per-day offer counter, defaulting to 1.
func (o Offer) Appendix() int {
	if n, ok := yamlpath.GetInt(o.p.tree, "offer/appendix"); ok {
		return n
	}
	return 1
}

// Number derives the offer number from date and appendix: "A20260810-1".
func (o Offer) Number() (string, bool) {
	date, ok := o.Date()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("A%s-%d", date.Format("20060102"), o.Appendix()), true
}

// Validate accumulates missing offer fields and flags an offer date that
// does not parse to a calendar date.
func (o Offer) Validate() Report {
	r := o.p.missingFields("offer/date", "offer/appendix", "manager")
	if _, ok := o.Date(); !ok {
		r = append(r, "offer_date_format")
	}
	return r
}
