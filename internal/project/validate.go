package project

import (
	"strings"

	"github.com/farbraum/projektor/internal/yamlpath"
)

// Report is the set of missing or invalid field identifiers found by a
// validation pass. Empty means valid. Every check runs and accumulates;
// a report never stops at the first defect.
type Report []string

// OK reports whether the validation passed.
func (r Report) OK() bool { return len(r) == 0 }

// Contains reports whether the named field is part of the report.
func (r Report) Contains(field string) bool {
	for _, f := range r {
		if f == field {
			return true
		}
	}
	return false
}

func (r Report) String() string {
	if r.OK() {
		return "ok"
	}
	return "missing: " + strings.Join(r, ", ")
}

// missingFields collects every path that does not resolve in the document.
func (p *Project) missingFields(paths ...string) Report {
	var r Report
	for _, path := range paths {
		if _, ok := yamlpath.Get(p.tree, path); !ok {
			r = append(r, path)
		}
	}
	return r
}

func mergeReports(reports ...Report) Report {
	var out Report
	for _, r := range reports {
		out = append(out, r...)
	}
	return out
}

// Validate checks the document's own required fields: a name, an event
// date, a responsible person, and an output format.
func (p *Project) Validate() Report {
	var r Report
	if _, ok := p.Name(); !ok {
		r = append(r, "name")
	}
	if _, ok := p.EventDate(); !ok {
		r = append(r, "date")
	}
	if _, ok := p.Responsible(); !ok {
		r = append(r, "manager")
	}
	if _, ok := p.Format(); !ok {
		r = append(r, "format")
	}
	return r
}

// OfferReadiness reports everything keeping the record from producing an
// offer: own-document, client, and offer section defects combined.
func (p *Project) OfferReadiness() Report {
	return mergeReports(
		p.Offer().Validate(),
		p.Client().Validate(),
		p.Validate(),
	)
}

// InvoiceReadiness reports everything keeping the record from producing an
// invoice. Invoice readiness implies offer readiness.
func (p *Project) InvoiceReadiness() Report {
	return mergeReports(
		p.OfferReadiness(),
		p.Invoice().Validate(),
	)
}

// ArchiveReadiness reports everything keeping the record from being
// archived. Canceled projects are trivially ready; anything else needs a
// computable bill and fully paid employees.
func (p *Project) ArchiveReadiness() Report {
	if p.Canceled() {
		return nil
	}
	var r Report
	if _, _, err := p.Bills(); err != nil {
		r = append(r, "products")
	}
	return mergeReports(r, p.Hours().Validate())
}

// ReadyForArchive implements the storage contract over ArchiveReadiness.
func (p *Project) ReadyForArchive() bool {
	return p.ArchiveReadiness().OK()
}
