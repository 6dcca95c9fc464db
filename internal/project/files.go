package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/farbraum/projektor/internal/slug"
)

// ErrCantDetermineTargetFile means the document lacks the fields needed to
// compute an output file name.
var ErrCantDetermineTargetFile = errors.New("project: cannot determine target file")

// BillType selects between the two bills of a project.
type BillType int

const (
	BillOffer BillType = iota
	BillInvoice
)

func (t BillType) String() string {
	if t == BillInvoice {
		return "invoice"
	}
	return "offer"
}

// OfferFileName computes the offer output file name:
// "<offer-number> <slug>.<ext>".
func (p *Project) OfferFileName(ext string) (string, bool) {
	num, ok := p.Offer().Number()
	if !ok {
		return "", false
	}
	name, ok := p.Name()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s %s.%s", num, slug.Make(name), ext), true
}

// InvoiceFileName computes the invoice output file name:
// "<invoice-number> <slug> <invoice-date>.<ext>".
func (p *Project) InvoiceFileName(ext string) (string, bool) {
	num, ok := p.Invoice().NumberStr()
	if !ok {
		return "", false
	}
	name, ok := p.Name()
	if !ok {
		return "", false
	}
	date, ok := p.Invoice().Date()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s %s %s.%s", num, slug.Make(name), date.Format("2006-01-02"), ext), true
}

// OutputFileName computes the output file name for a bill type.
func (p *Project) OutputFileName(t BillType, ext string) (string, bool) {
	if t == BillInvoice {
		return p.InvoiceFileName(ext)
	}
	return p.OfferFileName(ext)
}

// WriteOutputFile writes rendered bill content next to the record file and
// returns the written path.
func (p *Project) WriteOutputFile(content string, t BillType, ext string) (string, error) {
	name, ok := p.OutputFileName(t, ext)
	if !ok {
		return "", fmt.Errorf("%w: %s for %s", ErrCantDetermineTargetFile, t, p.ShortDesc())
	}
	target := filepath.Join(p.Dir(), name)
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("project: write output: %w", err)
	}
	return target, nil
}
