package project

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// ComputedField names a derived accessor: a field that is not present in
// the document but computed from it. Field lookup by name resolves
// computed fields before raw document paths.
type ComputedField string

const (
	FieldResponsible       ComputedField = "Responsible"
	FieldOfferNumber       ComputedField = "OfferNumber"
	FieldInvoiceNumber     ComputedField = "InvoiceNumber"
	FieldInvoiceNumberLong ComputedField = "InvoiceNumberLong"
	FieldName              ComputedField = "Name"
	FieldFinal             ComputedField = "Final"
	FieldAge               ComputedField = "Age"
	FieldOurBad            ComputedField = "OurBad"
	FieldTheirBad          ComputedField = "TheirBad"
	FieldYear              ComputedField = "Year"
	FieldEmployees         ComputedField = "Employees"
	FieldClientFullName    ComputedField = "ClientFullName"
	FieldWages             ComputedField = "Wages"
	FieldSortIndex         ComputedField = "SortIndex"
	FieldDate              ComputedField = "Date"
	FieldFormat            ComputedField = "Format"
	FieldDir               ComputedField = "Dir"
	FieldInvalid           ComputedField = "Invalid"
)

// ComputedFields lists every valid computed field name.
var ComputedFields = []ComputedField{
	FieldResponsible, FieldOfferNumber, FieldInvoiceNumber,
	FieldInvoiceNumberLong, FieldName, FieldFinal, FieldAge,
	FieldOurBad, FieldTheirBad, FieldYear, FieldEmployees,
	FieldClientFullName, FieldWages, FieldSortIndex, FieldDate,
	FieldFormat, FieldDir,
}

// ComputedFieldFrom resolves a name to a computed field, FieldInvalid for
// unrecognized names.
func ComputedFieldFrom(name string) ComputedField {
	for _, f := range ComputedFields {
		if string(f) == name {
			return f
		}
	}
	return FieldInvalid
}

// Get evaluates the computed field against a project. The mapping is total
// over the defined variants; FieldInvalid always reports absent.
func (f ComputedField) Get(p *Project) (string, bool) {
	switch f {
	case FieldResponsible:
		return p.Responsible()
	case FieldOfferNumber:
		return p.Offer().Number()
	case FieldInvoiceNumber:
		return p.Invoice().NumberStr()
	case FieldInvoiceNumberLong:
		return p.Invoice().NumberLongStr()
	case FieldName:
		return p.Name()
	case FieldFinal:
		sum, err := p.SumSold()
		if err != nil {
			return "", false
		}
		return formatCurrency(sum), true
	case FieldAge:
		age, ok := p.Age()
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%d days", age), true
	case FieldOurBad:
		d, ok := p.OurBad()
		if !ok {
			return "", false
		}
		return weeksString(d), true
	case FieldTheirBad:
		d, ok := p.TheirBad()
		if !ok {
			return "", false
		}
		return weeksString(d), true
	case FieldYear:
		year, ok := p.Year()
		if !ok {
			return "", false
		}
		return strconv.Itoa(year), true
	case FieldEmployees:
		s := p.Hours().EmployeesString()
		return s, s != ""
	case FieldClientFullName:
		return p.Client().FullName()
	case FieldWages:
		wages, ok := p.Wages()
		if !ok {
			return "", false
		}
		return formatCurrency(wages), true
	case FieldSortIndex:
		idx := p.Index()
		return idx, idx != ""
	case FieldDate:
		date, ok := p.ModifiedDate()
		if !ok {
			return "", false
		}
		return date.Format("2006.01.02"), true
	case FieldFormat:
		return p.Format()
	case FieldDir:
		dir := p.Dir()
		return filepath.Join(filepath.Base(filepath.Dir(dir)), filepath.Base(dir)), true
	default:
		return "", false
	}
}

func weeksString(d time.Duration) string {
	weeks := int(d.Hours() / 24 / 7)
	if weeks < 0 {
		weeks = -weeks
	}
	return fmt.Sprintf("%d weeks", weeks)
}
