package project

import (
	"fmt"
	"strings"

	"github.com/farbraum/projektor/internal/yamlpath"
)

// Employee is one recorded worker on a project.
type Employee struct {
	Name  string
	Time  float64
	Payed bool
}

// Hours is a view over the recorded working hours of a project.
type Hours struct {
	p *Project
}

// Hours returns the view over the recorded hours.
func (p *Project) Hours() Hours { return Hours{p: p} }

// Salary returns the configured hourly salary for this project.
func (h Hours) Salary() (float64, bool) {
	return yamlpath.GetFloat(h.p.tree, "hours/salary")
}

// Total returns the total recorded hours: the explicit total if present,
// otherwise the sum over employees.
func (h Hours) Total() (float64, bool) {
	if t, ok := yamlpath.GetFloat(h.p.tree, "hours/total"); ok {
		return t, true
	}
	employees, ok := h.Employees()
	if !ok {
		return 0, false
	}
	var sum float64
	for _, e := range employees {
		sum += e.Time
	}
	return sum, true
}

// Employees returns the recorded employees in document order.
func (h Hours) Employees() ([]Employee, bool) {
	node, ok := yamlpath.Get(h.p.tree, "hours/employees")
	if !ok {
		return nil, false
	}
	seq, ok := node.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Employee, 0, len(seq))
	for i := range seq {
		base := fmt.Sprintf("hours/employees/%d", i)
		name, _ := yamlpath.GetString(h.p.tree, base+"/name")
		hours, _ := yamlpath.GetFloat(h.p.tree, base+"/time")
		payed, _ := yamlpath.GetBool(h.p.tree, base+"/payed")
		out = append(out, Employee{Name: name, Time: hours, Payed: payed})
	}
	return out, true
}

// EmployeesString renders the employees for display: "ada (4h), grace (3.5h)".
func (h Hours) EmployeesString() string {
	employees, ok := h.Employees()
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(employees))
	for _, e := range employees {
		parts = append(parts, fmt.Sprintf("%s (%sh)", e.Name, trimFloat(e.Time)))
	}
	return strings.Join(parts, ", ")
}

// EmployeesPayed reports whether every recorded employee is marked payed.
// A project without recorded employees counts as settled.
func (h Hours) EmployeesPayed() bool {
	employees, ok := h.Employees()
	if !ok {
		return true
	}
	for _, e := range employees {
		if !e.Payed {
			return false
		}
	}
	return true
}

// Wages returns total hours times hourly salary.
func (h Hours) Wages() (float64, bool) {
	total, ok := h.Total()
	if !ok {
		return 0, false
	}
	salary, ok := h.Salary()
	if !ok {
		return 0, false
	}
	return total * salary, true
}

// Validate reports unpaid employees.
func (h Hours) Validate() Report {
	var r Report
	if !h.EmployeesPayed() {
		r = append(r, "employees_payed")
	}
	return r
}
