package project

import (
	"strings"

	"github.com/farbraum/projektor/internal/yamlpath"
)

// genderMatches maps a client title to a grammatical gender for salutation
// lookup.
var genderMatches = map[string]string{
	"herr":        "male",
	"frau":        "female",
	"professor":   "male",
	"professorin": "female",
	"dr":          "male",
	"mr":          "male",
	"ms":          "female",
	"mrs":         "female",
}

// addressings maps language → gender → salutation opener.
var addressings = map[string]map[string]string{
	"de": {"male": "Sehr geehrter", "female": "Sehr geehrte"},
	"en": {"male": "Dear", "female": "Dear"},
}

// Client is a view over the client section of a project.
type Client struct {
	p *Project
}

// Client returns the view over the client section.
func (p *Project) Client() Client { return Client{p: p} }

// Title returns the client's title ("Herr", "Frau", ...).
func (c Client) Title() (string, bool) {
	return yamlpath.GetString(c.p.tree, "client/title")
}

// FirstName returns the client's first name.
func (c Client) FirstName() (string, bool) {
	return yamlpath.GetString(c.p.tree, "client/first_name")
}

// LastName returns the client's last name.
func (c Client) LastName() (string, bool) {
	return yamlpath.GetString(c.p.tree, "client/last_name")
}

// FullName joins title-free first and last name.
func (c Client) FullName() (string, bool) {
	first, _ := c.FirstName()
	last, ok := c.LastName()
	if !ok {
		return "", false
	}
	if first == "" {
		return last, true
	}
	return first + " " + last, true
}

// Address returns the postal address block.
func (c Client) Address() (string, bool) {
	return yamlpath.GetString(c.p.tree, "client/address")
}

// Email returns the client's email address.
func (c Client) Email() (string, bool) {
	return yamlpath.GetString(c.p.tree, "client/email")
}

// Addressing derives the salutation line from the title's grammatical
// gender and the document language: "Sehr geehrter Herr Vogt".
func (c Client) Addressing() (string, bool) {
	title, ok := c.Title()
	if !ok {
		return "", false
	}
	// Only the first word of the title decides the gender ("Prof. Dr."
	// style titles keep their full form in the output).
	words := strings.Fields(title)
	if len(words) == 0 {
		return "", false
	}
	keyword := strings.ToLower(strings.Trim(words[0], "."))
	gender, ok := genderMatches[keyword]
	if !ok {
		return "", false
	}
	byGender, ok := addressings[c.p.Lang()]
	if !ok {
		return "", false
	}
	phrase, ok := byGender[gender]
	if !ok {
		return "", false
	}
	last, ok := c.LastName()
	if !ok {
		return "", false
	}
	return phrase + " " + title + " " + last, true
}

// Validate accumulates every missing client field and reports an
// unresolvable salutation.
func (c Client) Validate() Report {
	r := c.p.missingFields(
		"client/address",
		"client/title",
		"client/last_name",
		"client/first_name",
	)
	if _, ok := c.Addressing(); !ok {
		r = append(r, "client_addressing")
	}
	return r
}
