package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/farbraum/projektor/internal/repo"
	"github.com/farbraum/projektor/internal/slug"
	"github.com/farbraum/projektor/internal/templater"
	"github.com/farbraum/projektor/internal/yamlpath"
)

// Defaults are the system-supplied fill values for template creation.
type Defaults struct {
	Tax     float64
	Salary  float64
	Manager string
}

// FromTemplate creates a record from a template: caller-supplied fill
// values first, computed system defaults second, then parse. The result
// lives in an exclusive temporary directory owned by the record until it is
// relocated into a lifecycle directory; Cleanup (or relocation via SetFile)
// destroys it.
func FromTemplate(name, templatePath string, fill map[string]string, d Defaults) (*Project, error) {
	tpl, err := templater.FromFile(templatePath)
	if err != nil {
		return nil, err
	}

	templateName := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	today := time.Now()
	defaultFill := map[string]string{
		"TEMPLATE":     templateName,
		"PROJECT-NAME": name,
		"DATE-EVENT":   today.AddDate(0, 0, 14).Format("02.01.2006"),
		"DATE-CREATED": today.Format("02.01.2006"),
		"TAX":          trimFloat(d.Tax),
		"SALARY":       trimFloat(d.Salary),
		"MANAGER":      d.Manager,
		"TIME-START":   "",
		"TIME-END":     "",
		"VERSION":      Version,
	}

	filled := tpl.FillData(fill).FillData(defaultFill).Finalize()

	tree, err := yamlpath.Parse(filled)
	if err != nil {
		return nil, parseDiagnostic(filled, err)
	}

	tempDir, err := os.MkdirTemp("", "projektor-"+slug.Make(name)+"-*")
	if err != nil {
		return nil, fmt.Errorf("project: create temp dir: %w", err)
	}
	success := false
	defer func() {
		if !success {
			_ = os.RemoveAll(tempDir)
		}
	}()

	tempFile := filepath.Join(tempDir, slug.Make(name)+"."+FileExtension)
	if err := os.WriteFile(tempFile, []byte(filled), 0o644); err != nil {
		return nil, fmt.Errorf("project: write temp record: %w", err)
	}

	success = true
	return &Project{
		filePath: tempFile,
		tempDir:  tempDir,
		status:   repo.StatusUnknown,
		content:  filled,
		tree:     tree,
	}, nil
}
