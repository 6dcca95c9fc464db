package project_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farbraum/projektor/internal/project"
	"github.com/farbraum/projektor/internal/repo"
	"github.com/farbraum/projektor/internal/storage"
	"github.com/farbraum/projektor/internal/testutil"
)

// testProject parses an inline document through a real file.
func testProject(t *testing.T, content string) *project.Project {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "record.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := project.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return p
}

func TestOpenFile_ParseFailureIsHardError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yml")
	if err := os.WriteFile(path, []byte("event:\n  name: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := project.OpenFile(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	// The diagnostic reproduces the document with 1-based line numbers.
	if !strings.Contains(err.Error(), "  2. ") {
		t.Errorf("diagnostic lacks numbered lines:\n%v", err)
	}
}

func TestOpen_NoRecordFile(t *testing.T) {
	_, err := project.Open(t.TempDir())
	if !errors.Is(err, storage.ErrProjectDoesNotExist) {
		t.Errorf("err = %v, want ErrProjectDoesNotExist", err)
	}
}

func TestValidate_AccumulatesAllDefects(t *testing.T) {
	// No name, no event date: both must be reported at once.
	p := testProject(t, "manager: ada\nformat: \"3.0\"\n")
	r := p.Validate()
	if !r.Contains("name") || !r.Contains("date") {
		t.Errorf("report = %v, want name and date", r)
	}
}

func TestReadiness_SampleIsOfferAndInvoiceReady(t *testing.T) {
	p := testProject(t, testutil.SampleProject("Sommerfest", 42))
	if r := p.OfferReadiness(); !r.OK() {
		t.Errorf("offer readiness = %v", r)
	}
	if r := p.InvoiceReadiness(); !r.OK() {
		t.Errorf("invoice readiness = %v", r)
	}
	if !p.ReadyForArchive() {
		t.Errorf("archive readiness = %v", p.ArchiveReadiness())
	}
}

func TestInvoice_UnquotedISODate(t *testing.T) {
	p := testProject(t, `event:
  name: Fest
date: 2026-08-24
invoice:
  number: 7
  date: 2026-08-26
`)
	date, ok := p.Invoice().Date()
	if !ok || date.Format("2006-01-02") != "2026-08-26" {
		t.Errorf("invoice date = %v, %v", date, ok)
	}
	if r := p.Invoice().Validate(); r.Contains("invoice_date") {
		t.Errorf("valid ISO date reported: %v", r)
	}
	if idx := p.Index(); idx != "R00720260824" {
		t.Errorf("index = %q", idx)
	}
}

func TestReadiness_InvoiceImpliesOffer(t *testing.T) {
	docs := []string{
		"manager: ada\n",
		testutil.SampleProject("Fest", 7),
		"event:\n  name: Gala\ninvoice:\n  number: 3\n  date: 01.02.2026\n",
		"client:\n  title: Frau\n  last_name: Benz\n",
	}
	for _, doc := range docs {
		p := testProject(t, doc)
		if p.InvoiceReadiness().OK() && !p.OfferReadiness().OK() {
			t.Errorf("invoice-ready but not offer-ready:\n%s", doc)
		}
	}
}

func TestReadiness_CanceledIsAlwaysArchiveReady(t *testing.T) {
	// Unpaid employee and no products section, but canceled.
	p := testProject(t, `canceled: true
hours:
  employees:
    - name: ada
      time: 4
      payed: false
`)
	if !p.ReadyForArchive() {
		t.Errorf("canceled record not archive-ready: %v", p.ArchiveReadiness())
	}
}

func TestReadiness_UnpaidEmployeesBlockArchive(t *testing.T) {
	p := testProject(t, `products: {}
hours:
  employees:
    - name: ada
      time: 4
      payed: false
`)
	r := p.ArchiveReadiness()
	if !r.Contains("employees_payed") {
		t.Errorf("report = %v, want employees_payed", r)
	}
}

func TestBills_GroupedByTax(t *testing.T) {
	p := testProject(t, `products:
  A:
    amount: 2
    price: 10.0
    tax: 0.19
  B:
    amount: 1
    price: 5.0
    tax: 0.07
`)
	offer, invoice, err := p.Bills()
	if err != nil {
		t.Fatalf("bills: %v", err)
	}
	for _, bill := range []*project.Bill{offer, invoice} {
		rates := bill.TaxRates()
		if len(rates) != 2 || rates[0] != 0.07 || rates[1] != 0.19 {
			t.Fatalf("tax rates = %v", rates)
		}
		if got := bill.NetByTax(0.19); got != 20.0 {
			t.Errorf("net at 19%% = %v, want 20", got)
		}
		if got := bill.NetByTax(0.07); got != 5.0 {
			t.Errorf("net at 7%% = %v, want 5", got)
		}
		if got := bill.NetTotal(); got != 25.0 {
			t.Errorf("net total = %v", got)
		}
	}
}

func TestBills_ZeroQuantitiesYieldEmptyBill(t *testing.T) {
	p := testProject(t, `products:
  A:
    amount: 0
    price: 10.0
  B:
    amount: -1
    price: 5.0
`)
	offer, invoice, err := p.Bills()
	if err != nil {
		t.Fatalf("bills: %v", err)
	}
	if !offer.IsEmpty() || !invoice.IsEmpty() {
		t.Errorf("bills not empty: offer %v invoice %v", offer.TaxRates(), invoice.TaxRates())
	}
}

func TestBills_MissingProductsSectionIsHardError(t *testing.T) {
	p := testProject(t, "manager: ada\n")
	_, _, err := p.Bills()
	if !errors.Is(err, project.ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestBills_ServiceLineFromHours(t *testing.T) {
	p := testProject(t, `hours:
  salary: 9.0
  total: 2
products: {}
`)
	offer, _, err := p.Bills()
	if err != nil {
		t.Fatalf("bills: %v", err)
	}
	if got := offer.NetByTax(0); got != 18.0 {
		t.Errorf("service net = %v, want 18", got)
	}
}

func TestBills_SoldOverridesInvoiceQuantity(t *testing.T) {
	p := testProject(t, `products:
  A:
    amount: 5
    sold: 3
    price: 2.0
  B:
    amount: 4
    returned: 1
    price: 1.0
`)
	offer, invoice, err := p.Bills()
	if err != nil {
		t.Fatalf("bills: %v", err)
	}
	if got := offer.NetTotal(); got != 14.0 {
		t.Errorf("offer net = %v, want 14", got)
	}
	if got := invoice.NetTotal(); got != 9.0 {
		t.Errorf("invoice net = %v, want 9", got)
	}
}

func TestBills_ProductTaxDefaultsToDocumentTax(t *testing.T) {
	p := testProject(t, `tax: 0.19
products:
  A:
    amount: 1
    price: 10.0
`)
	offer, _, err := p.Bills()
	if err != nil {
		t.Fatalf("bills: %v", err)
	}
	if got := offer.TaxRates(); len(got) != 1 || got[0] != 0.19 {
		t.Errorf("tax rates = %v, want [0.19]", got)
	}
	if got := math.Round(offer.GrossTotal()*100) / 100; got != 11.9 {
		t.Errorf("gross = %v, want 11.9", got)
	}
}

func TestIndex_SortKey(t *testing.T) {
	invoiced := testProject(t, testutil.SampleProject("Fest", 42))
	if got := invoiced.Index(); got != "R04220260824" {
		t.Errorf("index = %q", got)
	}

	uninvoiced := testProject(t, "event:\n  name: Gala\n  dates:\n    - begin: 24.08.2026\n")
	if got := uninvoiced.Index(); got != "zzz20260824" {
		t.Errorf("index = %q", got)
	}
	if invoiced.Index() >= uninvoiced.Index() {
		t.Error("numbered records must sort before date-only records")
	}

	dateless := testProject(t, "manager: ada\n")
	if got := dateless.Index(); got != "" {
		t.Errorf("index = %q, want empty", got)
	}
}

func TestMatchesFilterAndSearch(t *testing.T) {
	p := testProject(t, testutil.SampleProject("Sommerfest", 42))

	if !p.MatchesFilter("manager", "ADA") {
		t.Error("filter on manager failed")
	}
	if !p.MatchesFilter("ClientFullName", "vogt") {
		t.Error("filter on computed field failed")
	}
	if p.MatchesFilter("manager", "zzz") {
		t.Error("filter matched a non-substring")
	}

	if !p.MatchesSearch("sommer") {
		t.Error("search by name failed")
	}
	if !p.MatchesSearch("r042") {
		t.Error("search by invoice number failed")
	}
	if p.MatchesSearch("winter") {
		t.Error("search matched a non-substring")
	}
}

func TestStatus_DefaultsToUnknown(t *testing.T) {
	p := testProject(t, "manager: ada\n")
	if got := p.Status(); got != repo.StatusUnknown {
		t.Errorf("status = %q, want unknown", got)
	}
	p.SetStatus(repo.StatusWorkingModified)
	if got := p.Status(); got != repo.StatusWorkingModified {
		t.Errorf("status = %q", got)
	}
}

func TestReplaceField(t *testing.T) {
	p := testProject(t, "manager: __MANAGER__\nevent:\n  name: Fest\n")

	if fields := p.EmptyFields(); len(fields) != 1 || fields[0] != "MANAGER" {
		t.Fatalf("empty fields = %v", fields)
	}
	if err := p.ReplaceField("MANAGER", "grace"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, _ := p.Responsible(); got != "grace" {
		t.Errorf("manager = %q", got)
	}
	// The change reached the backing file.
	reopened, err := project.OpenFile(p.File())
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := reopened.Responsible(); got != "grace" {
		t.Errorf("persisted manager = %q", got)
	}
}

func TestReplaceField_InvalidResultLeavesFileUntouched(t *testing.T) {
	p := testProject(t, "manager: __MANAGER__\n")
	before, _ := os.ReadFile(p.File())

	err := p.ReplaceField("MANAGER", "[broken")
	if err == nil {
		t.Fatal("expected parse error")
	}
	after, _ := os.ReadFile(p.File())
	if string(before) != string(after) {
		t.Error("backing file changed despite parse failure")
	}
}

func TestOutputFileNames(t *testing.T) {
	p := testProject(t, testutil.SampleProject("Sommerfest", 42))

	if got, ok := p.OfferFileName("pdf"); !ok || got != "A20260810-1 sommerfest.pdf" {
		t.Errorf("offer file = %q, %v", got, ok)
	}
	if got, ok := p.InvoiceFileName("pdf"); !ok || got != "R042 sommerfest 2026-08-26.pdf" {
		t.Errorf("invoice file = %q, %v", got, ok)
	}

	bare := testProject(t, "manager: ada\n")
	if _, ok := bare.OfferFileName("pdf"); ok {
		t.Error("offer file name resolved without offer fields")
	}
	if _, err := bare.WriteOutputFile("x", project.BillOffer, "pdf"); !errors.Is(err, project.ErrCantDetermineTargetFile) {
		t.Errorf("err = %v, want ErrCantDetermineTargetFile", err)
	}
}

func TestComputedFields(t *testing.T) {
	p := testProject(t, testutil.SampleProject("Sommerfest", 42))

	cases := []struct {
		field string
		want  string
	}{
		{"Name", "Sommerfest"},
		{"Responsible", "ada"},
		{"InvoiceNumber", "R042"},
		{"InvoiceNumberLong", "R2026-042"},
		{"OfferNumber", "A20260810-1"},
		{"Year", "2026"},
		{"Date", "2026.08.24"},
		{"ClientFullName", "Otto Vogt"},
		{"Employees", "ada (4h), grace (3.5h)"},
		{"Wages", "67.50"},
		{"Final", "92.50"},
	}
	for _, c := range cases {
		if got, ok := p.Get(c.field); !ok || got != c.want {
			t.Errorf("Get(%s) = %q, %v, want %q", c.field, got, ok, c.want)
		}
	}

	// Unrecognized names fall through to raw document paths.
	if got, ok := p.Get("client/last_name"); !ok || got != "Vogt" {
		t.Errorf("raw path fallback = %q, %v", got, ok)
	}
	if _, ok := p.Get("no/such/path"); ok {
		t.Error("absent path resolved")
	}
}

func TestClientAddressing(t *testing.T) {
	p := testProject(t, testutil.SampleProject("Fest", 1))
	if got, ok := p.Client().Addressing(); !ok || got != "Sehr geehrter Herr Vogt" {
		t.Errorf("addressing = %q, %v", got, ok)
	}

	unknownTitle := testProject(t, "client:\n  title: Esteemed\n  last_name: Vogt\n")
	if _, ok := unknownTitle.Client().Addressing(); ok {
		t.Error("addressing resolved for unknown title")
	}
	r := unknownTitle.Client().Validate()
	if !r.Contains("client_addressing") {
		t.Errorf("report = %v, want client_addressing", r)
	}
}

func TestFromTemplate(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "default.yml")
	if err := os.WriteFile(tplPath, []byte(testutil.SampleTemplate), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := project.FromTemplate("Herbstball", tplPath,
		map[string]string{"MANAGER": "grace"},
		project.Defaults{Tax: 0.19, Salary: 9.5, Manager: "ada"})
	if err != nil {
		t.Fatalf("from template: %v", err)
	}
	defer p.Cleanup()

	// Caller-supplied values win over computed defaults.
	if got, _ := p.Responsible(); got != "grace" {
		t.Errorf("manager = %q", got)
	}
	if got, _ := p.Name(); got != "Herbstball" {
		t.Errorf("name = %q", got)
	}
	if got, _ := p.Hours().Salary(); got != 9.5 {
		t.Errorf("salary = %v", got)
	}
	if fields := p.EmptyFields(); len(fields) != 0 {
		t.Errorf("unresolved fields = %v", fields)
	}
	if _, err := os.Stat(p.File()); err != nil {
		t.Errorf("temp record file missing: %v", err)
	}
}

func TestFromTemplate_CleanupReleasesTempDir(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "default.yml")
	if err := os.WriteFile(tplPath, []byte(testutil.SampleTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := project.FromTemplate("Fest", tplPath, nil, project.Defaults{Tax: 0.19, Salary: 9})
	if err != nil {
		t.Fatal(err)
	}
	tempFile := p.File()
	p.Cleanup()
	if _, err := os.Stat(tempFile); !os.IsNotExist(err) {
		t.Error("temp dir survived cleanup")
	}
}

func TestBillCSV(t *testing.T) {
	p := testProject(t, `products:
  A:
    amount: 2
    price: 10.0
    tax: 0.19
`)
	csv, err := p.BillCSV(project.BillOffer)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv = %q", csv)
	}
	if lines[0] != "#;Bezeichnung;Menge;EP;Steuer;Preis" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "0;A;2;10.00;0.19;20.00" {
		t.Errorf("row = %q", lines[1])
	}
}
