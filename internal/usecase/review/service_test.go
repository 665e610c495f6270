package review

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/persistence/model"
	"github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/persistence/repository"
	"github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/persistence/uow"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

// extractionJSON is a well-formed model response used by the document
// submission tests.
const extractionJSON = `{
	"vulnerabilities": [
		{"vulnerability": "Unlocked server room", "discipline": "Physical Security", "severity": "high"}
	],
	"options_for_consideration": [
		{"option_text": "Install badge readers", "discipline": "Physical Security", "associated_vulnerability": "Unlocked server room"}
	],
	"sources": [
		{"source_text": "Facility assessment guide", "url": "https://example.gov/guide", "organization": "CISA", "reference_number": "R-1"}
	]
}`

type stubChat struct {
	reply   string
	err     error
	pingErr error
	calls   int
}

func (c *stubChat) Chat(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *stubChat) Ping(ctx context.Context) error { return c.pingErr }

func (c *stubChat) BaseURL() string { return "http://localhost:11434" }

type stubDocs struct {
	files   map[string][]byte
	order   []string
	moved   []string
	pingErr error
}

func newStubDocs() *stubDocs {
	return &stubDocs{files: map[string][]byte{}}
}

func (d *stubDocs) add(name string, content string) {
	if _, ok := d.files[name]; !ok {
		d.order = append(d.order, name)
	}
	d.files[name] = []byte(content)
}

func (d *stubDocs) List(ctx context.Context) ([]ports.DocumentFile, error) {
	files := make([]ports.DocumentFile, 0, len(d.order))
	for _, name := range d.order {
		content, ok := d.files[name]
		if !ok {
			continue
		}
		files = append(files, ports.DocumentFile{Name: name, Size: int64(len(content))})
	}
	return files, nil
}

func (d *stubDocs) Read(ctx context.Context, name string) ([]byte, error) {
	content, ok := d.files[name]
	if !ok {
		return nil, ports.ErrDocumentNotFound
	}
	return content, nil
}

func (d *stubDocs) MoveToProcessed(ctx context.Context, name string) error {
	if _, ok := d.files[name]; !ok {
		return ports.ErrDocumentNotFound
	}
	delete(d.files, name)
	d.moved = append(d.moved, name)
	return nil
}

func (d *stubDocs) Ping(ctx context.Context) error { return d.pingErr }

func (d *stubDocs) Location() string { return "/var/vofc/incoming" }

type fixture struct {
	svc         *Service
	submissions *repository.SubmissionRepository
	catalog     *repository.CatalogRepository
	chat        *stubChat
	docs        *stubDocs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "vofc.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Submission{},
		&model.Vulnerability{},
		&model.OptionForConsideration{},
		&model.VulnerabilityOFCLink{},
		&model.Source{},
		&model.OFCSourceLink{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	chat := &stubChat{reply: extractionJSON}
	docs := newStubDocs()
	submissions := repository.NewSubmissionRepository(db)
	catalog := repository.NewCatalogRepository(db)

	return &fixture{
		svc:         NewService(submissions, catalog, uow.NewUnitOfWork(db), chat, docs),
		submissions: submissions,
		catalog:     catalog,
		chat:        chat,
		docs:        docs,
	}
}

func (f *fixture) submitVulnerability(t *testing.T, title string) string {
	t.Helper()

	result, err := f.svc.Submit(context.Background(), SubmitInput{
		Type:          "vulnerability",
		Vulnerability: title,
		Discipline:    "Physical Security",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return result.SubmissionID
}

func TestSystemHealthReportsPerService(t *testing.T) {
	f := newFixture(t)
	f.chat.pingErr = errors.New("connection refused")

	result, err := f.svc.SystemHealth(context.Background())
	if err != nil {
		t.Fatalf("SystemHealth() error = %v", err)
	}
	if result.Healthy {
		t.Fatal("healthy = true, want false with ollama down")
	}
	if len(result.Services) != 3 {
		t.Fatalf("services len = %d, want 3", len(result.Services))
	}

	byName := map[string]ServiceHealth{}
	for _, service := range result.Services {
		byName[service.Name] = service
	}
	if byName["database"].Status != serviceStatusOnline {
		t.Fatalf("database status = %q, want online", byName["database"].Status)
	}
	if byName["ollama"].Status != serviceStatusOffline || byName["ollama"].Error == "" {
		t.Fatalf("ollama = %+v, want offline with error", byName["ollama"])
	}
	if byName["document_store"].Status != serviceStatusOnline {
		t.Fatalf("document_store status = %q, want online", byName["document_store"].Status)
	}
}

func TestUpdateOFCRejectsEmptyText(t *testing.T) {
	f := newFixture(t)
	empty := "   "

	_, err := f.svc.UpdateOFC(context.Background(), UpdateOFCInput{OFCID: 1, OptionText: &empty})
	if err == nil {
		t.Fatal("UpdateOFC() error = nil, want validation failure")
	}
}

func TestUpdateOFCNotFound(t *testing.T) {
	f := newFixture(t)
	text := "Install badge readers"

	_, err := f.svc.UpdateOFC(context.Background(), UpdateOFCInput{OFCID: 42, OptionText: &text})
	if !errors.Is(err, ports.ErrOFCNotFound) {
		t.Fatalf("UpdateOFC() error = %v, want ErrOFCNotFound", err)
	}
}
