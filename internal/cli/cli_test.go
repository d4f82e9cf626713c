package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/clipboard/mockboard"
	"github.com/yiblet/proboost/internal/config"
	"github.com/yiblet/proboost/internal/export"
	"github.com/yiblet/proboost/internal/generate"
	"github.com/yiblet/proboost/internal/history"
	"github.com/yiblet/proboost/internal/sink"
	"github.com/yiblet/proboost/internal/store/memstore"
)

type testCLI struct {
	*CLI
	app   *app.App
	board *mockboard.MockClipboard
	out   *bytes.Buffer
	dir   string
}

func setupCLI(t *testing.T, stdin string) *testCLI {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendMemory
	a := app.New(cfg, memstore.NewMemoryStore(), sink.NewFileSink(filepath.Join(dir, "exports")))
	a.Generator = generate.Func(func(ctx context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, "Staff Engineer") {
			return "", generate.ErrUnavailable
		}
		return "Hi Sam, I'd love to connect.", nil
	})
	t.Cleanup(func() { a.Close() })

	board := mockboard.New()
	out := &bytes.Buffer{}
	cm := config.NewConfigManagerWithPath(filepath.Join(dir, "config.yaml"))
	return &testCLI{
		CLI:   NewWithApp(a, cm, board, strings.NewReader(stdin), out),
		app:   a,
		board: board,
		out:   out,
		dir:   dir,
	}
}

func (c *testCLI) run(t *testing.T, args *Args) error {
	t.Helper()
	c.out.Reset()
	return c.Execute(context.Background(), args)
}

func (c *testCLI) seed(t *testing.T) {
	t.Helper()
	add := func(in history.Input, output any) {
		entry, err := history.NewEntry(in, output)
		if err != nil {
			t.Fatalf("NewEntry failed: %v", err)
		}
		c.app.History.Add(entry, "")
	}
	add(history.NetworkingInput{TargetRole: "CTO"}, "Dear CTO,\nLet's talk.")
	add(history.ContentGenerationInput{Text: "Launch day"}, history.PostsOutput{Posts: []export.Post{
		{Tone: "Bold", Text: "We shipped!", Hashtags: []string{"#launch"}},
		{Tone: "Calm", Text: "A quiet release."},
	}})
	add(history.JobPostInput{JobTitle: "Designer"}, "**Designer**\n- Figma")
}

func strPtr(s string) *string { return &s }

func TestNewWithArgs_ConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	backend := config.BackendMemory

	c, err := NewWithArgs(&Args{ConfigPath: &path, Backend: &backend})
	if err != nil {
		t.Fatalf("NewWithArgs failed: %v", err)
	}
	defer c.Close()

	if c.configs.GetConfigPath() != path {
		t.Errorf("Expected config path %s, got %s", path, c.configs.GetConfigPath())
	}
	if c.cfg.Backend != config.BackendMemory {
		t.Errorf("Expected backend flag to win, got %s", c.cfg.Backend)
	}
	if c.app != nil {
		t.Error("Expected stores to open lazily")
	}
}

func TestNewWithArgs_InvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	backend := "floppy"
	if _, err := NewWithArgs(&Args{ConfigPath: &path, Backend: &backend}); err == nil {
		t.Error("Expected an unknown backend to be rejected")
	}
}

func TestArgsValidation_ValidCases(t *testing.T) {
	tests := []struct {
		name string
		args Args
	}{
		{"no command", Args{}},
		{"history list", Args{History: &HistoryCmd{List: &HistoryListCmd{Feature: strPtr("networking")}}}},
		{"history add", Args{History: &HistoryCmd{Add: &HistoryAddCmd{Feature: "saved-job", Input: "{}"}}}},
		{"history show", Args{History: &HistoryCmd{Show: &HistoryShowCmd{Ref: "0"}}}},
		{"export ref", Args{Export: &ExportCmd{Ref: strPtr("0"), Format: "docx"}}},
		{"export file", Args{Export: &ExportCmd{File: strPtr("a.md"), Format: "pdf", Font: strPtr("serif")}}},
		{"generate fields", Args{Generate: &GenerateCmd{Feature: "networking", Fields: []string{"targetRole=CTO"}}}},
		{"generate input", Args{Generate: &GenerateCmd{Feature: "networking", Input: strPtr("{}")}}},
		{"settings list", Args{Settings: &SettingsCmd{List: &SettingsListCmd{}}}},
		{"config get", Args{Config: &ConfigCmd{Get: &ConfigGetCmd{Key: "font"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.args.Validate(); err != nil {
				t.Errorf("Expected valid args, got: %v", err)
			}
		})
	}
}

func TestArgsValidation_InvalidCases(t *testing.T) {
	tests := []struct {
		name string
		args Args
	}{
		{"empty history", Args{History: &HistoryCmd{}}},
		{"unknown list feature", Args{History: &HistoryCmd{List: &HistoryListCmd{Feature: strPtr("poetry")}}}},
		{"unknown add feature", Args{History: &HistoryCmd{Add: &HistoryAddCmd{Feature: "poetry"}}}},
		{"negative search limit", Args{History: &HistoryCmd{Search: &HistorySearchCmd{Pattern: "x", Limit: -1}}}},
		{"export needs a source", Args{Export: &ExportCmd{Format: "pdf"}}},
		{"export both sources", Args{Export: &ExportCmd{Ref: strPtr("0"), File: strPtr("a.md"), Format: "pdf"}}},
		{"export bad format", Args{Export: &ExportCmd{Ref: strPtr("0"), Format: "gif"}}},
		{"export jpg", Args{Export: &ExportCmd{Ref: strPtr("0"), Format: "jpg"}}},
		{"export zip from file", Args{Export: &ExportCmd{File: strPtr("a.md"), Format: "zip"}}},
		{"export bad font", Args{Export: &ExportCmd{Ref: strPtr("0"), Format: "pdf", Font: strPtr("comic")}}},
		{"generate unknown feature", Args{Generate: &GenerateCmd{Feature: "poetry"}}},
		{"generate both inputs", Args{Generate: &GenerateCmd{Feature: "networking", Input: strPtr("{}"), Fields: []string{"a=b"}}}},
		{"generate bad field", Args{Generate: &GenerateCmd{Feature: "networking", Fields: []string{"=b"}}}},
		{"empty settings", Args{Settings: &SettingsCmd{}}},
		{"empty config", Args{Config: &ConfigCmd{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.args.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestHistoryList(t *testing.T) {
	c := setupCLI(t, "")

	if err := c.run(t, &Args{History: &HistoryCmd{List: &HistoryListCmd{}}}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(c.out.String(), "History is empty!") {
		t.Errorf("Expected empty message, got %q", c.out.String())
	}

	c.seed(t)
	if err := c.run(t, &Args{History: &HistoryCmd{List: &HistoryListCmd{}}}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	out := c.out.String()
	for _, want := range []string{"History (3/50)", "Job Post: Designer", "Launch day", "Networking: CTO"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "Job Post: Designer") > strings.Index(out, "Networking: CTO") {
		t.Errorf("Expected newest first:\n%s", out)
	}

	if err := c.run(t, &Args{History: &HistoryCmd{List: &HistoryListCmd{Feature: strPtr("networking")}}}); err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if strings.Contains(c.out.String(), "Designer") {
		t.Errorf("Expected feature filter to hide other items:\n%s", c.out.String())
	}

	if err := c.run(t, &Args{History: &HistoryCmd{List: &HistoryListCmd{JSON: true}}}); err != nil {
		t.Fatalf("json list failed: %v", err)
	}
	var items []history.HistoryItem
	if err := json.Unmarshal(c.out.Bytes(), &items); err != nil {
		t.Fatalf("Expected JSON collection: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Expected 3 items, got %d", len(items))
	}
}

func TestHistoryShowAddRenameDelete(t *testing.T) {
	c := setupCLI(t, "")
	c.seed(t)

	if err := c.run(t, &Args{History: &HistoryCmd{Show: &HistoryShowCmd{Ref: "2"}}}); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if c.out.String() != "Dear CTO,\nLet's talk.\n" {
		t.Errorf("Unexpected document text %q", c.out.String())
	}

	if err := c.run(t, &Args{History: &HistoryCmd{Show: &HistoryShowCmd{Ref: "9"}}}); err == nil {
		t.Error("Expected out of range index to fail")
	}
	if err := c.run(t, &Args{History: &HistoryCmd{Show: &HistoryShowCmd{Ref: "missing-id"}}}); err == nil {
		t.Error("Expected unknown id to fail")
	}

	add := &HistoryAddCmd{Feature: "saved-job", Input: `{"title":"SRE","company":"Acme"}`, Output: `{"title":"SRE"}`}
	if err := c.run(t, &Args{History: &HistoryCmd{Add: add}}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.HasPrefix(c.out.String(), "Stored: SRE at Acme (") {
		t.Errorf("Unexpected add output %q", c.out.String())
	}
	newest, _ := c.app.History.At(0)

	if err := c.run(t, &Args{History: &HistoryCmd{Rename: &HistoryRenameCmd{Ref: newest.ID, Title: "Dream job"}}}); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if c.out.String() != "Renamed: Dream job\n" {
		t.Errorf("Unexpected rename output %q", c.out.String())
	}

	if err := c.run(t, &Args{History: &HistoryCmd{Delete: &HistoryDeleteCmd{Ref: "0"}}}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if c.out.String() != "Deleted: Dream job\n" {
		t.Errorf("Unexpected delete output %q", c.out.String())
	}
	if c.app.History.Len() != 3 {
		t.Errorf("Expected 3 items after delete, got %d", c.app.History.Len())
	}
}

func TestHistoryClear_Confirmation(t *testing.T) {
	c := setupCLI(t, "n\n")
	c.seed(t)

	if err := c.run(t, &Args{History: &HistoryCmd{Clear: &HistoryClearCmd{}}}); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !strings.Contains(c.out.String(), "Cancelled.") || c.app.History.Len() != 3 {
		t.Errorf("Expected clear to be cancelled, got %q", c.out.String())
	}

	if err := c.run(t, &Args{History: &HistoryCmd{Clear: &HistoryClearCmd{Force: true}}}); err != nil {
		t.Fatalf("forced clear failed: %v", err)
	}
	if c.out.String() != "Cleared 3 item(s) from history.\n" {
		t.Errorf("Unexpected clear output %q", c.out.String())
	}

	if err := c.run(t, &Args{History: &HistoryCmd{Clear: &HistoryClearCmd{}}}); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if c.out.String() != "History is already empty.\n" {
		t.Errorf("Unexpected output %q", c.out.String())
	}
}

func TestHistoryClear_Yes(t *testing.T) {
	c := setupCLI(t, "yes\n")
	c.seed(t)

	if err := c.run(t, &Args{History: &HistoryCmd{Clear: &HistoryClearCmd{}}}); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if c.app.History.Len() != 0 {
		t.Errorf("Expected empty history, got %d items", c.app.History.Len())
	}
}

func TestHistoryCopy(t *testing.T) {
	c := setupCLI(t, "")
	c.seed(t)

	if err := c.run(t, &Args{History: &HistoryCmd{Copy: &HistoryCopyCmd{Ref: "2"}}}); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if c.board.Text() != "Dear CTO,\nLet's talk." {
		t.Errorf("Unexpected clipboard text %q", c.board.Text())
	}
	if c.out.String() != "Copied 21 bytes to clipboard: Networking: CTO\n" {
		t.Errorf("Unexpected copy output %q", c.out.String())
	}

	c.board.SetUnsupported()
	if err := c.run(t, &Args{History: &HistoryCmd{Copy: &HistoryCopyCmd{Ref: "0"}}}); err == nil {
		t.Error("Expected copy to fail without a clipboard")
	}
}

func TestHistorySearch(t *testing.T) {
	c := setupCLI(t, "")
	c.seed(t)

	if err := c.run(t, &Args{History: &HistoryCmd{Search: &HistorySearchCmd{Pattern: "cto|designer", IndexOnly: true}}}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if c.out.String() != "0\n2\n" {
		t.Errorf("Expected indexes 0 and 2, got %q", c.out.String())
	}

	if err := c.run(t, &Args{History: &HistoryCmd{Search: &HistorySearchCmd{Pattern: "cto|designer", Limit: 1}}}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(c.out.String()), "\n"); len(lines) != 1 {
		t.Errorf("Expected one result, got %q", c.out.String())
	}

	err := c.run(t, &Args{History: &HistoryCmd{Search: &HistorySearchCmd{Pattern: "kubernetes"}}})
	if err == nil || !strings.Contains(err.Error(), "no matches found") {
		t.Errorf("Expected no matches error, got %v", err)
	}
	if err := c.run(t, &Args{History: &HistoryCmd{Search: &HistorySearchCmd{Pattern: "("}}}); err == nil {
		t.Error("Expected invalid pattern error")
	}
}

func TestExport_HistoryItem(t *testing.T) {
	c := setupCLI(t, "")
	c.seed(t)

	out := filepath.Join(c.dir, "cto.pdf")
	if err := c.run(t, &Args{Export: &ExportCmd{Ref: strPtr("2"), Format: "pdf", Out: &out}}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if c.out.String() != "Exported "+out+" (1 page(s))\n" {
		t.Errorf("Unexpected export output %q", c.out.String())
	}
	data, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("Expected a PDF at %s: %v", out, err)
	}

	// Without --out the document goes to the export sink.
	if err := c.run(t, &Args{Export: &ExportCmd{Ref: strPtr("0"), Format: "docx"}}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	want := filepath.Join(c.dir, "exports", "job-post-designer.docx")
	if c.out.String() != "Exported "+want+"\n" {
		t.Errorf("Unexpected export output %q", c.out.String())
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("Expected exported file: %v", err)
	}
}

func TestExport_Zip(t *testing.T) {
	c := setupCLI(t, "")
	c.seed(t)

	out := filepath.Join(c.dir, "posts.zip")
	if err := c.run(t, &Args{Export: &ExportCmd{Ref: strPtr("1"), Format: "zip", Out: &out}}); err != nil {
		t.Fatalf("zip export failed: %v", err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("Expected a zip archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Errorf("Expected one file per post, got %d", len(zr.File))
	}

	if err := c.run(t, &Args{Export: &ExportCmd{Ref: strPtr("0"), Format: "zip", Out: &out}}); err == nil {
		t.Error("Expected zip export of an item without posts to fail")
	}
}

func TestExport_File(t *testing.T) {
	c := setupCLI(t, "")

	src := filepath.Join(c.dir, "notes.md")
	if err := os.WriteFile(src, []byte("SUMMARY\n- Built things"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(c.dir, "notes.txt")
	if err := c.run(t, &Args{Export: &ExportCmd{File: &src, Format: "txt", Out: &out}}); err != nil {
		t.Fatalf("file export failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Built things") {
		t.Errorf("Unexpected text export %q", data)
	}

	if err := c.run(t, &Args{Export: &ExportCmd{File: strPtr(filepath.Join(c.dir, "nope.md")), Format: "txt"}}); err == nil {
		t.Error("Expected a missing file to fail")
	}
}

func TestBundle(t *testing.T) {
	c := setupCLI(t, `{"posts":[{"tone":"Bold","text":"Hello"}]}`)

	out := filepath.Join(c.dir, "bundle.zip")
	if err := c.run(t, &Args{Bundle: &BundleCmd{Input: "-", Out: &out, Name: "posts"}}); err != nil {
		t.Fatalf("bundle failed: %v", err)
	}
	if c.out.String() != "Bundled 1 post(s) into "+out+"\n" {
		t.Errorf("Unexpected bundle output %q", c.out.String())
	}

	src := filepath.Join(c.dir, "empty.json")
	if err := os.WriteFile(src, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.run(t, &Args{Bundle: &BundleCmd{Input: src, Name: "posts"}}); err == nil {
		t.Error("Expected an empty post list to fail")
	}
}

func TestImage(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	c := setupCLI(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(payload))

	if err := c.run(t, &Args{Image: &ImageCmd{Input: "-", Name: "avatar"}}); err != nil {
		t.Fatalf("image failed: %v", err)
	}
	want := filepath.Join(c.dir, "exports", "avatar.jpg")
	if c.out.String() != "Saved "+want+" (6 bytes)\n" {
		t.Errorf("Unexpected image output %q", c.out.String())
	}
	data, err := os.ReadFile(want)
	if err != nil || !bytes.Equal(data, payload) {
		t.Errorf("Expected decoded bytes at %s: %v", want, err)
	}
}

func TestImage_EmptyInput(t *testing.T) {
	c := setupCLI(t, "")
	err := c.run(t, &Args{Image: &ImageCmd{Input: "-", Name: "avatar"}})
	if err == nil || !strings.Contains(err.Error(), "no input provided") {
		t.Errorf("Expected no input error, got %v", err)
	}
}

func TestIngest(t *testing.T) {
	c := setupCLI(t, "")

	src := filepath.Join(c.dir, "resume.md")
	if err := os.WriteFile(src, []byte("# Jane Doe\nEngineer"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.run(t, &Args{Ingest: &IngestCmd{File: src}}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !strings.Contains(c.out.String(), "Jane Doe") {
		t.Errorf("Expected extracted text, got %q", c.out.String())
	}

	out := filepath.Join(c.dir, "resume.txt")
	if err := c.run(t, &Args{Ingest: &IngestCmd{File: src, Out: &out}}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !strings.HasPrefix(c.out.String(), "Written to "+out) {
		t.Errorf("Unexpected ingest output %q", c.out.String())
	}

	bin := filepath.Join(c.dir, "tool.exe")
	if err := os.WriteFile(bin, []byte("MZ"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.run(t, &Args{Ingest: &IngestCmd{File: bin}}); err == nil {
		t.Error("Expected unsupported type to fail")
	}
}

func TestGenerate(t *testing.T) {
	c := setupCLI(t, "")

	cmd := &GenerateCmd{Feature: "networking", Fields: []string{"targetRole=Staff Engineer", "recipientName=Sam"}}
	if err := c.run(t, &Args{Generate: cmd}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(c.out.String(), "Hi Sam, I'd love to connect.\n") {
		t.Errorf("Unexpected generate output %q", c.out.String())
	}

	item, err := c.app.History.At(0)
	if err != nil {
		t.Fatalf("Expected a recorded item: %v", err)
	}
	if item.Title != "Networking: Staff Engineer" {
		t.Errorf("Unexpected title %q", item.Title)
	}
	if !strings.Contains(c.out.String(), item.ID) {
		t.Errorf("Expected item id in output %q", c.out.String())
	}
}

func TestGenerate_Failure(t *testing.T) {
	c := setupCLI(t, "")

	cmd := &GenerateCmd{Feature: "networking", Input: strPtr(`{"targetRole":"CTO"}`)}
	err := c.run(t, &Args{Generate: cmd})
	if !errors.Is(err, generate.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
	if c.app.History.Len() != 0 {
		t.Errorf("Expected nothing recorded on failure, got %d items", c.app.History.Len())
	}
}

func TestSettings(t *testing.T) {
	c := setupCLI(t, "")

	if err := c.run(t, &Args{Settings: &SettingsCmd{Set: &SettingsSetCmd{Name: "theme", Value: "dark"}}}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if c.out.String() != "Set theme = dark\n" {
		t.Errorf("Unexpected set output %q", c.out.String())
	}

	if err := c.run(t, &Args{Settings: &SettingsCmd{Set: &SettingsSetCmd{Name: "api-key", Value: "AIza-secret-1234"}}}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if c.out.String() != "Set api-key = ********1234\n" {
		t.Errorf("Expected masked key, got %q", c.out.String())
	}

	if err := c.run(t, &Args{Settings: &SettingsCmd{Get: &SettingsGetCmd{Name: "theme"}}}); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if c.out.String() != "dark\n" {
		t.Errorf("Unexpected get output %q", c.out.String())
	}

	if err := c.run(t, &Args{Settings: &SettingsCmd{List: &SettingsListCmd{}}}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	out := c.out.String()
	if !strings.HasPrefix(out, "Current settings:\n") || !strings.Contains(out, "  theme = dark") {
		t.Errorf("Unexpected list output:\n%s", out)
	}
	if strings.Contains(out, "AIza-secret") {
		t.Errorf("Expected the key to stay masked:\n%s", out)
	}

	if err := c.run(t, &Args{Settings: &SettingsCmd{Set: &SettingsSetCmd{Name: "theme", Value: "neon"}}}); err == nil {
		t.Error("Expected invalid theme to fail")
	}
	if err := c.run(t, &Args{Settings: &SettingsCmd{Get: &SettingsGetCmd{Name: "volume"}}}); err == nil {
		t.Error("Expected unknown setting to fail")
	}
}

func TestConfigCommands(t *testing.T) {
	c := setupCLI(t, "")

	if err := c.run(t, &Args{Config: &ConfigCmd{Set: &ConfigSetCmd{Key: "font", Value: "serif"}}}); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if c.out.String() != "Set font = serif\n" {
		t.Errorf("Unexpected set output %q", c.out.String())
	}

	if err := c.run(t, &Args{Config: &ConfigCmd{Get: &ConfigGetCmd{Key: "font"}}}); err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if c.out.String() != "serif\n" {
		t.Errorf("Unexpected get output %q", c.out.String())
	}

	if err := c.run(t, &Args{Config: &ConfigCmd{List: &ConfigListCmd{}}}); err != nil {
		t.Fatalf("config list failed: %v", err)
	}
	if !strings.Contains(c.out.String(), "Current configuration (") || !strings.Contains(c.out.String(), "  font = serif") {
		t.Errorf("Unexpected list output:\n%s", c.out.String())
	}

	if err := c.run(t, &Args{Config: &ConfigCmd{Set: &ConfigSetCmd{Key: "history-limit", Value: "many"}}}); err == nil {
		t.Error("Expected a non-integer history limit to fail")
	}
	if err := c.run(t, &Args{Config: &ConfigCmd{Get: &ConfigGetCmd{Key: "colour"}}}); err == nil {
		t.Error("Expected an unknown key to fail")
	}
}
