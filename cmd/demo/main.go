package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/config"
	"github.com/yiblet/proboost/internal/export"
	"github.com/yiblet/proboost/internal/generate"
	"github.com/yiblet/proboost/internal/history"
	"github.com/yiblet/proboost/internal/sink"
	"github.com/yiblet/proboost/internal/store/memstore"
)

func main() {
	fmt.Println("proboost History Demo")

	dir, err := os.MkdirTemp("", "proboost-demo")
	if err != nil {
		log.Fatalf("Failed to create export dir: %v", err)
	}
	defer os.RemoveAll(dir)

	// In-memory store, a small cap so eviction is visible, and a canned generator.
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendMemory
	cfg.HistoryLimit = 4
	kv := memstore.NewMemoryStore()
	a := app.New(cfg, kv, sink.NewFileSink(dir))
	defer a.Close()

	replies := 0
	a.Generator = generate.Func(func(ctx context.Context, prompt string) (string, error) {
		replies++
		return fmt.Sprintf("SUMMARY\nDraft number %d.\n- **Impact** first\n- Numbers second", replies), nil
	})

	fmt.Printf("Initial history size: %d (limit %d)\n\n", a.History.Len(), a.History.Limit())

	roles := []string{"CTO", "Staff Engineer", "Head of Design", "Recruiter", "Founder"}
	fmt.Println("Generating networking messages:")
	screen := a.Screen(history.Networking)
	for i, role := range roles {
		fields, _ := json.Marshal(history.NetworkingInput{TargetRole: role})
		screen.SetFields(fields)
		res, err := screen.Generate(context.Background())
		if err != nil {
			log.Printf("Failed to generate item %d: %v", i, err)
			continue
		}
		item, _ := a.History.Get(res.ItemID)
		fmt.Printf("%d. %s\n", i+1, item.Title)
	}

	fmt.Printf("\nFinal history size: %d\n\n", a.History.Len())
	fmt.Println("History contents (newest first):")
	for i, item := range a.History.List() {
		fmt.Printf("%d. [%s] %s\n", i, item.FeatureType, item.Title)
	}

	// Undo restores the fields and result from before the last generation.
	if screen.Undo() {
		var in history.NetworkingInput
		_ = json.Unmarshal(screen.Fields(), &in)
		res, _ := screen.Result()
		fmt.Printf("\nAfter undo the form targets %q and shows:\n%s\n", in.TargetRole, res.Text)
	}

	newest, err := a.History.At(0)
	if err != nil {
		log.Fatalf("Failed to get newest item: %v", err)
	}
	fmt.Println("\nExports of the newest item:")
	for _, f := range []export.Format{export.FormatText, export.FormatPDF, export.FormatDOCX} {
		doc, err := a.Render(newest, f)
		if err != nil {
			log.Printf("Failed to render %s: %v", f, err)
			continue
		}
		loc, err := a.Save(context.Background(), doc)
		if err != nil {
			log.Printf("Failed to save %s: %v", f, err)
			continue
		}
		fmt.Printf("  %-5s %6d bytes  %s\n", f, len(doc.Data), loc)
	}

	text, _ := history.DocumentText(newest)
	fmt.Println("\nLine classification:")
	for _, line := range export.Parse(text) {
		fmt.Printf("  %-8s %s\n", line.Kind, strings.TrimSpace(line.Text))
	}
}
