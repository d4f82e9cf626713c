package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/clipboard/mockboard"
	"github.com/yiblet/proboost/internal/config"
	"github.com/yiblet/proboost/internal/history"
	"github.com/yiblet/proboost/internal/sink"
	"github.com/yiblet/proboost/internal/store/memstore"
	"github.com/yiblet/proboost/internal/tui"
)

func main() {
	fmt.Println("Testing TUI Pane Borders")
	fmt.Println("========================")

	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendMemory
	a := app.New(cfg, memstore.NewMemoryStore(), sink.NewFileSink(os.TempDir()))
	defer a.Close()

	seed := []struct {
		in  history.Input
		out string
	}{
		{history.NetworkingInput{TargetRole: "CTO"}, "Dear CTO,\nI'd value twenty minutes of your time."},
		{history.JobPostInput{JobTitle: "Platform Engineer", Company: "Acme"}, "ABOUT THE ROLE\n- Own the **build** pipeline\n- Mentor juniors"},
		{history.CaseStudyInput{ProjectName: "Checkout rewrite"}, "# Results\nConversion up 12% after a long rollout that should wrap cleanly inside the right pane."},
	}
	for _, s := range seed {
		entry, err := history.NewEntry(s.in, s.out)
		if err != nil {
			log.Fatalf("Error building entry: %v", err)
		}
		a.History.Add(entry, "")
	}

	model := tui.NewAppModel(a, mockboard.New())
	model.Update(tea.WindowSizeMsg{Width: 120, Height: 20})

	view := model.View()
	lines := strings.Split(view, "\n")

	fmt.Printf("Rendered TUI view (%d lines):\n", len(lines))
	fmt.Println(strings.Repeat("=", 120))

	for i, line := range lines[:min(15, len(lines))] {
		fmt.Printf("Line %2d: %s\n", i, line)
	}

	fmt.Println(strings.Repeat("=", 120))

	// Check for border integrity
	var borderCheckLine string
	for i, line := range lines {
		if i > 2 && i < len(lines)-3 && len(line) > 25 && strings.Contains(line, "│") {
			borderCheckLine = line
			break
		}
	}

	if borderCheckLine == "" {
		fmt.Printf("Could not find a line with borders to analyze\n")
		os.Exit(1)
	}

	fmt.Printf("Border analysis: %s\n", borderCheckLine)

	var borderPositions []int
	for col, char := range []rune(ansi.Strip(borderCheckLine)) {
		if char == '│' {
			borderPositions = append(borderPositions, col)
		}
	}
	fmt.Printf("Found border characters (│) at columns: %v\n", borderPositions)

	if len(borderPositions) < 4 {
		fmt.Printf("Missing border characters: want both panes framed\n")
		os.Exit(1)
	}
	fmt.Printf("Both panes are framed: left %d..%d, right %d..%d\n",
		borderPositions[0], borderPositions[1],
		borderPositions[len(borderPositions)-2], borderPositions[len(borderPositions)-1])

	fmt.Printf("\nSelected item: %s\n", a.History.List()[0].Title)
	fmt.Println("\nBorder verification complete!")
}
