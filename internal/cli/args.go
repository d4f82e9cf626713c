package cli

import (
	"fmt"
	"strings"

	"github.com/yiblet/proboost/internal/export"
	"github.com/yiblet/proboost/internal/history"
)

// Args represents the top-level command structure
type Args struct {
	ConfigPath *string `arg:"--config,env:PROBOOST_CONFIG" help:"Config file (default: ~/.config/proboost/config.yaml)"`
	Backend    *string `arg:"--backend" help:"Storage backend: sqlite, redis or memory"`
	DBPath     *string `arg:"--db" help:"SQLite database path"`
	Debug      bool    `arg:"--debug" help:"Enable debug logging"`

	History  *HistoryCmd  `arg:"subcommand:history" help:"List and manage generation history"`
	Export   *ExportCmd   `arg:"subcommand:export" help:"Export a history item or text file as txt, pdf, docx or zip"`
	Bundle   *BundleCmd   `arg:"subcommand:bundle" help:"Package posts from a JSON file into a zip of text files"`
	Image    *ImageCmd    `arg:"subcommand:image" help:"Save a base64 image as a .jpg"`
	Ingest   *IngestCmd   `arg:"subcommand:ingest" help:"Extract text from a .txt, .md, .pdf or .docx file"`
	Generate *GenerateCmd `arg:"subcommand:generate" help:"Run a feature and record the result in history"`
	Settings *SettingsCmd `arg:"subcommand:settings" help:"Manage user preferences"`
	Config   *ConfigCmd   `arg:"subcommand:config" help:"Manage configuration"`
	Serve    *ServeCmd    `arg:"subcommand:serve" help:"Start the local HTTP API"`
	Browse   *BrowseCmd   `arg:"subcommand:browse" help:"Browse history interactively"`
}

// HistoryCmd groups the history subcommands.
type HistoryCmd struct {
	List   *HistoryListCmd   `arg:"subcommand:list" help:"List history items, newest first"`
	Show   *HistoryShowCmd   `arg:"subcommand:show" help:"Print an item's document text"`
	Add    *HistoryAddCmd    `arg:"subcommand:add" help:"Record an item"`
	Rename *HistoryRenameCmd `arg:"subcommand:rename" help:"Change an item's title"`
	Delete *HistoryDeleteCmd `arg:"subcommand:delete" help:"Delete an item"`
	Clear  *HistoryClearCmd  `arg:"subcommand:clear" help:"Delete all items"`
	Copy   *HistoryCopyCmd   `arg:"subcommand:copy" help:"Copy an item's document text to the clipboard"`
	Search *HistorySearchCmd `arg:"subcommand:search" help:"Search titles, inputs and outputs"`
}

// HistoryListCmd represents 'proboost history list'
type HistoryListCmd struct {
	Feature *string `arg:"-f,--feature" help:"Only show items of this feature type"`
	JSON    bool    `arg:"--json" help:"Print the raw collection"`
}

// HistoryShowCmd represents 'proboost history show'
type HistoryShowCmd struct {
	Ref  string `arg:"positional,required" help:"Item index (0=newest) or id"`
	JSON bool   `arg:"--json" help:"Print the raw item"`
}

// HistoryAddCmd represents 'proboost history add'
type HistoryAddCmd struct {
	Feature string  `arg:"-f,--feature,required" help:"Feature type"`
	Input   string  `arg:"-i,--input,required" help:"Input JSON"`
	Output  string  `arg:"-o,--output" help:"Output JSON (default: null)"`
	Title   *string `arg:"-t,--title" help:"Title (derived from the input when omitted)"`
}

// HistoryRenameCmd represents 'proboost history rename'
type HistoryRenameCmd struct {
	Ref   string `arg:"positional,required" help:"Item index or id"`
	Title string `arg:"positional,required" help:"New title"`
}

// HistoryDeleteCmd represents 'proboost history delete'
type HistoryDeleteCmd struct {
	Ref string `arg:"positional,required" help:"Item index or id"`
}

// HistoryClearCmd represents 'proboost history clear'
type HistoryClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// HistoryCopyCmd represents 'proboost history copy'
type HistoryCopyCmd struct {
	Ref string `arg:"positional,required" help:"Item index or id"`
}

// HistorySearchCmd represents 'proboost history search'
type HistorySearchCmd struct {
	Pattern   string `arg:"positional,required" help:"Case-insensitive regular expression"`
	Limit     int    `arg:"-n,--limit" help:"Maximum number of results (0 = all)"`
	IndexOnly bool   `arg:"--index-only" help:"Print only item indexes"`
}

// ExportCmd represents 'proboost export'
type ExportCmd struct {
	Ref    *string `arg:"positional" help:"Item index or id"`
	File   *string `arg:"--file" help:"Export this text file instead of a history item"`
	Format string  `arg:"-F,--format" default:"pdf" help:"txt, pdf, docx or zip"`
	Font   *string `arg:"--font" help:"PDF font: sans or serif"`
	Title  *string `arg:"-t,--title" help:"Document title"`
	Out    *string `arg:"-o,--out" help:"Write to this path instead of the export sink"`
}

// BundleCmd represents 'proboost bundle'
type BundleCmd struct {
	Input string  `arg:"positional,required" help:"JSON file with posts, or - for stdin"`
	Out   *string `arg:"-o,--out" help:"Write to this path instead of the export sink"`
	Name  string  `arg:"--name" default:"posts" help:"Archive name"`
}

// ImageCmd represents 'proboost image'
type ImageCmd struct {
	Input string  `arg:"positional,required" help:"File with base64 image data, or - for stdin"`
	Name  string  `arg:"--name" default:"image" help:"Image name"`
	Out   *string `arg:"-o,--out" help:"Write to this path instead of the export sink"`
}

// IngestCmd represents 'proboost ingest'
type IngestCmd struct {
	File string  `arg:"positional,required" help:"Document to read"`
	Out  *string `arg:"-o,--out" help:"Write the text to this file"`
}

// GenerateCmd represents 'proboost generate'
type GenerateCmd struct {
	Feature string   `arg:"-f,--feature,required" help:"Feature type"`
	Input   *string  `arg:"-i,--input" help:"Input JSON"`
	Fields  []string `arg:"positional" help:"Input fields as key=value"`
}

// SettingsCmd groups the settings subcommands.
type SettingsCmd struct {
	Get  *SettingsGetCmd  `arg:"subcommand:get" help:"Get a preference"`
	Set  *SettingsSetCmd  `arg:"subcommand:set" help:"Set a preference (empty value clears it)"`
	List *SettingsListCmd `arg:"subcommand:list" help:"List all preferences"`
}

type SettingsGetCmd struct {
	Name string `arg:"positional,required" help:"Preference name"`
}

type SettingsSetCmd struct {
	Name  string `arg:"positional,required" help:"Preference name"`
	Value string `arg:"positional" help:"Preference value"`
}

type SettingsListCmd struct{}

// ConfigCmd groups the config subcommands.
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration values"`
}

type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

type ConfigListCmd struct{}

// ServeCmd represents 'proboost serve'
type ServeCmd struct {
	Listen *string `arg:"-l,--listen" help:"Address to listen on"`
}

// BrowseCmd represents 'proboost browse'
type BrowseCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "proboost - career content generation with local history and document export"
}

// Version returns the program version
func (Args) Version() string {
	return "proboost 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  proboost history list                       # Newest first
  proboost history show 0                     # Document text of the newest item
  proboost export 0 -F docx                   # Export the newest item as DOCX
  proboost export --file notes.md -o cv.pdf   # Export a text file as PDF
  proboost generate -f networking targetRole="Staff Engineer"
  proboost ingest resume.pdf
  proboost serve                              # Local HTTP API
  proboost browse                             # Interactive history browser`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.History != nil:
		return args.History.Validate()
	case args.Export != nil:
		return args.Export.Validate()
	case args.Generate != nil:
		return args.Generate.Validate()
	case args.Settings != nil:
		return args.Settings.Validate()
	case args.Config != nil:
		return args.Config.Validate()
	}
	return nil
}

// Validate validates history command arguments
func (h *HistoryCmd) Validate() error {
	switch {
	case h.List != nil:
		if h.List.Feature != nil {
			if _, err := history.ParseFeatureType(*h.List.Feature); err != nil {
				return err
			}
		}
	case h.Add != nil:
		if _, err := history.ParseFeatureType(h.Add.Feature); err != nil {
			return err
		}
	case h.Search != nil:
		if h.Search.Limit < 0 {
			return fmt.Errorf("limit must be non-negative")
		}
	case h.Show == nil && h.Rename == nil && h.Delete == nil && h.Clear == nil && h.Copy == nil:
		return fmt.Errorf("no history subcommand specified")
	}
	return nil
}

// Validate validates export command arguments
func (e *ExportCmd) Validate() error {
	if (e.Ref == nil) == (e.File == nil) {
		return fmt.Errorf("specify exactly one of an item reference or --file")
	}
	f, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	if f == export.FormatJPG {
		return fmt.Errorf("use 'proboost image' for jpg output")
	}
	if e.File != nil && f == export.FormatZIP {
		return fmt.Errorf("zip export needs a history item with posts")
	}
	if e.Font != nil && *e.Font != export.FontSans && *e.Font != export.FontSerif {
		return fmt.Errorf("font must be '%s' or '%s'", export.FontSans, export.FontSerif)
	}
	return nil
}

// Validate validates generate command arguments
func (g *GenerateCmd) Validate() error {
	if _, err := history.ParseFeatureType(g.Feature); err != nil {
		return err
	}
	if g.Input != nil && len(g.Fields) > 0 {
		return fmt.Errorf("cannot specify both --input and key=value fields")
	}
	for _, f := range g.Fields {
		if k, _, ok := strings.Cut(f, "="); !ok || k == "" {
			return fmt.Errorf("invalid field %q (want key=value)", f)
		}
	}
	return nil
}

// Validate validates settings command arguments
func (s *SettingsCmd) Validate() error {
	if s.Get == nil && s.Set == nil && s.List == nil {
		return fmt.Errorf("no settings subcommand specified")
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	if c.Get == nil && c.Set == nil && c.List == nil {
		return fmt.Errorf("no config subcommand specified")
	}
	return nil
}
