package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/yiblet/proboost/internal/app"
	"github.com/yiblet/proboost/internal/clipboard"
	"github.com/yiblet/proboost/internal/clipboard/sysboard"
	"github.com/yiblet/proboost/internal/config"
	"github.com/yiblet/proboost/internal/export"
	"github.com/yiblet/proboost/internal/history"
	"github.com/yiblet/proboost/internal/settings"
	"github.com/yiblet/proboost/internal/tui"
	"github.com/yiblet/proboost/internal/web"
	"github.com/yiblet/proboost/internal/zlog"
)

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

// CLI handles the command-line interface
type CLI struct {
	configs   *config.ConfigManager
	cfg       *config.Config
	app       *app.App
	clipboard clipboard.Clipboard
	in        io.Reader
	out       io.Writer
}

// NewWithArgs loads the configuration and applies flag overrides
// (flag > env > file > default). Stores are opened on first use.
func NewWithArgs(args *Args) (*CLI, error) {
	var (
		cm  *config.ConfigManager
		err error
	)
	if args != nil && args.ConfigPath != nil {
		cm = config.NewConfigManagerWithPath(*args.ConfigPath)
	} else if cm, err = config.NewConfigManager(); err != nil {
		return nil, err
	}

	cfg, err := cm.LoadWithEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if args != nil {
		if args.Backend != nil {
			cfg.Backend = *args.Backend
		}
		if args.DBPath != nil {
			cfg.DBPath = *args.DBPath
		}
	}
	if err := cm.Validate(cfg); err != nil {
		return nil, err
	}

	return &CLI{
		configs:   cm,
		cfg:       cfg,
		clipboard: sysboard.New(),
		in:        os.Stdin,
		out:       os.Stdout,
	}, nil
}

// NewWithApp creates a CLI over an already opened App.
func NewWithApp(a *app.App, cm *config.ConfigManager, cb clipboard.Clipboard, in io.Reader, out io.Writer) *CLI {
	return &CLI{configs: cm, cfg: a.Config, app: a, clipboard: cb, in: in, out: out}
}

// App opens the configured stores once.
func (c *CLI) App(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.Open(ctx, c.configs, c.cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// Close releases the stores if they were opened.
func (c *CLI) Close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	// Configuration commands never touch the stores.
	if args.Config != nil {
		return c.executeConfig(args.Config)
	}

	a, err := c.App(ctx)
	if err != nil {
		return err
	}

	switch {
	case args.History != nil:
		return c.executeHistory(a, args.History)
	case args.Export != nil:
		return c.executeExport(ctx, a, args.Export)
	case args.Bundle != nil:
		return c.executeBundle(ctx, a, args.Bundle)
	case args.Image != nil:
		return c.executeImage(ctx, a, args.Image)
	case args.Ingest != nil:
		return c.executeIngest(args.Ingest)
	case args.Generate != nil:
		return c.executeGenerate(ctx, a, args.Generate)
	case args.Settings != nil:
		return c.executeSettings(a, args.Settings)
	case args.Serve != nil:
		return c.executeServe(ctx, a, args.Serve)
	default:
		// Default behavior: launch TUI
		return tui.Run(a, c.clipboard)
	}
}

// resolve finds an item by index (0 = newest) or id.
func (c *CLI) resolve(a *app.App, ref string) (history.HistoryItem, error) {
	if idx, err := strconv.Atoi(ref); err == nil {
		return a.History.At(idx)
	}
	item, ok := a.History.Get(ref)
	if !ok {
		return history.HistoryItem{}, fmt.Errorf("no history item with id %s", ref)
	}
	return item, nil
}

func (c *CLI) executeHistory(a *app.App, cmd *HistoryCmd) error {
	switch {
	case cmd.List != nil:
		return c.executeHistoryList(a, cmd.List)
	case cmd.Show != nil:
		item, err := c.resolve(a, cmd.Show.Ref)
		if err != nil {
			return err
		}
		if cmd.Show.JSON {
			data, err := json.MarshalIndent(item, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode item: %w", err)
			}
			fmt.Fprintln(c.out, string(data))
			return nil
		}
		text, err := history.DocumentText(item)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, strings.TrimRight(text, "\n"))
		return nil
	case cmd.Add != nil:
		return c.executeHistoryAdd(a, cmd.Add)
	case cmd.Rename != nil:
		item, err := c.resolve(a, cmd.Rename.Ref)
		if err != nil {
			return err
		}
		a.History.Rename(item.ID, cmd.Rename.Title)
		renamed, _ := a.History.Get(item.ID)
		fmt.Fprintf(c.out, "Renamed: %s\n", renamed.Title)
		return nil
	case cmd.Delete != nil:
		item, err := c.resolve(a, cmd.Delete.Ref)
		if err != nil {
			return err
		}
		a.History.Delete(item.ID)
		fmt.Fprintf(c.out, "Deleted: %s\n", item.Title)
		return nil
	case cmd.Clear != nil:
		return c.executeHistoryClear(a, cmd.Clear)
	case cmd.Copy != nil:
		item, err := c.resolve(a, cmd.Copy.Ref)
		if err != nil {
			return err
		}
		text, err := history.DocumentText(item)
		if err != nil {
			return err
		}
		n, err := clipboard.Copy(c.clipboard, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Copied %d bytes to clipboard: %s\n", n, item.Title)
		return nil
	case cmd.Search != nil:
		return c.executeHistorySearch(a, cmd.Search)
	}
	return nil
}

func (c *CLI) executeHistoryList(a *app.App, cmd *HistoryListCmd) error {
	if cmd.JSON {
		data, err := a.History.Encode()
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, string(data))
		return nil
	}

	items := a.History.List()
	if len(items) == 0 {
		fmt.Fprintln(c.out, "History is empty!")
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "To add items:")
		fmt.Fprintln(c.out, "  proboost generate -f content-generation text=\"...\"")
		fmt.Fprintln(c.out, "  proboost history add -f saved-job -i '{\"title\":\"...\"}'")
		return nil
	}

	fmt.Fprintln(c.out, headerStyle.Render(fmt.Sprintf("History (%d/%d)", len(items), a.History.Limit())))
	for i, item := range items {
		if cmd.Feature != nil && string(item.FeatureType) != *cmd.Feature {
			continue
		}
		fmt.Fprintf(c.out, "%3d  %s  %-12s  %s\n", i,
			dimStyle.Render(formatTimestamp(item.Timestamp)),
			labelStyle.Render(item.FeatureType.Label()),
			item.Title)
	}
	return nil
}

func (c *CLI) executeHistoryAdd(a *app.App, cmd *HistoryAddCmd) error {
	ft, err := history.ParseFeatureType(cmd.Feature)
	if err != nil {
		return err
	}
	entry := history.Entry{
		FeatureType: ft,
		Input:       json.RawMessage(cmd.Input),
		Output:      json.RawMessage(cmd.Output),
	}
	var title string
	if cmd.Title != nil {
		title = *cmd.Title
	}
	item := a.History.Add(entry, title)
	fmt.Fprintf(c.out, "Stored: %s (%s)\n", item.Title, item.ID)
	return nil
}

func (c *CLI) executeHistoryClear(a *app.App, cmd *HistoryClearCmd) error {
	n := a.History.Len()
	if n == 0 {
		fmt.Fprintln(c.out, "History is already empty.")
		return nil
	}

	// Prompt for confirmation unless --force is used
	if !cmd.Force {
		fmt.Fprintf(c.out, "This will delete %d item(s) from history. Continue? [y/N]: ", n)
		response, _ := bufio.NewReader(c.in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	a.History.Clear()
	fmt.Fprintf(c.out, "Cleared %d item(s) from history.\n", n)
	return nil
}

func (c *CLI) executeHistorySearch(a *app.App, cmd *HistorySearchCmd) error {
	results, err := a.History.Search(cmd.Pattern, cmd.Limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no matches found for pattern: %s", cmd.Pattern)
	}

	// Map ids back to their current index.
	index := make(map[string]int)
	for i, item := range a.History.List() {
		index[item.ID] = i
	}
	for _, item := range results {
		if cmd.IndexOnly {
			fmt.Fprintf(c.out, "%d\n", index[item.ID])
			continue
		}
		fmt.Fprintf(c.out, "%3d  %-12s  %s\n", index[item.ID], labelStyle.Render(item.FeatureType.Label()), item.Title)
	}
	return nil
}

func (c *CLI) executeExport(ctx context.Context, a *app.App, cmd *ExportCmd) error {
	f, err := export.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	if cmd.Font != nil {
		a.Config.Font = *cmd.Font
	}

	var doc app.Document
	if cmd.File != nil {
		data, err := os.ReadFile(*cmd.File)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *cmd.File, err)
		}
		title := strings.TrimSuffix(filepath.Base(*cmd.File), filepath.Ext(*cmd.File))
		if cmd.Title != nil {
			title = *cmd.Title
		}
		body, err := a.RenderText(string(data), title, f)
		if err != nil {
			return err
		}
		doc = app.Document{Name: export.FileName(title, f), ContentType: f.ContentType(), Data: body}
	} else {
		item, err := c.resolve(a, *cmd.Ref)
		if err != nil {
			return err
		}
		if cmd.Title != nil {
			item.Title = *cmd.Title
		}
		if doc, err = a.Render(item, f); err != nil {
			return err
		}
	}

	loc, err := c.save(ctx, a, doc, cmd.Out)
	if err != nil {
		return err
	}
	if f != export.FormatPDF {
		fmt.Fprintf(c.out, "Exported %s\n", loc)
		return nil
	}
	pages, err := export.PageCount(doc.Data)
	if err != nil {
		logger().Warnw("pdf page count fail", "err", err)
		fmt.Fprintf(c.out, "Exported %s\n", loc)
		return nil
	}
	fmt.Fprintf(c.out, "Exported %s (%d page(s))\n", loc, pages)
	return nil
}

func (c *CLI) executeBundle(ctx context.Context, a *app.App, cmd *BundleCmd) error {
	data, err := c.readInput(cmd.Input)
	if err != nil {
		return err
	}
	posts, err := decodePosts(data)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return fmt.Errorf("no posts in %s", cmd.Input)
	}
	zipData, err := export.Bundle(posts)
	if err != nil {
		return err
	}
	doc := app.Document{
		Name:        export.FileName(cmd.Name, export.FormatZIP),
		ContentType: export.FormatZIP.ContentType(),
		Data:        zipData,
	}
	loc, err := c.save(ctx, a, doc, cmd.Out)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Bundled %d post(s) into %s\n", len(posts), loc)
	return nil
}

// decodePosts accepts a bare list of posts or an object with a posts field.
func decodePosts(data []byte) ([]export.Post, error) {
	var posts []export.Post
	if err := json.Unmarshal(data, &posts); err == nil {
		return posts, nil
	}
	var out history.PostsOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return out.Posts, nil
}

func (c *CLI) executeImage(ctx context.Context, a *app.App, cmd *ImageCmd) error {
	data, err := c.readInput(cmd.Input)
	if err != nil {
		return err
	}
	img, err := export.Image(string(data))
	if err != nil {
		return err
	}
	doc := app.Document{Name: export.ImageName(cmd.Name), ContentType: export.FormatJPG.ContentType(), Data: img}
	loc, err := c.save(ctx, a, doc, cmd.Out)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s (%d bytes)\n", loc, len(img))
	return nil
}

func (c *CLI) executeIngest(cmd *IngestCmd) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}
	text, err := export.Ingest(cmd.File, data)
	if err != nil {
		return err
	}
	if cmd.Out != nil {
		if err := os.WriteFile(*cmd.Out, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(c.out, "Written to %s: %d characters\n", *cmd.Out, len([]rune(text)))
		return nil
	}
	fmt.Fprintln(c.out, text)
	return nil
}

func (c *CLI) executeGenerate(ctx context.Context, a *app.App, cmd *GenerateCmd) error {
	ft, err := history.ParseFeatureType(cmd.Feature)
	if err != nil {
		return err
	}

	var fields json.RawMessage
	if cmd.Input != nil {
		fields = json.RawMessage(*cmd.Input)
	} else {
		m := make(map[string]string, len(cmd.Fields))
		for _, f := range cmd.Fields {
			k, v, _ := strings.Cut(f, "=")
			m[k] = v
		}
		if fields, err = json.Marshal(m); err != nil {
			return fmt.Errorf("failed to encode fields: %w", err)
		}
	}

	screen := a.Screen(ft)
	screen.SetFields(fields)
	res, err := screen.Generate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, strings.TrimRight(res.Text, "\n"))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, dimStyle.Render("Saved to history: "+res.ItemID))
	return nil
}

func (c *CLI) executeSettings(a *app.App, cmd *SettingsCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := a.Settings.Get(cmd.Get.Name)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := a.Settings.Set(cmd.Set.Name, cmd.Set.Value); err != nil {
			return err
		}
		shown := cmd.Set.Value
		if cmd.Set.Name == settings.NameAPIKey {
			shown = settings.MaskKey(shown)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Name, shown)
		return nil
	default:
		fmt.Fprintln(c.out, "Current settings:")
		printSorted(c.out, a.Settings.List())
		return nil
	}
}

// executeConfig handles the 'proboost config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configs.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.configs.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	default:
		values, err := c.configs.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		fmt.Fprintf(c.out, "Current configuration (%s):\n", c.configs.GetConfigPath())
		printSorted(c.out, values)
		return nil
	}
}

func (c *CLI) executeServe(ctx context.Context, a *app.App, cmd *ServeCmd) error {
	addr := a.Config.Listen
	if cmd.Listen != nil {
		addr = *cmd.Listen
	}
	fmt.Fprintf(c.out, "Listening on http://%s\n", addr)
	return web.ListenAndServe(ctx, addr, web.NewServer(a, c.clipboard))
}

// save writes doc to out when given, otherwise to the export sink.
func (c *CLI) save(ctx context.Context, a *app.App, doc app.Document, out *string) (string, error) {
	if out == nil {
		return a.Save(ctx, doc)
	}
	if err := os.WriteFile(*out, doc.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write to file: %w", err)
	}
	return *out, nil
}

// readInput reads a file, or stdin for "-".
func (c *CLI) readInput(name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(c.in)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, errors.New("no input provided")
	}
	return data, nil
}

func printSorted(w io.Writer, values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %s\n", k, values[k])
	}
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
