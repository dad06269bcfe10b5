package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/ilmari/storydesk/internal/config"
	"github.com/ilmari/storydesk/internal/dashboard"
	"github.com/ilmari/storydesk/internal/dashboard/apiclient"
	"github.com/ilmari/storydesk/internal/domain"
	"github.com/ilmari/storydesk/internal/logger"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modePrompt
	modeCategory
)

type promptKind int

const (
	promptNewStory promptKind = iota
	promptRenameStory
)

const (
	helpBrowse   = "j/k move · v view · s sort · d dir · / search · c categories · 1-5 status · n/space more · N new · R rename · D duplicate · X delete · r refresh · q quit"
	helpSearch   = "type to search · backspace delete · enter/esc done"
	helpPrompt   = "type title · enter confirm · esc cancel"
	helpCategory = "type to filter · backspace delete · 1-9 toggle · 0 clear · enter/esc done"
)

// statusOrder drives both the counts line and the 1-5 filter keys.
var statusOrder = []domain.StoryStatus{
	domain.StoryStatusAll,
	domain.StoryStatusDraft,
	domain.StoryStatusPublished,
	domain.StoryStatusFuture,
	domain.StoryStatusPrivate,
}

// app owns the terminal UI state. The picker and all fields below mu are
// only touched with mu held; the controller and store carry their own locks.
type app struct {
	controller *dashboard.Controller
	view       *dashboard.View
	client     *apiclient.Client

	mu           sync.Mutex
	picker       *dashboard.Picker
	mode         inputMode
	cursor       int
	counts       map[domain.StoryStatus]int64
	statusMsg    string
	prompt       promptKind
	promptTarget uuid.UUID
	promptBuf    string
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	logPath := flag.String("log", "", "Append logs to this file instead of discarding them")
	flag.Parse()

	var logOutput io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fatalf("open log file: %v", err)
		}
		defer f.Close()
		logOutput = f
	}

	// Logs must never hit the terminal while the UI is drawing
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		Output:      logOutput,
		ServiceName: "storydesk-dashboard",
	})
	logger.SetDefaultLogger(appLogger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fatalf("storydesk-dashboard requires an interactive terminal")
	}

	// Size the grid to the terminal before entering raw mode
	grid := dashboard.DefaultGridConfig()
	list := dashboard.DefaultListConfig()
	if width, _, err := term.GetSize(fd); err == nil && width > 0 {
		cols := width / (grid.CellWidth + 2)
		if cols < 1 {
			cols = 1
		}
		if cols > 4 {
			cols = 4
		}
		grid.Columns = cols
	}

	a := &app{picker: dashboard.NewPicker(nil)}
	store := dashboard.NewStore()
	client := apiclient.NewClient(cfg.Dashboard.APIBaseURL, store, appLogger, a.render)
	controller := dashboard.NewController(store, client, dashboard.Options{
		PerPage:        cfg.Dashboard.PerPage,
		SearchDebounce: time.Duration(cfg.Dashboard.SearchDebounceMs) * time.Millisecond,
	})
	defer controller.Close()

	a.controller = controller
	a.view = dashboard.NewView(controller, grid, list)
	a.client = client

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGINT arrives as a 0x03 byte once the terminal is raw, so only
	// SIGTERM needs a handler.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fatalf("enable raw mode: %v", err)
	}
	defer term.Restore(fd, oldState)

	controller.Refresh(ctx)
	a.loadCounts(ctx)
	a.render()

	keys := make(chan byte, 16)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}
			keys <- buf[0]
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-keys:
			if !ok {
				return
			}
			if a.handleKey(ctx, b) {
				return
			}
		}
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// handleKey dispatches a single raw-mode byte and returns true to quit.
func (a *app) handleKey(ctx context.Context, b byte) bool {
	a.mu.Lock()
	mode := a.mode
	a.mu.Unlock()

	switch mode {
	case modeSearch:
		a.handleSearchKey(ctx, b)
	case modePrompt:
		a.handlePromptKey(ctx, b)
	case modeCategory:
		a.handleCategoryKey(b)
	default:
		if a.handleBrowseKey(ctx, b) {
			return true
		}
	}
	a.render()
	return false
}

func (a *app) handleBrowseKey(ctx context.Context, b byte) bool {
	switch b {
	case 'q', 0x03:
		return true
	case 'r':
		a.controller.Refresh(ctx)
		a.loadCounts(ctx)
	case 'v':
		if a.controller.View() == domain.ViewStyleGrid {
			a.controller.SetView(domain.ViewStyleList)
		} else {
			a.controller.SetView(domain.ViewStyleGrid)
		}
	case 's':
		a.controller.SetSortOption(ctx, nextSortOption(a.controller.OrderBy()))
	case 'd':
		a.controller.ToggleDirection(ctx)
	case '/':
		a.setMode(modeSearch)
	case 'c':
		a.enterCategories(ctx)
	case 'n':
		a.controller.LoadMore(ctx)
	case ' ':
		// Scroll pressure: only the grid view reacts
		a.view.NeedMore(ctx)
	case 'j':
		a.moveCursor(1)
	case 'k':
		a.moveCursor(-1)
	case 'N':
		a.openPrompt(promptNewStory, uuid.Nil, "")
	case 'R':
		if story, ok := a.cursorStory(); ok {
			a.openPrompt(promptRenameStory, story.ID, story.Title)
		}
	case 'D':
		if story, ok := a.cursorStory(); ok {
			id := story.ID
			a.runAction(ctx, "Duplicate", func(ctx context.Context) error {
				_, err := a.client.DuplicateStory(ctx, id)
				return err
			})
		}
	case 'X':
		if story, ok := a.cursorStory(); ok {
			id := story.ID
			a.runAction(ctx, "Delete", func(ctx context.Context) error {
				return a.client.DeleteStory(ctx, id)
			})
		}
	case '1', '2', '3', '4', '5':
		a.controller.SetStatus(ctx, statusOrder[b-'1'])
	}
	return false
}

func (a *app) handleSearchKey(ctx context.Context, b byte) {
	switch {
	case b == 0x1b || b == '\r':
		a.setMode(modeBrowse)
	case b == 0x7f || b == 0x08:
		input := []rune(a.controller.SearchInput())
		if len(input) > 0 {
			a.controller.SetSearchInput(ctx, string(input[:len(input)-1]))
		}
	case b >= 0x20:
		a.controller.SetSearchInput(ctx, a.controller.SearchInput()+string([]byte{b}))
	}
}

func (a *app) handlePromptKey(ctx context.Context, b byte) {
	switch {
	case b == 0x1b:
		a.mu.Lock()
		a.promptBuf = ""
		a.mode = modeBrowse
		a.mu.Unlock()
	case b == '\r':
		a.mu.Lock()
		title := strings.TrimSpace(a.promptBuf)
		kind := a.prompt
		target := a.promptTarget
		a.promptBuf = ""
		a.mode = modeBrowse
		a.mu.Unlock()
		if title == "" {
			return
		}
		switch kind {
		case promptNewStory:
			a.runAction(ctx, "Create", func(ctx context.Context) error {
				_, err := a.client.CreateStory(ctx, title)
				return err
			})
		case promptRenameStory:
			a.runAction(ctx, "Rename", func(ctx context.Context) error {
				_, err := a.client.RenameStory(ctx, target, title)
				return err
			})
		}
	case b == 0x7f || b == 0x08:
		a.mu.Lock()
		if runes := []rune(a.promptBuf); len(runes) > 0 {
			a.promptBuf = string(runes[:len(runes)-1])
		}
		a.mu.Unlock()
	case b >= 0x20:
		a.mu.Lock()
		a.promptBuf += string([]byte{b})
		a.mu.Unlock()
	}
}

func (a *app) handleCategoryKey(b byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case b == 0x1b || b == '\r':
		a.mode = modeBrowse
	case b >= '1' && b <= '9':
		visible := a.picker.Visible()
		if idx := int(b - '1'); idx < len(visible) {
			a.picker.Toggle(visible[idx].ID)
		}
	case b == '0':
		a.picker.Clear()
	case b == 0x7f || b == 0x08:
		if runes := []rune(a.picker.Filter()); len(runes) > 0 {
			a.picker.SetFilter(string(runes[:len(runes)-1]))
		}
	case b >= 0x20:
		a.picker.SetFilter(a.picker.Filter() + string([]byte{b}))
	}
}

func (a *app) setMode(mode inputMode) {
	a.mu.Lock()
	a.mode = mode
	a.mu.Unlock()
}

func (a *app) openPrompt(kind promptKind, target uuid.UUID, initial string) {
	a.mu.Lock()
	a.prompt = kind
	a.promptTarget = target
	a.promptBuf = initial
	a.mode = modePrompt
	a.mu.Unlock()
}

func (a *app) moveCursor(delta int) {
	count := len(a.controller.OrderedStories())
	a.mu.Lock()
	defer a.mu.Unlock()
	if count == 0 {
		a.cursor = 0
		return
	}
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.cursor >= count {
		a.cursor = count - 1
	}
}

func (a *app) cursorStory() (domain.Story, bool) {
	stories := a.controller.OrderedStories()
	if len(stories) == 0 {
		return domain.Story{}, false
	}
	a.mu.Lock()
	if a.cursor >= len(stories) {
		a.cursor = len(stories) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	idx := a.cursor
	a.mu.Unlock()
	return stories[idx], true
}

// runAction performs a story mutation off the key loop, then refreshes.
func (a *app) runAction(ctx context.Context, name string, fn func(context.Context) error) {
	go func() {
		err := fn(ctx)
		a.mu.Lock()
		if err != nil {
			a.statusMsg = fmt.Sprintf("%s failed: %v", name, err)
		} else {
			a.statusMsg = name + " OK"
		}
		a.mu.Unlock()
		if err == nil {
			a.controller.Refresh(ctx)
			a.loadCounts(ctx)
		}
		a.render()
	}()
}

func (a *app) enterCategories(ctx context.Context) {
	a.setMode(modeCategory)
	go func() {
		cats, err := a.client.Categories(ctx)
		a.mu.Lock()
		if err != nil {
			a.statusMsg = fmt.Sprintf("Load categories failed: %v", err)
		} else {
			a.picker.SetCategories(cats)
		}
		a.mu.Unlock()
		a.render()
	}()
}

func (a *app) loadCounts(ctx context.Context) {
	go func() {
		counts, err := a.client.StatusCounts(ctx)
		if err != nil {
			logger.CtxWarn(ctx, "Failed to load status counts: %v", err)
			return
		}
		a.mu.Lock()
		a.counts = counts
		a.mu.Unlock()
		a.render()
	}()
}

// render repaints the whole screen. Raw mode needs explicit \r\n endings.
func (a *app) render() {
	a.mu.Lock()
	defer a.mu.Unlock()

	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")
	for _, line := range a.frameLocked() {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	fmt.Print(b.String())
}

func (a *app) frameLocked() []string {
	if a.mode == modeCategory {
		return a.categoryFrameLocked()
	}
	return a.storiesFrameLocked()
}

func (a *app) storiesFrameLocked() []string {
	total, totalPages := a.controller.Totals()
	header := fmt.Sprintf("status=%s  sort=%s %s  view=%s  page %d/%d  %d stories",
		a.controller.Status(), a.controller.OrderBy(), a.controller.EffectiveDirection(),
		a.controller.View(), a.controller.Page(), totalPages, total)
	if a.controller.IsLoading() {
		header += "  [loading]"
	}

	lines := []string{"Storydesk · My Stories", header}

	if len(a.counts) > 0 {
		parts := make([]string, 0, len(statusOrder))
		for _, st := range statusOrder {
			if n, ok := a.counts[st]; ok {
				parts = append(parts, fmt.Sprintf("%s %d", st, n))
			}
		}
		lines = append(lines, strings.Join(parts, " · "))
	}

	switch a.mode {
	case modeSearch:
		lines = append(lines, fmt.Sprintf("search: %s_", a.controller.SearchInput()))
	case modePrompt:
		label := "new story title"
		if a.prompt == promptRenameStory {
			label = "rename to"
		}
		lines = append(lines, fmt.Sprintf("%s: %s_", label, a.promptBuf))
	default:
		if q := a.controller.SearchTerm(); q != "" {
			lines = append(lines, "search: "+q)
		}
	}

	stories := a.controller.OrderedStories()
	if a.cursor >= len(stories) {
		a.cursor = len(stories) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}

	listView := a.controller.View() == domain.ViewStyleList
	lines = append(lines, "")
	for i, line := range a.view.Render() {
		// List lines map one to one onto stories, so the cursor can
		// be drawn inline; the grid shows the selection separately.
		if listView && i < len(stories) {
			if i == a.cursor {
				line = "> " + line
			} else {
				line = "  " + line
			}
		}
		lines = append(lines, line)
	}
	if !listView && len(stories) > 0 {
		lines = append(lines, "", "selected: "+stories[a.cursor].Title)
	}

	if a.statusMsg != "" {
		lines = append(lines, "", a.statusMsg)
	}

	help := helpBrowse
	switch a.mode {
	case modeSearch:
		help = helpSearch
	case modePrompt:
		help = helpPrompt
	}
	return append(lines, "", help)
}

func (a *app) categoryFrameLocked() []string {
	lines := []string{
		"Storydesk · Categories",
		fmt.Sprintf("filter: %s_", a.picker.Filter()),
		"",
	}

	visible := a.picker.Visible()
	if len(visible) == 0 {
		lines = append(lines, "No categories match.")
	}
	for i, cat := range visible {
		label := "  "
		if i < 9 {
			label = fmt.Sprintf("%d ", i+1)
		}
		mark := " "
		if a.picker.IsSelected(cat.ID) {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf(" %s[%s] %s", label, mark, cat.Name))
	}

	if selected := a.picker.Selected(); len(selected) > 0 {
		names := make([]string, len(selected))
		for i, cat := range selected {
			names[i] = cat.Name
		}
		lines = append(lines, "", "selected: "+strings.Join(names, ", "))
	}

	return append(lines, "", helpCategory)
}

func nextSortOption(current domain.SortOption) domain.SortOption {
	switch current {
	case domain.SortByTitle:
		return domain.SortByCreated
	case domain.SortByCreated:
		return domain.SortByModified
	case domain.SortByModified:
		return domain.SortByAuthor
	default:
		return domain.SortByTitle
	}
}
