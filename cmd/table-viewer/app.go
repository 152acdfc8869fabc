package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/b200-landing/pkg/config"
	"github.com/unklstewy/b200-landing/pkg/landing"
	"github.com/unklstewy/b200-landing/pkg/report"
	"github.com/unklstewy/b200-landing/pkg/tables"
)

// Cell colors
var (
	colorHeader    = tcell.ColorAqua
	colorCell      = tcell.ColorWhite
	colorReference = tcell.ColorYellow
	colorSelected  = tcell.ColorBlack
	colorSelectBG  = tcell.ColorGreen
	colorRefBG     = tcell.ColorDarkGoldenrod
)

// AppConfig holds the application configuration
type AppConfig struct {
	Config *config.Config
	Input  *landing.Input // nil shows the tables without highlighting
	Logs   *LogManager
}

// App shows the four tables in tabs and highlights the cells a calculation reads.
type App struct {
	config *config.Config
	input  *landing.Input

	set   *tables.Set
	trace *landing.Trace
	err   error

	// UI components
	tviewApp *tview.Application
	tabs     *tview.TextView
	table    *tview.Table
	details  *tview.TextView
	logs     *LogManager
	root     *tview.Flex

	current int

	// highlight is the cell the current stage read, in View.Cells indices
	highlight   tables.Highlight
	highlighted bool
}

// NewApp loads the tables and builds the UI.
func NewApp(cfg *AppConfig) (*App, error) {
	logs := cfg.Logs
	if logs == nil {
		logs = NewLogManager(100)
	}
	a := &App{
		config: cfg.Config,
		input:  cfg.Input,
		logs:   logs,
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	a.setupUI()
	a.showTable(0)
	return a, nil
}

// load reads the tables and, when an input was given, runs the calculation.
func (a *App) load() error {
	set, err := tables.LoadConfig(a.config.Tables)
	if err != nil {
		return err
	}
	a.set = set
	a.trace, a.err = nil, nil

	if a.input != nil {
		calc, err := landing.NewCalculator(set.Tables)
		if err != nil {
			return err
		}
		a.trace, a.err = calc.WithLimits(a.config.Inputs.Limits).Run(*a.input)
		if a.err != nil {
			a.logs.Error("%v", a.err)
		} else {
			a.logs.Info("Landing distance %s", report.Feet(a.trace.Result()))
		}
	}
	a.logs.Info("Loaded tables (dataset %s)", set.ID())
	if tables.IsSample(a.config.Tables) {
		a.logs.Warn("%s", tables.SampleNotice)
	}
	return nil
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.tviewApp = tview.NewApplication()

	a.tabs = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWrap(false)

	a.table = tview.NewTable().
		SetBorders(false).
		SetFixed(1, 1).
		SetSelectable(false, false)
	a.table.SetBorder(true)

	a.details = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	a.details.SetBorder(true).SetTitle(" Calculation ")

	bottom := tview.NewFlex().
		AddItem(a.details, 0, 2, false).
		AddItem(a.logs.GetView(), 0, 1, false)

	a.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.tabs, 1, 0, false).
		AddItem(a.table, 0, 3, true).
		AddItem(bottom, 12, 0, false)

	a.tviewApp.SetRoot(a.root, true).SetInputCapture(a.handleKey)
}

// handleKey switches tabs and reloads tables.
func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyTab, tcell.KeyRight:
		a.showTable((a.current + 1) % len(tables.Slugs))
		return nil
	case tcell.KeyBacktab, tcell.KeyLeft:
		a.showTable((a.current + len(tables.Slugs) - 1) % len(tables.Slugs))
		return nil
	case tcell.KeyCtrlC:
		a.tviewApp.Stop()
		return nil
	}

	switch r := event.Rune(); r {
	case '1', '2', '3', '4':
		a.showTable(int(r - '1'))
		return nil
	case 'r':
		if err := a.load(); err != nil {
			a.logs.Error("Reload failed: %v", err)
		}
		a.showTable(a.current)
		return nil
	case 'q':
		a.tviewApp.Stop()
		return nil
	}
	return event
}

// showTable renders the table at index i of tables.Slugs.
func (a *App) showTable(i int) {
	a.current = i
	view, _ := a.set.View(tables.Slugs[i])

	a.renderTabs()
	a.table.Clear()
	a.table.SetTitle(fmt.Sprintf(" %s (%s) ", view.Name, view.Description))

	var hl tables.Highlight
	highlighted := false
	if a.trace != nil {
		if st, ok := a.trace.Stage(view.Stage); ok {
			hl, highlighted = tables.HighlightFor(view, st)
		}
	}
	a.highlight, a.highlighted = hl, highlighted

	// Reference tables have no separate row key column.
	offset := 0
	if view.RowKeys != nil {
		offset = 1
		a.table.SetCell(0, 0, headerCell(fmt.Sprintf("%s \\ %s", view.RowUnit, view.ColumnUnit)))
	}
	for j, col := range view.Columns {
		cell := headerCell(report.Number(col))
		if view.Reference != nil && col == *view.Reference {
			cell.SetTextColor(colorReference)
		}
		a.table.SetCell(0, j+offset, cell)
	}

	for r, row := range view.Cells {
		if view.RowKeys != nil {
			a.table.SetCell(r+1, 0, headerCell(report.Number(view.RowKeys[r])))
		}
		for j, v := range row {
			cell := tview.NewTableCell(report.Number(v)).
				SetAlign(tview.AlignRight).
				SetTextColor(colorCell)
			if view.Reference != nil && view.Columns[j] == *view.Reference {
				cell.SetTextColor(colorReference)
			}
			if highlighted && r == hl.Row {
				switch j {
				case hl.Col:
					cell.SetTextColor(colorSelected).SetBackgroundColor(colorSelectBG).SetAttributes(tcell.AttrBold)
				case hl.RefCol:
					cell.SetBackgroundColor(colorRefBG)
				}
			}
			a.table.SetCell(r+1, j+offset, cell)
		}
	}

	a.table.ScrollToBeginning()
	a.details.SetText(a.detailsText(view.Stage))
}

func headerCell(text string) *tview.TableCell {
	return tview.NewTableCell(text).
		SetAlign(tview.AlignRight).
		SetTextColor(colorHeader).
		SetAttributes(tcell.AttrBold).
		SetSelectable(false)
}

func (a *App) renderTabs() {
	var b strings.Builder
	for i, slug := range tables.Slugs {
		view, _ := a.set.View(slug)
		label := fmt.Sprintf(" %d %s ", i+1, view.Name)
		if i == a.current {
			fmt.Fprintf(&b, "[black:aqua]%s[-:-] ", label)
		} else {
			fmt.Fprintf(&b, "[gray]%s[-] ", label)
		}
	}
	b.WriteString("[gray] Tab/←/→: switch  r: reload  q: quit[-]")
	a.tabs.SetText(b.String())
}

// detailsText describes the calculation, emphasizing the stage for the current table.
func (a *App) detailsText(stage string) string {
	if a.input == nil {
		return "[gray]Pass -alt, -oat, -weight and -wind to highlight the cells a calculation reads.[-]"
	}
	if a.err != nil {
		msg := tview.Escape(a.err.Error())
		var colErr *landing.UnknownColumnError
		if errors.As(a.err, &colErr) {
			return "[red::b]" + msg + "[-::-]\n[gray]The chart has no column for this value.[-]"
		}
		return "[red::b]" + msg + "[-::-]"
	}

	var b strings.Builder
	for i, step := range report.Steps(a.trace) {
		color := "white"
		if a.trace.Stages[i].Stage == stage {
			color = "green"
		}
		fmt.Fprintf(&b, "[%s::b]%s[-::-]\n  %s\n  %s\n", color, tview.Escape(step.Title), tview.Escape(step.Inputs), tview.Escape(step.Result))
	}
	fmt.Fprintf(&b, "\n[black:green] LANDING DISTANCE %s [-:-]", report.Feet(a.trace.Result()))
	return b.String()
}

// Run starts the application
func (a *App) Run() error {
	return a.tviewApp.Run()
}
