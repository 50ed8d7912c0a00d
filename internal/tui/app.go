package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"coursetree-cli/internal/debug"
	"coursetree-cli/internal/docs"
	"coursetree-cli/internal/gesture"
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/session"
	"coursetree-cli/internal/store"
	"coursetree-cli/internal/tree"
)

type uiMode int

const (
	modeBrowse uiMode = iota
	modeGrab
	modeForm
	modeHelp
)

type dropZone int

const (
	zoneBelow dropZone = iota
	zoneAbove
	zoneChild
	zoneReparent
)

const autoExpandDelay = 500 * time.Millisecond

type (
	persistFailedMsg struct{ err error }
	flashClearMsg    struct{ seq int }
	autoExpandMsg    struct{ token int }
)

type appModel struct {
	sess    *session.Session
	store   store.Store
	outline store.Outline
	cfg     store.Config
	grab    *gesture.Classifier

	rows    []row
	cursor  int
	mode    uiMode
	zone    dropZone
	preview model.Instruction

	form        *huh.Form
	formDone    func() tea.Cmd
	formLabel   string
	formType    string
	formTarget  string
	formIndex   string
	formDraft   bool
	formConfirm bool

	flash    string
	flashErr bool
	flashSeq int

	width, height int

	events  chan tea.Msg
	watcher *dbWatcher
	helpVP  viewport.Model
}

func newAppModel(sess *session.Session, s store.Store, outline store.Outline, cfg store.Config, view *store.TUIState) *appModel {
	m := &appModel{
		store:   s,
		outline: outline,
		cfg:     cfg,
		grab:    gesture.NewClassifier(nil),
		events:  make(chan tea.Msg, 16),
	}
	m.hookSession(sess)

	m.applySavedOpenState(view)
	m.rows = visibleRows(sess.State().Data)
	if view.SelectedID != "" {
		if i := rowIndexOf(m.rows, view.SelectedID); i >= 0 {
			m.cursor = i
		}
	}

	if w, err := watchDB(s.SQLitePath(), m.events); err == nil {
		m.watcher = w
	} else {
		debug.Log("tui: db watcher unavailable: %v", err)
	}
	return m
}

func (m *appModel) hookSession(sess *session.Session) {
	m.sess = sess
	sess.OnPersistError(func(err error) {
		select {
		case m.events <- persistFailedMsg{err: err}:
		default:
		}
	})
}

func (m *appModel) applySavedOpenState(view *store.TUIState) {
	if len(view.Open) == 0 {
		if m.cfg.DefaultOpen {
			for _, id := range branchIDs(m.sess.State().Data) {
				m.sess.Dispatch(model.Expand{ItemID: id})
			}
		}
		return
	}
	for id, open := range view.Open {
		if open {
			m.sess.Dispatch(model.Expand{ItemID: id})
		}
	}
}

func (m *appModel) close() {
	if m.watcher != nil {
		m.watcher.Close()
	}
}

func (m *appModel) saveViewState() error {
	view := &store.TUIState{Version: 1, Open: map[string]bool{}}
	var walk func(items []model.TreeItem)
	walk = func(items []model.TreeItem) {
		for _, it := range items {
			if len(it.Children) > 0 {
				view.Open[it.ID] = it.IsOpen
				walk(it.Children)
			}
		}
	}
	walk(m.sess.State().Data)
	view.SelectedID = m.selectedID()
	return m.store.SaveTUIState(view)
}

func (m *appModel) Init() tea.Cmd { return m.listen() }

func (m *appModel) listen() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case persistFailedMsg:
		return m, tea.Batch(
			m.flashCmd(fmt.Sprintf("save failed: %v (changes kept locally)", msg.err), true),
			m.listen(),
		)

	case reloadMsg:
		// Reloads are deferred mid-interaction; the store converges on
		// the next browse-mode change notification.
		if m.mode == modeBrowse {
			m.reloadFromStore()
		}
		return m, m.listen()

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil

	case autoExpandMsg:
		if act, ok := m.grab.ExpandDue(msg.token); ok {
			m.apply(act, m.selectedID())
		}
		return m, nil
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeHelp:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q", "esc", "?", "enter":
				m.mode = modeBrowse
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.helpVP, cmd = m.helpVP.Update(msg)
		return m, cmd
	case modeGrab:
		return m.updateGrab(msg)
	default:
		return m.updateBrowse(msg)
	}
}

func (m *appModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(m.rows)-1)
	case "enter":
		if id := m.selectedID(); id != "" {
			m.apply(model.Toggle{ItemID: id}, id)
		}
	case " ", "space":
		if id := m.selectedID(); id != "" {
			if m.grab.Begin(m.sess.State().Data, id) {
				m.mode = modeGrab
				m.zone = zoneBelow
				m.preview = nil
			}
		}
	case "a":
		return m, m.openAddForm()
	case "r":
		return m, m.openRenameForm()
	case "d":
		return m, m.openDeleteForm()
	case "m":
		return m, m.openMoveForm()
	case "y":
		if id := m.selectedID(); id != "" {
			if err := copyToClipboard(id); err != nil {
				return m, m.flashCmd("clipboard: "+err.Error(), true)
			}
			return m, m.flashCmd("copied "+id, false)
		}
	case "?":
		m.openHelp()
	}
	return m, nil
}

func (m *appModel) updateGrab(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c":
		m.grab.Cancel()
		return m, tea.Quit
	case "esc", " ", "space", "q":
		m.grab.Cancel()
		m.mode = modeBrowse
		m.preview = nil
		return m, m.flashCmd("move canceled", false)
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.zone = zoneBelow
		return m, m.hover()
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		m.zone = zoneAbove
		return m, m.hover()
	case "l", "right":
		m.zone = zoneChild
		return m, m.hover()
	case "h", "left":
		m.zone = zoneReparent
		return m, m.hover()
	case "enter":
		dragged := m.grab.DraggedID()
		act, ok := m.grab.Drop()
		m.mode = modeBrowse
		m.preview = nil
		if !ok {
			return m, m.flashCmd("nothing to drop here", true)
		}
		m.apply(act, dragged)
		return m, m.flashCmd("moved", false)
	}
	return m, nil
}

// hover recomputes the drop preview for the current cursor row and zone,
// arming auto-expand when the hovered row is a closed branch.
func (m *appModel) hover() tea.Cmd {
	m.grab.CancelExpand()
	m.preview = nil
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		m.grab.Leave()
		return nil
	}
	r := m.rows[m.cursor]

	var desired model.Instruction
	switch m.zone {
	case zoneAbove:
		desired = model.ReorderAbove{}
	case zoneChild:
		desired = model.MakeChild{}
	case zoneReparent:
		desired = model.Reparent{DesiredLevel: max(0, r.depth-1)}
	default:
		desired = model.ReorderBelow{}
	}

	m.preview = m.grab.Hover(r.item.ID, desired)
	if m.preview == nil {
		return nil
	}
	if _, blocked := m.preview.(model.Blocked); blocked {
		return nil
	}
	if r.hasChildren && !r.item.IsOpen {
		token := m.grab.ScheduleExpand(r.item.ID)
		return tea.Tick(autoExpandDelay, func(time.Time) tea.Msg { return autoExpandMsg{token: token} })
	}
	return nil
}

func (m *appModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		m.mode = modeBrowse
		m.form = nil
		m.formDone = nil
		return m, nil
	}
	f, cmd := m.form.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		m.form = hf
	}
	switch m.form.State {
	case huh.StateCompleted:
		done := m.formDone
		m.mode = modeBrowse
		m.form = nil
		m.formDone = nil
		if done != nil {
			return m, done()
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeBrowse
		m.form = nil
		m.formDone = nil
		return m, nil
	}
	return m, cmd
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}

func (m *appModel) openAddForm() tea.Cmd {
	m.formLabel = ""
	m.formType = "lesson"
	m.formDraft = false
	m.form = newForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(&m.formLabel),
		huh.NewSelect[string]().Title("Type").
			Options(huh.NewOptions("module", "lesson", "post")...).
			Value(&m.formType),
		huh.NewConfirm().Title("Draft?").Value(&m.formDraft),
	))
	m.formDone = m.finishAdd
	m.mode = modeForm
	return m.form.Init()
}

func (m *appModel) finishAdd() tea.Cmd {
	label := strings.TrimSpace(m.formLabel)
	if label == "" {
		return m.flashCmd("title required", true)
	}

	// New items land under the selected row when it can hold children,
	// otherwise at the top level.
	parentRes := m.outline.ResourceID
	var parentID string
	if sel, ok := m.selectedRow(); ok && gesture.DefaultContainable(sel.item) {
		parentRes = sel.item.ID
		parentID = sel.item.ID
	}

	id, err := store.NewID("item")
	if err != nil {
		return m.flashCmd("add failed: "+err.Error(), true)
	}
	it := model.TreeItem{
		ID:      id,
		Label:   label,
		Type:    m.formType,
		IsDraft: m.formDraft,
		ItemData: &model.ItemData{
			ResourceID:   id,
			ResourceOfID: parentRes,
		},
	}

	ctx := context.Background()
	if err := m.store.CreateItem(ctx, it); err != nil {
		return m.flashCmd("add failed: "+err.Error(), true)
	}
	_ = m.store.AppendEvent(ctx, "outline.add-item", id, map[string]any{"label": label, "type": m.formType})

	st := m.sess.Dispatch(model.AddItem{Item: it})
	if parentID != "" {
		// Append: the new item is still at the top level, so the parent's
		// child count is the exact insertion index.
		end := len(tree.ChildrenOf(st.Data, parentID))
		m.sess.Dispatch(model.ModalMove{ItemID: id, TargetID: parentID, Index: end})
	}
	m.refreshRows(id)
	return m.flashCmd("added "+label, false)
}

func (m *appModel) openRenameForm() tea.Cmd {
	sel, ok := m.selectedRow()
	if !ok {
		return nil
	}
	m.formLabel = sel.item.Label
	m.form = newForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(&m.formLabel),
	))
	m.formDone = m.finishRename
	m.mode = modeForm
	return m.form.Init()
}

func (m *appModel) finishRename() tea.Cmd {
	sel, ok := m.selectedRow()
	if !ok {
		return nil
	}
	label := strings.TrimSpace(m.formLabel)
	if label == "" || label == sel.item.Label {
		return nil
	}
	fields := map[string]any{"title": label}

	ctx := context.Background()
	if err := m.store.UpdateItemMeta(ctx, sel.item.ID, fields); err != nil {
		return m.flashCmd("rename failed: "+err.Error(), true)
	}
	_ = m.store.AppendEvent(ctx, "outline.update-item", sel.item.ID, fields)

	m.apply(model.UpdateItem{ItemID: sel.item.ID, Fields: fields}, sel.item.ID)
	return m.flashCmd("renamed", false)
}

func (m *appModel) openDeleteForm() tea.Cmd {
	sel, ok := m.selectedRow()
	if !ok {
		return nil
	}
	m.formConfirm = false
	m.form = newForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", sel.item.Label)).
			Description("Children become unreachable until reparented.").
			Value(&m.formConfirm),
	))
	m.formDone = m.finishDelete
	m.mode = modeForm
	return m.form.Init()
}

func (m *appModel) finishDelete() tea.Cmd {
	if !m.formConfirm {
		return nil
	}
	sel, ok := m.selectedRow()
	if !ok {
		return nil
	}

	ctx := context.Background()
	if err := m.store.DeleteItem(ctx, sel.item.ID); err != nil {
		return m.flashCmd("delete failed: "+err.Error(), true)
	}
	_ = m.store.AppendEvent(ctx, "outline.remove-item", sel.item.ID, nil)

	m.apply(model.RemoveItem{ItemID: sel.item.ID}, "")
	return m.flashCmd("deleted "+sel.item.Label, false)
}

func (m *appModel) openMoveForm() tea.Cmd {
	sel, ok := m.selectedRow()
	if !ok {
		return nil
	}
	targets := tree.MoveTargets(m.sess.State().Data, sel.item.ID)
	opts := make([]huh.Option[string], 0, len(targets)+1)
	opts = append(opts, huh.NewOption("(top level)", ""))
	for _, t := range targets {
		opts = append(opts, huh.NewOption(t.Label, t.ID))
	}

	m.formTarget = ""
	m.formIndex = "0"
	m.form = newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("Move %q under", sel.item.Label)).
			Options(opts...).
			Value(&m.formTarget),
		huh.NewInput().
			Title("Index").
			Value(&m.formIndex).
			Validate(func(s string) error {
				_, err := strconv.Atoi(strings.TrimSpace(s))
				return err
			}),
	))
	m.formDone = m.finishMove
	m.mode = modeForm
	return m.form.Init()
}

func (m *appModel) finishMove() tea.Cmd {
	sel, ok := m.selectedRow()
	if !ok {
		return nil
	}
	idx, err := strconv.Atoi(strings.TrimSpace(m.formIndex))
	if err != nil {
		idx = 0
	}
	m.apply(model.ModalMove{ItemID: sel.item.ID, TargetID: m.formTarget, Index: idx}, sel.item.ID)
	return m.flashCmd("moved", false)
}

const keysMarkdown = `# Keys

| key | action |
|-----|--------|
| j / k | move the cursor |
| enter | toggle a branch open/closed |
| space | grab the selected item |
| m | move via dialog |
| a / r / d | add, rename, delete |
| y | copy the item id |
| q | quit |
`

func (m *appModel) openHelp() {
	body, _ := docs.Get("moving")
	width := m.width - 4
	if width < 20 {
		width = 76
	}
	width = min(width, 80)
	height := m.height - 2
	if height < 5 {
		height = 24
	}
	m.helpVP = viewport.New(width, height)
	m.helpVP.SetContent(renderMarkdown(keysMarkdown+"\n"+body, width))
	m.mode = modeHelp
}

func (m *appModel) reloadFromStore() {
	sess, outline, err := session.Hydrate(context.Background(), m.store)
	if err != nil {
		debug.Log("tui: reload failed: %v", err)
		return
	}
	open := map[string]bool{}
	collectOpen(m.sess.State().Data, open)
	m.sess.Flush()
	m.hookSession(sess)
	for id, isOpen := range open {
		if isOpen {
			sess.Dispatch(model.Expand{ItemID: id})
		}
	}
	m.outline = outline
	m.refreshRows(m.selectedID())
}

func (m *appModel) apply(act model.Action, keepID string) {
	m.sess.Dispatch(act)
	m.refreshRows(keepID)
}

func (m *appModel) refreshRows(keepID string) {
	m.rows = visibleRows(m.sess.State().Data)
	if keepID != "" {
		if i := rowIndexOf(m.rows, keepID); i >= 0 {
			m.cursor = i
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *appModel) selectedRow() (row, bool) {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return m.rows[m.cursor], true
	}
	return row{}, false
}

func (m *appModel) selectedID() string {
	if r, ok := m.selectedRow(); ok {
		return r.item.ID
	}
	return ""
}

func (m *appModel) flashCmd(text string, isErr bool) tea.Cmd {
	m.flash = text
	m.flashErr = isErr
	m.flashSeq++
	seq := m.flashSeq
	d := time.Duration(m.cfg.FlashMillis) * time.Millisecond
	if d <= 0 {
		d = 600 * time.Millisecond
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} })
}

func (m *appModel) View() string {
	if m.mode == modeForm && m.form != nil {
		return m.form.View()
	}
	if m.mode == modeHelp {
		return m.helpVP.View() + "\n" + styleMuted().Render("j/k scroll · q close")
	}

	var b strings.Builder
	title := m.outline.Title
	if title == "" {
		title = "(untitled course)"
	}
	b.WriteString(styleHeader().Render(title))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(styleMuted().Render("empty outline; press a to add an item"))
		b.WriteString("\n")
	}
	top, bottom := m.viewport()
	for i := top; i < bottom; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *appModel) viewport() (int, int) {
	visible := m.height - 5
	if visible <= 0 || visible >= len(m.rows) {
		return 0, len(m.rows)
	}
	top := m.cursor - visible/2
	top = min(top, len(m.rows)-visible)
	top = max(top, 0)
	return top, top + visible
}

func (m *appModel) renderRow(i int) string {
	r := m.rows[i]

	twisty := "  "
	if r.hasChildren {
		if r.item.IsOpen {
			twisty = "▾ "
		} else {
			twisty = "▸ "
		}
	}

	marker := "  "
	if m.mode == modeGrab && i == m.cursor && m.preview != nil {
		switch m.preview.(type) {
		case model.ReorderAbove:
			marker = "▲ "
		case model.ReorderBelow:
			marker = "▼ "
		case model.MakeChild:
			marker = "→ "
		case model.Reparent:
			marker = "← "
		case model.Blocked:
			marker = "⊘ "
		}
	}

	var meta []string
	if r.item.Type != "" {
		meta = append(meta, r.item.Type)
	}
	if r.item.IsDraft {
		meta = append(meta, "draft")
	}
	if r.item.ItemData != nil {
		if tier, ok := r.item.ItemData.Metadata["tier"].(string); ok && tier != "" {
			meta = append(meta, tier)
		}
	}

	text := strings.Repeat("  ", r.depth) + twisty + r.item.Label
	if len(meta) > 0 {
		text += "  (" + strings.Join(meta, ", ") + ")"
	}
	full := marker + text

	switch {
	case m.mode == modeGrab && r.item.ID == m.grab.DraggedID():
		return styleGrabbed().Render(full)
	case i == m.cursor:
		if m.mode == modeGrab {
			if _, blocked := m.preview.(model.Blocked); blocked {
				return styleBlocked().Render(full)
			}
		}
		return styleSelected().Render(full)
	case r.item.IsDraft:
		return styleMuted().Render(full)
	default:
		return full
	}
}

func (m *appModel) statusLine() string {
	if m.flash != "" {
		if m.flashErr {
			return styleBlocked().Render(m.flash)
		}
		return lipgloss.NewStyle().Foreground(colorFlashOkFg).Render(m.flash)
	}
	if m.mode == modeGrab {
		return styleMuted().Render("grab: j/k reorder · l nest · h outdent · enter drop · esc cancel")
	}
	return styleMuted().Render("j/k move · enter toggle · space grab · m move · a add · r rename · d delete · y copy id · ? help · q quit")
}

func branchIDs(data []model.TreeItem) []string {
	var out []string
	var walk func(items []model.TreeItem)
	walk = func(items []model.TreeItem) {
		for _, it := range items {
			if len(it.Children) > 0 {
				out = append(out, it.ID)
				walk(it.Children)
			}
		}
	}
	walk(data)
	return out
}

func collectOpen(data []model.TreeItem, into map[string]bool) {
	for _, it := range data {
		if len(it.Children) > 0 {
			into[it.ID] = it.IsOpen
			collectOpen(it.Children, into)
		}
	}
}
