package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/spendly/internal/category"
)

type categoriesState int

const (
	categoriesStateList categoriesState = iota
	categoriesStateAdd
)

// categoryItem wraps a category to implement list.Item.
type categoryItem struct {
	c *category.Category
}

func (i categoryItem) Title() string {
	return fmt.Sprintf("%s %s", swatch(i.c.Color), i.c.Label)
}

func (i categoryItem) Description() string {
	return fmt.Sprintf("%s · %s · %s", i.c.Kind, category.ResolveIcon(i.c.Icon), i.c.Color)
}

func (i categoryItem) FilterValue() string {
	return i.c.Label
}

// CategoriesModel lists the active categories and lets the user add or archive them.
type CategoriesModel struct {
	CommonModel
	categories *category.Service
	userID     string

	state  categoriesState
	list   list.Model
	form   *huh.Form
	fields *categoryFields
	cancel context.CancelFunc

	pendingArchive uuid.UUID
	status         string
}

type categoryFields struct {
	label string
	color string
	icon  string
}

func NewCategoriesModel(categories *category.Service, userID string) CategoriesModel {
	l := list.New([]list.Item{}, categoryItemDelegate{}, 80, 20)
	l.Title = "Categories"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return CategoriesModel{
		categories: categories,
		userID:     userID,
		list:       l,
	}
}

func (m CategoriesModel) Title() string { return "Categories" }

func (m CategoriesModel) ShortHelp() string {
	if m.state == categoriesStateAdd {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | n: new | a: archive | /: filter"
}

func (m CategoriesModel) Init() tea.Cmd {
	return m.subscribeCmd()
}

// Close stops the live subscription.
func (m CategoriesModel) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesSubscribedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.cancel = msg.cancel

		return m, waitForCategories(msg.updates)

	case categoriesSnapshotMsg:
		items := make([]list.Item, len(msg.items))
		for i, c := range msg.items {
			items[i] = categoryItem{c: c}
		}

		cmd := m.list.SetItems(items)

		return m, tea.Batch(cmd, waitForCategories(msg.updates))

	case categoryActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = categoriesStateList
		m.form = nil

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)

		return m, nil
	}

	switch m.state {
	case categoriesStateList:
		return m.updateList(msg)
	case categoriesStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m CategoriesModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok && m.list.FilterState() != list.Filtering {
		key := keyMsg.String()
		if key != "a" {
			m.pendingArchive = uuid.Nil
		}

		switch key {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break // let the list clear the filter
			}

			m.Close()

			return m, Back
		case "n":
			return m.enterAddMode()
		case "a":
			return m.archive()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m CategoriesModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.fields = &categoryFields{color: category.Palette[0], icon: category.FallbackIcon}

	colors := make([]huh.Option[string], len(category.Palette))
	for i, token := range category.Palette {
		colors[i] = huh.NewOption(swatch(token)+" "+token, token)
	}

	icons := make([]huh.Option[string], len(category.Icons))
	for i, name := range category.Icons {
		icons[i] = huh.NewOption(name, name)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("label").
				Title("Label").
				CharLimit(category.MaxLabelLength).
				Value(&m.fields.label).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return errors.New("label cannot be empty")
					}
					if utf8.RuneCountInString(s) > category.MaxLabelLength {
						return fmt.Errorf("at most %d characters", category.MaxLabelLength)
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("color").
				Title("Color").
				Options(colors...).
				Height(8).
				Value(&m.fields.color),

			huh.NewSelect[string]().
				Key("icon").
				Title("Icon").
				Options(icons...).
				Height(8).
				Value(&m.fields.icon),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = categoriesStateAdd
	m.status = ""

	return m, m.form.Init()
}

func (m CategoriesModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = categoriesStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	fields := *m.fields

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := m.categories.Create(ctx, m.userID, category.CreateParams{
			Label: fields.label,
			Color: fields.color,
			Icon:  fields.icon,
		})
		if err != nil {
			return categoryActionMsg{err: err}
		}

		return categoryActionMsg{status: fmt.Sprintf("Added %s.", c.Label)}
	}
}

// archive asks for confirmation on the first press and archives on the second.
func (m CategoriesModel) archive() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(categoryItem)
	if !ok {
		return m, nil
	}

	if m.pendingArchive != item.c.ID {
		m.pendingArchive = item.c.ID
		m.status = fmt.Sprintf("Press a again to archive %s. Its expenses keep their label.", item.c.Label)

		return m, nil
	}

	m.pendingArchive = uuid.Nil
	c := item.c

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.categories.Archive(ctx, m.userID, c.ID); err != nil {
			return categoryActionMsg{err: err}
		}

		return categoryActionMsg{status: fmt.Sprintf("Archived %s.", c.Label)}
	}
}

func (m CategoriesModel) View() string {
	var content string

	switch m.state {
	case categoriesStateList:
		content = m.list.View()
	case categoriesStateAdd:
		content = headerStyle.Render("New Category") + "\n\n" + m.form.View()
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type categoriesSubscribedMsg struct {
	updates <-chan []*category.Category
	cancel  context.CancelFunc
	err     error
}

type categoriesSnapshotMsg struct {
	items   []*category.Category
	updates <-chan []*category.Category
}

type categoryActionMsg struct {
	status string
	err    error
}

func (m CategoriesModel) subscribeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())

		updates, err := m.categories.Subscribe(ctx, m.userID)
		if err != nil {
			cancel()
			return categoriesSubscribedMsg{err: err}
		}

		return categoriesSubscribedMsg{updates: updates, cancel: cancel}
	}
}

func waitForCategories(updates <-chan []*category.Category) tea.Cmd {
	return func() tea.Msg {
		items, ok := <-updates
		if !ok {
			return nil
		}

		return categoriesSnapshotMsg{items: items, updates: updates}
	}
}

// categoryItemDelegate renders items in the list.
type categoryItemDelegate struct{}

func (d categoryItemDelegate) Height() int                             { return 2 }
func (d categoryItemDelegate) Spacing() int                            { return 0 }
func (d categoryItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d categoryItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(categoryItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> ") + title
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(i.Description()))
}
