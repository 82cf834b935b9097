package dashboard

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding. Several keys are shared between the process
// table and the image panel; which one acts depends on the active tab.
type keyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	NextTab key.Binding
	PrevTab key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding

	Freeze key.Binding
	Faster key.Binding
	Slower key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	Filter       key.Binding
	SortCPU      key.Binding
	SortMemory   key.Binding
	SortPID      key.Binding
	SortName     key.Binding
	Reverse      key.Binding
	Command      key.Binding
	Tree         key.Binding
	Collapse     key.Binding
	Terminate    key.Binding
	Kill         key.Binding
	FilterAccept key.Binding

	ImageNext   key.Binding
	ImagePrev   key.Binding
	ImageRandom key.Binding
	ImageFetch  key.Binding
	ImageInfo   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q / Ctrl+C", "Quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle this help")),
		Back: key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Dismiss message / leave expanded")),

		NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("Tab / →", "Next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("S-Tab / ←", "Previous tab")),
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1-4", "Jump to tab")),
		Tab2:    key.NewBinding(key.WithKeys("2")),
		Tab3:    key.NewBinding(key.WithKeys("3")),
		Tab4:    key.NewBinding(key.WithKeys("4")),

		Freeze: key.NewBinding(key.WithKeys(" "), key.WithHelp("Space", "Freeze / resume collection")),
		Faster: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+ / =", "Refresh faster")),
		Slower: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "Refresh slower")),

		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑ / k", "Select previous process")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓ / j", "Select next process")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "Up 10 rows")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "Down 10 rows")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g / Home", "First process")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G / End", "Last process")),

		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Filter by name, PID or command")),
		FilterAccept: key.NewBinding(key.WithKeys("enter")),
		SortCPU:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "Sort by CPU")),
		SortMemory:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "Sort by memory")),
		SortPID:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Sort by PID")),
		SortName:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Sort by name")),
		Reverse:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Reverse sort")),
		Command:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Show full command")),
		Tree:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "Tree view")),
		Collapse:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "Collapse / expand subtree")),
		Terminate:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d d", "Terminate (SIGTERM)")),
		Kill:         key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "Kill (SIGKILL)")),

		ImageNext:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Next image")),
		ImagePrev:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Previous image")),
		ImageRandom: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Random image")),
		ImageFetch:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "Fetch a new image")),
		ImageInfo:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "Image info")),
	}
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{"General", []key.Binding{k.Quit, k.Help, k.Back, k.NextTab, k.PrevTab, k.Tab1, k.Freeze, k.Faster, k.Slower}},
		{"Processes", []key.Binding{
			k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Filter,
			k.SortCPU, k.SortMemory, k.SortPID, k.SortName, k.Reverse,
			k.Command, k.Tree, k.Collapse, k.Terminate, k.Kill,
		}},
		{"Images", []key.Binding{k.ImageNext, k.ImagePrev, k.ImageRandom, k.ImageFetch, k.ImageInfo}},
		{"Mouse", nil},
	}
}
