package tui

import (
	"slices"
	"strings"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/tui/components"
)

// actionOrder is the display order of actions in help output.
var actionOrder = []string{
	config.ActionNew,
	config.ActionEdit,
	config.ActionSelect,
	config.ActionSelectAll,
	config.ActionDelete,
	config.ActionExport,
	config.ActionSort,
	config.ActionPageSize,
	config.ActionRefresh,
	config.ActionHistory,
	config.ActionLogout,
}

// Action is a resolved keybinding on the records screen.
type Action struct {
	Name    string
	Key     string
	Help    string
	Confirm string // Non-empty if confirmation required
}

// NeedsConfirm returns true if the action requires user confirmation.
func (a Action) NeedsConfirm() bool {
	return a.Confirm != ""
}

// KeybindingResolver resolves key presses to configured actions.
type KeybindingResolver struct {
	keybindings map[string]config.Keybinding
}

// NewKeybindingResolver creates a resolver for the given keybindings.
func NewKeybindingResolver(keybindings map[string]config.Keybinding) *KeybindingResolver {
	return &KeybindingResolver{keybindings: keybindings}
}

// Resolve returns the action bound to key.
func (r *KeybindingResolver) Resolve(key string) (Action, bool) {
	kb, ok := r.keybindings[key]
	if !ok {
		return Action{}, false
	}

	help := kb.Help
	if help == "" {
		help = kb.Action
	}

	return Action{
		Name:    kb.Action,
		Key:     key,
		Help:    help,
		Confirm: kb.Confirm,
	}, true
}

// KeyFor returns the display key bound to action, preferring the shortest
// key when several are bound.
func (r *KeybindingResolver) KeyFor(action string) string {
	var best string
	for key, kb := range r.keybindings {
		if kb.Action != action {
			continue
		}
		if best == "" || len(key) < len(best) || (len(key) == len(best) && key < best) {
			best = key
		}
	}
	return best
}

// HelpEntries returns one entry per bound key in action order.
func (r *KeybindingResolver) HelpEntries() []components.HelpEntry {
	keys := make([]string, 0, len(r.keybindings))
	for key := range r.keybindings {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, func(a, b string) int {
		ia := slices.Index(actionOrder, r.keybindings[a].Action)
		ib := slices.Index(actionOrder, r.keybindings[b].Action)
		if ia != ib {
			return ia - ib
		}
		return strings.Compare(a, b)
	})

	entries := make([]components.HelpEntry, 0, len(keys))
	for _, key := range keys {
		action, _ := r.Resolve(key)
		entries = append(entries, components.HelpEntry{Key: key, Desc: action.Help})
	}
	return entries
}

// ShortHelp renders a compact single-line hint for the given actions.
func (r *KeybindingResolver) ShortHelp(actions ...string) string {
	parts := make([]string, 0, len(actions))
	for _, name := range actions {
		key := r.KeyFor(name)
		if key == "" {
			continue
		}
		action, _ := r.Resolve(key)
		parts = append(parts, key+" "+action.Help)
	}
	return strings.Join(parts, " • ")
}
