package stores

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/roster/internal/core/kv"
	"github.com/colonyops/roster/internal/core/listview"
)

const (
	prefsNamespace = "prefs"
	listPrefsKey   = "students_list"
)

// ListPrefs is the list layout remembered between runs.
type ListPrefs struct {
	PageSize int           `json:"page_size"`
	Sort     listview.Sort `json:"sort"`
}

// PrefsStore persists UI preferences in the KV store.
type PrefsStore struct {
	kv *kv.TypedKV[ListPrefs]
}

// NewPrefsStore creates a PrefsStore on top of store.
func NewPrefsStore(store kv.KV) *PrefsStore {
	return &PrefsStore{kv: kv.Scoped[ListPrefs](store, prefsNamespace)}
}

// ListPrefs returns the saved list layout. ok is false when nothing is
// saved or the stored value cannot be read; a bad value is logged and
// otherwise ignored so the defaults apply.
func (p *PrefsStore) ListPrefs(ctx context.Context) (prefs ListPrefs, ok bool) {
	prefs, ok, err := p.kv.Lookup(ctx, listPrefsKey)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable list preferences")
		return ListPrefs{}, false
	}
	return prefs, ok
}

// SaveListPrefs stores the list layout.
func (p *PrefsStore) SaveListPrefs(ctx context.Context, prefs ListPrefs) error {
	return p.kv.Set(ctx, listPrefsKey, prefs)
}
