package session

import (
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/cache"
	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/preset"
)

// Store guarda as sessões em memória com expiração por inatividade.
// Nada é persistido: sessões expiradas são descartadas.
type Store struct {
	preset *preset.Preset
	items  *cache.Cache[*Session]
}

// EvictFunc é chamada quando uma sessão expira
type EvictFunc func(sessionID string)

// NewStore cria o store. ttl é o tempo de inatividade até a expiração.
func NewStore(p *preset.Preset, ttl time.Duration, onEvict EvictFunc) *Store {
	opts := []cache.Option[*Session]{
		cache.WithCleanupInterval[*Session](time.Minute),
	}
	if onEvict != nil {
		opts = append(opts, cache.WithEvictHook(func(key string, _ *Session) {
			onEvict(key)
		}))
	}
	return &Store{
		preset: p,
		items:  cache.New[*Session](ttl, opts...),
	}
}

// Create abre uma sessão nova a partir do preset do store
func (st *Store) Create() *Session {
	s := New(st.preset)
	st.items.Set(s.ID(), s)
	return s
}

// Get busca a sessão e renova sua expiração
func (st *Store) Get(id string) (*Session, error) {
	s, ok := st.items.Touch(id)
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// Delete encerra a sessão
func (st *Store) Delete(id string) error {
	if !st.items.Delete(id) {
		return model.ErrSessionNotFound
	}
	return nil
}

// Count retorna o número de sessões em memória
func (st *Store) Count() int {
	return st.items.Size()
}

// Preset retorna o preset usado para novas sessões
func (st *Store) Preset() *preset.Preset {
	return st.preset
}

// Close para a limpeza periódica
func (st *Store) Close() {
	st.items.Stop()
}
