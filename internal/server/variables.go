package server

import (
	"strings"
	"sync"

	"github.com/gridworks/datagrid-panel/internal/variables"
)

// varStore holds the host-pushed template variables and implements the
// provider capability the synchronizer reads from.
type varStore struct {
	mu   sync.RWMutex
	vars []variables.Variable
}

func newVarStore() *varStore {
	return &varStore{}
}

func (s *varStore) Set(vars []variables.Variable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars = vars
}

func (s *varStore) Variables() []variables.Variable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vars
}

// Replace interpolates $name and ${name} occurrences with the variable's
// current value; multi-value selections join with commas. Unknown
// variables pass through untouched.
func (s *varStore) Replace(text string) string {
	for _, v := range s.Variables() {
		value := strings.Join(v.Current.Value, ",")
		text = strings.ReplaceAll(text, "${"+v.Name+"}", value)
		text = strings.ReplaceAll(text, "$"+v.Name, value)
	}
	return text
}

// locationStore accumulates the query params the synchronizer writes, the
// way the host's location service would. Empty values delete the param.
type locationStore struct {
	mu     sync.Mutex
	params map[string]string
}

func newLocationStore() *locationStore {
	return &locationStore{params: make(map[string]string)}
}

func (l *locationStore) UpdateQueryParams(params map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range params {
		if v == "" {
			delete(l.params, k)
			continue
		}
		l.params[k] = v
	}
}

func (l *locationStore) Params() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]string, len(l.params))
	for k, v := range l.params {
		out[k] = v
	}
	return out
}
