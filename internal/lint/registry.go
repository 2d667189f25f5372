package lint

import (
	"context"
	"sync"
)

// CheckFunc inspects the catalog behind r and reports lints through it.
type CheckFunc func(ctx context.Context, r *Run) error

// RuleDef defines a linter. Linters are stateless; per-instance settings
// reach Check through the Run.
type RuleDef struct {
	ID          string
	Description string
	Severity    Severity
	// ConfigKeys names the options the linter reads.
	ConfigKeys []string
	// NeedsConnection marks linters that query the database. They are
	// skipped when linting without one.
	NeedsConnection bool
	// OptIn linters only run when configured explicitly.
	OptIn bool
	Check CheckFunc
}

var (
	registryMu sync.RWMutex
	rules      = map[string]RuleDef{}
	ruleOrder  []string
)

// Register adds a linter. Call it from init functions. Registering an id
// again replaces the definition and keeps its original position.
func Register(def RuleDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := rules[def.ID]; !ok {
		ruleOrder = append(ruleOrder, def.ID)
	}
	rules[def.ID] = def
}

// GetAll returns every registered linter in registration order.
func GetAll() []RuleDef {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]RuleDef, 0, len(ruleOrder))
	for _, id := range ruleOrder {
		out = append(out, rules[id])
	}
	return out
}

// GetByID returns a linter by its id.
func GetByID(id string) (RuleDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := rules[id]
	return def, ok
}
