package config

import (
	"fmt"
	"strings"
	"sync"
)

// promptVerbs is the number of %s verbs each operation's template must
// carry: the job context, plus the missing keywords for rewrite.
var promptVerbs = map[string]int{
	OperationAnalyze: 1,
	OperationRewrite: 2,
}

// ValidatePromptTemplate checks that tpl can be rendered for operation.
func ValidatePromptTemplate(operation, tpl string) error {
	want, ok := promptVerbs[operation]
	if !ok {
		return fmt.Errorf("unknown prompt operation: %s", operation)
	}
	if strings.TrimSpace(tpl) == "" {
		return fmt.Errorf("%s prompt is empty", operation)
	}
	if got := strings.Count(tpl, "%s"); got != want {
		return fmt.Errorf("%s prompt must contain %d %%s verb(s), found %d", operation, want, got)
	}
	rest := strings.ReplaceAll(strings.ReplaceAll(tpl, "%%", ""), "%s", "")
	if strings.Contains(rest, "%") {
		return fmt.Errorf("%s prompt contains an unsupported format verb (escape literal percent signs as %%%%)", operation)
	}
	return nil
}

// PromptSet holds prompt templates loaded from files. It is safe for
// concurrent use; the watcher replaces entries while requests read them.
type PromptSet struct {
	mu        sync.RWMutex
	templates map[string]string
	sources   map[string]string
}

func NewPromptSet() *PromptSet {
	return &PromptSet{
		templates: make(map[string]string),
		sources:   make(map[string]string),
	}
}

// Get returns the override for operation, if any.
func (p *PromptSet) Get(operation string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tpl, ok := p.templates[operation]
	return tpl, ok
}

// Source returns the file an override was loaded from.
func (p *PromptSet) Source(operation string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sources[operation]
}

// Set validates and stores a template. An invalid template leaves the
// previous one in place.
func (p *PromptSet) Set(operation, tpl, source string) error {
	if err := ValidatePromptTemplate(operation, tpl); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates[operation] = tpl
	p.sources[operation] = source
	return nil
}

// Len reports how many overrides are loaded.
func (p *PromptSet) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.templates)
}
