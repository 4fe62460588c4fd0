package analysis

import (
	"maps"
	"strings"

	"github.com/ardnew/sqfa/lang/token"
)

// DefaultNamespace is the namespace analysis starts in.
const DefaultNamespace = "missionnamespace"

// fileLevel is the scope level of an analyzed file body.
const fileLevel = 1

// Scope maps variable names to their values. Names are case-insensitive.
type Scope struct {
	Level int
	vars  map[string]*Value
}

func newScope(level int, vars map[string]*Value) *Scope {
	s := &Scope{Level: level, vars: make(map[string]*Value, len(vars))}
	for name, v := range vars {
		s.Set(name, v)
	}

	return s
}

// Get returns the value of name, or nil when it is not declared here.
func (s *Scope) Get(name string) *Value { return s.vars[strings.ToLower(name)] }

// Has reports whether name is declared in s.
func (s *Scope) Has(name string) bool {
	_, ok := s.vars[strings.ToLower(name)]

	return ok
}

// Set declares name with value v.
func (s *Scope) Set(name string, v *Value) { s.vars[strings.ToLower(name)] = v }

// Names returns the declared names, lowercased.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}

	return names
}

func (s *Scope) clone() *Scope {
	c := &Scope{Level: s.Level, vars: make(map[string]*Value, len(s.vars))}
	for name, v := range s.vars {
		c.vars[name] = v.typeOnly()
	}

	return c
}

// Namespace is a stack of scopes. The bottom scope, level 0, holds global
// variables and is never popped.
type Namespace struct {
	Name   string
	scopes []*Scope
}

// NewNamespace returns a namespace holding only its global scope.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name:   strings.ToLower(name),
		scopes: []*Scope{newScope(0, nil)},
	}
}

// Push adds a scope declaring vars and returns it.
func (ns *Namespace) Push(vars map[string]*Value) *Scope {
	s := newScope(len(ns.scopes), vars)
	ns.scopes = append(ns.scopes, s)

	return s
}

// Pop removes the innermost scope. The global scope is never removed.
func (ns *Namespace) Pop() {
	if len(ns.scopes) > 1 {
		ns.scopes = ns.scopes[:len(ns.scopes)-1]
	}
}

// Current returns the innermost scope.
func (ns *Namespace) Current() *Scope { return ns.scopes[len(ns.scopes)-1] }

// Global returns the level 0 scope.
func (ns *Namespace) Global() *Scope { return ns.scopes[0] }

// Lookup returns the innermost scope declaring name, or the global scope.
func (ns *Namespace) Lookup(name string) *Scope {
	for i := len(ns.scopes) - 1; i > 0; i-- {
		if ns.scopes[i].Has(name) {
			return ns.scopes[i]
		}
	}

	return ns.scopes[0]
}

// Visible returns every name visible from the innermost scope.
func (ns *Namespace) Visible() []string {
	seen := make(map[string]bool)

	var names []string

	for i := len(ns.scopes) - 1; i >= 0; i-- {
		for _, name := range ns.scopes[i].Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	return names
}

func (ns *Namespace) clone() *Namespace {
	c := &Namespace{Name: ns.Name, scopes: make([]*Scope, len(ns.scopes))}
	for i, s := range ns.scopes {
		c.scopes[i] = s.clone()
	}

	return c
}

// Namespaces holds every global namespace by name.
type Namespaces struct {
	byName map[string]*Namespace
}

// NewNamespaces returns the known namespaces, each holding only its global
// scope.
func NewNamespaces() *Namespaces {
	nss := &Namespaces{byName: make(map[string]*Namespace)}
	for _, name := range token.Namespaces() {
		nss.byName[name] = NewNamespace(name)
	}

	return nss
}

// Get returns the namespace called name, creating it when unknown.
func (nss *Namespaces) Get(name string) *Namespace {
	key := strings.ToLower(name)

	ns, ok := nss.byName[key]
	if !ok {
		ns = NewNamespace(key)
		nss.byName[key] = ns
	}

	return ns
}

// Clone returns a deep copy. Scopes of the copy never alias scopes of
// nss.
func (nss *Namespaces) Clone() *Namespaces {
	c := &Namespaces{byName: maps.Clone(nss.byName)}
	for name, ns := range c.byName {
		c.byName[name] = ns.clone()
	}

	return c
}

// Names returns the namespace names in no particular order.
func (nss *Namespaces) Names() []string {
	names := make([]string, 0, len(nss.byName))
	for name := range nss.byName {
		names = append(names, name)
	}

	return names
}
