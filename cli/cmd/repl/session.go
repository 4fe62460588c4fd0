package repl

import (
	"context"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/sqfa/analysis"
	"github.com/ardnew/sqfa/lang"
)

// Session accumulates entered source and the analysis of all of it.
// Each line is analyzed together with everything entered before, so
// variables declared earlier stay visible.
type Session struct {
	db     *analysis.Database
	opts   []analysis.Option
	chunks []string
	result *analysis.Result
	shown  map[string]bool
}

// NewSession returns a session whose source starts with seed.
func NewSession(db *analysis.Database, seed string, opts ...analysis.Option) *Session {
	if db == nil {
		db = analysis.DefaultDatabase()
	}

	s := &Session{db: db, opts: opts, shown: make(map[string]bool)}
	if strings.TrimSpace(seed) != "" {
		s.chunks = []string{seed}
	}

	return s
}

// Source returns the accumulated source.
func (s *Session) Source() string { return strings.Join(s.chunks, "\n") }

// Database returns the signature database of the session.
func (s *Session) Database() *analysis.Database { return s.db }

// Result returns the latest successful analysis, or nil.
func (s *Session) Result() *analysis.Result { return s.result }

// Check analyzes src without changing the session.
func (s *Session) Check(ctx context.Context, src string) (*analysis.Result, error) {
	return analysis.Source(ctx, s.db, src, s.opts...)
}

// Load analyzes the current source and returns all of its diagnostics.
func (s *Session) Load(ctx context.Context) ([]analysis.Diagnostic, error) {
	return s.Replace(ctx, s.Source())
}

// Replace makes src the whole session source and returns all of its
// diagnostics. When src does not parse, the session is unchanged and the
// parse diagnostic is returned.
func (s *Session) Replace(ctx context.Context, src string) ([]analysis.Diagnostic, error) {
	res, err := s.Check(ctx, src)
	if err != nil {
		return nil, err
	}

	if res.ParseErr != nil {
		return res.Diagnostics, nil
	}

	s.chunks = s.chunks[:0]
	if strings.TrimSpace(src) != "" {
		s.chunks = append(s.chunks, src)
	}

	s.commit(res)

	return res.Diagnostics, nil
}

// Eval appends line to the source and returns the diagnostics that were
// not reported by an earlier call. A line that breaks parsing is not kept;
// its parse diagnostic is returned instead.
func (s *Session) Eval(ctx context.Context, line string) ([]analysis.Diagnostic, error) {
	src := strings.Join(append(slices.Clone(s.chunks), line), "\n")

	res, err := s.Check(ctx, src)
	if err != nil {
		return nil, err
	}

	if res.ParseErr != nil {
		return res.Diagnostics, nil
	}

	s.chunks = append(s.chunks, line)

	return s.commit(res), nil
}

// Reset clears the source.
func (s *Session) Reset() {
	s.chunks = nil
	s.result = nil
	clear(s.shown)
}

// commit records res and returns its diagnostics not shown before.
// Diagnostics that no longer occur are forgotten and reported again if
// they return.
func (s *Session) commit(res *analysis.Result) []analysis.Diagnostic {
	s.result = res

	var fresh []analysis.Diagnostic

	shown := make(map[string]bool, len(res.Diagnostics))

	for _, d := range res.Diagnostics {
		key := d.String()
		if !s.shown[key] && !shown[key] {
			fresh = append(fresh, d)
		}

		shown[key] = true
	}

	s.shown = shown

	return fresh
}

// Variable is a variable visible at the end of the session source.
type Variable struct {
	Name string
	Kind analysis.Kind
}

// Variables returns the variables visible in the default namespace,
// sorted by name.
func (s *Session) Variables() []Variable {
	if s.result == nil || s.result.Namespaces == nil {
		return nil
	}

	ns := s.result.Namespaces.Get(analysis.DefaultNamespace)

	var vars []Variable

	for _, name := range ns.Visible() {
		if name == "_this" {
			continue
		}

		v := Variable{Name: name}
		if val := ns.Lookup(name).Get(name); val != nil {
			v.Kind = val.Kind
		}

		vars = append(vars, v)
	}

	slices.SortFunc(vars, func(a, b Variable) int { return strings.Compare(a.Name, b.Name) })

	return vars
}

// Macros returns the names of the macros defined by the session source.
func (s *Session) Macros() []string {
	if s.result == nil || s.result.AST == nil {
		return nil
	}

	var names []string
	for m := range s.result.AST.Macros.All() {
		names = append(names, m.Name)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// Macro returns the last definition of the named macro.
func (s *Session) Macro(name string) (*lang.Macro, bool) {
	if s.result == nil || s.result.AST == nil {
		return nil, false
	}

	var found *lang.Macro

	for m := range s.result.AST.Macros.All() {
		if m.Name == name {
			found = m
		}
	}

	return found, found != nil
}

// Keywords returns the alphabetic keywords of the database.
func (s *Session) Keywords() []string {
	return slices.DeleteFunc(s.db.Names(), func(w string) bool {
		r, _ := utf8.DecodeRuneInString(w)

		return !unicode.IsLetter(r)
	})
}
