package analysis

import (
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/sqfa/lang/token"
	"github.com/ardnew/sqfa/pkg"
)

type lookupKey struct {
	keyword string
	form    Form
}

// Database is an immutable table of keyword signatures.
type Database struct {
	sigs     map[lookupKey][]*Signature
	keywords *token.Keywords
	size     int
}

// NewDatabase merges overrides over base. An override with the same
// keyword, form and operand kinds as an earlier signature replaces it;
// any other override is added.
func NewDatabase(base []*Signature, overrides ...[]*Signature) *Database {
	db := &Database{
		sigs:     make(map[lookupKey][]*Signature),
		keywords: token.DefaultKeywords(),
	}

	add := func(s *Signature) {
		key := lookupKey{strings.ToLower(s.Keyword), s.Form}

		list := db.sigs[key]
		for i, o := range list {
			if o.same(s) {
				list[i] = s

				return
			}
		}

		db.sigs[key] = append(list, s)
		db.keywords.Add(s.Keyword, s.Form.Arity())
		db.size++
	}

	for _, s := range base {
		add(s)
	}

	for _, group := range overrides {
		for _, s := range group {
			add(s)
		}
	}

	return db
}

// DefaultDatabase returns a database holding [Builtins].
func DefaultDatabase() *Database { return NewDatabase(Builtins()) }

// Lookup returns the signatures of keyword in the given form, in
// definition order.
func (db *Database) Lookup(keyword string, form Form) []*Signature {
	return db.sigs[lookupKey{strings.ToLower(keyword), form}]
}

// Signatures returns every signature of keyword, nular forms first.
func (db *Database) Signatures(keyword string) []*Signature {
	var out []*Signature
	for _, form := range []Form{Nular, Unary, Binary} {
		out = append(out, db.Lookup(keyword, form)...)
	}

	return out
}

// Names returns every keyword with signatures, spelled as first defined,
// sorted case-insensitively.
func (db *Database) Names() []string {
	seen := make(map[string]bool, len(db.sigs))

	var names []string

	for key, list := range db.sigs {
		if !seen[key.keyword] && len(list) > 0 {
			seen[key.keyword] = true
			names = append(names, list[0].Keyword)
		}
	}

	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	return names
}

// Keywords returns a copy of the keyword table covering every signature.
func (db *Database) Keywords() *token.Keywords { return db.keywords.Clone() }

// Len returns the number of signatures.
func (db *Database) Len() int { return db.size }

// signatureFile is the YAML layout of an override file.
type signatureFile struct {
	Requires   string       `yaml:"requires"`
	Signatures []*Signature `yaml:"signatures"`
}

// LoadSignatures reads override signatures from YAML:
//
//	requires: ">= 0.1.0"
//	signatures:
//	  - keyword: getMarkerPos
//	    form: unary
//	    right: String
//	    return: Array
//
// The optional requires constraint is checked against [pkg.Version].
func LoadSignatures(r io.Reader) ([]*Signature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrSignatureFile.Wrap(err)
	}

	var file signatureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, ErrSignatureFile.Wrap(err)
	}

	if file.Requires != "" {
		if err := checkVersion(file.Requires); err != nil {
			return nil, err
		}
	}

	for i, s := range file.Signatures {
		if s == nil || s.Keyword == "" {
			return nil, ErrSignature.With(slog.Int("index", i))
		}

		if strings.ContainsAny(s.Keyword, " \t\n") {
			return nil, ErrSignature.With(slog.String("keyword", s.Keyword))
		}
	}

	return file.Signatures, nil
}

func checkVersion(requires string) error {
	ok, version, err := pkg.Satisfies(requires)
	if err != nil {
		return ErrSignatureFile.Wrap(err).With(slog.String("requires", requires))
	}

	if !ok {
		return ErrVersion.With(
			slog.String("requires", requires),
			slog.String("version", version.String()))
	}

	return nil
}
