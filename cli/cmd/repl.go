package cmd

import (
	"context"
	"os"

	"github.com/ardnew/sqfa/cli/cmd/repl"
	"github.com/ardnew/sqfa/log"
	"github.com/ardnew/sqfa/pkg"
)

// Repl starts an interactive analysis session.
type Repl struct {
	Analysis analysisFlags `embed:""`

	File string `arg:"" help:"Seed the session with this source file" name:"file" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	db, err := r.Analysis.database(ctx)
	if err != nil {
		return err
	}

	opts, err := r.Analysis.options(db)
	if err != nil {
		return err
	}

	var seed string

	if r.File != "" {
		srcs, err := sourceFiles(ctx, []string{r.File})
		if err != nil {
			return err
		}

		if seed, err = srcs[0].Read(os.Stdin); err != nil {
			return err
		}
	}

	cacheDir := pkg.CacheDir()
	if ktx := kongContextFrom(ctx); ktx != nil {
		if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok {
			cacheDir = dir
		}
	}

	session := repl.NewSession(db, seed, opts...)

	return repl.Run(ctx, session, cacheDir, log.Default())
}
