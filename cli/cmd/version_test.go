package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/sqfa/pkg"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"plain", []string{"version"}, false},
		{"satisfied", []string{"version", "--check", ">= 0.0.1"}, false},
		{"unsatisfied", []string{"version", "--check", ">= 999"}, true},
		{"invalid", []string{"version", "--check", "not a constraint"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out syncBuffer

			ctx, cli := parse(t, &out, nil, tt.args...)

			err := cli.Version.Run(ctx)
			if tt.wantErr {
				if !errors.Is(err, ErrVersion) {
					t.Errorf("Run() error = %v, want ErrVersion", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			want := pkg.Name + " " + strings.TrimSpace(pkg.Version)
			if strings.TrimSpace(out.String()) != want {
				t.Errorf("output = %q, want %q", out.String(), want)
			}
		})
	}
}
