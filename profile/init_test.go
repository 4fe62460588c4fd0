package profile

import "testing"

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
		want Config
	}{
		{"mode", WithMode("cpu"), Config{Mode: "cpu"}},
		{"path", WithPath("/tmp/sqfa"), Config{Path: "/tmp/sqfa"}},
		{"quiet", WithQuiet(true), Config{Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := New(tt.opt); got != tt.want {
				t.Errorf("New() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfig_StartNoop(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		New(WithPath(t.TempDir()), WithQuiet(true)),
		New(WithMode("bogus"), WithQuiet(true)),
	} {
		p := cfg.Start()
		if _, ok := p.(ignore); !ok {
			t.Errorf("%+v.Start() = %T, want no-op profiler", cfg, p)
		}

		p.Stop()
	}
}
