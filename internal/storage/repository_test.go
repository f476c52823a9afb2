package storage

import (
	"context"
	"testing"
)

func TestNewUnknownKind(t *testing.T) {
	if _, err := New(context.Background(), Config{Kind: "oracle"}); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty kind")
	}
}

func TestRegisterValidation(t *testing.T) {
	mustPanic := func(name string, fn func()) {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}

	mustPanic("empty kind", func() { Register("", func(context.Context, Config) (Repository, error) { return nil, nil }) })
	mustPanic("nil factory", func() { Register("memkind", nil) })

	Register("memkind", func(context.Context, Config) (Repository, error) { return nil, nil })
	mustPanic("duplicate kind", func() {
		Register("memkind", func(context.Context, Config) (Repository, error) { return nil, nil })
	})
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{" C1 ", "C1"},
		{int64(42), "42"},
		{42, "42"},
		{[]byte(" S401 "), "S401"},
		{12.0, "12"},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
