package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestRegisterFunc_RejectsInvalidSpec(t *testing.T) {
	s := New(zerolog.Nop())
	if err := s.RegisterFunc("bad", "not-a-cron-spec", func() {}); err == nil {
		t.Fatal("expected an error registering an invalid cron spec")
	}
}

func TestRegisterFunc_AcceptsStandardSpec(t *testing.T) {
	s := New(zerolog.Nop())
	if err := s.RegisterFunc("sweep", "*/5 * * * *", func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
