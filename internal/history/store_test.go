package history

import (
	"context"
	"testing"
)

func TestClampLimit(t *testing.T) {
	cases := map[int]int{-1: 20, 0: 20, 1: 1, 50: 50, 100: 100, 1000: 100}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d)=%d want %d", in, got, want)
		}
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}
	if err := s.Record(ctx, Entry{Input: "1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, err := s.Recent(ctx, 5)
	if err != nil || len(got) != 0 {
		t.Fatalf("recent=%v err=%v", got, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
