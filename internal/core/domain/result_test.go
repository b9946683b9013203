package domain

import (
	"errors"
	"testing"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if v, err := ok.Unwrap(); err != nil || v != 42 {
		t.Errorf("Ok(42).Unwrap() = %d, %v", v, err)
	}

	failed := Fail[int](ErrUnauthorized.WithDetails("bad credentials"))
	if failed.OK {
		t.Error("Fail() result reports OK")
	}
	if v, err := failed.Unwrap(); v != 0 || !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Fail().Unwrap() = %d, %v", v, err)
	}

	if r := Fail[Empty](nil); !errors.Is(r.Err, ErrRemote) {
		t.Errorf("Fail(nil).Err = %v, want ErrRemote", r.Err)
	}
}
