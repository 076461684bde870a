package result

import (
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/marquee/internal/failure"
)

func TestResult(t *testing.T) {
	t.Run("Ok", func(t *testing.T) {
		r := Ok(42)
		if !r.IsOk() {
			t.Fatal("expected Ok")
		}
		if r.Value() != 42 {
			t.Errorf("expected 42, got %d", r.Value())
		}
		if r.Failure() != nil {
			t.Error("expected no failure")
		}

		v, err := r.Unwrap()
		if err != nil || v != 42 {
			t.Errorf("Unwrap() = %d, %v", v, err)
		}
	})

	t.Run("Err", func(t *testing.T) {
		f := failure.NewServer(500, "boom")
		r := Err[int](f)
		if r.IsOk() {
			t.Fatal("expected Err")
		}
		if r.Failure() != f {
			t.Error("expected the same failure")
		}

		_, err := r.Unwrap()
		var got *failure.Failure
		if !errors.As(err, &got) || got != f {
			t.Errorf("expected failure from Unwrap, got %v", err)
		}
	})

	t.Run("Err with nil failure", func(t *testing.T) {
		r := Err[string](nil)
		if r.IsOk() {
			t.Fatal("expected Err")
		}
		if r.Failure().Kind != failure.UnknownError {
			t.Errorf("expected unknown failure, got %v", r.Failure().Kind)
		}
	})

	t.Run("FromPair classifies", func(t *testing.T) {
		r := FromPair("", io.ErrUnexpectedEOF)
		if r.IsOk() || r.Failure().Kind != failure.NetworkError {
			t.Errorf("expected network failure, got %+v", r.Failure())
		}

		if !FromPair("x", nil).IsOk() {
			t.Error("expected Ok for nil error")
		}
	})

	t.Run("Fold", func(t *testing.T) {
		onErr := func(f *failure.Failure) string { return f.Kind.String() }
		onOk := func(v int) string { return "ok" }

		if got := Fold(Ok(1), onErr, onOk); got != "ok" {
			t.Errorf("expected ok, got %s", got)
		}
		if got := Fold(Err[int](failure.NewNetwork(io.EOF)), onErr, onOk); got != "network_error" {
			t.Errorf("expected network_error, got %s", got)
		}
	})
}
