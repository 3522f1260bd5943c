package testutil

import (
	"errors"
	"io"
	"os"
	"testing"
)

func TestMockLineSource(t *testing.T) {
	t.Run("yields lines then EOF", func(t *testing.T) {
		mock := NewMockLineSource("a\n", "b\n")

		for _, want := range []string{"a\n", "b\n"} {
			line, err := mock.ReadLine()
			if err != nil || line != want {
				t.Errorf("ReadLine() = %q, %v, want %q", line, err, want)
			}
		}
		if _, err := mock.ReadLine(); err != io.EOF {
			t.Errorf("ReadLine() error = %v, want io.EOF", err)
		}
		if mock.GetReadCount() != 3 {
			t.Errorf("GetReadCount() = %d, want 3", mock.GetReadCount())
		}
	})

	t.Run("injected error", func(t *testing.T) {
		mockErr := errors.New("test error")
		mock := NewMockLineSource("a\n", "b\n")
		mock.SetError(1, mockErr)

		if _, err := mock.ReadLine(); err != nil {
			t.Errorf("first ReadLine() error = %v, want nil", err)
		}
		if _, err := mock.ReadLine(); err != mockErr {
			t.Errorf("second ReadLine() error = %v, want %v", err, mockErr)
		}
	})

	t.Run("close", func(t *testing.T) {
		mock := NewMockLineSource()
		if mock.IsClosed() {
			t.Error("IsClosed() = true before Close")
		}
		_ = mock.Close()
		if !mock.IsClosed() {
			t.Error("IsClosed() = false after Close")
		}
	})
}

func TestMockWriter(t *testing.T) {
	mockErr := errors.New("test error")
	mock := NewMockWriter()
	mock.SetError(1, mockErr)

	if _, err := mock.Write([]byte("ok")); err != nil {
		t.Errorf("first Write() error = %v, want nil", err)
	}
	if _, err := mock.Write([]byte("lost")); err != mockErr {
		t.Errorf("second Write() error = %v, want %v", err, mockErr)
	}
	if mock.String() != "ok" {
		t.Errorf("String() = %q, want %q", mock.String(), "ok")
	}
	if mock.GetWriteCount() != 2 {
		t.Errorf("GetWriteCount() = %d, want 2", mock.GetWriteCount())
	}
}

func TestMockPatternMatcher(t *testing.T) {
	mock := NewMockPatternMatcher("BEGIN")

	if !mock.MatchString("--BEGIN--") {
		t.Error("MatchString() = false for a line containing the token")
	}
	if mock.MatchString("begin") {
		t.Error("MatchString() = true for a line without the token")
	}
	if mock.GetMatchCallCount() != 2 {
		t.Errorf("GetMatchCallCount() = %d, want 2", mock.GetMatchCallCount())
	}
}

func TestMockPTYManager(t *testing.T) {
	mock := NewMockPTYManager()

	if err := mock.WriteOutput("x"); err == nil {
		t.Error("WriteOutput() before Start should fail")
	}
	if err := mock.Start("cmd", []string{"arg"}, nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := mock.Start("cmd", nil, nil); err == nil {
		t.Error("second Start() should fail")
	}

	go func() {
		_ = mock.WriteOutput("hi")
		_ = mock.CloseOutput()
	}()
	data, err := io.ReadAll(mock.GetPTY())
	if err != nil || string(data) != "hi" {
		t.Errorf("read %q, %v, want %q", data, err, "hi")
	}

	var hooked int
	mock.SetSignalHook(func(os.Signal) { hooked++ })
	_ = mock.Signal(os.Interrupt)
	if hooked != 1 {
		t.Errorf("signal hook ran %d times, want 1", hooked)
	}
	if sigs := mock.GetSignals(); len(sigs) != 1 || sigs[0] != os.Interrupt {
		t.Errorf("GetSignals() = %v", sigs)
	}

	_ = mock.Stop()
	if !mock.IsStopped() || !mock.IsStarted() {
		t.Error("expected started and stopped")
	}
}
