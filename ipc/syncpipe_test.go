package ipc

import (
	"errors"
	"testing"

	"sandbox-go/config"
)

func TestSendReceiveConfig(t *testing.T) {
	p, err := NewSyncPipe()
	if err != nil {
		t.Fatalf("NewSyncPipe() error: %v", err)
	}
	defer p.Close()

	cfg := config.New()
	cfg.ExecPath = "/usr/bin/python3"
	cfg.ExecArgs = "-u solution.py"
	cfg.MaxCPUTime = 1000

	go func() {
		if err := SendConfig(p.ParentFile(), cfg); err != nil {
			t.Errorf("SendConfig() error: %v", err)
		}
		p.CloseParent()
	}()

	got, err := ReceiveConfig(p.ChildFile())
	if err != nil {
		t.Fatalf("ReceiveConfig() error: %v", err)
	}
	if got.ExecPath != cfg.ExecPath || got.ExecArgs != cfg.ExecArgs || got.MaxCPUTime != cfg.MaxCPUTime {
		t.Errorf("ReceiveConfig() = %+v, want %+v", got, cfg)
	}
}

func TestSignalErrorAndWaitWithError(t *testing.T) {
	p, err := NewSyncPipe()
	if err != nil {
		t.Fatalf("NewSyncPipe() error: %v", err)
	}
	defer p.Close()

	go func() {
		SignalError(p.ParentFile(), errors.New("exec failed: no such file"))
		p.CloseParent()
	}()

	err = WaitWithError(p.ChildFile())
	if err == nil {
		t.Fatal("expected an error from WaitWithError")
	}
	if err.Error() != "exec failed: no such file" {
		t.Errorf("WaitWithError() = %q, want %q", err.Error(), "exec failed: no such file")
	}
}

func TestWaitWithError_NoErrorOnCleanClose(t *testing.T) {
	p, err := NewSyncPipe()
	if err != nil {
		t.Fatalf("NewSyncPipe() error: %v", err)
	}
	defer p.Close()

	go func() {
		SignalError(p.ParentFile(), nil)
		p.CloseParent()
	}()

	if err := WaitWithError(p.ChildFile()); err != nil {
		t.Errorf("WaitWithError() = %v, want nil", err)
	}
}
