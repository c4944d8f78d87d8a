package client

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestCommandExecCallsCallbackOnSuccess(t *testing.T) {
	dummy := NewDummy()
	dummy.Reply(DomainStd, "Init", "OK", nil)

	var called bool
	var gotErr error
	cmd := NewCommand(dummy, DomainStd, "Init", func(err error) {
		called = true
		gotErr = err
	})

	reply, err := cmd.Exec(context.Background())
	if err != nil {
		t.Fatalf("Exec() unexpected error: %v", err)
	}
	if reply != "OK" {
		t.Errorf("Exec() = %q, want OK", reply)
	}
	if !called || gotErr != nil {
		t.Errorf("callback called=%v err=%v, want true/nil", called, gotErr)
	}
}

func TestCommandExecWrapsFailures(t *testing.T) {
	cause := errors.New("device busy")
	dummy := NewDummy()
	dummy.Reply(DomainApp, "Setup", "", cause)

	var gotErr error
	cmd := NewCommand(dummy, DomainApp, "Setup", func(err error) { gotErr = err })

	_, err := cmd.Exec(context.Background(), "payload")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Exec() error = %v, want ErrTransport", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Exec() error = %v, want cause preserved", err)
	}
	var terr *TransportError
	if !errors.As(err, &terr) || terr.Method != "Setup" || terr.Domain != DomainApp {
		t.Errorf("TransportError = %+v, want App/Setup", terr)
	}
	if gotErr != err {
		t.Errorf("callback err = %v, want %v", gotErr, err)
	}
}

func TestCommandExecCancelled(t *testing.T) {
	dummy := NewDummy()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	cmd := NewCommand(dummy, DomainApp, "Setup", func(err error) { gotErr = err })
	if _, err := cmd.Exec(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Exec() error = %v, want context.Canceled", err)
	}
	if !errors.Is(gotErr, context.Canceled) {
		t.Errorf("callback err = %v, want context.Canceled", gotErr)
	}
	if n := len(dummy.Calls()); n != 0 {
		t.Errorf("cancelled command reached the caller %d times", n)
	}
}

func TestCommandUnknownDomain(t *testing.T) {
	cmd := NewCommand(NewDummy(), Domain("Foo"), "Init", nil)
	if _, err := cmd.Exec(context.Background()); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("Exec() error = %v, want ErrUnknownDomain", err)
	}
}

func TestCommandWithPrependsArgs(t *testing.T) {
	dummy := NewDummy()
	base := NewCommand(dummy, DomainApp, "Ignore", nil)
	partial := base.With([]string{"lamp1"})

	if _, err := partial.Exec(context.Background(), "extra"); err != nil {
		t.Fatalf("Exec() unexpected error: %v", err)
	}
	if _, err := base.Exec(context.Background()); err != nil {
		t.Fatalf("Exec() unexpected error: %v", err)
	}

	calls := dummy.CallsTo(DomainApp, "Ignore")
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	want := []any{[]string{"lamp1"}, "extra"}
	if !reflect.DeepEqual(calls[0].Args, want) {
		t.Errorf("partial args = %v, want %v", calls[0].Args, want)
	}
	if len(calls[1].Args) != 0 {
		t.Errorf("base command args = %v, want none", calls[1].Args)
	}
}

func TestCommandExecAsync(t *testing.T) {
	dummy := NewDummy()
	dummy.Reply(DomainStd, "GetState", "Operational", nil)

	done := make(chan struct{})
	cmd := NewCommand(dummy, DomainStd, "GetState", func(error) { close(done) })

	res := <-cmd.ExecAsync(context.Background())
	if res.Err != nil || res.Reply != "Operational" {
		t.Errorf("ExecAsync() = %+v, want Operational", res)
	}
	<-done
}

func TestParseDomain(t *testing.T) {
	for _, in := range []string{"app", "APP", "App"} {
		if d, err := ParseDomain(in); err != nil || d != DomainApp {
			t.Errorf("ParseDomain(%q) = %v, %v", in, d, err)
		}
	}
	if _, err := ParseDomain("meta"); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("ParseDomain(meta) error = %v", err)
	}
}

func TestDummyRepliesInOrder(t *testing.T) {
	dummy := NewDummy()
	dummy.Reply(DomainStd, "GetState", "NotReady", nil)
	dummy.Reply(DomainStd, "GetState", "Operational", nil)

	ctx := context.Background()
	var got []string
	for i := 0; i < 3; i++ {
		reply, err := dummy.Call(ctx, DomainStd, "GetState")
		if err != nil {
			t.Fatalf("Call() unexpected error: %v", err)
		}
		got = append(got, reply)
	}
	want := []string{"NotReady", "Operational", "Operational"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("replies = %v, want %v", got, want)
	}

	dummy.Reset()
	if reply, _ := dummy.Call(ctx, DomainStd, "GetState"); reply != "" {
		t.Errorf("reply after Reset() = %q, want empty", reply)
	}
	if n := len(dummy.Calls()); n != 1 {
		t.Errorf("calls after Reset() = %d, want 1", n)
	}
}
