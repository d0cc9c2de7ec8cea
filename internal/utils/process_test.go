package utils

import (
	"errors"
	"os"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func TestOtherInstances(t *testing.T) {
	orig := processesFunc
	t.Cleanup(func() { processesFunc = orig })

	processesFunc = func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: os.Getpid(), name: "tally"},
			fakeProcess{pid: 4242, name: "tally"},
			fakeProcess{pid: 4343, name: "bash"},
		}, nil
	}

	pids, err := OtherInstances("tally")
	if err != nil {
		t.Fatalf("OtherInstances failed: %v", err)
	}
	if len(pids) != 1 || pids[0] != 4242 {
		t.Errorf("OtherInstances = %v, want [4242]", pids)
	}
}

func TestOtherInstancesListError(t *testing.T) {
	orig := processesFunc
	t.Cleanup(func() { processesFunc = orig })

	processesFunc = func() ([]ps.Process, error) { return nil, errors.New("no /proc") }

	if _, err := OtherInstances("tally"); err == nil {
		t.Fatal("expected error")
	}
}
