package utils

import (
	"fmt"
	"os"

	ps "github.com/mitchellh/go-ps"
)

var processesFunc = ps.Processes

// OtherInstances returns the PIDs of running processes named executable,
// excluding the current process.
func OtherInstances(executable string) ([]int, error) {
	procs, err := processesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	self := os.Getpid()
	var pids []int
	for _, p := range procs {
		if p.Pid() != self && p.Executable() == executable {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}
