package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask a running casegraph server to reload its settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := signalRunningServer()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signaled running server (PID %d) to reload configuration\n", pid)
			return nil
		},
	}
}

// signalRunningServer sends SIGHUP to the server recorded in the pid file.
func signalRunningServer() (int, error) {
	data, err := os.ReadFile(pidPath())
	if err != nil {
		return 0, fmt.Errorf("no running server: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("corrupt pid file %s: %w", pidPath(), err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, err
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, fmt.Errorf("server (PID %d) is not running: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGHUP); err != nil {
		return 0, fmt.Errorf("signal server (PID %d): %w", pid, err)
	}
	return pid, nil
}
