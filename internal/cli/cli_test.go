package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"serve", "explore", "export", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)

	if got := c.Logger.GetLevel(); got != log.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
}

func TestExportCommandRejectsUnknownMission(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"export", "nonexistent.json", "--mission", "nope"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Error("expected error for unknown mission")
	}
}
