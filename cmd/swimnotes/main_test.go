package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasjlepore/swim-analyzer/internal/fixture"
)

func writeSwim(t *testing.T) string {
	t.Helper()
	data := fixture.Build(t, fixture.Workout{
		PoolMeters: 25,
		Lengths:    []fixture.Length{fixture.Free(30), fixture.Free(30), fixture.Rest(15), fixture.Back(36)},
	})
	path := filepath.Join(t.TempDir(), "swim.fit")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSwimNotesText(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{writeSwim(t)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"File: swim.fit", "session 1 of the day", "- Set 1: 2x25m freestyle", "- Set 2: 1x25m backstroke"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSwimNotesJSON(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json", "--timezone", "UTC", writeSwim(t)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var got notesOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out.String())
	}
	if len(got.Rows) != 3 || len(got.Sets) != 2 || got.Extract == nil || got.Extract.Session.Date != "2024-03-04" {
		t.Fatalf("unexpected json output: %+v", got)
	}
}

func TestSwimNotesErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{filepath.Join(t.TempDir(), "missing.fit")},
		{"--timezone", "Nowhere/City", writeSwim(t)},
	} {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Fatalf("expected error for args %v", args)
		}
	}
}

func TestSwimNotesStartUsesTimezoneFlag(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--timezone", "America/Los_Angeles", writeSwim(t)})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "Start: 2024-03-03 22:30:00 (session 1 of the day)") {
		t.Fatalf("start line ignores --timezone:\n%s", out.String())
	}
}
