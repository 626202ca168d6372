package swimfit

import (
	"strings"
	"testing"
	"time"

	"github.com/lucasjlepore/swim-analyzer/internal/fixture"
)

func TestBuildSwimNotes(t *testing.T) {
	data := fixture.Build(t, fixture.Workout{
		PoolMeters: 25,
		Lengths: []fixture.Length{
			fixture.Free(30), fixture.Free(30), fixture.Rest(20),
			fixture.Drill(50), fixture.Rest(20),
			fixture.Free(33), fixture.Free(33),
		},
	})
	ex, err := ExtractBytes("notes.fit", data)
	if err != nil {
		t.Fatalf("ExtractBytes error: %v", err)
	}
	sessions := NumberSessions([]SessionRecord{*ex.Session}, nil)
	notes := BuildSwimNotes(ex, Derive(ex.Laps, sessions), nil)

	for _, want := range []string{
		"File: notes.fit",
		"Pool: 25 m",
		"Lengths: 7 recorded | 4 swum | 1 drill | 2 rest",
		"- Set 1: 2x25m freestyle @ 30s/length (2:00 /100m)",
		"- Set 3: 2x25m freestyle @ 33s/length",
		"slowed 10.0%",
	} {
		if !strings.Contains(notes, want) {
			t.Fatalf("notes missing %q:\n%s", want, notes)
		}
	}
}

func TestBuildSwimNotesWithoutSession(t *testing.T) {
	ex := &Extract{SourceFile: "bare.fit", Warnings: []string{"no session message; session fields will be empty"}}
	notes := BuildSwimNotes(ex, nil, nil)
	if !strings.Contains(notes, "Session: unavailable") || !strings.Contains(notes, "No swum lengths") {
		t.Fatalf("unexpected notes:\n%s", notes)
	}
	if !strings.Contains(notes, "warning: no session message") {
		t.Fatalf("warnings not rendered:\n%s", notes)
	}
	if BuildSwimNotes(nil, nil, nil) != "" {
		t.Fatal("nil extract should render nothing")
	}
}

func TestPacePer100(t *testing.T) {
	if got := pacePer100(100.0 / 95.0); got != "1:35" {
		t.Fatalf("pacePer100 = %q, want 1:35", got)
	}
	if got := pacePer100(0); got != "-" {
		t.Fatalf("pacePer100(0) = %q", got)
	}
}

func TestBuildSwimNotesStartFollowsLocation(t *testing.T) {
	data := fixture.Build(t, fixture.Workout{
		Start:      time.Date(2024, 3, 4, 6, 30, 0, 0, time.UTC),
		PoolMeters: 25,
		Lengths:    []fixture.Length{fixture.Free(30)},
	})
	ex, err := ExtractBytes("early.fit", data)
	if err != nil {
		t.Fatalf("ExtractBytes error: %v", err)
	}
	west := time.FixedZone("west", -8*3600)
	numbered := NumberSessions([]SessionRecord{*ex.Session}, west)
	ex.Session = &numbered[0]
	if ex.Session.Date != "2024-03-03" {
		t.Fatalf("session date = %s, want 2024-03-03", ex.Session.Date)
	}

	notes := BuildSwimNotes(ex, Derive(ex.Laps, numbered), west)
	if !strings.Contains(notes, "Start: 2024-03-03 22:30:00 (session 1 of the day)") {
		t.Fatalf("start line not in session location:\n%s", notes)
	}
}
