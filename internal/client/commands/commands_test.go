package commands

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"

	"chessbot/internal/client/api"
	"chessbot/internal/core"
	chesshttp "chessbot/internal/http"
	"chessbot/internal/processor"
	"chessbot/internal/service"
)

// newSession starts a real server on a loopback port and points a client session at it
func newSession(t *testing.T) (*Registry, *Session, *bytes.Buffer) {
	t.Helper()
	svc := service.New()
	proc := processor.New(svc, 1)
	app := chesshttp.NewFiberApp(proc, svc, true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() {
		svc.Shutdown()
		app.Shutdown()
		proc.Close()
	})

	var out bytes.Buffer
	client := api.New("http://" + ln.Addr().String())
	client.Out = &out
	s := &Session{Client: client, Out: &out}
	return NewRegistry(s), s, &out
}

func TestParsePlayer(t *testing.T) {
	tests := []struct {
		arg     string
		want    core.PlayerConfig
		wantErr bool
	}{
		{"h", core.PlayerConfig{Type: core.PlayerHuman}, false},
		{"C", core.PlayerConfig{Type: core.PlayerComputer}, false},
		{"c4", core.PlayerConfig{Type: core.PlayerComputer, Depth: 4}, false},
		{"cx", core.PlayerConfig{}, true},
		{"robot", core.PlayerConfig{}, true},
	}
	for _, tt := range tests {
		got, err := parsePlayer(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePlayer(%q) error = %v", tt.arg, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parsePlayer(%q) = %+v, want %+v", tt.arg, got, tt.want)
		}
	}
}

func TestGameAgainstComputer(t *testing.T) {
	r, s, out := newSession(t)

	if err := r.Execute("new h c1"); err != nil {
		t.Fatal(err)
	}
	if s.CurrentGame == "" {
		t.Fatalf("no game created:\n%s", out)
	}

	r.Execute("move e2e4")
	if !strings.Contains(out.String(), "Computer played: ") {
		t.Fatalf("computer reply not shown:\n%s", out)
	}
	if s.LastMoveCount != 2 || s.GameState.Turn != "w" {
		t.Errorf("session after reply: count=%d state=%+v", s.LastMoveCount, s.GameState)
	}

	out.Reset()
	r.Execute("show")
	for _, want := range []string{"FEN: ", "History: 1.e2e4 ", "Last move: "} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out.Reset()
	r.Execute("u 2")
	if s.LastMoveCount != 0 {
		t.Errorf("move count after undo = %d:\n%s", s.LastMoveCount, out)
	}

	r.Execute("delete")
	if s.CurrentGame != "" {
		t.Error("current game kept after delete")
	}
}

func TestComputerOpensGame(t *testing.T) {
	r, s, out := newSession(t)

	r.Execute("n c1 h")
	if s.LastMoveCount != 1 || s.GameState.Turn != "b" {
		t.Errorf("white computer did not open:\n%s", out)
	}
}

func TestErrorsAreReported(t *testing.T) {
	r, s, out := newSession(t)

	r.Execute("move e2e4")
	if !strings.Contains(out.String(), "no current game") {
		t.Errorf("missing game error not shown:\n%s", out)
	}

	r.Execute("new")
	out.Reset()
	r.Execute("move e2e5")
	if !strings.Contains(out.String(), "[400 Bad Request]") || !strings.Contains(out.String(), core.ErrInvalidMove) {
		t.Errorf("illegal move not reported:\n%s", out)
	}

	out.Reset()
	r.Execute("bogus")
	if !strings.Contains(out.String(), "Unknown command: bogus") {
		t.Errorf("unknown command not reported:\n%s", out)
	}

	if err := r.Execute("exit"); !errors.Is(err, ErrExit) {
		t.Errorf("exit returned %v", err)
	}
	if s.CurrentGame == "" {
		t.Error("game lost")
	}
}

func TestClientErrorCarriesCode(t *testing.T) {
	_, s, _ := newSession(t)

	_, err := s.Client.GetGame("00000000-0000-0000-0000-000000000000")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *api.Error", err)
	}
	if apiErr.Status != 404 || apiErr.Response.Code != core.ErrGameNotFound {
		t.Errorf("api error = %+v", apiErr)
	}

	health, err := s.Client.Health()
	if err != nil || health.Status != "healthy" {
		t.Errorf("health = %+v, %v", health, err)
	}
}
