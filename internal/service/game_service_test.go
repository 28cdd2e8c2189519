package service

import (
	"testing"

	"github.com/imposterparty/api/internal/store"
	"github.com/imposterparty/api/pkg/imposter"
)

func TestStartGameValidation(t *testing.T) {
	h := newHarness(t)
	h.addSession(t, "p1", "")
	other := h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")

	t.Run("not the host", func(t *testing.T) {
		h.lobbyRoom(t, imposter.ModeClassic, "p1", "p2", "p3")
		if err := h.games.StartGame(other, "en"); err != ErrNotTheHost {
			t.Errorf("StartGame by non-owner = %v, want %v", err, ErrNotTheHost)
		}
	})

	t.Run("too few players", func(t *testing.T) {
		h2 := newHarness(t)
		o := h2.addSession(t, "p1", "")
		h2.addSession(t, "p2", "")
		h2.lobbyRoom(t, imposter.ModeClassic, "p1", "p2")
		if err := h2.games.StartGame(o, "en"); err != ErrNeedPlayers {
			t.Errorf("StartGame with 2 players = %v, want %v", err, ErrNeedPlayers)
		}
	})

	t.Run("already started", func(t *testing.T) {
		h3 := newHarness(t)
		o := h3.addSession(t, "p1", "")
		h3.addSession(t, "p2", "")
		h3.addSession(t, "p3", "")
		r := h3.lobbyRoom(t, imposter.ModeClassic, "p1", "p2", "p3")
		r.Status = store.StatusPlaying
		if err := h3.games.StartGame(o, "en"); err != ErrGameAlreadyStarted {
			t.Errorf("StartGame on playing room = %v, want %v", err, ErrGameAlreadyStarted)
		}
	})
}

func TestStartGameSetsUpState(t *testing.T) {
	h := newHarness(t)
	owner := h.addSession(t, "p1", "")
	h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")
	r := h.lobbyRoom(t, imposter.ModeClassic, "p1", "p2", "p3")

	if err := h.games.StartGame(owner, "en"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	r.Mu.Lock()
	defer func() {
		r.StopTimer()
		r.Mu.Unlock()
	}()

	g := r.Game
	if g == nil {
		t.Fatal("no game state after start")
	}
	if g.Phase != imposter.PhaseRoleReveal {
		t.Errorf("phase = %s, want %s", g.Phase, imposter.PhaseRoleReveal)
	}
	if g.GameID == "" {
		t.Error("game ID not assigned")
	}
	if g.CitizenWord == "" {
		t.Error("no citizen word selected")
	}
	if g.ImposterWord != "" {
		t.Errorf("CLASSIC game has imposter word %q", g.ImposterWord)
	}
	if len(g.TurnOrder) != 3 {
		t.Errorf("turn order length = %d, want 3", len(g.TurnOrder))
	}
	if r.FindPlayer(g.ImposterID) == nil {
		t.Errorf("imposter %q is not a player", g.ImposterID)
	}
	if r.Status != store.StatusPlaying {
		t.Errorf("room status = %s, want PLAYING", r.Status)
	}
	if r.Timer == nil {
		t.Error("no timer attached to playing room")
	}
	if g.PhaseTimeLeft != h.cfg.RoleRevealTime {
		t.Errorf("PhaseTimeLeft = %d, want %d", g.PhaseTimeLeft, h.cfg.RoleRevealTime)
	}
}

// Three players vote with a unique top target: the target is eliminated
// and the room enters VOTE_RESULT showing the votes.
func TestVotingEliminatesTopTarget(t *testing.T) {
	h := newHarness(t)
	p1 := h.addSession(t, "p1", "")
	p2 := h.addSession(t, "p2", "")
	p3 := h.addSession(t, "p3", "")
	r := h.playingRoom(t, imposter.PhaseVoting, imposter.ModeClassic, "p3", "p1", "p2", "p3")

	if err := h.games.SubmitVote(p1, "p2"); err != nil {
		t.Fatalf("p1 vote: %v", err)
	}
	if err := h.games.SubmitVote(p2, "p1"); err != nil {
		t.Fatalf("p2 vote: %v", err)
	}
	// Third vote completes the round and resolves early.
	if err := h.games.SubmitVote(p3, "p2"); err != nil {
		t.Fatalf("p3 vote: %v", err)
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	g := r.Game
	if g.Phase != imposter.PhaseVoteResult {
		t.Errorf("phase = %s, want VOTE_RESULT", g.Phase)
	}
	if g.EliminatedID != "p2" {
		t.Errorf("eliminated = %q, want p2", g.EliminatedID)
	}
	if p := r.FindPlayer("p2"); p == nil || !p.Eliminated {
		t.Error("p2 not marked eliminated")
	}
}

// A perfect tie eliminates nobody; the game still shows VOTE_RESULT and
// then loops back into a fresh HINT_ROUND with cleared hints and votes.
func TestPerfectTieThenNewHintRound(t *testing.T) {
	h := newHarness(t)
	p1 := h.addSession(t, "p1", "")
	p2 := h.addSession(t, "p2", "")
	p3 := h.addSession(t, "p3", "")
	p4 := h.addSession(t, "p4", "")
	r := h.playingRoom(t, imposter.PhaseVoting, imposter.ModeClassic, "p4", "p1", "p2", "p3", "p4")
	r.Game.Hints["p1"] = []string{"old hint"}

	for _, v := range []struct {
		sess   *store.Session
		target string
	}{{p1, "p2"}, {p2, "p3"}, {p3, "p4"}, {p4, "p1"}} {
		if err := h.games.SubmitVote(v.sess, v.target); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}

	r.Mu.Lock()
	if r.Game.Phase != imposter.PhaseVoteResult {
		t.Fatalf("phase = %s, want VOTE_RESULT", r.Game.Phase)
	}
	if r.Game.EliminatedID != "" {
		t.Errorf("tie eliminated %q, want nobody", r.Game.EliminatedID)
	}
	round := r.Game.RoundNumber
	h.games.completeVoteResultLocked(r)
	g := r.Game
	r.Mu.Unlock()

	if g.Phase != imposter.PhaseHintRound {
		t.Errorf("phase after VOTE_RESULT = %s, want HINT_ROUND", g.Phase)
	}
	if g.RoundNumber != round+1 {
		t.Errorf("round = %d, want %d", g.RoundNumber, round+1)
	}
	if len(g.Hints) != 0 || len(g.Votes) != 0 {
		t.Errorf("hints/votes not cleared: %v / %v", g.Hints, g.Votes)
	}
	if g.CurrentTurnIndex != 0 {
		t.Errorf("turn index = %d, want 0", g.CurrentTurnIndex)
	}
}

// Voting out the imposter ends the game: citizens win, the room ends, and
// the result is persisted exactly once under the game ID.
func TestImposterCaughtEndsGame(t *testing.T) {
	h := newHarness(t)
	p1 := h.addSession(t, "p1", "u1")
	p2 := h.addSession(t, "p2", "")
	p3 := h.addSession(t, "p3", "")
	p4 := h.addSession(t, "p4", "")
	r := h.playingRoom(t, imposter.PhaseVoting, imposter.ModeClassic, "p2", "p1", "p2", "p3", "p4")

	for _, v := range []struct {
		sess   *store.Session
		target string
	}{{p1, "p2"}, {p2, "p1"}, {p3, "p2"}, {p4, "p2"}} {
		if err := h.games.SubmitVote(v.sess, v.target); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}

	r.Mu.Lock()
	h.games.completeVoteResultLocked(r)
	g := r.Game
	status := r.Status
	r.Mu.Unlock()

	if g.Winner != imposter.WinnerCitizens {
		t.Errorf("winner = %q, want CITIZENS", g.Winner)
	}
	if g.Phase != imposter.PhaseGameOver {
		t.Errorf("phase = %s, want GAME_OVER", g.Phase)
	}
	if status != store.StatusEnded {
		t.Errorf("room status = %s, want ENDED", status)
	}

	waitFor(t, func() bool { return h.stats.count() == 1 })
	result := h.stats.last()
	if result.GameID != g.GameID {
		t.Errorf("recorded game ID %q, want %q", result.GameID, g.GameID)
	}
	if result.Winner != string(imposter.WinnerCitizens) {
		t.Errorf("recorded winner %q", result.Winner)
	}
	if len(result.Players) != 4 {
		t.Errorf("recorded %d players, want 4", len(result.Players))
	}
	for _, p := range result.Players {
		if p.DisplayName == "name-p1" && p.UserID != "u1" {
			t.Errorf("authenticated player recorded with user ID %q", p.UserID)
		}
		if p.WasImposter != (p.DisplayName == "name-p2") {
			t.Errorf("imposter flag wrong for %s", p.DisplayName)
		}
	}

	// A second completion attempt must not record again.
	r.Mu.Lock()
	h.games.recordStatsLocked(r, imposter.WinnerCitizens)
	r.Mu.Unlock()
	if h.stats.count() != 1 {
		t.Errorf("stats recorded %d times, want 1", h.stats.count())
	}
}

func TestSubmitHintRejectsSecretWord(t *testing.T) {
	h := newHarness(t)
	p1 := h.addSession(t, "p1", "")
	h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")
	r := h.playingRoom(t, imposter.PhaseHintRound, imposter.ModeClassic, "p3", "p1", "p2", "p3")

	if err := h.games.SubmitHint(p1, "cat"); err != ErrHintIsSecretWord {
		t.Fatalf("hint equal to word = %v, want %v", err, ErrHintIsSecretWord)
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if len(r.Game.Hints["p1"]) != 0 {
		t.Error("rejected hint was recorded")
	}
	if r.Game.CurrentTurnIndex != 0 {
		t.Error("turn advanced on rejected hint")
	}
}

func TestSubmitHintNotYourTurn(t *testing.T) {
	h := newHarness(t)
	h.addSession(t, "p1", "")
	p2 := h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")
	h.playingRoom(t, imposter.PhaseHintRound, imposter.ModeClassic, "p3", "p1", "p2", "p3")

	if err := h.games.SubmitHint(p2, "fluffy"); err != ErrNotYourTurn {
		t.Errorf("out-of-turn hint = %v, want %v", err, ErrNotYourTurn)
	}
}

func TestSubmitHintNormalization(t *testing.T) {
	h := newHarness(t)
	p1 := h.addSession(t, "p1", "")
	p2 := h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")
	r := h.playingRoom(t, imposter.PhaseHintRound, imposter.ModeClassic, "p3", "p1", "p2", "p3")

	if err := h.games.SubmitHint(p1, "   "); err != nil {
		t.Fatalf("empty hint: %v", err)
	}
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}
	if err := h.games.SubmitHint(p2, string(long)); err != nil {
		t.Fatalf("long hint: %v", err)
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if got := r.Game.Hints["p1"][0]; got != emptyHintMarker {
		t.Errorf("empty hint recorded as %q, want %q", got, emptyHintMarker)
	}
	if got := r.Game.Hints["p2"][0]; len([]rune(got)) != maxHintLength {
		t.Errorf("long hint length = %d, want %d", len([]rune(got)), maxHintLength)
	}
	if r.Game.CurrentTurnIndex != 2 {
		t.Errorf("turn index = %d, want 2", r.Game.CurrentTurnIndex)
	}
}

// All players hinting through every pass moves the game to DISCUSSION.
func TestHintPassesLeadToDiscussion(t *testing.T) {
	h := newHarness(t)
	sessions := []*store.Session{
		h.addSession(t, "p1", ""),
		h.addSession(t, "p2", ""),
		h.addSession(t, "p3", ""),
	}
	r := h.playingRoom(t, imposter.PhaseHintRound, imposter.ModeClassic, "p3", "p1", "p2", "p3")

	for pass := 0; pass < h.cfg.HintRounds; pass++ {
		for _, sess := range sessions {
			if err := h.games.SubmitHint(sess, "something"); err != nil {
				t.Fatalf("pass %d hint by %s: %v", pass, sess.ID, err)
			}
		}
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Game.Phase != imposter.PhaseDiscussion {
		t.Errorf("phase = %s, want DISCUSSION", r.Game.Phase)
	}
	for _, sess := range sessions {
		if got := len(r.Game.Hints[sess.ID]); got != h.cfg.HintRounds {
			t.Errorf("%s has %d hints, want %d", sess.ID, got, h.cfg.HintRounds)
		}
	}
}

func TestTurnTimeoutRecordsSentinel(t *testing.T) {
	h := newHarness(t)
	h.addSession(t, "p1", "")
	h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")
	r := h.playingRoom(t, imposter.PhaseHintRound, imposter.ModeClassic, "p3", "p1", "p2", "p3")

	r.Mu.Lock()
	h.games.turnTimeoutLocked(r)
	g := r.Game
	r.Mu.Unlock()

	if got := g.Hints["p1"]; len(got) != 1 || got[0] != timeoutHintMarker {
		t.Errorf("timeout hints = %v, want [%s]", got, timeoutHintMarker)
	}
	if g.CurrentTurnIndex != 1 {
		t.Errorf("turn index = %d, want 1", g.CurrentTurnIndex)
	}
	if g.TurnTimeLeft != h.cfg.HintTurnTime {
		t.Errorf("turn timer = %d, want reset to %d", g.TurnTimeLeft, h.cfg.HintTurnTime)
	}
}

func TestEliminatedPlayerCannotVote(t *testing.T) {
	h := newHarness(t)
	p1 := h.addSession(t, "p1", "")
	h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")
	h.addSession(t, "p4", "")
	r := h.playingRoom(t, imposter.PhaseVoting, imposter.ModeClassic, "p4", "p1", "p2", "p3", "p4")
	r.FindPlayer("p1").Eliminated = true

	if err := h.games.SubmitVote(p1, "p2"); err != ErrNotAuthorized {
		t.Errorf("eliminated voter = %v, want %v", err, ErrNotAuthorized)
	}
}

func TestPlayAgainResetsRoom(t *testing.T) {
	h := newHarness(t)
	p1 := h.addSession(t, "p1", "")
	p2 := h.addSession(t, "p2", "")
	h.addSession(t, "p3", "")
	r := h.playingRoom(t, imposter.PhaseGameOver, imposter.ModeClassic, "p3", "p1", "p2", "p3")
	r.Status = store.StatusEnded
	r.FindPlayer("p2").Eliminated = true
	r.FindPlayer("p2").HasVoted = true

	if err := h.games.PlayAgain(p2); err != ErrNotTheHost {
		t.Fatalf("PlayAgain by non-owner = %v, want %v", err, ErrNotTheHost)
	}
	if err := h.games.PlayAgain(p1); err != nil {
		t.Fatalf("PlayAgain: %v", err)
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Status != store.StatusLobby {
		t.Errorf("status = %s, want LOBBY", r.Status)
	}
	if r.Game != nil {
		t.Error("game state not cleared")
	}
	for _, p := range r.Players {
		if p.Eliminated || p.HasVoted {
			t.Errorf("player %s flags not reset", p.SessionID)
		}
	}
}
