package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imposterparty/api/internal/logger"
	"github.com/imposterparty/api/internal/model"
	"github.com/imposterparty/api/internal/repository"
	"github.com/imposterparty/api/internal/store"
	"github.com/imposterparty/api/internal/words"
	"github.com/imposterparty/api/pkg/imposter"
)

const (
	maxHintLength     = 50
	emptyHintMarker   = "(Empty)"
	timeoutHintMarker = "(Timed out)"
	statsTimeout      = 10 * time.Second
)

// GameService drives games inside rooms: starting them, accepting hints and
// votes, running the 1 Hz phase clock, and recording results when a game
// ends. All room mutations happen under the room's own mutex, so client
// commands and scheduler ticks on the same room never interleave.
type GameService struct {
	store      *store.Store
	bc         Broadcaster
	stats      repository.StatsRepository
	cfg        imposter.Config
	minPlayers int
	maxPlayers int
	rand       imposter.RandFunc
	newGameID  func() string
	log        zerolog.Logger
}

// NewGameService creates a game service. stats may be nil when persistence
// is not configured; game results are then dropped with a log line.
func NewGameService(st *store.Store, bc Broadcaster, stats repository.StatsRepository, cfg imposter.Config, minPlayers, maxPlayers int, rnd imposter.RandFunc) *GameService {
	return &GameService{
		store:      st,
		bc:         bc,
		stats:      stats,
		cfg:        cfg,
		minPlayers: minPlayers,
		maxPlayers: maxPlayers,
		rand:       rnd,
		newGameID:  uuid.NewString,
		log:        logger.Get().With().Str("service", "game").Logger(),
	}
}

// StartGame begins a game in the caller's room. Owner-only, needs at least
// the configured minimum of players, and the room must still be in LOBBY.
func (s *GameService) StartGame(sess *store.Session, language string) error {
	r := s.store.RoomOf(sess.ID)
	if r == nil {
		return ErrRoomNotFound
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.OwnerID != sess.ID {
		return ErrNotTheHost
	}
	if r.Status != store.StatusLobby {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) < s.minPlayers {
		return ErrNeedPlayers
	}

	category := words.PickCategory(language, r.Category, s.rand)
	list := words.ForCategory(language, category)
	citizenWord, imposterWord := imposter.SelectWordsForMode(r.Mode, list, s.rand)

	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.SessionID
		p.Eliminated = false
		p.HasVoted = false
	}
	imposterID := ids[drawUniform(len(ids), s.rand)]
	order := imposter.SelectTurnOrder(ids, imposterID, s.cfg.ImposterFirstSpeakerWeight, s.rand)

	state := &imposter.State{
		GameID:       s.newGameID(),
		Phase:        imposter.PhaseLobby,
		Mode:         r.Mode,
		Category:     category,
		CitizenWord:  citizenWord,
		ImposterWord: imposterWord,
		ImposterID:   imposterID,
		TurnOrder:    order,
		RoundNumber:  1,
		Votes:        make(map[string]string),
		Hints:        make(map[string][]string),
	}
	next, err := imposter.ApplyPhaseTransition(state, imposter.PhaseRoleReveal, s.cfg)
	if err != nil {
		s.log.Error().Err(err).Str("room", r.ID).Msg("illegal transition starting game")
		return err
	}
	r.Game = next
	r.Status = store.StatusPlaying
	r.StartedAt = time.Now()
	r.StatsRecorded = false
	s.startTimerLocked(r)

	s.log.Info().Str("room", r.ID).Str("game", next.GameID).
		Str("mode", string(r.Mode)).Str("category", category).
		Int("players", len(r.Players)).Msg("game started")

	s.broadcastRoomLocked(r)
	s.broadcastGameLocked(r)
	s.BroadcastRoomList()
	return nil
}

// SubmitHint records the current speaker's hint and advances the turn.
func (s *GameService) SubmitHint(sess *store.Session, text string) error {
	r := s.store.RoomOf(sess.ID)
	if r == nil {
		return ErrRoomNotFound
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	g := r.Game
	if g == nil || r.Status != store.StatusPlaying {
		return imposter.ErrGameNotStarted
	}
	if g.Phase != imposter.PhaseHintRound {
		return imposter.ErrWrongPhase
	}
	if g.CurrentTurnIndex >= len(g.TurnOrder) || g.TurnOrder[g.CurrentTurnIndex] != sess.ID {
		return ErrNotYourTurn
	}

	hint := strings.TrimSpace(text)
	if g.CitizenWord != "" && strings.EqualFold(hint, g.CitizenWord) {
		return ErrHintIsSecretWord
	}
	if hint == "" {
		hint = emptyHintMarker
	}
	if runes := []rune(hint); len(runes) > maxHintLength {
		hint = string(runes[:maxHintLength])
	}

	g.Hints[sess.ID] = append(g.Hints[sess.ID], hint)
	s.advanceTurnLocked(r)
	s.broadcastGameLocked(r)
	return nil
}

// SubmitVote validates and applies a vote, resolving the round early when
// every living player has voted.
func (s *GameService) SubmitVote(sess *store.Session, targetSessionID string) error {
	r := s.store.RoomOf(sess.ID)
	if r == nil {
		return ErrRoomNotFound
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	voter := r.FindPlayer(sess.ID)
	if voter == nil {
		return ErrRoomNotFound
	}
	if voter.Eliminated {
		return ErrNotAuthorized
	}
	g := r.Game
	if err := imposter.ValidateVote(g, r.Roster(), sess.ID, targetSessionID); err != nil {
		return err
	}

	g.Votes = imposter.ApplyVote(g.Votes, sess.ID, targetSessionID)
	voter.HasVoted = true

	s.broadcastRoomLocked(r)
	if s.allAliveVotedLocked(r) {
		s.resolveVotesLocked(r)
	}
	s.broadcastGameLocked(r)
	return nil
}

// PlayAgain resets an ended room back to LOBBY. Owner-only.
func (s *GameService) PlayAgain(sess *store.Session) error {
	r := s.store.RoomOf(sess.ID)
	if r == nil {
		return ErrRoomNotFound
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.OwnerID != sess.ID {
		return ErrNotTheHost
	}
	if r.Status != store.StatusEnded {
		return imposter.ErrWrongPhase
	}

	r.StopTimer()
	r.Game = nil
	r.Status = store.StatusLobby
	for _, p := range r.Players {
		p.Eliminated = false
		p.HasVoted = false
		p.Ready = false
	}

	s.broadcastRoomLocked(r)
	s.BroadcastRoomList()
	return nil
}

// BroadcastRoomList pushes the public room list to every connected client.
// It runs off the caller's goroutine: projecting the list takes every
// room's lock briefly, and several callers already hold their own room's
// lock when the list changes.
func (s *GameService) BroadcastRoomList() {
	go func() {
		s.bc.ToAll(EvtRoomList, projectRoomList(s.store.Rooms(), s.maxPlayers))
	}()
}

// advanceTurnLocked moves to the next living speaker. When the pass is
// exhausted it either starts another hint pass or moves to DISCUSSION.
func (s *GameService) advanceTurnLocked(r *store.Room) {
	g := r.Game
	g.CurrentTurnIndex++
	s.skipEliminatedLocked(r)
	if g.CurrentTurnIndex < len(g.TurnOrder) {
		g.TurnTimeLeft = s.cfg.HintTurnTime
		return
	}
	if g.RoundNumber < s.cfg.HintRounds {
		g.RoundNumber++
		g.CurrentTurnIndex = 0
		g.TurnTimeLeft = s.cfg.HintTurnTime
		s.skipEliminatedLocked(r)
		if g.CurrentTurnIndex < len(g.TurnOrder) {
			return
		}
	}
	s.transitionLocked(r, imposter.PhaseDiscussion)
}

// skipEliminatedLocked advances the turn index past eliminated players.
func (s *GameService) skipEliminatedLocked(r *store.Room) {
	g := r.Game
	for g.CurrentTurnIndex < len(g.TurnOrder) {
		p := r.FindPlayer(g.TurnOrder[g.CurrentTurnIndex])
		if p != nil && !p.Eliminated {
			return
		}
		g.CurrentTurnIndex++
	}
}

func (s *GameService) allAliveVotedLocked(r *store.Room) bool {
	for _, p := range r.Players {
		if p.Eliminated {
			continue
		}
		if _, ok := r.Game.Votes[p.SessionID]; !ok {
			return false
		}
	}
	return true
}

// resolveVotesLocked tallies the votes, marks an elimination when a unique
// top target exists, and enters VOTE_RESULT. A tie still enters VOTE_RESULT
// with no one eliminated.
func (s *GameService) resolveVotesLocked(r *store.Room) {
	g := r.Game
	eliminated := imposter.CalculateEliminated(g.Votes)
	if eliminated != "" {
		if p := r.FindPlayer(eliminated); p != nil {
			p.Eliminated = true
		}
	}
	s.transitionLocked(r, imposter.PhaseVoteResult)
	if r.Game != nil {
		r.Game.EliminatedID = eliminated
	}
	s.broadcastRoomLocked(r)
}

// completeVoteResultLocked either finishes the game or starts the next
// round with cleared hints, votes, and elimination marker.
func (s *GameService) completeVoteResultLocked(r *store.Room) {
	g := r.Game
	winner := imposter.CheckWinCondition(r.Roster(), g.ImposterID)
	if winner != imposter.WinnerNone {
		s.finishLocked(r, winner)
		return
	}

	s.transitionLocked(r, imposter.PhaseHintRound)
	g = r.Game
	g.RoundNumber++
	g.Hints = make(map[string][]string)
	g.Votes = make(map[string]string)
	g.EliminatedID = ""
	for _, p := range r.Players {
		p.HasVoted = false
	}
	s.skipEliminatedLocked(r)
	s.broadcastRoomLocked(r)
}

// finishLocked ends the game. The phase is forced to GAME_OVER regardless
// of the current phase: an imposter disconnect can end a game from any
// point in the cycle.
func (s *GameService) finishLocked(r *store.Room, winner imposter.Winner) {
	g := r.Game
	if g == nil || g.Phase == imposter.PhaseGameOver {
		return
	}
	g.Winner = winner
	g.Phase = imposter.PhaseGameOver
	g.PhaseTimeLeft = 0
	r.Status = store.StatusEnded
	r.StopTimer()

	s.log.Info().Str("room", r.ID).Str("game", g.GameID).
		Str("winner", string(winner)).Msg("game over")

	s.recordStatsLocked(r, winner)
	s.broadcastRoomLocked(r)
	s.BroadcastRoomList()
}

// recordStatsLocked snapshots the result under the room lock and persists
// it off the lock. Failures are logged only; gameplay is never affected.
func (s *GameService) recordStatsLocked(r *store.Room, winner imposter.Winner) {
	if r.StatsRecorded {
		return
	}
	r.StatsRecorded = true

	g := r.Game
	result := &model.GameResult{
		GameID:          g.GameID,
		RoomID:          r.ID,
		Winner:          string(winner),
		Category:        g.Category,
		DurationSeconds: int(time.Since(r.StartedAt).Seconds()),
	}
	for _, p := range r.Players {
		wasImposter := p.SessionID == g.ImposterID
		won := (winner == imposter.WinnerImposter) == wasImposter
		userID := ""
		if sess := s.store.Session(p.SessionID); sess != nil {
			userID = sess.UserID()
		}
		result.Players = append(result.Players, model.GameResultPlayer{
			GameID:      g.GameID,
			UserID:      userID,
			DisplayName: p.DisplayName,
			WasImposter: wasImposter,
			Won:         won,
		})
	}

	if s.stats == nil {
		s.log.Warn().Str("game", g.GameID).Msg("stats repository not configured, dropping game result")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()
		if err := s.stats.RecordGameEnd(ctx, result); err != nil {
			s.log.Error().Err(err).Str("game", result.GameID).Msg("failed to record game result")
		}
	}()
}

// transitionLocked applies a legal phase transition to the room's state.
// An illegal edge is a programming error: it is logged and the state is
// left untouched, never surfaced to clients.
func (s *GameService) transitionLocked(r *store.Room, target imposter.Phase) {
	next, err := imposter.ApplyPhaseTransition(r.Game, target, s.cfg)
	if err != nil {
		s.log.Error().Err(err).Str("room", r.ID).
			Str("from", string(r.Game.Phase)).Str("to", string(target)).
			Msg("illegal phase transition")
		return
	}
	r.Game = next
}

// broadcastRoomLocked fans the sanitized room snapshot out to the room.
func (s *GameService) broadcastRoomLocked(r *store.Room) {
	s.bc.ToRoom(r.ID, EvtRoomUpdate, projectRoom(r, s.maxPlayers))
}

// broadcastGameLocked sends each player their own projection of the game.
func (s *GameService) broadcastGameLocked(r *store.Room) {
	if r.Game == nil {
		return
	}
	for _, p := range r.Players {
		s.bc.ToSession(p.SessionID, EvtGameState, projectGame(r, p.SessionID))
	}
}

// drawUniform maps a rand() draw onto [0, n).
func drawUniform(n int, rnd imposter.RandFunc) int {
	if n <= 0 {
		return 0
	}
	i := int(rnd() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
