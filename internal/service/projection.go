package service

import (
	"sort"

	"github.com/imposterparty/api/internal/store"
	"github.com/imposterparty/api/pkg/imposter"
)

// PlayerView is a roster entry as clients see it. Players are addressed by
// session ID only; account user IDs never appear in room payloads.
type PlayerView struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	AvatarTag   string `json:"avatarTag"`
	Ready       bool   `json:"ready"`
	Eliminated  bool   `json:"eliminated"`
	HasVoted    bool   `json:"hasVoted"`
}

// RoomView is the shared room snapshot sent as room_update. The password
// is reduced to a presence flag.
type RoomView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Players     []PlayerView `json:"players"`
	OwnerID     string       `json:"ownerId"`
	Status      string       `json:"status"`
	Category    string       `json:"category"`
	GameMode    string       `json:"gameMode"`
	HasPassword bool         `json:"hasPassword"`
	MaxPlayers  int          `json:"maxPlayers"`
}

// RoomListEntry is one row of the lobby room list.
type RoomListEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Status      string `json:"status"`
	HasPassword bool   `json:"hasPassword"`
	Category    string `json:"category"`
	OwnerName   string `json:"ownerName"`
}

// GameView is one player's projection of the game state. Each recipient
// gets a distinct payload: secret fields are resolved server-side per
// player so a client never holds data it could cheat with.
type GameView struct {
	GameID           string              `json:"gameId"`
	Phase            string              `json:"phase"`
	Category         string              `json:"category"`
	Word             *string             `json:"word"`
	IsImposter       bool                `json:"isImposter"`
	TurnOrder        []string            `json:"turnOrder"`
	CurrentTurnIndex int                 `json:"currentTurnIndex"`
	TurnTimeLeft     int                 `json:"turnTimeLeft"`
	PhaseTimeLeft    int                 `json:"phaseTimeLeft"`
	RoundNumber      int                 `json:"roundNumber"`
	Hints            map[string][]string `json:"hints"`
	Votes            map[string]string   `json:"votes,omitempty"`
	EliminatedID     string              `json:"eliminatedPlayerId,omitempty"`
	Winner           string              `json:"winner,omitempty"`
	ImposterID       string              `json:"imposterId,omitempty"`
}

// projectRoom builds the shared room snapshot. Callers hold the room lock.
func projectRoom(r *store.Room, maxPlayers int) *RoomView {
	players := make([]PlayerView, len(r.Players))
	for i, p := range r.Players {
		players[i] = PlayerView{
			SessionID:   p.SessionID,
			DisplayName: p.DisplayName,
			AvatarTag:   p.AvatarTag,
			Ready:       p.Ready,
			Eliminated:  p.Eliminated,
			HasVoted:    p.HasVoted,
		}
	}
	return &RoomView{
		ID:          r.ID,
		Name:        r.Name,
		Players:     players,
		OwnerID:     r.OwnerID,
		Status:      string(r.Status),
		Category:    r.Category,
		GameMode:    string(r.Mode),
		HasPassword: r.Password != "",
		MaxPlayers:  maxPlayers,
	}
}

// projectGame builds the recipient's view of the game. Callers hold the
// room lock. Votes surface only once voting has resolved; the imposter's
// identity only at game over.
func projectGame(r *store.Room, recipientSessionID string) *GameView {
	g := r.Game
	if g == nil {
		return nil
	}
	view := &GameView{
		GameID:           g.GameID,
		Phase:            string(g.Phase),
		Category:         g.Category,
		TurnOrder:        append([]string(nil), g.TurnOrder...),
		CurrentTurnIndex: g.CurrentTurnIndex,
		TurnTimeLeft:     g.TurnTimeLeft,
		PhaseTimeLeft:    g.PhaseTimeLeft,
		RoundNumber:      g.RoundNumber,
		Hints:            copyHints(g.Hints),
	}

	isImposter := recipientSessionID == g.ImposterID
	switch g.Mode {
	case imposter.ModeBlind:
		// Everyone sees a word and nobody is told their role.
		w := g.CitizenWord
		if isImposter {
			w = g.ImposterWord
		}
		view.Word = &w
	default:
		if isImposter {
			view.IsImposter = true
		} else {
			w := g.CitizenWord
			view.Word = &w
		}
	}

	if g.Phase == imposter.PhaseVoteResult || g.Phase == imposter.PhaseGameOver {
		view.Votes = copyVotes(g.Votes)
		view.EliminatedID = g.EliminatedID
	}
	if g.Phase == imposter.PhaseGameOver {
		view.Winner = string(g.Winner)
		view.ImposterID = g.ImposterID
	}
	return view
}

func copyHints(hints map[string][]string) map[string][]string {
	out := make(map[string][]string, len(hints))
	for k, v := range hints {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func copyVotes(votes map[string]string) map[string]string {
	out := make(map[string]string, len(votes))
	for k, v := range votes {
		out[k] = v
	}
	return out
}

// projectRoomList builds the lobby list, sorted by room ID for a stable
// order across broadcasts.
func projectRoomList(rooms []*store.Room, maxPlayers int) []RoomListEntry {
	entries := make([]RoomListEntry, 0, len(rooms))
	for _, r := range rooms {
		r.Mu.Lock()
		ownerName := ""
		if owner := r.FindPlayer(r.OwnerID); owner != nil {
			ownerName = owner.DisplayName
		}
		entries = append(entries, RoomListEntry{
			ID:          r.ID,
			Name:        r.Name,
			PlayerCount: len(r.Players),
			MaxPlayers:  maxPlayers,
			Status:      string(r.Status),
			HasPassword: r.Password != "",
			Category:    r.Category,
			OwnerName:   ownerName,
		})
		r.Mu.Unlock()
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}
