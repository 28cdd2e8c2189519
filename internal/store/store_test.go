package store

import (
	"regexp"
	"testing"
)

func TestSessionBindOnce(t *testing.T) {
	s := NewSession("sess-1")
	if err := s.Bind("user-1", false); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	if s.UserID() != "user-1" {
		t.Errorf("UserID = %q, want user-1", s.UserID())
	}
	if err := s.Bind("user-2", false); err != ErrIdentityBound {
		t.Errorf("second bind should fail with ErrIdentityBound, got %v", err)
	}
	if s.UserID() != "user-1" {
		t.Errorf("UserID changed after rejected rebind: %q", s.UserID())
	}
}

func TestSessionGuest(t *testing.T) {
	s := NewSession("sess-1")
	if !s.IsAnonymous() {
		t.Error("unbound session should be anonymous")
	}
	if err := s.Bind("guest-7", true); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if !s.IsAnonymous() {
		t.Error("guest session should stay anonymous")
	}
	if s.UserID() != "" {
		t.Errorf("guest UserID = %q, want empty", s.UserID())
	}
}

func TestCreateRoomGeneratesCode(t *testing.T) {
	st := New()
	room, err := st.CreateRoom(func(id string) *Room {
		return &Room{ID: id, Name: "test", Status: StatusLobby}
	})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(room.ID) {
		t.Errorf("room code %q is not 6-char upper alphanumeric", room.ID)
	}
	if st.Room(room.ID) != room {
		t.Error("room not registered under its code")
	}
}

func TestMembershipIndex(t *testing.T) {
	st := New()
	room, _ := st.CreateRoom(func(id string) *Room {
		return &Room{ID: id, Status: StatusLobby}
	})

	st.SetMembership("sess-1", room.ID)
	if got := st.RoomOf("sess-1"); got != room {
		t.Error("RoomOf should return the joined room")
	}

	st.ClearMembership("sess-1")
	if got := st.RoomOf("sess-1"); got != nil {
		t.Error("RoomOf should be nil after leaving")
	}
}

func TestRoomRemovePlayerKeepsOrder(t *testing.T) {
	r := &Room{Players: []*Player{
		{SessionID: "a"}, {SessionID: "b"}, {SessionID: "c"},
	}}
	if !r.RemovePlayer("b") {
		t.Fatal("RemovePlayer returned false")
	}
	if len(r.Players) != 2 || r.Players[0].SessionID != "a" || r.Players[1].SessionID != "c" {
		t.Errorf("unexpected player order after removal: %v", r.Players)
	}
	if r.RemovePlayer("b") {
		t.Error("removing a missing player should return false")
	}
}

func TestPresenceCountBasedTransitions(t *testing.T) {
	p := NewPresenceIndex()

	if !p.Add("u1", "s1") {
		t.Error("first session should report came-online")
	}
	if p.Add("u1", "s2") {
		t.Error("second session should not report came-online")
	}
	if !p.IsOnline("u1") {
		t.Error("user with two sessions should be online")
	}

	if p.Remove("u1", "s1") {
		t.Error("removing one of two sessions should not report went-offline")
	}
	if !p.Remove("u1", "s2") {
		t.Error("removing the last session should report went-offline")
	}
	if p.IsOnline("u1") {
		t.Error("user should be offline after last session removed")
	}

	// Unknown session/user removals are no-ops.
	if p.Remove("u1", "s9") || p.Remove("nobody", "s1") {
		t.Error("unknown removals should report false")
	}
}
