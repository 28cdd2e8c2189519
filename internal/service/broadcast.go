package service

// Broadcaster delivers outbound events to connected clients. Implemented
// by the WebSocket hub. Per-player game snapshots go through ToSession:
// the projection layer computes a distinct payload per recipient and never
// trusts clients to filter a shared one.
type Broadcaster interface {
	ToSession(sessionID, event string, data any)
	ToRoom(roomID, event string, data any)
	ToUser(userID, event string, data any)
	ToAll(event string, data any)
	JoinRoom(sessionID, roomID string)
	LeaveRoom(sessionID, roomID string)
}

// NoopBroadcaster is a no-op implementation for tests.
type NoopBroadcaster struct{}

func (NoopBroadcaster) ToSession(string, string, any) {}
func (NoopBroadcaster) ToRoom(string, string, any)    {}
func (NoopBroadcaster) ToUser(string, string, any)    {}
func (NoopBroadcaster) ToAll(string, any)             {}
func (NoopBroadcaster) JoinRoom(string, string)       {}
func (NoopBroadcaster) LeaveRoom(string, string)      {}
