package service

// Inbound event names (client -> server).
const (
	EvtJoinGame    = "join_game"
	EvtCreateRoom  = "create_room"
	EvtJoinRoom    = "join_room"
	EvtLeaveRoom   = "leave_room"
	EvtStartGame   = "start_game"
	EvtSubmitHint  = "submit_hint"
	EvtSubmitVote  = "submit_vote"
	EvtPlayAgain   = "play_again"
	EvtSendMessage = "send_message"
	EvtGetRooms    = "get_rooms"

	EvtSendFriendRequest    = "send_friend_request"
	EvtAcceptFriendRequest  = "accept_friend_request"
	EvtDeclineFriendRequest = "decline_friend_request"
	EvtCancelFriendRequest  = "cancel_friend_request"
	EvtRemoveFriend         = "remove_friend"
	EvtSendRoomInvite       = "send_room_invite"
	EvtRespondToInvite      = "respond_to_invite"
	EvtGetPendingInvites    = "get_pending_invites"
	EvtGetPendingRequests   = "get_pending_requests"
)

// Outbound event names (server -> client).
const (
	EvtPlayerStatus      = "player_status"
	EvtRoomUpdate        = "room_update"
	EvtRoomList          = "room_list"
	EvtGameState         = "game_state"
	EvtRoomMessage       = "room_message"
	EvtError             = "error"
	EvtFriendOnline      = "friend_online"
	EvtFriendOffline     = "friend_offline"
	EvtFriendsOnlineList = "friends_online_list"
	EvtFriendError       = "friend_error"
	EvtFriendRequest     = "friend_request"
	EvtFriendRequests    = "friend_requests"
	EvtFriendList        = "friend_list"
	EvtRoomInvite        = "room_invite"
	EvtRoomInvites       = "room_invites"
)

// Client-facing validation and authorization error codes. The engine owns
// the vote and transition codes; these cover the orchestrator surface.
const (
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomFull           = "ROOM_FULL"
	CodeIncorrectPassword  = "INCORRECT_PASSWORD"
	CodeGameAlreadyStarted = "GAME_ALREADY_STARTED"
	CodeNotTheHost         = "YOU_ARE_NOT_THE_HOST"
	CodeNeedPlayers        = "NEED_AT_LEAST_N_PLAYERS"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeHintIsSecretWord   = "CANNOT_USE_THE_SECRET_WORD_AS_HINT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeNotAuthorized      = "NOT_AUTHORIZED"
	CodeGameNotStarted     = "GAME_NOT_STARTED"
	CodeWrongPhase         = "WRONG_PHASE"
)

// Friend collaborator error codes, sent via friend_error.
const (
	FriendCodeInvalidUserID         = "INVALID_USER_ID"
	FriendCodeUserNotFound          = "USER_NOT_FOUND"
	FriendCodeAlreadyFriends        = "ALREADY_FRIENDS"
	FriendCodeRequestNotFound       = "REQUEST_NOT_FOUND"
	FriendCodeRequestAlreadyHandled = "REQUEST_ALREADY_HANDLED"
	FriendCodeNotAuthorized         = "NOT_AUTHORIZED"
	FriendCodeSelfRequest           = "SELF_REQUEST"
	FriendCodeMaxFriendsReached     = "MAX_FRIENDS_REACHED"
	FriendCodeDatabaseError         = "DATABASE_ERROR"
)
