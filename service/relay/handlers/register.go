package handlers

import (
	"PPRelay/service/relay"
)

// RegisterAll wires every event handler into the server's dispatcher.
func RegisterAll(s *relay.Server) {
	s.Register(NewJoinRoomHandler())
	s.Register(NewLeaveRoomHandler())
	s.Register(NewUserOnlineHandler())
	s.Register(NewSendMessageHandler())
	s.Register(NewTypingHandler())
	s.Register(NewMessageEditedHandler())
	s.Register(NewMessageDeletedHandler())
	s.Register(NewMessageReactionHandler())
	s.Register(NewMessageReadHandler())
	s.Register(NewCallOfferHandler())
	s.Register(NewCallAnswerHandler())
	s.Register(NewCallCandidateHandler())
	s.Register(NewCallEndHandler())
}
