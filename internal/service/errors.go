package service

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFull      = errors.New("session is full")
	ErrAlreadyJoined    = errors.New("already a participant of this session")
	ErrNotParticipant   = errors.New("not a participant of this session")
	ErrOwnerCannotLeave = errors.New("the owner cannot leave their own session")
	ErrNotOwner         = errors.New("only the owner can disband this session")
	ErrInvalidSession   = errors.New("invalid session")
	ErrEmptyMessage     = errors.New("message text is empty")
	ErrMessageTooLong   = errors.New("message text is too long")
	ErrInvalidMajor     = errors.New("unknown major")
	ErrUserNotFound     = errors.New("user not found")
)
