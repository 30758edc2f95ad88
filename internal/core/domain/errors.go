package domain

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoMediaElement   = errors.New("no media element attached")
	ErrNoEngine         = errors.New("no streaming engine attached")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrLevelOutOfRange  = errors.New("quality level index out of range")
	ErrTrackOutOfRange  = errors.New("track index out of range")
)
