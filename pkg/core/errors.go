package core

import "errors"

var (
	ErrInvalidEmotion    = errors.New("invalid emotion label")
	ErrInvalidWindow     = errors.New("invalid trend window")
	ErrRetrainInProgress = errors.New("retraining already in progress")
	ErrInsufficientData  = errors.New("not enough labeled interactions")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotCorrupt   = errors.New("snapshot is corrupt")
	ErrExternalDisabled  = errors.New("external classifier disabled")
	ErrExternalRateLimit = errors.New("external classifier rate limited")
	ErrExternalBadReply  = errors.New("external classifier returned an unusable reply")
	ErrExternalDown      = errors.New("external classifier unavailable")
	ErrWorkerStopped     = errors.New("persistence worker stopped")
	ErrWorkerQueueFull   = errors.New("persistence worker queue full")
	ErrEmptyText         = errors.New("text is empty")
	ErrTextTooLarge      = errors.New("text exceeds maximum allowed size")
)
