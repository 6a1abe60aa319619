package model

import "errors"

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")
	ErrServerBusy       = errors.New("server busy")
	ErrServerCancelled  = errors.New("server has been cancelled")
	ErrInvalidLink      = errors.New("invalid post link")
	ErrNoMedia          = errors.New("post has no media")
	ErrProvider         = errors.New("provider request failed")
	ErrAllFilesFailed   = errors.New("all files were failed")
)
