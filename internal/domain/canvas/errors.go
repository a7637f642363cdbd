package canvas

import "errors"

var (
	ErrUnknownBox           = errors.New("unknown canvas box")
	ErrBoxLocked            = errors.New("box is locked during the guided walk")
	ErrEditorClosed         = errors.New("no box is open for editing")
	ErrNotAwaitingName      = errors.New("canvas is not waiting for a business name")
	ErrBusinessNameRequired = errors.New("business name is required")
	ErrDownloadNotReady     = errors.New("canvas is not ready to download")
)
