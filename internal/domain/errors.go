package domain

import "errors"

var (
	ErrNoSession         = errors.New("session accessor used outside an initialized session scope")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrUploadInProgress  = errors.New("upload already in progress")
	ErrCoordinatorClosed = errors.New("coordinator closed")
)
