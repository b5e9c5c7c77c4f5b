package service

import "time"

// SetClock replaces the workspace service clock.
func SetClock(s WorkspaceService, now func() time.Time) {
	s.(*workspaceService).now = now
}
