package auth

import "time"

// SetClock replaces the manager's clock in tests.
func (m *SessionManager) SetClock(now func() time.Time) { m.now = now }
