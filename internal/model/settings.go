package model

// EditingSettings holds the per-event extension service connection.
type EditingSettings struct {
	EventID EventID

	ServiceURL   string
	ServiceToken string

	// Identifier the service knows this event by.
	ServiceIdentifier string
}

func (s *EditingSettings) ServiceConnected() bool {
	return s != nil && s.ServiceURL != ""
}
