package schema

// State is the feature collection plus the settings it is read with.
// It is treated as a value: producers return a new State instead of mutating one in place.
type State struct {
	Settings Settings  `json:"settings"`
	Features []Feature `json:"features"`
}

// WithFeatures returns a copy of the state holding features.
func (s State) WithFeatures(features []Feature) State {
	return State{
		Settings: s.Settings.Clone(),
		Features: append([]Feature(nil), features...),
	}
}

// WithSettings returns a copy of the state holding settings.
func (s State) WithSettings(settings Settings) State {
	return State{
		Settings: settings.Clone(),
		Features: append([]Feature(nil), s.Features...),
	}
}
