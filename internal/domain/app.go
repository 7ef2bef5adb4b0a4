package domain

// PackagedApp is a validated .app bundle shipped inside the launcher.
// Values are produced by bundle.Resolve and never mutated afterwards.
type PackagedApp struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Identifier  string `json:"bundle_id"`
	DisplayName string `json:"display_name,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Title returns the best human-readable name for the app.
func (a *PackagedApp) Title() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}
