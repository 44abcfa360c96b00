package main

import "encoding/json"

// layoutKey is the fixed settings key the control layout persists under.
const layoutKey = "control_layout"

// ControlRect is one on-screen control's pixel offset and size.
type ControlRect struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// ControlLayout maps control names to their placement.
type ControlLayout map[string]ControlRect

// requiredControls is the full schema; a stored layout missing any of these
// is discarded in favor of the defaults.
var requiredControls = []string{"stick", "fire", "jump", "reload", "sprint"}

// DefaultLayout returns the stock on-screen control placement.
func DefaultLayout() ControlLayout {
	return ControlLayout{
		"stick":  {X: 40, Y: -40, Size: 120},
		"fire":   {X: -40, Y: -40, Size: 90},
		"jump":   {X: -150, Y: -40, Size: 70},
		"reload": {X: -40, Y: -150, Size: 70},
		"sprint": {X: 40, Y: -180, Size: 70},
	}
}

// Complete reports whether the layout holds every required control.
func (l ControlLayout) Complete() bool {
	for _, name := range requiredControls {
		if _, ok := l[name]; !ok {
			return false
		}
	}
	return true
}

// LoadLayout reads the stored layout, falling back to the defaults when the
// record is absent, unparsable or missing any required control.
func LoadLayout(db *DB) ControlLayout {
	if db == nil {
		return DefaultLayout()
	}
	raw := db.GetSetting(layoutKey)
	if raw == "" {
		return DefaultLayout()
	}
	var layout ControlLayout
	if err := json.Unmarshal([]byte(raw), &layout); err != nil || !layout.Complete() {
		return DefaultLayout()
	}
	return layout
}

// SaveLayout persists the layout; called on the explicit "done editing"
// confirmation, never mid-drag.
func SaveLayout(db *DB, layout ControlLayout) error {
	data, err := json.Marshal(layout)
	if err != nil {
		return err
	}
	return db.SetSetting(layoutKey, string(data))
}
