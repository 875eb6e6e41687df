package core

import (
	"encoding/json"
	"fmt"
)

// App is one environment as reported by `lando list --format json`.
type App struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	URLs     []string `json:"urls"`
	Running  bool     `json:"running"`
}

// DecodeApps parses the JSON array produced by `lando list --format json`.
func DecodeApps(data []byte) ([]App, error) {
	var apps []App
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("parse app list JSON: %w", err)
	}
	return apps, nil
}
