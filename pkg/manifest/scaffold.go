package manifest

import "fmt"

// Scaffold generates a starter manifest for a known recipe.
// Available recipes: lamp, mean.
func Scaffold(recipe, name string) (*Manifest, error) {
	switch recipe {
	case "lamp":
		return &Manifest{
			Name:   name,
			Recipe: "lamp",
			Config: &Config{
				Webroot:  ".",
				PHP:      "8.2",
				Database: "mysql:8.0",
			},
		}, nil

	case "mean":
		return &Manifest{
			Name:   name,
			Recipe: "mean",
			Config: &Config{
				Database: "mongo:5.0",
			},
			Services: map[string]Service{
				"node": {
					Type:  "node:18",
					Port:  3000,
					Build: []string{"npm install"},
				},
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown recipe %q (available: lamp, mean)", recipe)
	}
}
