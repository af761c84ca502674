// Package catalog holds the read-only table of known surf spots.
package catalog

import "surfalert-service/internal/models"

// Catalog is a read-only lookup of spot profiles keyed by slug.
// It is built once at startup and passed to the components that need it.
type Catalog struct {
	order []string
	spots map[string]models.SpotProfile
}

// New builds a catalog preserving the order of the given profiles.
func New(profiles []models.SpotProfile) *Catalog {
	c := &Catalog{spots: make(map[string]models.SpotProfile, len(profiles))}
	for _, p := range profiles {
		if _, dup := c.spots[p.Slug]; dup {
			continue
		}
		c.order = append(c.order, p.Slug)
		c.spots[p.Slug] = p
	}
	return c
}

// Default returns the catalog of the eight Ceará spots.
func Default() *Catalog {
	return New(defaultSpots)
}

// Get returns the profile for slug.
func (c *Catalog) Get(slug string) (models.SpotProfile, bool) {
	p, ok := c.spots[slug]
	return p, ok
}

// All returns every profile in catalog order.
func (c *Catalog) All() []models.SpotProfile {
	out := make([]models.SpotProfile, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.spots[slug])
	}
	return out
}

// Name returns the display name for slug, or the slug itself when unknown.
func (c *Catalog) Name(slug string) string {
	if p, ok := c.spots[slug]; ok {
		return p.Name
	}
	return slug
}

// Len returns the number of spots.
func (c *Catalog) Len() int {
	return len(c.order)
}

var defaultSpots = []models.SpotProfile{
	{
		Slug:               "taiba",
		Name:               "Taíba",
		Location:           "São Gonçalo do Amarante, CE",
		Description:        "White sand beach with consistent waves. Good for beginners and intermediates.",
		IdealConditions:    "NE wind 10-20kt, low to mid tide",
		Difficulty:         "Beginner/Intermediate",
		Type:               "Sand beach break",
		IdealWindDirection: "NE/E",
		IdealWaveDirection: "NE",
		Lat:                -3.6167,
		Lng:                -38.9167,
	},
	{
		Slug:               "paracuru",
		Name:               "Paracuru",
		Location:           "Paracuru, CE",
		Description:        "Classic Ceará peak known for hollow waves.",
		IdealConditions:    "E/NE wind 8-15kt, low tide",
		Difficulty:         "Intermediate",
		Type:               "Rocky point break",
		IdealWindDirection: "E/NE",
		IdealWaveDirection: "E",
		Lat:                -3.4167,
		Lng:                -39.0333,
	},
	{
		Slug:               "icarai",
		Name:               "Icaraí de Amontada",
		Location:           "Amontada, CE",
		Description:        "One of the best spots in Ceará for kitesurf and windsurf.",
		IdealConditions:    "NE wind 15-25kt, low to mid tide",
		Difficulty:         "Intermediate/Advanced",
		Type:               "Windy beach break",
		IdealWindDirection: "NE",
		IdealWaveDirection: "NE",
		Lat:                -2.8833,
		Lng:                -39.8833,
	},
	{
		Slug:               "canoa-quebrada",
		Name:               "Canoa Quebrada",
		Location:           "Aracati, CE",
		Description:        "Famous beach with colourful cliffs and steady wind.",
		IdealConditions:    "E/SE wind 12-20kt, low to mid tide",
		Difficulty:         "Intermediate",
		Type:               "Beach break below cliffs",
		IdealWindDirection: "E/SE",
		IdealWaveDirection: "E",
		Lat:                -4.0167,
		Lng:                -37.7667,
	},
	{
		Slug:               "jericoacoara",
		Name:               "Jericoacoara",
		Location:           "Jijoca de Jericoacoara, CE",
		Description:        "World-class kitesurf destination with constant wind.",
		IdealConditions:    "E/NE wind 15-25kt, low to mid tide",
		Difficulty:         "Intermediate/Advanced",
		Type:               "Sand beach break",
		IdealWindDirection: "E/NE",
		IdealWaveDirection: "NE",
		Lat:                -2.7833,
		Lng:                -40.5167,
	},
	{
		Slug:               "cumbuco",
		Name:               "Cumbuco",
		Location:           "Caucaia, CE",
		Description:        "Close to Fortaleza, great for kitesurf and windsurf.",
		IdealConditions:    "E/NE wind 12-22kt, low to mid tide",
		Difficulty:         "Beginner/Intermediate",
		Type:               "Beach break near the city",
		IdealWindDirection: "E/NE",
		IdealWaveDirection: "NE",
		Lat:                -3.6333,
		Lng:                -38.9833,
	},
	{
		Slug:               "pecem",
		Name:               "Pecém",
		Location:           "São Gonçalo do Amarante, CE",
		Description:        "Harbour town with consistent waves and good infrastructure.",
		IdealConditions:    "NE wind 10-18kt, low to mid tide",
		Difficulty:         "Intermediate",
		Type:               "Beach break by the port",
		IdealWindDirection: "NE",
		IdealWaveDirection: "NE",
		Lat:                -3.5833,
		Lng:                -38.8333,
	},
	{
		Slug:               "lagoinha",
		Name:               "Lagoinha",
		Location:           "Paraipaba, CE",
		Description:        "Wild beach lined with coconut palms and waves for every level.",
		IdealConditions:    "E/NE wind 8-16kt, low to mid tide",
		Difficulty:         "Beginner/Intermediate",
		Type:               "Wild beach break",
		IdealWindDirection: "E/NE",
		IdealWaveDirection: "E",
		Lat:                -3.1833,
		Lng:                -39.7333,
	},
}
