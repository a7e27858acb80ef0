// Package catalog holds the fixed detailing service table and the
// vehicle category rules used for pricing.
package catalog

// Service describes one entry of the detailing menu. Prices are fixed per
// vehicle category; the table is immutable at runtime.
type Service struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	PriceP          float64  `json:"price_p"`
	PriceG          float64  `json:"price_g"`
	DurationMinutes int      `json:"duration_minutes"`
	Description     string   `json:"description,omitempty"`
}

// Catalog exposes the seeded service table for handlers and pricing.
type Catalog struct {
	items []Service
}

// New returns the catalog preloaded with the Vanlu service menu.
func New() *Catalog {
	return &Catalog{items: seed()}
}

// List returns the service table in menu order.
func (c *Catalog) List() []Service {
	return append([]Service(nil), c.items...)
}

// Find looks up a service by its canonical name.
func (c *Catalog) Find(name string) (Service, bool) {
	for _, item := range c.items {
		if item.Name == name {
			return item, true
		}
	}
	return Service{}, false
}

// PriceFor returns the price of a service for the given vehicle category.
// Unknown services price at 0 rather than failing; callers validate service
// names at the HTTP boundary.
func (c *Catalog) PriceFor(name string, category Category) float64 {
	service, ok := c.Find(name)
	if !ok {
		return 0
	}
	if category == CategoryLarge {
		return service.PriceG
	}
	return service.PriceP
}

func seed() []Service {
	return []Service{
		{
			Name:            "Preventiva",
			DisplayName:     "Preventiva",
			PriceP:          45.0,
			PriceG:          60.0,
			DurationMinutes: 30,
			Description:     "Limpeza básica com aspiração, limpeza de painéis e vidros",
		},
		{
			Name:            "Premium",
			DisplayName:     "Premium",
			PriceP:          120.0,
			PriceG:          150.0,
			DurationMinutes: 90,
			Description:     "Limpeza completa com hidratação de plásticos e tratamento de pneus",
		},
		{
			Name:            "Master",
			DisplayName:     "Master",
			PriceP:          200.0,
			PriceG:          250.0,
			DurationMinutes: 180,
			Description:     "Serviço completo incluindo polimento leve e revitalização",
		},
		{
			Name:            "Polimento",
			DisplayName:     "Polimento Comercial",
			PriceP:          400.0,
			PriceG:          500.0,
			DurationMinutes: 240,
			Description:     "Polimento para remoção de arranhões leves e oxidação",
		},
		{
			Name:            "Vitrificação",
			DisplayName:     "Vitrificação",
			PriceP:          800.0,
			PriceG:          1000.0,
			DurationMinutes: 480,
			Description:     "Proteção de longa duração com verniz cerâmico",
		},
		{
			Name:            "Limpeza Interna",
			DisplayName:     "Limpeza Interna Completa",
			PriceP:          150.0,
			PriceG:          180.0,
			DurationMinutes: 120,
			Description:     "Higienização completa do interior incluindo estofados",
		},
		{
			Name:            "Higienização de Bancos",
			DisplayName:     "Higienização de Bancos",
			PriceP:          80.0,
			PriceG:          100.0,
			DurationMinutes: 60,
			Description:     "Limpeza profunda e higienização de bancos",
		},
	}
}
