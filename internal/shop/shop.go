package shop

import (
	"strings"
	"time"

	"github.com/mitti-app/backend-regi/internal/tax"
)

// Shop is a retailer profile: identity plus the tax policy and accepted
// rates used to reproduce its receipts.
type Shop struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Memo      string     `json:"memo,omitempty"`
	Policy    tax.Policy `json:"policy"`
	Rates     []tax.Rate `json:"rates"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Normalize is the single validation/construction path for shops. It is
// applied both when a shop is created or edited and when one is read back
// from storage, so invalid persisted rows heal on load.
func Normalize(s Shop) Shop {
	s.Name = strings.TrimSpace(s.Name)
	s.Memo = strings.TrimSpace(s.Memo)
	s.Policy = tax.NormalizePolicy(s.Policy)
	s.Rates = tax.NormalizeRates(s.Rates)
	return s
}

// Profile projects the shop into the engine's input shape.
func (s Shop) Profile() *tax.Profile {
	return &tax.Profile{Name: s.Name, Policy: s.Policy, Rates: s.Rates}
}

// Preset is a canonical starting policy for a new shop.
type Preset struct {
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	Policy tax.Policy `json:"policy"`
}

// Presets returns the two register behaviours most shops match.
func Presets() []Preset {
	return []Preset{
		{
			Key:  "item_floor",
			Name: "個別課税・切り捨て",
			Policy: tax.Policy{
				Aggregation: tax.AggregateItem,
				Rounding:    tax.RoundFloor,
				Unit:        1,
				InclToBase:  tax.InclRoundNone,
			},
		},
		{
			Key:  "rate_group_round",
			Name: "税率別合算・四捨五入",
			Policy: tax.Policy{
				Aggregation: tax.AggregateRateGroup,
				Rounding:    tax.RoundNearest,
				Unit:        1,
				InclToBase:  tax.InclRoundNone,
			},
		},
	}
}

// PresetByKey looks up a preset, reporting whether it exists.
func PresetByKey(key string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}
