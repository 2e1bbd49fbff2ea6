package models

// DefaultPricesID is the well-known key of the singleton price table
const DefaultPricesID = "default"

// BossPrices maps every boss category to a USD unit price
type BossPrices struct {
	ID               string  `json:"id" bson:"id"`
	Medio2Price      float64 `json:"medio2_price" bson:"medio2_price"`
	Grande2Price     float64 `json:"grande2_price" bson:"grande2_price"`
	Medio4Price      float64 `json:"medio4_price" bson:"medio4_price"`
	Grande4Price     float64 `json:"grande4_price" bson:"grande4_price"`
	Medio6Price      float64 `json:"medio6_price" bson:"medio6_price"`
	Grande6Price     float64 `json:"grande6_price" bson:"grande6_price"`
	Medio7Price      float64 `json:"medio7_price" bson:"medio7_price"`
	Grande7Price     float64 `json:"grande7_price" bson:"grande7_price"`
	Medio8Price      float64 `json:"medio8_price" bson:"medio8_price"`
	Grande8Price     float64 `json:"grande8_price" bson:"grande8_price"`
	XamaPrice        float64 `json:"xama_price" bson:"xama_price"`
	Praca4FPrice     float64 `json:"praca_4f_price" bson:"praca_4f_price"`
	CrachaEpicaPrice float64 `json:"cracha_epica_price" bson:"cracha_epica_price"`
}

// PriceKeys lists the price fields in display order
var PriceKeys = []string{
	"medio2_price", "grande2_price",
	"medio4_price", "grande4_price",
	"medio6_price", "grande6_price",
	"medio7_price", "grande7_price",
	"medio8_price", "grande8_price",
	"xama_price", "praca_4f_price", "cracha_epica_price",
}

// DefaultBossPrices returns the price table provisioned when none exists.
// Categories without a market price yet default to zero.
func DefaultBossPrices() *BossPrices {
	return &BossPrices{
		ID:           DefaultPricesID,
		Medio2Price:  0.045,
		Grande2Price: 0.09,
		Medio4Price:  0.14,
		Grande4Price: 0.18,
		Medio6Price:  0.36,
		Grande6Price: 0.45,
	}
}

func (p *BossPrices) fields() map[string]*float64 {
	return map[string]*float64{
		"medio2_price":       &p.Medio2Price,
		"grande2_price":      &p.Grande2Price,
		"medio4_price":       &p.Medio4Price,
		"grande4_price":      &p.Grande4Price,
		"medio6_price":       &p.Medio6Price,
		"grande6_price":      &p.Grande6Price,
		"medio7_price":       &p.Medio7Price,
		"grande7_price":      &p.Grande7Price,
		"medio8_price":       &p.Medio8Price,
		"grande8_price":      &p.Grande8Price,
		"xama_price":         &p.XamaPrice,
		"praca_4f_price":     &p.Praca4FPrice,
		"cracha_epica_price": &p.CrachaEpicaPrice,
	}
}

// Set assigns a price by field name. It reports false for unknown fields.
func (p *BossPrices) Set(key string, value float64) bool {
	ptr, ok := p.fields()[key]
	if ok {
		*ptr = value
	}
	return ok
}

// Clone returns a copy that can be mutated independently
func (p *BossPrices) Clone() *BossPrices {
	c := *p
	return &c
}
