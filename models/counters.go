package models

// BossQuantities holds kill counts for the regular boss tiers
type BossQuantities struct {
	Medio2  int `json:"medio2" bson:"medio2"`
	Grande2 int `json:"grande2" bson:"grande2"`
	Medio4  int `json:"medio4" bson:"medio4"`
	Grande4 int `json:"grande4" bson:"grande4"`
	Medio6  int `json:"medio6" bson:"medio6"`
	Grande6 int `json:"grande6" bson:"grande6"`
	Medio7  int `json:"medio7" bson:"medio7"`
	Grande7 int `json:"grande7" bson:"grande7"`
	Medio8  int `json:"medio8" bson:"medio8"`
	Grande8 int `json:"grande8" bson:"grande8"`
}

// BossKeys lists the regular boss categories in display order
var BossKeys = []string{
	"medio2", "grande2",
	"medio4", "grande4",
	"medio6", "grande6",
	"medio7", "grande7",
	"medio8", "grande8",
}

func (b *BossQuantities) fields() map[string]*int {
	return map[string]*int{
		"medio2":  &b.Medio2,
		"grande2": &b.Grande2,
		"medio4":  &b.Medio4,
		"grande4": &b.Grande4,
		"medio6":  &b.Medio6,
		"grande6": &b.Grande6,
		"medio7":  &b.Medio7,
		"grande7": &b.Grande7,
		"medio8":  &b.Medio8,
		"grande8": &b.Grande8,
	}
}

// AsMap returns the counters keyed by category
func (b BossQuantities) AsMap() map[string]int {
	out := make(map[string]int, len(BossKeys))
	for key, ptr := range b.fields() {
		out[key] = *ptr
	}
	return out
}

// Set assigns a counter by category name. It reports false for unknown categories.
func (b *BossQuantities) Set(key string, value int) bool {
	ptr, ok := b.fields()[key]
	if ok {
		*ptr = value
	}
	return ok
}

// SpecialBosses holds kill counts for the special bosses
type SpecialBosses struct {
	Xama        int `json:"xama" bson:"xama"`
	Praca4F     int `json:"praca_4f" bson:"praca_4f"`
	CrachaEpica int `json:"cracha_epica" bson:"cracha_epica"`
}

// SpecialBossKeys lists the special boss categories in display order
var SpecialBossKeys = []string{"xama", "praca_4f", "cracha_epica"}

func (s *SpecialBosses) fields() map[string]*int {
	return map[string]*int{
		"xama":         &s.Xama,
		"praca_4f":     &s.Praca4F,
		"cracha_epica": &s.CrachaEpica,
	}
}

// AsMap returns the counters keyed by category
func (s SpecialBosses) AsMap() map[string]int {
	out := make(map[string]int, len(SpecialBossKeys))
	for key, ptr := range s.fields() {
		out[key] = *ptr
	}
	return out
}

// Set assigns a counter by category name. It reports false for unknown categories.
func (s *SpecialBosses) Set(key string, value int) bool {
	ptr, ok := s.fields()[key]
	if ok {
		*ptr = value
	}
	return ok
}

// MaterialTiers holds the three rarity levels of one crafting material
type MaterialTiers struct {
	Raro     int `json:"raro" bson:"raro"`
	Epico    int `json:"epico" bson:"epico"`
	Lendario int `json:"lendario" bson:"lendario"`
}

// TierKeys lists the rarity levels from lowest to highest
var TierKeys = []string{"raro", "epico", "lendario"}

func (m *MaterialTiers) fields() map[string]*int {
	return map[string]*int{
		"raro":     &m.Raro,
		"epico":    &m.Epico,
		"lendario": &m.Lendario,
	}
}

// Set assigns a tier count by name. It reports false for unknown tiers.
func (m *MaterialTiers) Set(key string, value int) bool {
	ptr, ok := m.fields()[key]
	if ok {
		*ptr = value
	}
	return ok
}

// Materials holds the tiered crafting materials of an account
type Materials struct {
	Anima         MaterialTiers `json:"anima" bson:"anima"`
	Bugiganga     MaterialTiers `json:"bugiganga" bson:"bugiganga"`
	Lunar         MaterialTiers `json:"lunar" bson:"lunar"`
	Iluminado     MaterialTiers `json:"iluminado" bson:"iluminado"`
	Quintessencia MaterialTiers `json:"quintessencia" bson:"quintessencia"`
	Esfera        MaterialTiers `json:"esfera" bson:"esfera"`
	Platina       MaterialTiers `json:"platina" bson:"platina"`
	Aco           MaterialTiers `json:"aco" bson:"aco"`
}

// MaterialKeys lists the crafting materials in display order
var MaterialKeys = []string{
	"anima", "bugiganga", "lunar", "iluminado",
	"quintessencia", "esfera", "platina", "aco",
}

func (m *Materials) fields() map[string]*MaterialTiers {
	return map[string]*MaterialTiers{
		"anima":         &m.Anima,
		"bugiganga":     &m.Bugiganga,
		"lunar":         &m.Lunar,
		"iluminado":     &m.Iluminado,
		"quintessencia": &m.Quintessencia,
		"esfera":        &m.Esfera,
		"platina":       &m.Platina,
		"aco":           &m.Aco,
	}
}

// Get returns the tiers of a material, or nil for an unknown material
func (m *Materials) Get(key string) *MaterialTiers {
	return m.fields()[key]
}

// AsMap returns the tiers keyed by material
func (m Materials) AsMap() map[string]MaterialTiers {
	out := make(map[string]MaterialTiers, len(MaterialKeys))
	for key, ptr := range m.fields() {
		out[key] = *ptr
	}
	return out
}

// CraftResources is the shared pool of fungible crafting currencies
type CraftResources struct {
	Po    int `json:"po" bson:"po"`
	DS    int `json:"ds" bson:"ds"`
	Cobre int `json:"cobre" bson:"cobre"`
}

// CraftResourceKeys lists the crafting currencies in display order
var CraftResourceKeys = []string{"po", "ds", "cobre"}

func (c *CraftResources) fields() map[string]*int {
	return map[string]*int{
		"po":    &c.Po,
		"ds":    &c.DS,
		"cobre": &c.Cobre,
	}
}

// AsMap returns the currencies keyed by name
func (c CraftResources) AsMap() map[string]int {
	out := make(map[string]int, len(CraftResourceKeys))
	for key, ptr := range c.fields() {
		out[key] = *ptr
	}
	return out
}

// Set assigns a currency amount by name. It reports false for unknown currencies.
func (c *CraftResources) Set(key string, value int) bool {
	ptr, ok := c.fields()[key]
	if ok {
		*ptr = value
	}
	return ok
}
