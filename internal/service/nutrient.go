package service

import (
	"fmt"
	"math"
	"strings"
)

type NutrientKey string

const (
	NutrientEnergy         NutrientKey = "energy"
	NutrientCarbs          NutrientKey = "carbs"
	NutrientFiber          NutrientKey = "fiber"
	NutrientSugar          NutrientKey = "sugar"
	NutrientProtein        NutrientKey = "protein"
	NutrientFat            NutrientKey = "fat"
	NutrientSaturatedFat   NutrientKey = "saturated_fat"
	NutrientUnsaturatedFat NutrientKey = "unsaturated_fat"
	NutrientCalcium        NutrientKey = "calcium"
)

// NutrientKeys lists every known nutrient in display order.
var NutrientKeys = []NutrientKey{
	NutrientEnergy,
	NutrientCarbs,
	NutrientFiber,
	NutrientSugar,
	NutrientProtein,
	NutrientFat,
	NutrientSaturatedFat,
	NutrientUnsaturatedFat,
	NutrientCalcium,
}

func (k NutrientKey) Valid() bool {
	for _, known := range NutrientKeys {
		if k == known {
			return true
		}
	}
	return false
}

func (k NutrientKey) Unit() string {
	switch k {
	case NutrientEnergy:
		return "kcal"
	case NutrientCalcium:
		return "mg"
	default:
		return "g"
	}
}

func (k NutrientKey) Label() string {
	switch k {
	case NutrientEnergy:
		return "Calories"
	case NutrientSaturatedFat:
		return "Saturated fat"
	case NutrientUnsaturatedFat:
		return "Unsaturated fat"
	default:
		s := string(k)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// NutrientProfile is the density of one nutrient in a product. It is
// immutable once constructed.
type NutrientProfile struct {
	key          NutrientKey
	perGram      float64
	perServing   float64
	servingKnown bool
}

// NewNutrientProfile builds a profile from a per-100g value and an optional
// per-serving value. A nil perServing stays undefined, which is distinct
// from zero.
func NewNutrientProfile(key NutrientKey, per100g float64, perServing *float64) (NutrientProfile, error) {
	if !key.Valid() {
		return NutrientProfile{}, fmt.Errorf("unknown nutrient key %q", key)
	}
	if per100g < 0 || math.IsNaN(per100g) || math.IsInf(per100g, 0) {
		return NutrientProfile{}, fmt.Errorf("%s per 100g must be >= 0", key)
	}
	p := NutrientProfile{key: key, perGram: per100g / 100}
	if perServing != nil {
		if math.IsNaN(*perServing) || math.IsInf(*perServing, 0) {
			return NutrientProfile{}, fmt.Errorf("%s per serving must be a finite number", key)
		}
		p.perServing = *perServing
		p.servingKnown = true
	}
	return p, nil
}

func (p NutrientProfile) Key() NutrientKey { return p.key }

func (p NutrientProfile) ValuePerGram() float64 { return p.perGram }

// ValuePerServing reports the declared per-serving value, if any.
func (p NutrientProfile) ValuePerServing() (float64, bool) {
	return p.perServing, p.servingKnown
}

// ProfileSet maps each nutrient key to at most one profile.
type ProfileSet struct {
	profiles map[NutrientKey]NutrientProfile
}

func NewProfileSet(profiles ...NutrientProfile) (ProfileSet, error) {
	set := ProfileSet{profiles: make(map[NutrientKey]NutrientProfile, len(profiles))}
	for _, p := range profiles {
		if !p.key.Valid() {
			return ProfileSet{}, fmt.Errorf("profile has unknown nutrient key %q", p.key)
		}
		if _, dup := set.profiles[p.key]; dup {
			return ProfileSet{}, fmt.Errorf("duplicate nutrient %q in profile set", p.key)
		}
		set.profiles[p.key] = p
	}
	return set, nil
}

func (s ProfileSet) Get(key NutrientKey) (NutrientProfile, bool) {
	p, ok := s.profiles[key]
	return p, ok
}

func (s ProfileSet) Len() int { return len(s.profiles) }

// Profiles returns the set's profiles in NutrientKeys order.
func (s ProfileSet) Profiles() []NutrientProfile {
	out := make([]NutrientProfile, 0, len(s.profiles))
	for _, key := range NutrientKeys {
		if p, ok := s.profiles[key]; ok {
			out = append(out, p)
		}
	}
	return out
}

// NutrientValues is a raw per-100g / per-serving pair as read from a product
// payload.
type NutrientValues struct {
	Per100g    float64
	PerServing *float64
}

// BuildProfileSet turns raw product values into a full profile set, deriving
// unsaturated fat from fat and saturated fat.
func BuildProfileSet(values map[NutrientKey]NutrientValues) (ProfileSet, error) {
	fat := values[NutrientFat]
	sat := values[NutrientSaturatedFat]
	unsat := NutrientValues{Per100g: math.Max(0, fat.Per100g-sat.Per100g)}
	if fat.PerServing != nil && sat.PerServing != nil && *fat.PerServing > 0 && *sat.PerServing > 0 {
		v := *fat.PerServing - *sat.PerServing
		unsat.PerServing = &v
	}

	profiles := make([]NutrientProfile, 0, len(NutrientKeys))
	for _, key := range NutrientKeys {
		v := values[key]
		if key == NutrientUnsaturatedFat {
			v = unsat
		}
		p, err := NewNutrientProfile(key, v.Per100g, v.PerServing)
		if err != nil {
			return ProfileSet{}, err
		}
		profiles = append(profiles, p)
	}
	return NewProfileSet(profiles...)
}
