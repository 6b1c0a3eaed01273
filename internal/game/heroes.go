package game

import "math/rand"

// Hero represents a canonical archetype name used across the codebase.
// Using constants avoids typos and keeps references consistent.
type Hero string

const (
	HeroNone    Hero = ""
	HeroWarrior Hero = "WARRIOR"
	HeroMage    Hero = "MAGE"
	HeroPaladin Hero = "PALADIN"
)

// Heroes is the selectable roster.
var Heroes = []Hero{HeroWarrior, HeroMage, HeroPaladin}

// RandomHeroExcept picks a roster hero different from taken when possible,
// used to assign the automated opponent's archetype.
func RandomHeroExcept(taken Hero) Hero {
	h := Heroes[rand.Intn(len(Heroes))]
	if h != taken {
		return h
	}
	for _, other := range Heroes {
		if other != taken {
			return other
		}
	}
	return HeroWarrior
}
