// Package chart reduces an astronomical chart to categorical buckets: zodiac
// sign, house and element per body, planets grouped by house, and the
// element balance with its dominant element.
package chart

import "math"

// Body identifies a chart object. Values match the ids used by the
// ephemeris collaborator and appear verbatim in API output.
type Body string

// Chart bodies.
const (
	Sun         Body = "Sun"
	Moon        Body = "Moon"
	Mercury     Body = "Mercury"
	Venus       Body = "Venus"
	Mars        Body = "Mars"
	Jupiter     Body = "Jupiter"
	Saturn      Body = "Saturn"
	Uranus      Body = "Uranus"
	Neptune     Body = "Neptune"
	Pluto       Body = "Pluto"
	NorthNode   Body = "North Node"
	SouthNode   Body = "South Node"
	Syzygy      Body = "Syzygy"
	ParsFortuna Body = "Pars Fortuna"
	Asc         Body = "Asc"
	MC          Body = "MC"
)

// Objects is the default requested set, in output order.
var Objects = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto,
	NorthNode, SouthNode, Syzygy, ParsFortuna,
}

// Sign is one of the twelve tropical zodiac signs.
type Sign string

// Zodiac signs.
const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
)

var signs = [12]Sign{
	Aries, Taurus, Gemini, Cancer, Leo, Virgo,
	Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
}

// Signs returns the zodiac in ecliptic order starting at 0° Aries.
func Signs() []Sign { return append([]Sign(nil), signs[:]...) }

// SignOf returns the sign containing the ecliptic longitude lon.
func SignOf(lon float64) Sign {
	i := int(Normalize(lon) / 30)
	if i > 11 {
		i = 11
	}
	return signs[i]
}

// Normalize maps an angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Element is one of the four classical elements.
type Element string

// Elements.
const (
	Fire  Element = "Fire"
	Earth Element = "Earth"
	Air   Element = "Air"
	Water Element = "Water"
)

// Elements lists the elements in tie-break priority order.
var Elements = []Element{Fire, Earth, Air, Water}

var elementOf = map[Sign]Element{
	Aries: Fire, Leo: Fire, Sagittarius: Fire,
	Taurus: Earth, Virgo: Earth, Capricorn: Earth,
	Gemini: Air, Libra: Air, Aquarius: Air,
	Cancer: Water, Scorpio: Water, Pisces: Water,
}

// Element returns the element of s. ok is false for unknown signs.
func (s Sign) Element() (e Element, ok bool) {
	e, ok = elementOf[s]
	return e, ok
}
