package models

import "math"

// Signs are the twelve 30° zodiac divisions starting at 0° longitude.
var Signs = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// SignLords maps each sign to its traditional ruler.
var SignLords = [12]Body{Mars, Venus, Mercury, Moon, Sun, Mercury, Venus, Mars, Jupiter, Saturn, Saturn, Jupiter}

// Nakshatras are the 27 lunar mansions of 13°20' each.
var Nakshatras = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni",
	"Hasta", "Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha",
	"Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha",
	"Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// NakshatraLords follows the Vimshottari sequence, repeating every nine mansions.
var NakshatraLords = [9]Body{Ketu, Venus, Sun, Moon, Mars, Rahu, Jupiter, Saturn, Mercury}

const nakshatraSpan = 360.0 / 27.0

func wrap360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// SignIndex returns the 0-based sign index for a longitude.
func SignIndex(lon float64) int {
	return int(wrap360(lon)/30) % 12
}

// SignOf returns the sign name for a longitude.
func SignOf(lon float64) string { return Signs[SignIndex(lon)] }

// NakshatraIndex returns the 0-based nakshatra index for a longitude.
func NakshatraIndex(lon float64) int {
	return int(wrap360(lon)/nakshatraSpan) % 27
}

// NakshatraOf returns the nakshatra name for a longitude.
func NakshatraOf(lon float64) string { return Nakshatras[NakshatraIndex(lon)] }

// NakshatraLordOf returns the ruling body of the nakshatra containing lon.
func NakshatraLordOf(lon float64) Body { return NakshatraLords[NakshatraIndex(lon)%9] }
