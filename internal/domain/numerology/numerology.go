// Package numerology implements base-10 digit reduction and the numbers
// derived from it: the life-path number of a birthdate and the kabbalah
// soul/destiny numbers of a name.
package numerology

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Master numbers are never reduced further.
var masterNumbers = map[int]bool{11: true, 22: true, 33: true}

// IsMaster reports whether n is a master number.
func IsMaster(n int) bool { return masterNumbers[n] }

// Reduce digit-sums n until it is a single digit or a master number.
// n must be non-negative.
func Reduce(n int) int {
	for n >= 10 && !IsMaster(n) {
		n = digitSum(n)
	}
	return n
}

func digitSum(n int) int {
	sum := 0
	for ; n > 0; n /= 10 {
		sum += n % 10
	}
	return sum
}

// LifePath sums every decimal digit in date, ignoring separators, and reduces
// the total. "1990-05-15" and "1990/05/15" give the same result.
func LifePath(date string) int {
	total := 0
	for _, r := range date {
		if r >= '0' && r <= '9' {
			total += int(r - '0')
		}
	}
	return Reduce(total)
}

// letterValues is the kabbalah letter table.
var letterValues = map[rune]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 8, 'G': 3, 'H': 5, 'I': 1,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'O': 7, 'P': 8, 'Q': 1, 'R': 2,
	'S': 3, 'T': 4, 'U': 6, 'V': 6, 'W': 6, 'X': 5, 'Y': 1, 'Z': 7,
}

const vowels = "AEIOU"

// KabbalahNumbers holds the name-derived numbers.
type KabbalahNumbers struct {
	Soul    int
	Destiny int
}

// Kabbalah computes the soul number (vowels only) and the destiny number (all
// letters) of name. The name is upper-cased with full case mapping, so "ß"
// counts as "SS". Characters outside A-Z contribute nothing.
func Kabbalah(name string) KabbalahNumbers {
	var soul, destiny int
	for _, r := range cases.Upper(language.Und).String(name) {
		v, ok := letterValues[r]
		if !ok {
			continue
		}
		destiny += v
		if strings.ContainsRune(vowels, r) {
			soul += v
		}
	}
	return KabbalahNumbers{Soul: Reduce(soul), Destiny: Reduce(destiny)}
}
