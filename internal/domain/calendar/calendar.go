// Package calendar resolves the symbolic calendars carried by a birth profile:
// the sexagenary year (eto), the 27 lunar mansions (sukuyou) and the 260-day
// tzolkin (maya). Every resolver is a cycle.Cycle instance with its own epoch.
package calendar

import (
	"time"

	"github.com/okian/birthprofile/internal/domain/cycle"
)

// Epochs of the three cycles.
const (
	EtoEpochYear = 1984 // 甲子
)

var (
	// SukuyouEpoch maps to 昴宿.
	SukuyouEpoch = cycle.Date(1970, time.January, 1)
	// MayaEpoch maps to kin 1.
	MayaEpoch = cycle.Date(1960, time.July, 26)
)

var (
	stems = cycle.NewYearCycle(EtoEpochYear,
		"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸",
	)
	branches = cycle.NewYearCycle(EtoEpochYear,
		"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥",
	)

	mansions = cycle.NewDayCycle(SukuyouEpoch,
		"昴宿", "畢宿", "觜宿", "参宿", "井宿", "鬼宿", "柳宿", "星宿", "張宿",
		"翼宿", "軫宿", "角宿", "亢宿", "氐宿", "房宿", "心宿", "尾宿", "箕宿",
		"斗宿", "女宿", "虚宿", "危宿", "室宿", "壁宿", "奎宿", "婁宿", "胃宿",
	)

	kins   = cycle.NewDayCycle(MayaEpoch, cycle.Numbered(260)...)
	tones  = cycle.New(cycle.Numbered(13)...)
	sigils = cycle.New(
		"赤い龍", "白い風", "青い夜", "黄色い種", "赤い蛇", "白い世界の橋渡し", "青い手", "黄色い星",
		"赤い月", "白い犬", "青い猿", "黄色い人", "赤い空歩く者", "白い魔法使い", "青い鷲", "黄色い戦士",
		"赤い地球", "白い鏡", "青い嵐", "黄色い太陽",
	)
	colors = cycle.New("赤", "白", "青", "黄")
)

// Eto returns the stem-branch label of year. Stem and branch are resolved
// independently (mod 10 and mod 12) from 1984.
func Eto(year int) string {
	return stems.Label(year) + branches.Label(year)
}

// Sukuyou returns the lunar mansion for the calendar date of t.
func Sukuyou(t time.Time) string {
	return mansions.Label(t)
}

// Tzolkin is one position of the 260-day count.
type Tzolkin struct {
	Kin       int
	Tone      int
	Sigil     string
	Color     string
	Wavespell string
}

// Maya returns the tzolkin position for the calendar date of t.
func Maya(t time.Time) Tzolkin {
	kin := kins.Label(t)
	sigil := sigils.Index(kin - 1)
	waveStart := kin - tones.Index(kin-1)
	return Tzolkin{
		Kin:       kin,
		Tone:      tones.Label(kin - 1),
		Sigil:     sigils.Label(sigil),
		Color:     colors.Label(sigil),
		Wavespell: sigils.Label(waveStart - 1),
	}
}

// Stems returns the ten heavenly stems in cycle order.
func Stems() []string { return stems.Labels() }

// Branches returns the twelve earthly branches in cycle order.
func Branches() []string { return branches.Labels() }

// Mansions returns the 27 mansion names in cycle order.
func Mansions() []string { return mansions.Labels() }

// Sigils returns the 20 day-signs in cycle order.
func Sigils() []string { return sigils.Labels() }

// Colors returns the 4 sigil colors in cycle order.
func Colors() []string { return colors.Labels() }
