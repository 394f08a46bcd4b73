package synthledger

import "time"

// Region is a supported regional holiday calendar.
type Region string

const (
	RegionUS Region = "US"
	RegionDE Region = "DE"
	RegionGB Region = "GB"
	RegionCN Region = "CN"
	RegionJP Region = "JP"
	RegionIN Region = "IN"
)

// Holiday is a single named holiday occurrence with its expected effect
// on business-document activity.
type Holiday struct {
	Name   string
	Date   time.Time
	// ActivityMultiplier is in [0, 1]: 0 means completely closed, 1 means
	// an ordinary business day's worth of documents is still expected.
	ActivityMultiplier float64
	IsBankHoliday      bool
	// Approximate marks holidays whose date follows a lunar or other
	// non-Gregorian calendar and is only approximated here within a
	// ±2 day window of a fixed civil anchor (spec §4.1, §9 open question).
	Approximate bool
}

// HolidayCalendar is the full set of holidays for one region and year.
type HolidayCalendar struct {
	Region   Region
	Year     int
	Holidays []Holiday
}

// NewHolidayCalendar builds the holiday calendar for region and year.
func NewHolidayCalendar(region Region, year int) HolidayCalendar {
	switch region {
	case RegionUS:
		return usHolidays(year)
	case RegionDE:
		return deHolidays(year)
	case RegionGB:
		return gbHolidays(year)
	case RegionCN:
		return cnHolidays(year)
	case RegionJP:
		return jpHolidays(year)
	case RegionIN:
		return inHolidays(year)
	default:
		return HolidayCalendar{Region: region, Year: year}
	}
}

// IsHoliday reports whether t falls on any holiday in the calendar.
func (c HolidayCalendar) IsHoliday(t time.Time) bool {
	_, ok := c.HolidayOn(t)
	return ok
}

// HolidayOn returns the holiday (first match) on t, if any.
func (c HolidayCalendar) HolidayOn(t time.Time) (Holiday, bool) {
	for _, h := range c.Holidays {
		if sameDate(h.Date, t) {
			return h, true
		}
	}
	return Holiday{}, false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func (c *HolidayCalendar) add(name string, d time.Time, multiplier float64) {
	c.Holidays = append(c.Holidays, Holiday{Name: name, Date: d, ActivityMultiplier: multiplier, IsBankHoliday: true})
}

func (c *HolidayCalendar) addApprox(name string, d time.Time, multiplier float64) {
	c.Holidays = append(c.Holidays, Holiday{Name: name, Date: d, ActivityMultiplier: multiplier, IsBankHoliday: true, Approximate: true})
}

// observeWeekend shifts a fixed holiday that falls on a weekend to the
// nearest weekday: Saturday moves back to Friday, Sunday forward to Monday.
func observeWeekend(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

// nthWeekdayOfMonth returns the nth (1-based) occurrence of weekday in
// the given civil month.
func nthWeekdayOfMonth(year, month int, weekday time.Weekday, n int) time.Time {
	first := date(year, month, 1)
	daysUntil := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, daysUntil+(n-1)*7)
}

// lastWeekdayOfMonth returns the last occurrence of weekday in the given
// civil month.
func lastWeekdayOfMonth(year, month int, weekday time.Weekday) time.Time {
	var last time.Time
	if month == 12 {
		last = date(year+1, 1, 1).AddDate(0, 0, -1)
	} else {
		last = date(year, month+1, 1).AddDate(0, 0, -1)
	}
	daysBack := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -daysBack)
}

// easterDate computes the Gregorian Easter Sunday for year using the
// anonymous Gregorian algorithm.
func easterDate(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return date(year, month, day)
}

// approximateLunarAnchor shifts a fixed civil anchor date by a small
// deterministic offset derived from the year, standing in for an actual
// lunar-calendar calculation (see Holiday.Approximate).
func approximateLunarAnchor(anchor time.Time, year int) time.Time {
	offset := (year*7 + anchor.Day()) % 5 // deterministic, bounded [0,4]
	return anchor.AddDate(0, 0, offset-2) // within +/-2 days
}

func usHolidays(year int) HolidayCalendar {
	c := HolidayCalendar{Region: RegionUS, Year: year}
	c.add("New Year's Day", observeWeekend(date(year, 1, 1)), 0.02)
	c.add("Martin Luther King Jr. Day", nthWeekdayOfMonth(year, 1, time.Monday, 3), 0.1)
	c.add("Presidents' Day", nthWeekdayOfMonth(year, 2, time.Monday, 3), 0.1)
	c.add("Memorial Day", lastWeekdayOfMonth(year, 5, time.Monday), 0.05)
	c.add("Juneteenth", observeWeekend(date(year, 6, 19)), 0.1)
	c.add("Independence Day", observeWeekend(date(year, 7, 4)), 0.02)
	c.add("Labor Day", nthWeekdayOfMonth(year, 9, time.Monday, 1), 0.05)
	c.add("Columbus Day", nthWeekdayOfMonth(year, 10, time.Monday, 2), 0.2)
	c.add("Veterans Day", observeWeekend(date(year, 11, 11)), 0.1)
	thanksgiving := nthWeekdayOfMonth(year, 11, time.Thursday, 4)
	c.add("Thanksgiving", thanksgiving, 0.02)
	c.add("Day after Thanksgiving", thanksgiving.AddDate(0, 0, 1), 0.1)
	c.add("Christmas Eve", date(year, 12, 24), 0.1)
	c.add("Christmas Day", observeWeekend(date(year, 12, 25)), 0.02)
	c.add("New Year's Eve", date(year, 12, 31), 0.1)
	return c
}

func deHolidays(year int) HolidayCalendar {
	c := HolidayCalendar{Region: RegionDE, Year: year}
	easter := easterDate(year)
	c.add("Neujahr", date(year, 1, 1), 0.02)
	c.add("Karfreitag", easter.AddDate(0, 0, -2), 0.02)
	c.add("Ostermontag", easter.AddDate(0, 0, 1), 0.02)
	c.add("Tag der Arbeit", date(year, 5, 1), 0.02)
	c.add("Christi Himmelfahrt", easter.AddDate(0, 0, 39), 0.02)
	c.add("Pfingstmontag", easter.AddDate(0, 0, 50), 0.02)
	c.add("Tag der Deutschen Einheit", date(year, 10, 3), 0.02)
	c.add("1. Weihnachtstag", date(year, 12, 25), 0.02)
	c.add("2. Weihnachtstag", date(year, 12, 26), 0.02)
	c.add("Silvester", date(year, 12, 31), 0.1)
	return c
}

func gbHolidays(year int) HolidayCalendar {
	c := HolidayCalendar{Region: RegionGB, Year: year}
	easter := easterDate(year)
	c.add("New Year's Day", observeWeekend(date(year, 1, 1)), 0.02)
	c.add("Good Friday", easter.AddDate(0, 0, -2), 0.02)
	c.add("Easter Monday", easter.AddDate(0, 0, 1), 0.02)
	c.add("Early May Bank Holiday", nthWeekdayOfMonth(year, 5, time.Monday, 1), 0.02)
	c.add("Spring Bank Holiday", lastWeekdayOfMonth(year, 5, time.Monday), 0.02)
	c.add("Summer Bank Holiday", lastWeekdayOfMonth(year, 8, time.Monday), 0.02)
	c.add("Christmas Day", observeWeekend(date(year, 12, 25)), 0.02)
	c.add("Boxing Day", observeWeekend(date(year, 12, 26)), 0.02)
	return c
}

func cnHolidays(year int) HolidayCalendar {
	c := HolidayCalendar{Region: RegionCN, Year: year}
	c.add("New Year", date(year, 1, 1), 0.05)
	cny := approximateLunarAnchor(date(year, 2, 5), year)
	for i := 0; i < 7; i++ {
		name := "Spring Festival Holiday"
		if i == 0 {
			name = "Spring Festival"
		}
		c.addApprox(name, cny.AddDate(0, 0, i), 0.02)
	}
	c.add("Qingming Festival", date(year, 4, 5), 0.05)
	for i := 0; i < 3; i++ {
		name := "Labor Day Holiday"
		if i == 0 {
			name = "Labor Day"
		}
		c.add(name, date(year, 5, 1).AddDate(0, 0, i), 0.05)
	}
	c.addApprox("Dragon Boat Festival", date(year, 6, 10), 0.05)
	c.addApprox("Mid-Autumn Festival", date(year, 9, 15), 0.05)
	for i := 0; i < 7; i++ {
		name := "National Day Holiday"
		if i == 0 {
			name = "National Day"
		}
		c.add(name, date(year, 10, 1).AddDate(0, 0, i), 0.02)
	}
	return c
}

func jpHolidays(year int) HolidayCalendar {
	c := HolidayCalendar{Region: RegionJP, Year: year}
	c.add("Ganjitsu (New Year)", date(year, 1, 1), 0.02)
	c.add("New Year Holiday", date(year, 1, 2), 0.05)
	c.add("New Year Holiday", date(year, 1, 3), 0.05)
	c.add("Seijin no Hi", nthWeekdayOfMonth(year, 1, time.Monday, 2), 0.05)
	c.add("Kenkoku Kinen no Hi", date(year, 2, 11), 0.02)
	c.add("Tenno Tanjobi", date(year, 2, 23), 0.02)
	c.addApprox("Shunbun no Hi", date(year, 3, 20), 0.02)
	c.add("Showa no Hi", date(year, 4, 29), 0.02)
	c.add("Kenpo Kinenbi", date(year, 5, 3), 0.02)
	c.add("Midori no Hi", date(year, 5, 4), 0.02)
	c.add("Kodomo no Hi", date(year, 5, 5), 0.02)
	c.add("Umi no Hi", nthWeekdayOfMonth(year, 7, time.Monday, 3), 0.05)
	c.add("Yama no Hi", date(year, 8, 11), 0.05)
	c.add("Keiro no Hi", nthWeekdayOfMonth(year, 9, time.Monday, 3), 0.05)
	c.addApprox("Shubun no Hi", date(year, 9, 23), 0.02)
	c.add("Sports Day", nthWeekdayOfMonth(year, 10, time.Monday, 2), 0.05)
	c.add("Bunka no Hi", date(year, 11, 3), 0.02)
	c.add("Kinro Kansha no Hi", date(year, 11, 23), 0.02)
	return c
}

func inHolidays(year int) HolidayCalendar {
	c := HolidayCalendar{Region: RegionIN, Year: year}
	c.add("Republic Day", date(year, 1, 26), 0.02)
	c.addApprox("Holi", date(year, 3, 10), 0.05)
	c.add("Good Friday", easterDate(year).AddDate(0, 0, -2), 0.05)
	c.add("Independence Day", date(year, 8, 15), 0.02)
	c.add("Gandhi Jayanti", date(year, 10, 2), 0.02)
	c.addApprox("Dussehra", date(year, 10, 15), 0.05)
	diwali := approximateLunarAnchor(date(year, 11, 1), year)
	names := []string{"Dhanteras", "Naraka Chaturdashi", "Diwali", "Govardhan Puja", "Bhai Dooj"}
	for i, name := range names {
		mult := 0.1
		if i == 2 {
			mult = 0.02
		}
		c.addApprox(name, diwali.AddDate(0, 0, i), mult)
	}
	c.add("Christmas", date(year, 12, 25), 0.1)
	return c
}
