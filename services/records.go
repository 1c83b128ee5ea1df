package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"teduh_scraper/models"
	"teduh_scraper/scraper"
)

// RunCounters is the single source of truth for sequence numbers within
// one extraction run. The project counter resets per developer run; the
// unit counter keeps increasing across every project of the run.
type RunCounters struct {
	project int
	unit    int
}

func NewRunCounters() *RunCounters {
	return &RunCounters{}
}

func (c *RunCounters) NextProject() int {
	c.project++
	return c.project
}

func (c *RunCounters) NextUnit() int {
	c.unit++
	return c.unit
}

// RecordBuilder turns one extracted listing row into the three record
// families. Every column starts empty and is overwritten by whatever
// the extractor managed to read.
type RecordBuilder struct {
	state    string
	date     string
	stamp    string
	counters *RunCounters
}

func NewRecordBuilder(state string, now time.Time, counters *RunCounters) *RecordBuilder {
	return &RecordBuilder{
		state:    state,
		date:     now.Format("2006-01-02"),
		stamp:    now.Format("2006-01-02 15:04:05"),
		counters: counters,
	}
}

// Build assembles the records for one project. A result whose detail
// view never opened contributes nothing and leaves the counters
// untouched; subsequent rows are unaffected.
func (b *RecordBuilder) Build(res scraper.ProjectResult) (models.ProjectMasterRecord, []models.HouseTypeRecord, []models.UnitDetailRecord, bool) {
	if res.Err != nil {
		return models.ProjectMasterRecord{}, nil, nil, false
	}

	overall := res.Status.OverallStatus
	if overall == "" {
		overall = res.Listing.ListedStatus
	}
	state := res.Info.State
	if state == "" {
		state = b.state
	}

	master := models.ProjectMasterRecord{
		SequenceNo:        strconv.Itoa(b.counters.NextProject()),
		ProjectCodeName:   res.Listing.ProjectCodeName,
		DeveloperCodeName: res.Listing.DeveloperCodeName,
		PermitNo:          res.Listing.PermitNo,
		OverallStatus:     overall,
		DevelopmentInfo:   res.Status.DevelopmentInfo,
		LocationMapLink:   res.Info.MapLink,
		District:          res.Info.District,
		State:             state,
		PermitValidDate:   res.Info.PermitValidDate,
		ScrapedDate:       b.date,
		ScrapedTimestamp:  b.stamp,
	}

	code, name := SplitCodeName(res.Listing.ProjectCodeName)

	houseTypes := make([]models.HouseTypeRecord, 0, len(res.HouseTypes))
	for _, ht := range res.HouseTypes {
		houseTypes = append(houseTypes, models.HouseTypeRecord{
			ProjectCode:      code,
			ProjectName:      name,
			HouseType:        ht.HouseType,
			Floors:           ht.Floors,
			Rooms:            ht.Rooms,
			Bathrooms:        ht.Bathrooms,
			BuiltUpSize:      ht.BuiltUpSize,
			UnitCount:        ht.UnitCount,
			PriceMin:         ht.PriceMin,
			PriceMax:         ht.PriceMax,
			PercentActual:    ht.PercentActual,
			ComponentStatus:  ht.ComponentStatus,
			DateCCCCFO:       ht.DateCCCCFO,
			DateVP:           ht.DateVP,
			ScrapedDate:      b.date,
			ScrapedTimestamp: b.stamp,
		})
	}

	units := make([]models.UnitDetailRecord, 0, len(res.Units))
	for _, u := range res.Units {
		units = append(units, models.UnitDetailRecord{
			SequenceNo:        strconv.Itoa(b.counters.NextUnit()),
			ProjectCodeName:   res.Listing.ProjectCodeName,
			DeveloperCodeName: res.Listing.DeveloperCodeName,
			PermitNo:          res.Listing.PermitNo,
			LotNo:             u.LotNo,
			UnitNo:            u.UnitNo,
			SalePrice:         u.SalePrice,
			SPJBPrice:         u.SPJBPrice,
			SaleStatus:        u.SaleStatus,
			BumiQuota:         u.BumiQuota,
			ScrapedDate:       b.date,
			ScrapedTimestamp:  b.stamp,
		})
	}

	return master, houseTypes, units, true
}

// SplitCodeName splits a combined "code + name" string on the first
// whitespace run. Without whitespace the whole string is the code and
// the name is empty.
func SplitCodeName(s string) (code, name string) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

var (
	hostileCharsRegex = regexp.MustCompile(`[<>:"/\\|?*]+`)
	spaceRunRegex     = regexp.MustCompile(`\s+`)
)

// DeveloperKey derives the filesystem key for a developer name: path-
// hostile characters replaced, whitespace collapsed, uppercased, capped
// at 80 characters.
func DeveloperKey(name string) string {
	s := strings.TrimSpace(name)
	s = hostileCharsRegex.ReplaceAllString(s, "_")
	s = strings.TrimSpace(spaceRunRegex.ReplaceAllString(s, " "))
	s = strings.ToUpper(s)
	if s == "" {
		return "UNKNOWN"
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
