package model

import "time"

// Sentinel labels. These are the literal values the dashboard frontend and
// the source workbook use; they are not translated.
const (
	Unspecified = "ไม่ระบุ"

	// ArrestedStatus is the one arrest_status value counted as arrested.
	ArrestedStatus = "จับกุมแล้ว"

	ArrestedLabel    = "จับกุมแล้ว"
	NotArrestedLabel = "ยังไม่จับกุม"

	DefaultFlag = "🏳️"
)

// SeizureCategories is the fixed display order of the seizure tables.
var SeizureCategories = []string{
	"อุปกรณ์อิเล็กทรอนิกส์",
	"ทรัพย์สิน",
	"เอกสาร",
}

// Case is one row of the Cases sheet.
type Case struct {
	CaseID    string  `json:"case_id"`
	CaseName  string  `json:"case_name"`
	CaseType  string  `json:"case_type"`
	StartDate string  `json:"start_date"` // YYYY-MM-DD, empty when absent
	Platform  string  `json:"platform"`
	Damage    float64 `json:"damage"`
	Status    string  `json:"status"`
}

// Suspect is one row of the Suspects sheet. CaseID is not checked against Cases.
type Suspect struct {
	CaseID       string `json:"case_id"`
	Nationality  string `json:"nationality"`
	ArrestStatus string `json:"arrest_status"`
	Age          int    `json:"age"`
}

// Seizure is one row of the Seizures sheet.
type Seizure struct {
	CaseID       string  `json:"case_id"`
	MainCategory string  `json:"main_category"`
	ItemType     string  `json:"item_type"`
	Qty          float64 `json:"qty"`
	Value        float64 `json:"value"`
}

// Dataset is one complete load of the workbook. It is never mutated once
// published by the cache.
type Dataset struct {
	Cases    []Case            `json:"cases"`
	Suspects []Suspect         `json:"suspects"`
	Seizures []Seizure         `json:"seizures"`
	FlagMap  map[string]string `json:"flag_map"`
	UnitMap  map[string]string `json:"unit_map"`
}

// Counts summarises a dataset for status output.
type Counts struct {
	Cases    int `json:"cases"`
	Suspects int `json:"suspects"`
	Seizures int `json:"seizures"`
	Flags    int `json:"flags"`
	Units    int `json:"units"`
}

// CountsOf returns the record counts of ds. A nil dataset counts as empty.
func CountsOf(ds *Dataset) Counts {
	if ds == nil {
		return Counts{}
	}
	return Counts{
		Cases:    len(ds.Cases),
		Suspects: len(ds.Suspects),
		Seizures: len(ds.Seizures),
		Flags:    len(ds.FlagMap),
		Units:    len(ds.UnitMap),
	}
}

// CacheStatus is the externally visible cache entry.
type CacheStatus struct {
	Path      string     `json:"excel_path"`
	ModTime   *time.Time `json:"mtime"`
	LoadedAt  *time.Time `json:"loaded_at"`
	LastError *string    `json:"last_error"`
	HasData   bool       `json:"has_data"`
	Counts    Counts     `json:"counts"`
}

// LoadEvent records one load attempt in the history log.
type LoadEvent struct {
	ID        int64      `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	ModTime   *time.Time `json:"mtime"`
	Forced    bool       `json:"forced"`
	OK        bool       `json:"ok"`
	Error     string     `json:"error,omitempty"`
	Cases     int        `json:"cases"`
	Suspects  int        `json:"suspects"`
	Seizures  int        `json:"seizures"`
	Duration  float64    `json:"duration_ms"`
}

// Filters are the dashboard query parameters. Empty strings mean absent.
type Filters struct {
	Query    string
	CaseID   string
	DateFrom string
	DateTo   string
}

// FilterEcho mirrors the request filters back, null when absent.
type FilterEcho struct {
	CaseID   *string `json:"case_id"`
	Query    *string `json:"q"`
	DateFrom *string `json:"date_from"`
	DateTo   *string `json:"date_to"`
}

type KPIs struct {
	TotalCases    int     `json:"total_cases"`
	TotalDamage   float64 `json:"total_damage"`
	TotalSuspects int     `json:"total_suspects"`
	Arrested      int     `json:"arrested"`
	NotArrested   int     `json:"not_arrested"`
}

type DonutSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type NationalityRow struct {
	Flag    string `json:"flag"`
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type SeizureRow struct {
	ItemType string  `json:"item_type"`
	Unit     string  `json:"unit"`
	Qty      float64 `json:"qty"`
	Value    float64 `json:"value"`
}

// SeizureTable is the per-category breakdown of seizures.
type SeizureTable struct {
	MainCategory string       `json:"main_category"`
	Rows         []SeizureRow `json:"rows"`
	TotalQty     float64      `json:"total_qty"`
	TotalValue   float64      `json:"total_value"`
}

// CaseRow is a case projected for the case list.
type CaseRow struct {
	CaseID    string  `json:"case_id"`
	CaseName  string  `json:"case_name"`
	CaseType  string  `json:"case_type"`
	StartDate *string `json:"start_date"`
	Platform  string  `json:"platform"`
	Damage    float64 `json:"damage"`
	Status    string  `json:"status"`
}

// Meta carries cache diagnostics for the client.
type Meta struct {
	ModTime   *time.Time `json:"mtime"`
	LoadedAt  *time.Time `json:"loaded_at"`
	LastError *string    `json:"last_error"`
}

// Dashboard is the /dashboard response body.
type Dashboard struct {
	Filters       FilterEcho       `json:"filters"`
	KPIs          KPIs             `json:"kpis"`
	ArrestDonut   []DonutSlice     `json:"arrest_donut"`
	Nationalities []NationalityRow `json:"nationalities"`
	Seizures      []SeizureTable   `json:"seizures"`
	Cases         []CaseRow        `json:"cases"`
	Meta          Meta             `json:"meta"`
}
