package extractor

import (
	"fmt"

	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
)

// Aliases maps a logical field to its accepted headers in priority order.
type Aliases map[string][]string

var caseIDKeys = []string{"case_id", "Case ID", "CaseID", "caseid", "รหัสคดี", "เลขคดี"}

// CaseAliases covers the Cases sheet.
var CaseAliases = Aliases{
	"case_id":    caseIDKeys,
	"case_name":  {"case_name", "Case Name", "ชื่อเคส", "ชื่อคดี"},
	"case_type":  {"case_type", "Case Type", "ประเภทคดี", "ประเภท"},
	"start_date": {"start_date", "Start Date", "วันที่รับคดี", "วันที่เริ่ม", "วันที่"},
	"platform":   {"platform", "Platform", "แพลตฟอร์ม", "ช่องทาง"},
	"damage":     {"damage", "Damage", "ความเสียหาย", "มูลค่าความเสียหาย"},
	"status":     {"status", "Status", "สถานะ", "สถานะคดี"},
}

// SuspectAliases covers the Suspects sheet.
var SuspectAliases = Aliases{
	"case_id":       caseIDKeys,
	"nationality":   {"nationality", "Nationality", "สัญชาติ"},
	"arrest_status": {"arrest_status", "Arrest Status", "สถานะการจับกุม", "การจับกุม"},
	"age":           {"age", "Age", "อายุ"},
}

// SeizureAliases covers the Seizures sheet.
var SeizureAliases = Aliases{
	"case_id":       caseIDKeys,
	"main_category": {"main_category", "Main Category", "หมวดหลัก", "ประเภทหลัก"},
	"item_type":     {"item_type", "Item Type", "ประเภทสิ่งของ", "รายการ"},
	"qty":           {"qty", "Qty", "Quantity", "จำนวน"},
	"value":         {"value", "Value", "มูลค่า"},
}

// LookupAliases covers the Lookups sheet. Its two column pairs are
// independent of each other.
var LookupAliases = Aliases{
	"country":   {"country", "Country", "ประเทศ", "สัญชาติ"},
	"flag":      {"flag", "Flag", "ธง"},
	"item_type": {"item_type", "Item Type", "ประเภทสิ่งของ"},
	"unit":      {"unit", "Unit", "หน่วย"},
}

func (a Aliases) text(row Row, field string) string {
	return ToText(Resolve(row, a[field], nil))
}

func (a Aliases) value(row Row, field string) any {
	return Resolve(row, a[field], nil)
}

func orUnspecified(s string) string {
	if s == "" {
		return model.Unspecified
	}
	return s
}

// Cases maps Cases rows to records, dropping rows with no case id.
func Cases(rows []Row) []model.Case {
	out := make([]model.Case, 0, len(rows))
	for _, r := range rows {
		id := CaseAliases.text(r, "case_id")
		if id == "" {
			continue
		}
		date, _ := ParseDate(CaseAliases.value(r, "start_date"))
		out = append(out, model.Case{
			CaseID:    id,
			CaseName:  CaseAliases.text(r, "case_name"),
			CaseType:  CaseAliases.text(r, "case_type"),
			StartDate: date,
			Platform:  CaseAliases.text(r, "platform"),
			Damage:    ToFloat(CaseAliases.value(r, "damage")),
			Status:    CaseAliases.text(r, "status"),
		})
	}
	return out
}

// Suspects maps Suspects rows to records, dropping rows with no case id.
func Suspects(rows []Row) []model.Suspect {
	out := make([]model.Suspect, 0, len(rows))
	for _, r := range rows {
		id := SuspectAliases.text(r, "case_id")
		if id == "" {
			continue
		}
		out = append(out, model.Suspect{
			CaseID:       id,
			Nationality:  orUnspecified(SuspectAliases.text(r, "nationality")),
			ArrestStatus: SuspectAliases.text(r, "arrest_status"),
			Age:          ToInt(SuspectAliases.value(r, "age")),
		})
	}
	return out
}

// Seizures maps Seizures rows to records, dropping rows with no case id.
func Seizures(rows []Row) []model.Seizure {
	out := make([]model.Seizure, 0, len(rows))
	for _, r := range rows {
		id := SeizureAliases.text(r, "case_id")
		if id == "" {
			continue
		}
		out = append(out, model.Seizure{
			CaseID:       id,
			MainCategory: orUnspecified(SeizureAliases.text(r, "main_category")),
			ItemType:     orUnspecified(SeizureAliases.text(r, "item_type")),
			Qty:          ToFloat(SeizureAliases.value(r, "qty")),
			Value:        ToFloat(SeizureAliases.value(r, "value")),
		})
	}
	return out
}

// Lookups builds the country->flag and item_type->unit maps. Pairs with a
// blank side are skipped; later rows overwrite earlier ones.
func Lookups(rows []Row) (flags, units map[string]string) {
	flags = make(map[string]string)
	units = make(map[string]string)
	for _, r := range rows {
		if country, flag := LookupAliases.text(r, "country"), LookupAliases.text(r, "flag"); country != "" && flag != "" {
			flags[country] = flag
		}
		if item, unit := LookupAliases.text(r, "item_type"), LookupAliases.text(r, "unit"); item != "" && unit != "" {
			units[item] = unit
		}
	}
	return flags, units
}

// SheetNames names the four worksheets of a workbook.
type SheetNames struct {
	Cases    string
	Suspects string
	Seizures string
	Lookups  string
}

// DefaultSheetNames are the sheet names used when none are configured.
var DefaultSheetNames = SheetNames{
	Cases:    "Cases",
	Suspects: "Suspects",
	Seizures: "Seizures",
	Lookups:  "Lookups",
}

// SheetSource yields header-keyed rows for a named sheet. A missing sheet
// yields no rows and no error.
type SheetSource interface {
	Sheet(name string) ([]Row, error)
}

// Extract reads all four sheets from src into a Dataset. Any sheet error
// aborts the whole extraction so a partial dataset is never returned.
func Extract(src SheetSource, names SheetNames) (*model.Dataset, error) {
	read := func(name string) ([]Row, error) {
		rows, err := src.Sheet(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		return rows, nil
	}

	caseRows, err := read(names.Cases)
	if err != nil {
		return nil, err
	}
	suspectRows, err := read(names.Suspects)
	if err != nil {
		return nil, err
	}
	seizureRows, err := read(names.Seizures)
	if err != nil {
		return nil, err
	}
	lookupRows, err := read(names.Lookups)
	if err != nil {
		return nil, err
	}

	flags, units := Lookups(lookupRows)
	return &model.Dataset{
		Cases:    Cases(caseRows),
		Suspects: Suspects(suspectRows),
		Seizures: Seizures(seizureRows),
		FlagMap:  flags,
		UnitMap:  units,
	}, nil
}
