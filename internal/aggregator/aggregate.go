package aggregator

import (
	"sort"
	"strings"

	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/extractor"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
	"github.com/shopspring/decimal"
)

// Build computes the dashboard for ds under filters f. A nil dataset
// yields the same shape with zero values so clients need no special case.
func Build(ds *model.Dataset, f model.Filters, st model.CacheStatus) *model.Dashboard {
	out := &model.Dashboard{
		Filters: echo(f),
		Meta: model.Meta{
			ModTime:   st.ModTime,
			LoadedAt:  st.LoadedAt,
			LastError: st.LastError,
		},
	}
	if ds == nil {
		ds = &model.Dataset{}
	}

	cases := FilterCases(ds.Cases, f)
	ids := make(map[string]bool, len(cases))
	for _, c := range cases {
		ids[c.CaseID] = true
	}

	var suspects []model.Suspect
	for _, s := range ds.Suspects {
		if ids[s.CaseID] {
			suspects = append(suspects, s)
		}
	}
	var seizures []model.Seizure
	for _, s := range ds.Seizures {
		if ids[s.CaseID] {
			seizures = append(seizures, s)
		}
	}

	out.KPIs = kpis(cases, suspects)
	out.ArrestDonut = []model.DonutSlice{
		{Label: model.ArrestedLabel, Value: out.KPIs.Arrested},
		{Label: model.NotArrestedLabel, Value: out.KPIs.NotArrested},
	}
	out.Nationalities = nationalities(suspects, ds.FlagMap)
	out.Seizures = seizureTables(seizures, ds.UnitMap)
	out.Cases = caseRows(cases)
	return out
}

func echo(f model.Filters) model.FilterEcho {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return model.FilterEcho{
		CaseID:   opt(f.CaseID),
		Query:    opt(f.Query),
		DateFrom: opt(f.DateFrom),
		DateTo:   opt(f.DateTo),
	}
}

// FilterCases applies the date range, case id and free-text filters,
// keeping source order.
func FilterCases(cases []model.Case, f model.Filters) []model.Case {
	from, hasFrom := extractor.ParseDate(f.DateFrom)
	to, hasTo := extractor.ParseDate(f.DateTo)
	caseID := strings.ToLower(strings.TrimSpace(f.CaseID))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]model.Case, 0, len(cases))
	for _, c := range cases {
		if hasFrom || hasTo {
			// ISO dates compare correctly as strings.
			if c.StartDate == "" {
				continue
			}
			if hasFrom && c.StartDate < from {
				continue
			}
			if hasTo && c.StartDate > to {
				continue
			}
		}
		if caseID != "" && !strings.Contains(strings.ToLower(c.CaseID), caseID) {
			continue
		}
		if query != "" && !matchesQuery(c, query) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesQuery(c model.Case, q string) bool {
	for _, field := range []string{c.CaseID, c.CaseName, c.CaseType, c.Platform} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func kpis(cases []model.Case, suspects []model.Suspect) model.KPIs {
	damage := decimal.Zero
	for _, c := range cases {
		damage = damage.Add(decimal.NewFromFloat(c.Damage))
	}
	arrested := 0
	for _, s := range suspects {
		if s.ArrestStatus == model.ArrestedStatus {
			arrested++
		}
	}
	return model.KPIs{
		TotalCases:    len(cases),
		TotalDamage:   damage.InexactFloat64(),
		TotalSuspects: len(suspects),
		Arrested:      arrested,
		NotArrested:   len(suspects) - arrested,
	}
}

// nationalities counts suspects per nationality, most frequent first.
// Ties keep the order in which nationalities were first seen.
func nationalities(suspects []model.Suspect, flags map[string]string) []model.NationalityRow {
	rows := []model.NationalityRow{}
	index := make(map[string]int)
	for _, s := range suspects {
		country := s.Nationality
		if country == "" {
			country = model.Unspecified
		}
		i, ok := index[country]
		if !ok {
			flag, found := flags[country]
			if !found {
				flag = model.DefaultFlag
			}
			i = len(rows)
			index[country] = i
			rows = append(rows, model.NationalityRow{Flag: flag, Country: country})
		}
		rows[i].Count++
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

type itemTotals struct {
	item  string
	qty   decimal.Decimal
	value decimal.Decimal
}

// seizureTables groups seizures by item type within each fixed category.
// Every category is present even when it has no rows.
func seizureTables(seizures []model.Seizure, units map[string]string) []model.SeizureTable {
	tables := make([]model.SeizureTable, 0, len(model.SeizureCategories))
	for _, cat := range model.SeizureCategories {
		var items []*itemTotals
		index := make(map[string]*itemTotals)
		totalQty, totalValue := decimal.Zero, decimal.Zero

		for _, s := range seizures {
			if s.MainCategory != cat {
				continue
			}
			it, ok := index[s.ItemType]
			if !ok {
				it = &itemTotals{item: s.ItemType}
				index[s.ItemType] = it
				items = append(items, it)
			}
			q, v := decimal.NewFromFloat(s.Qty), decimal.NewFromFloat(s.Value)
			it.qty = it.qty.Add(q)
			it.value = it.value.Add(v)
			totalQty = totalQty.Add(q)
			totalValue = totalValue.Add(v)
		}

		sort.SliceStable(items, func(i, j int) bool {
			return items[i].value.GreaterThan(items[j].value)
		})

		rows := make([]model.SeizureRow, 0, len(items))
		for _, it := range items {
			rows = append(rows, model.SeizureRow{
				ItemType: it.item,
				Unit:     units[it.item],
				Qty:      it.qty.InexactFloat64(),
				Value:    it.value.InexactFloat64(),
			})
		}
		tables = append(tables, model.SeizureTable{
			MainCategory: cat,
			Rows:         rows,
			TotalQty:     totalQty.InexactFloat64(),
			TotalValue:   totalValue.InexactFloat64(),
		})
	}
	return tables
}

func caseRows(cases []model.Case) []model.CaseRow {
	rows := make([]model.CaseRow, 0, len(cases))
	for _, c := range cases {
		row := model.CaseRow{
			CaseID:   c.CaseID,
			CaseName: c.CaseName,
			CaseType: c.CaseType,
			Platform: c.Platform,
			Damage:   c.Damage,
			Status:   c.Status,
		}
		if c.StartDate != "" {
			d := c.StartDate
			row.StartDate = &d
		}
		rows = append(rows, row)
	}
	return rows
}
