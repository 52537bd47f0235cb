package aggregator

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
)

var (
	catDevices = model.SeizureCategories[0]
	catAssets  = model.SeizureCategories[1]
)

func testDataset() *model.Dataset {
	return &model.Dataset{
		Cases: []model.Case{
			{CaseID: "C1", CaseName: "Investment scam", CaseType: "ฉ้อโกง", Platform: "Facebook", Damage: 1000, StartDate: "2024-01-01"},
			{CaseID: "C2", CaseName: "Romance", CaseType: "หลอกลวง", Platform: "LINE", Damage: 500, StartDate: "2024-06-01"},
			{CaseID: "X3", CaseName: "Undated", Platform: "TikTok", Damage: 250},
		},
		Suspects: []model.Suspect{
			{CaseID: "C1", Nationality: model.Unspecified, ArrestStatus: model.ArrestedStatus},
			{CaseID: "C1", Nationality: "Thai", ArrestStatus: "หลบหนี"},
			{CaseID: "C2", Nationality: "Thai", ArrestStatus: model.ArrestedStatus},
			{CaseID: "C2", Nationality: "Lao"},
			{CaseID: "ZZ", Nationality: "Chinese", ArrestStatus: model.ArrestedStatus},
		},
		Seizures: []model.Seizure{
			{CaseID: "C1", MainCategory: catDevices, ItemType: "โทรศัพท์", Qty: 3, Value: 15000},
			{CaseID: "C2", MainCategory: catDevices, ItemType: "คอมพิวเตอร์", Qty: 1, Value: 30000},
			{CaseID: "C2", MainCategory: catDevices, ItemType: "โทรศัพท์", Qty: 2, Value: 10000},
			{CaseID: "C1", MainCategory: catAssets, ItemType: "รถยนต์", Qty: 1, Value: 800000},
			{CaseID: "C1", MainCategory: model.Unspecified, ItemType: "อื่นๆ", Qty: 9, Value: 9},
			{CaseID: "ZZ", MainCategory: catAssets, ItemType: "ทองคำ", Qty: 5, Value: 5},
		},
		FlagMap: map[string]string{"Thai": "🇹🇭"},
		UnitMap: map[string]string{"โทรศัพท์": "เครื่อง"},
	}
}

func TestBuildUnfiltered(t *testing.T) {
	d := Build(testDataset(), model.Filters{}, model.CacheStatus{})

	wantKPIs := model.KPIs{TotalCases: 3, TotalDamage: 1750, TotalSuspects: 4, Arrested: 2, NotArrested: 2}
	if diff := cmp.Diff(wantKPIs, d.KPIs); diff != "" {
		t.Errorf("KPIs mismatch (-want +got):\n%s", diff)
	}

	wantDonut := []model.DonutSlice{
		{Label: model.ArrestedLabel, Value: 2},
		{Label: model.NotArrestedLabel, Value: 2},
	}
	if diff := cmp.Diff(wantDonut, d.ArrestDonut); diff != "" {
		t.Errorf("donut mismatch (-want +got):\n%s", diff)
	}

	// Suspects of unknown case ZZ are excluded by the case join.
	wantNat := []model.NationalityRow{
		{Flag: "🇹🇭", Country: "Thai", Count: 2},
		{Flag: model.DefaultFlag, Country: model.Unspecified, Count: 1},
		{Flag: model.DefaultFlag, Country: "Lao", Count: 1},
	}
	if diff := cmp.Diff(wantNat, d.Nationalities); diff != "" {
		t.Errorf("nationalities mismatch (-want +got):\n%s", diff)
	}

	wantSeizures := []model.SeizureTable{
		{
			MainCategory: catDevices,
			Rows: []model.SeizureRow{
				{ItemType: "คอมพิวเตอร์", Qty: 1, Value: 30000},
				{ItemType: "โทรศัพท์", Unit: "เครื่อง", Qty: 5, Value: 25000},
			},
			TotalQty:   6,
			TotalValue: 55000,
		},
		{
			MainCategory: catAssets,
			Rows:         []model.SeizureRow{{ItemType: "รถยนต์", Qty: 1, Value: 800000}},
			TotalQty:     1,
			TotalValue:   800000,
		},
		{MainCategory: model.SeizureCategories[2], Rows: []model.SeizureRow{}},
	}
	if diff := cmp.Diff(wantSeizures, d.Seizures); diff != "" {
		t.Errorf("seizures mismatch (-want +got):\n%s", diff)
	}

	if len(d.Cases) != 3 || d.Cases[0].CaseID != "C1" || d.Cases[2].CaseID != "X3" {
		t.Errorf("expected cases in source order, got %+v", d.Cases)
	}
	if d.Cases[2].StartDate != nil {
		t.Errorf("expected null start_date for undated case, got %q", *d.Cases[2].StartDate)
	}
}

func TestBuildDateFrom(t *testing.T) {
	ds := &model.Dataset{Cases: []model.Case{
		{CaseID: "C1", Damage: 1000, StartDate: "2024-01-01"},
		{CaseID: "C2", Damage: 500, StartDate: "2024-06-01"},
	}}

	d := Build(ds, model.Filters{DateFrom: "2024-05-01"}, model.CacheStatus{})
	if d.KPIs.TotalCases != 1 || d.KPIs.TotalDamage != 500 {
		t.Errorf("expected 1 case with damage 500, got %+v", d.KPIs)
	}
	if len(d.Cases) != 1 || d.Cases[0].CaseID != "C2" {
		t.Errorf("expected [C2], got %+v", d.Cases)
	}
}

func TestFilterCases(t *testing.T) {
	cases := testDataset().Cases

	tests := []struct {
		name string
		f    model.Filters
		want []string
	}{
		{"no filters", model.Filters{}, []string{"C1", "C2", "X3"}},
		{"date bound drops undated", model.Filters{DateTo: "2030-01-01"}, []string{"C1", "C2"}},
		{"inclusive bounds", model.Filters{DateFrom: "2024-01-01", DateTo: "2024-06-01"}, []string{"C1", "C2"}},
		{"date to", model.Filters{DateTo: "2024-05-31"}, []string{"C1"}},
		{"day-first bound", model.Filters{DateFrom: "15/05/2024"}, []string{"C2"}},
		{"unparseable bound ignored", model.Filters{DateFrom: "soon"}, []string{"C1", "C2", "X3"}},
		{"case id substring", model.Filters{CaseID: "c"}, []string{"C1", "C2"}},
		{"case id exact", model.Filters{CaseID: "x3"}, []string{"X3"}},
		{"query name", model.Filters{Query: "ROMANCE"}, []string{"C2"}},
		{"query platform", model.Filters{Query: "tiktok"}, []string{"X3"}},
		{"query type thai", model.Filters{Query: "ฉ้อโกง"}, []string{"C1"}},
		{"query no match", model.Filters{Query: "nothing"}, []string{}},
		{"combined", model.Filters{Query: "e", CaseID: "2", DateFrom: "2024-02-01"}, []string{"C2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, c := range FilterCases(cases, tt.f) {
				got = append(got, c.CaseID)
			}
			if got == nil {
				got = []string{}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterCases mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNationalityTiesKeepEncounterOrder(t *testing.T) {
	ds := &model.Dataset{
		Cases: []model.Case{{CaseID: "C1"}},
		Suspects: []model.Suspect{
			{CaseID: "C1", Nationality: ""},
			{CaseID: "C1", Nationality: "Thai"},
		},
	}

	d := Build(ds, model.Filters{}, model.CacheStatus{})
	want := []model.NationalityRow{
		{Flag: model.DefaultFlag, Country: model.Unspecified, Count: 1},
		{Flag: model.DefaultFlag, Country: "Thai", Count: 1},
	}
	if diff := cmp.Diff(want, d.Nationalities); diff != "" {
		t.Errorf("nationalities mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNilDatasetShape(t *testing.T) {
	d := Build(nil, model.Filters{Query: "abc"}, model.CacheStatus{})

	if d.KPIs != (model.KPIs{}) {
		t.Errorf("expected zero KPIs, got %+v", d.KPIs)
	}
	if len(d.ArrestDonut) != 2 {
		t.Errorf("expected 2 donut slices, got %d", len(d.ArrestDonut))
	}
	if len(d.Seizures) != 3 {
		t.Fatalf("expected 3 seizure tables, got %d", len(d.Seizures))
	}
	for i, tbl := range d.Seizures {
		if tbl.MainCategory != model.SeizureCategories[i] {
			t.Errorf("table %d: expected %q, got %q", i, model.SeizureCategories[i], tbl.MainCategory)
		}
		if tbl.Rows == nil || len(tbl.Rows) != 0 || tbl.TotalQty != 0 || tbl.TotalValue != 0 {
			t.Errorf("table %d: expected empty zero table, got %+v", i, tbl)
		}
	}

	body, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"nationalities", "cases"} {
		if arr, ok := raw[key].([]any); !ok || len(arr) != 0 {
			t.Errorf("expected %s to encode as [], got %v", key, raw[key])
		}
	}
	filters := raw["filters"].(map[string]any)
	if filters["q"] != "abc" || filters["case_id"] != nil {
		t.Errorf("unexpected filter echo: %v", filters)
	}
}

func TestBuildDeterministic(t *testing.T) {
	mtime := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	st := model.CacheStatus{ModTime: &mtime, LoadedAt: &mtime}
	f := model.Filters{Query: "a"}

	first, err := json.Marshal(Build(testDataset(), f, st))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Build(testDataset(), f, st))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("expected identical output:\n%s\n%s", first, second)
	}
}

func TestMetaEcho(t *testing.T) {
	msg := "workbook not found"
	mtime := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	d := Build(testDataset(), model.Filters{}, model.CacheStatus{ModTime: &mtime, LastError: &msg})

	if d.Meta.LastError == nil || *d.Meta.LastError != msg {
		t.Errorf("expected last_error in meta, got %v", d.Meta.LastError)
	}
	if d.Meta.ModTime == nil || !d.Meta.ModTime.Equal(mtime) {
		t.Errorf("expected mtime in meta, got %v", d.Meta.ModTime)
	}
}
