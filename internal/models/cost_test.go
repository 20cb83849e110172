package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValue float64
		wantOK    bool
	}{
		{"Number", `1.25`, 1.25, true},
		{"Integer", `2`, 2, true},
		{"NumericString", `"0.123"`, 0.123, true},
		{"PaddedString", `" 4.5 "`, 4.5, true},
		{"NonNumericString", `"abc"`, 0, false},
		{"EmptyString", `""`, 0, false},
		{"Null", `null`, 0, false},
		{"Bool", `true`, 0, false},
		{"NaNString", `"NaN"`, 0, false},
		{"InfString", `"Inf"`, 0, false},
		{"Object", `{"x":1}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			if err := json.Unmarshal([]byte(tt.input), &a); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.input, err)
			}
			got, ok := a.Float()
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.wantValue) > 1e-12 {
				t.Errorf("value = %v, want %v", got, tt.wantValue)
			}
		})
	}
}

func TestAmount_InsideResponse(t *testing.T) {
	body := `{"data":[{"results":[{"amount":{"value":"oops","currency":"usd"}},{"amount":{"value":3}}]}]}`

	var resp CostsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("a bad amount must not fail decoding: %v", err)
	}
	if len(resp.Data) != 1 || len(resp.Data[0].Results) != 2 {
		t.Fatalf("unexpected shape: %+v", resp)
	}
	if _, ok := resp.Data[0].Results[0].Amount.Value.Float(); ok {
		t.Error("non-numeric amount should be invalid")
	}
	if v, ok := resp.Data[0].Results[1].Amount.Value.Float(); !ok || v != 3 {
		t.Errorf("numeric amount = %v, %v", v, ok)
	}
}

func TestAmount_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(NewAmount(1.5))
	if err != nil || string(b) != "1.5" {
		t.Errorf("Marshal valid = %s, %v", b, err)
	}
	b, err = json.Marshal(Amount{})
	if err != nil || string(b) != "null" {
		t.Errorf("Marshal invalid = %s, %v", b, err)
	}
}

func TestCostReport_RunningTotals(t *testing.T) {
	r := &CostReport{Daily: []DailyCost{
		{Date: "2026-10-01", Amount: 1},
		{Date: "2026-10-02", Amount: 0.5},
		{Date: "2026-10-03", Amount: 2},
	}}

	got := r.RunningTotals()
	want := []float64{1, 1.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RunningTotals()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	var nilReport *CostReport
	if nilReport.RunningTotals() != nil {
		t.Error("nil report should have nil totals")
	}
}

func TestCostReport_MixedCurrencies(t *testing.T) {
	r := &CostReport{Currencies: []string{"usd"}}
	if r.MixedCurrencies() {
		t.Error("single currency reported as mixed")
	}
	r.Currencies = append(r.Currencies, "eur")
	if !r.MixedCurrencies() {
		t.Error("two currencies not reported as mixed")
	}
}

func TestWindowFor(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2026, 10, 17, 15, 30, 0, 0, loc)

	tomorrow := time.Date(2026, 10, 18, 0, 0, 0, 0, loc).Unix()

	today := WindowFor(ModeToday, now)
	if want := time.Date(2026, 10, 17, 0, 0, 0, 0, loc).Unix(); today.Start != want {
		t.Errorf("Today start = %d, want %d", today.Start, want)
	}
	if today.End != tomorrow {
		t.Errorf("Today end = %d, want %d", today.End, tomorrow)
	}

	month := WindowFor(ModeMonth, now)
	if want := time.Date(2026, 10, 1, 0, 0, 0, 0, loc).Unix(); month.Start != want {
		t.Errorf("Month start = %d, want %d", month.Start, want)
	}
	if month.End != tomorrow {
		t.Errorf("Month end = %d, want %d", month.End, tomorrow)
	}

	if today.Start > today.End || month.Start > month.End {
		t.Error("window start must not exceed end")
	}
}

func TestWindowFor_MonthBoundary(t *testing.T) {
	now := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)

	w := WindowFor(ModeToday, now)
	if want := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).Unix(); w.End != want {
		t.Errorf("end = %d, want next year's midnight %d", w.End, want)
	}
}

func TestParseDisplayMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DisplayMode
		wantErr bool
	}{
		{"today", ModeToday, false},
		{"TODAY", ModeToday, false},
		{"month", ModeMonth, false},
		{"", ModeMonth, false},
		{"week", ModeMonth, true},
	}
	for _, tt := range tests {
		got, err := ParseDisplayMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDisplayMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseDisplayMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDisplayMode_String(t *testing.T) {
	if ModeToday.String() != "Today" || ModeMonth.String() != "Month" {
		t.Error("unexpected mode names")
	}
	if DisplayMode(9).String() != "Unknown" {
		t.Error("unknown mode should render as Unknown")
	}
}
