package themes

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDescriptor_MarshalJSON(t *testing.T) {
	d := Descriptor{
		Theme:       "Julafton",
		Generator:   "same_date",
		Description: "24 december varje år",
		Params:      map[string]int{ParamDay: 24, ParamMonth: 12},
	}

	got, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"theme":"Julafton","generator":"same_date","month":12,"day":24,"description":"24 december varje år"}`
	if string(got) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, want)
	}
}

func TestDescriptor_UnmarshalJSON(t *testing.T) {
	input := `{"theme":"Mors dag","generator":"last_weekday_of_month","weekday":7,"month":5,"description":"Sista söndag i maj","source":"manual","tags":["familj"]}`

	var d Descriptor
	if err := json.Unmarshal([]byte(input), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if d.Theme != "Mors dag" || d.Generator != "last_weekday_of_month" || d.Description != "Sista söndag i maj" {
		t.Errorf("Unmarshal() = %+v", d)
	}
	if d.Params[ParamWeekday] != 7 || d.Params[ParamMonth] != 5 {
		t.Errorf("Params = %v", d.Params)
	}
	if string(d.Extra["source"]) != `"manual"` || string(d.Extra["tags"]) != `["familj"]` {
		t.Errorf("Extra = %v", d.Extra)
	}

	// Unknown fields survive a round trip.
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var again Descriptor
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if string(again.Extra["tags"]) != `["familj"]` {
		t.Errorf("Extra after round trip = %v", again.Extra)
	}
}

func TestDescriptor_UnmarshalNonIntegerParam(t *testing.T) {
	var d Descriptor
	if err := json.Unmarshal([]byte(`{"theme":"x","generator":"same_date","month":"12","day":24}`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if _, ok := d.Params[ParamMonth]; ok {
		t.Error("string month parsed as a parameter")
	}
	if _, err := d.Param(ParamMonth); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Param(month) error = %v, want ErrInvalidDescriptor", err)
	}
	if string(d.Extra[ParamMonth]) != `"12"` {
		t.Errorf("Extra[month] = %s", d.Extra[ParamMonth])
	}
}

func TestDescriptor_UnmarshalRejectsNonObject(t *testing.T) {
	for _, input := range []string{`[]`, `"x"`, `null`, `{"theme": 5}`} {
		var d Descriptor
		if err := json.Unmarshal([]byte(input), &d); err == nil {
			t.Errorf("Unmarshal(%s) expected error", input)
		}
	}
}

func TestDescriptor_Param(t *testing.T) {
	d := Descriptor{Theme: "x", Generator: "advent", Params: map[string]int{ParamIndex: 2}}

	v, err := d.Param(ParamIndex)
	if err != nil || v != 2 {
		t.Errorf("Param(index) = %d, %v", v, err)
	}
	if _, err := d.Param(ParamWeek); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Param(week) error = %v, want ErrInvalidDescriptor", err)
	}
}
