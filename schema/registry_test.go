package schema

import (
	"slices"
	"testing"

	"github.com/rushteam/cardiokit/core"
)

func TestBins_Assign(t *testing.T) {
	tests := []struct {
		name    string
		bins    *Bins
		value   float64
		want    int
		wantErr bool
	}{
		{name: "age lower edge inclusive", bins: DefaultAgeBins(), value: 0, want: 0},
		{name: "age on boundary 40 stays low", bins: DefaultAgeBins(), value: 40, want: 0},
		{name: "age just above 40", bins: DefaultAgeBins(), value: 40.5, want: 1},
		{name: "age 63", bins: DefaultAgeBins(), value: 63, want: 2},
		{name: "age on boundary 70", bins: DefaultAgeBins(), value: 70, want: 2},
		{name: "age top edge", bins: DefaultAgeBins(), value: 100, want: 3},
		{name: "age above range", bins: DefaultAgeBins(), value: 100.1, wantErr: true},
		{name: "age negative", bins: DefaultAgeBins(), value: -1, wantErr: true},
		{name: "chol 233", bins: DefaultCholBins(), value: 233, want: 1},
		{name: "chol 200", bins: DefaultCholBins(), value: 200, want: 0},
		{name: "chol 241", bins: DefaultCholBins(), value: 241, want: 2},
		{name: "chol 600", bins: DefaultCholBins(), value: 600, want: 2},
		{name: "chol 601", bins: DefaultCholBins(), value: 601, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.bins.Assign(tt.value)
			if tt.wantErr {
				if !core.IsValidation(err) {
					t.Fatalf("Assign(%v) error = %v, want validation error", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Assign(%v) error = %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Assign(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestBins_IndicatorColumns(t *testing.T) {
	got := DefaultCholBins().IndicatorColumns()
	want := []string{"chol_bins_0", "chol_bins_1", "chol_bins_2"}
	if len(got) != len(want) {
		t.Fatalf("IndicatorColumns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IndicatorColumns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewRegistry(t *testing.T) {
	if _, err := NewRegistry(nil); !core.IsSchemaLoad(err) {
		t.Errorf("NewRegistry(nil) error = %v, want schema load error", err)
	}
	if _, err := NewRegistry([]string{"age", "age"}); !core.IsSchemaLoad(err) {
		t.Errorf("duplicate columns error = %v, want schema load error", err)
	}
	bad := &Bins{Column: Age, Group: AgeBins, Edges: []float64{0, 50, 40}, Labels: []int{0, 1}}
	if _, err := NewRegistry([]string{"age"}, WithAgeBins(bad)); !core.IsSchemaLoad(err) {
		t.Errorf("non-increasing edges error = %v, want schema load error", err)
	}

	reg, err := NewRegistry([]string{"age", "chol", "age_bins_1"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if reg.Width() != 3 {
		t.Errorf("Width() = %d, want 3", reg.Width())
	}
	if reg.Index("chol") != 1 || reg.Index("nope") != -1 {
		t.Errorf("Index() returned unexpected positions")
	}
	if len(reg.Raw) != 13 {
		t.Errorf("len(Raw) = %d, want 13", len(reg.Raw))
	}
	missing := reg.Missing([]string{"age"})
	if len(missing) != 2 || missing[0] != "chol" {
		t.Errorf("Missing() = %v", missing)
	}
}

func TestRegistry_Unproducible(t *testing.T) {
	renamed := DefaultExpectedColumns()
	renamed[0] = "age_years"
	tests := []struct {
		name        string
		cols        []string
		wantUnknown []string
		wantAbsent  []string
	}{
		{name: "default columns", cols: DefaultExpectedColumns()},
		{name: "renamed raw field", cols: renamed, wantUnknown: []string{"age_years"}, wantAbsent: []string{Age}},
		{name: "subset without raw fields", cols: []string{ThalachOldpeak, "chol_bins_0"}, wantAbsent: RawFeatures},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.cols)
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}
			unknown, absent := reg.Unproducible()
			if !slices.Equal(unknown, tt.wantUnknown) {
				t.Errorf("unknown = %v, want %v", unknown, tt.wantUnknown)
			}
			if !slices.Equal(absent, tt.wantAbsent) {
				t.Errorf("absent = %v, want %v", absent, tt.wantAbsent)
			}
		})
	}
}
