package conv

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{name: "float64", in: 2.3, want: 2.3, wantOK: true},
		{name: "int", in: 145, want: 145, wantOK: true},
		{name: "json number", in: json.Number("233"), want: 233, wantOK: true},
		{name: "numeric string", in: " 63 ", want: 63, wantOK: true},
		{name: "bool", in: true, want: 1, wantOK: true},
		{name: "nil", in: nil},
		{name: "text", in: "abc"},
		{name: "nan", in: math.NaN()},
		{name: "inf string", in: "Inf"},
		{name: "slice", in: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ToFloat64(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ToFloat64(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
