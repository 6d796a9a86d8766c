package geoformat

import (
	"math"
	"strings"
	"testing"
)

func TestFormatLongitude(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{-45, "45.00° W / 315.00° E"},
		{10, "350.00° W / 10.00° E"},
		{0, "360.00° W / 0.00° E"},
		{180, "180.00° W / 180.00° E"},
		{-0.005, "0.01° W / 360.00° E"},
	}
	for _, tt := range tests {
		if got := FormatLongitude(tt.value); got != tt.want {
			t.Errorf("FormatLongitude(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatLatitude(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{30, "30.00° N"},
		{-30, "30.00° S"},
		{0, "0.00° N"},
		{-89.999, "90.00° S"},
	}
	for _, tt := range tests {
		if got := FormatLatitude(tt.value); got != tt.want {
			t.Errorf("FormatLatitude(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestNaNPropagates(t *testing.T) {
	if got := FormatLongitude(math.NaN()); !strings.HasPrefix(got, "NaN° ") {
		t.Errorf("FormatLongitude(NaN) = %q, want NaN° prefix", got)
	}
	if got := FormatLatitude(math.NaN()); !strings.HasPrefix(got, "NaN° ") {
		t.Errorf("FormatLatitude(NaN) = %q, want NaN° prefix", got)
	}
}
