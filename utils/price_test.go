package utils

import "testing"

func TestCleanPrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"₹ 32.8 Lakh", "₹32.8 Lakh (₹3,280,000.00)"},
		{"₹ 1.5 Crore", "₹1.5 Crore (₹15,000,000.00)"},
		{"₹32.8 Lakh", "₹32.8 Lakh (₹3,280,000.00)"},
		{"₹ 450000", "₹450,000.00"},
		{"₹ 5 Lakh", "₹5 Lakh (₹500,000.00)"},
		{"Price on request", "Price on request"},
		{"", ""},
		{"Unknown", "Unknown"},
	}

	for _, tc := range cases {
		if got := CleanPrice(tc.in); got != tc.want {
			t.Errorf("CleanPrice(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGroupThousands(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3280000, "3,280,000.00"},
		{15000000, "15,000,000.00"},
		{999, "999.00"},
		{1000, "1,000.00"},
		{0, "0.00"},
		{123456789.5, "123,456,789.50"},
	}

	for _, tc := range cases {
		if got := groupThousands(tc.in); got != tc.want {
			t.Errorf("groupThousands(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
