package model

import "testing"

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Geometry
		wantOK bool
	}{
		{"Basic", "Left=0;Top=0;Right=10;Bottom=5", Geometry{0, 0, 10, 5}, true},
		{"TrailingSeparator", "Left=100;Top=80;Right=600;Bottom=500;", Geometry{100, 80, 500, 420}, true},
		{"AnyKeyOrder", "Bottom=70;Right=110;Top=20;Left=10;", Geometry{10, 20, 100, 50}, true},
		{"ExtraKeysIgnored", "Left=1;Top=2;Right=3;Bottom=4;imgL=0;DUID=A1B2;", Geometry{1, 2, 2, 2}, true},
		{"SpacesAsSeparators", " Left=1 Top=2 ; Right=3;Bottom=4 ", Geometry{1, 2, 2, 2}, true},
		{"NegativeSizePassesThrough", "Left=50;Top=50;Right=10;Bottom=0;", Geometry{50, 50, -40, -50}, true},
		{"NegativeCoordinates", "Left=-20;Top=-10;Right=0;Bottom=0;", Geometry{-20, -10, 20, 10}, true},
		{"Empty", "", Geometry{}, false},
		{"OnlySeparators", ";;;", Geometry{}, false},
		{"MissingBottom", "Left=0;Top=0;Right=10;", Geometry{}, false},
		{"NotAnInteger", "Left=x;Top=0;Right=10;Bottom=5", Geometry{}, false},
		{"EdgeGeometry", "SX=0;SY=0;EX=0;EY=0;EDGE=2;", Geometry{}, false},
		{"BareWords", "Left Top Right Bottom", Geometry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGeometry(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ParseGeometry(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseGeometry(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestGeometryStringRoundTrip(t *testing.T) {
	for _, g := range []Geometry{
		{0, 0, 10, 5},
		{100, 80, 500, 420},
		{-5, 7, 0, 0},
		{3, 4, -1, -2},
	} {
		got, ok := ParseGeometry(g.String())
		if !ok || got != g {
			t.Errorf("ParseGeometry(%q) = %+v, %v; want %+v, true", g.String(), got, ok, g)
		}
	}
}
