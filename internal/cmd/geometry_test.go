package cmd

import "testing"

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		in       string
		wantCols int
		wantRows int
		wantErr  bool
	}{
		{"82x19", 82, 19, false},
		{"1x1", 1, 1, false},
		{"82", 0, 0, true},
		{"82x0", 0, 0, true},
		{"0x19", 0, 0, true},
		{"axb", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cols, rows, err := parseGeometry(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseGeometry(%q) = (%d, %d, nil), want error", tt.in, cols, rows)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGeometry(%q) unexpected error: %v", tt.in, err)
			}
			if cols != tt.wantCols || rows != tt.wantRows {
				t.Errorf("parseGeometry(%q) = (%d, %d), want (%d, %d)", tt.in, cols, rows, tt.wantCols, tt.wantRows)
			}
		})
	}
}
