package textenc

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{"utf-8", false},
		{"UTF_8", false},
		{"utf8", false},
		{"utf-8-sig", false},
		{"latin-1", false},
		{"ISO-8859-1", false},
		{"cp1252", false},
		{"windows-1251", false},
		{"shift_jis", false},
		{"utf-16", false},
		{"klingon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lookup(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("Lookup(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if Known(tt.name) == tt.wantErr {
				t.Errorf("Known(%q) = %v", tt.name, !tt.wantErr)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		encoding string
		want     string
	}{
		{"plain utf-8", []byte("héllo"), "", "héllo"},
		{"bom stripped", []byte("\xef\xbb\xbfhello"), "utf-8", "hello"},
		{"utf-8-sig", []byte("\xef\xbb\xbfhello"), "utf-8-sig", "hello"},
		{"latin-1", []byte{'c', 'a', 'f', 0xe9}, "latin-1", "café"},
		{"cp1251", []byte{0xcf, 0xf0, 0xe8}, "cp1251", "При"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data, tt.encoding)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := Encode("café", "latin-1")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 4 || data[3] != 0xe9 {
		t.Fatalf("unexpected encoded bytes %v", data)
	}
	back, err := Decode(data, "latin-1")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if back != "café" {
		t.Errorf("round trip = %q, want %q", back, "café")
	}
}

func TestDecodeUnknownEncoding(t *testing.T) {
	if _, err := Decode([]byte("x"), "klingon"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
