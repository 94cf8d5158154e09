package models

import (
	"encoding/json"
	"testing"
)

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchMode
		wantErr bool
	}{
		{"keyword", ModeKeyword, false},
		{"author", ModeAuthor, false},
		{"tag", ModeTag, false},
		{"semantic", ModeSemantic, false},
		{"", 0, true},
		{"fulltext", 0, true},
		{"Keyword", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSearchMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSearchMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSearchMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *SearchRequest
		wantErr bool
	}{
		{"empty query", &SearchRequest{Mode: ModeKeyword}, true},
		{"valid", &SearchRequest{Mode: ModeKeyword, Query: "night"}, false},
		{"unset limit allowed", &SearchRequest{Mode: ModeTag, Query: "life", Limit: 0}, false},
		{"negative limit", &SearchRequest{Mode: ModeSemantic, Query: "x", Limit: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNameCount_JSON(t *testing.T) {
	nc := NameCount{Name: "motivation", Count: 2}
	data, err := json.Marshal(nc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["motivation",2]` {
		t.Errorf("marshal: got %s", data)
	}

	var back NameCount
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != nc {
		t.Errorf("round trip: got %+v", back)
	}
}

func TestNameCount_UnmarshalInvalid(t *testing.T) {
	var nc NameCount
	if err := json.Unmarshal([]byte(`"not a pair"`), &nc); err == nil {
		t.Error("expected error for non-array input")
	}
	if err := json.Unmarshal([]byte(`[2,"motivation"]`), &nc); err == nil {
		t.Error("expected error for swapped pair")
	}
}
