package publication

import (
	"reflect"
	"testing"
)

func TestLinkFor(t *testing.T) {
	tests := []struct {
		name  string
		wosID string
		want  string
	}{
		{"present", "WOS:123", "https://www.webofscience.com/wos/woscc/full-record/WOS:123"},
		{"sentinel", Sentinel, Sentinel},
		{"empty", "", Sentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkFor(tt.wosID); got != tt.want {
				t.Errorf("LinkFor(%q) = %q, want %q", tt.wosID, got, tt.want)
			}
		})
	}
}

func TestPublication_AuthorList(t *testing.T) {
	tests := []struct {
		authors string
		want    []string
	}{
		{"Smith, J.; Doe, A.", []string{"Smith, J.", "Doe, A."}},
		{" Smith, J. ;; ", []string{"Smith, J."}},
		{"", nil},
		{Sentinel, nil},
	}

	for _, tt := range tests {
		got := Publication{Authors: tt.authors}.AuthorList()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("AuthorList(%q) = %v, want %v", tt.authors, got, tt.want)
		}
	}
}

func TestPublication_KeywordList(t *testing.T) {
	p := Publication{Keywords: "fungi; aquatic; ; fungi"}
	want := []string{"fungi", "aquatic", "fungi"}
	if got := p.KeywordList(); !reflect.DeepEqual(got, want) {
		t.Errorf("KeywordList() = %v, want %v", got, want)
	}
}

func TestBlankAndOrSentinel(t *testing.T) {
	if Blank(Sentinel) != "" {
		t.Error("Blank(Sentinel) should be empty")
	}
	if Blank("x") != "x" {
		t.Error("Blank should keep real values")
	}
	if OrSentinel("") != Sentinel {
		t.Error("OrSentinel(\"\") should be the sentinel")
	}
	if len(Publication{}.Values()) != len(Columns) {
		t.Error("Values() must line up with Columns")
	}
}
