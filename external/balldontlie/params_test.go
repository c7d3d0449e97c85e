package balldontlie

import "testing"

func TestParamsEncode_KeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	params := Params{}.Set("season", "2018").Add("player_ids", "1", "2", "3")

	got := params.Encode(false)
	want := "season=2018&player_ids[]=1&player_ids[]=2&player_ids[]=3"
	if got != want {
		t.Fatalf("unexpected query: got=%q want=%q", got, want)
	}
}

func TestParamsEncode_EscapesUnlessRaw(t *testing.T) {
	t.Parallel()

	params := Params{}.Set("search", "de'aaron fox").Add("team ids", "a&b")

	if got, want := params.Encode(false), "search=de%27aaron+fox&team+ids[]=a%26b"; got != want {
		t.Fatalf("unexpected escaped query: got=%q want=%q", got, want)
	}
	if got, want := params.Encode(true), "search=de'aaron fox&team ids[]=a&b"; got != want {
		t.Fatalf("unexpected raw query: got=%q want=%q", got, want)
	}
}

func TestParamsEncode_Empty(t *testing.T) {
	t.Parallel()

	if got := (Params{}).Encode(false); got != "" {
		t.Fatalf("expected empty query, got=%q", got)
	}
	if got := (Params{}).Add("player_ids").Encode(false); got != "" {
		t.Fatalf("expected empty list to render nothing, got=%q", got)
	}
}
