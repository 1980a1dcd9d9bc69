package itemmeta

import "testing"

func buildSample() string {
	lines := []string{
		"3010",
		"My Object",
		"permissions 0",
		"{",
		"base_mask\t7fffffff",
		"owner_mask\t7fffffff",
		"group_mask\t00000000",
		"everyone_mask\t00000000",
		"next_owner_mask\t00082000",
		"creator_id\t11111111-1111-1111-1111-111111111111",
		"owner_id\t22222222-2222-2222-2222-222222222222",
		"last_owner_id\t22222222-2222-2222-2222-222222222222",
		"group_id\t00000000-0000-0000-0000-000000000000",
		"}",
		"sale_info 0",
		"{",
		"sale_type\tnot",
		"sale_price\t10",
		"}",
	}
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func TestParseOrdering(t *testing.T) {
	p, err := Parse([]byte(buildSample()))
	if err != nil {
		t.Fatal(err)
	}
	if p.Fields["name"] != "My Object" {
		t.Fatalf("name: got %q", p.Fields["name"])
	}
	if p.Fields["base_mask"] != "2147483647" { // 0x7fffffff
		t.Fatalf("base_mask: got %q", p.Fields["base_mask"])
	}
	if p.Fields["owner_id"] != "22222222-2222-2222-2222-222222222222" {
		t.Fatalf("owner_id: got %q", p.Fields["owner_id"])
	}
	if p.Fields["price"] != "10" {
		t.Fatalf("price: got %q", p.Fields["price"])
	}
}

func TestParseTruncated(t *testing.T) {
	if _, err := Parse([]byte("only one line")); err != ErrUnexpectedEOF {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}
