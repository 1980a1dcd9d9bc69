package environment

import "testing"

func TestLayerDataRoundTrip(t *testing.T) {
	want := LayerData{Type: LayerLand, Data: []byte{1, 2, 3, 4, 5}}
	got, err := DecodeLayerData(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != want.Type || string(got.Data) != string(want.Data) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
