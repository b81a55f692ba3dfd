package coinflip

import "testing"

func TestJsonObjectWriter_PreservesFieldOrder(t *testing.T) {
	var w jsonObjectWriter
	w.Append("command", "buy")
	w.Append("coin", "bitcoin")
	w.Append("total", M(42))

	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	want := `{"command":"buy","coin":"bitcoin","total":"42"}`
	if string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_OptionalSkipsZeroValues(t *testing.T) {
	var w jsonObjectWriter
	w.Append("coin", "pepe")
	w.Optional("symbol", "")
	w.Optional("name", "Pepe")

	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	want := `{"coin":"pepe","name":"Pepe"}`
	if string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_Empty(t *testing.T) {
	var w jsonObjectWriter
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("MarshalJSON() = %s, want {}", got)
	}
}
