package ambient

import "testing"

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	sounds := c.All()
	if len(sounds) != 8 {
		t.Fatalf("Expected 8 sounds, got %d", len(sounds))
	}
	if sounds[0].Title != "Rain" || sounds[0].Href != "/audios/rain.mp3" {
		t.Errorf("Unexpected first sound %+v", sounds[0])
	}

	sounds[0].Title = "mutated"
	if c.All()[0].Title != "Rain" {
		t.Error("Expected All() to return a copy")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "valid", data: "sounds:\n  - title: Rain\n    href: /rain.mp3\n"},
		{name: "empty", data: "sounds: []\n", wantErr: true},
		{name: "missing href", data: "sounds:\n  - title: Rain\n", wantErr: true},
		{name: "duplicate", data: "sounds:\n  - {title: Rain, href: /a.mp3}\n  - {title: Rain, href: /b.mp3}\n", wantErr: true},
		{name: "not yaml", data: "sounds: [", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy for parallel subtests (go < 1.22)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
