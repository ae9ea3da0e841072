package fingerprint

import "testing"

var testSignals = Signals{
	UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	ScreenWidth:  1920,
	ScreenHeight: 1080,
	Timezone:     "Europe/Berlin",
}

func TestDeriveKey(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		k1 := DeriveKey(testSignals)
		k2 := DeriveKey(testSignals)
		if string(k1) != string(k2) {
			t.Errorf("same signals derived different keys: %q vs %q", k1, k2)
		}
	})

	t.Run("FixedLength", func(t *testing.T) {
		for _, sig := range []Signals{
			{},
			testSignals,
			{UserAgent: "curl/8.0", ScreenWidth: 1, ScreenHeight: 1, Timezone: "UTC"},
		} {
			if k := DeriveKey(sig); len(k) != tokenLength {
				t.Errorf("key for %+v has length %d, want %d", sig, len(k), tokenLength)
			}
		}
	})

	t.Run("SignalSensitive", func(t *testing.T) {
		other := testSignals
		other.Timezone = "America/New_York"
		if string(DeriveKey(testSignals)) == string(DeriveKey(other)) {
			t.Error("different timezones should derive different keys")
		}
	})
}
