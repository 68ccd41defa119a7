package password

import (
	"errors"
	"strings"
	"testing"
)

func testHasher(t *testing.T, maxBytes int) *Argon2 {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Memory = minMemoryKB
	cfg.Time = 1
	cfg.MaxPasswordBytes = maxBytes
	h, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	return h
}

func TestArgon2RoundTrip(t *testing.T) {
	h := testHasher(t, 0)

	encoded, err := h.Hash("Str0ng!Passw0rd")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=2$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}

	if ok, err := h.Verify("Str0ng!Passw0rd", encoded); err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	if ok, err := h.Verify("Str0ng!Passw0re", encoded); err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v", ok, err)
	}
}

func TestArgon2SaltsDiffer(t *testing.T) {
	h := testHasher(t, 0)
	a, _ := h.Hash("same-input")
	b, _ := h.Hash("same-input")
	if a == b {
		t.Fatal("two hashes of the same password must not be equal")
	}
}

func TestArgon2RejectsMalformedHashes(t *testing.T) {
	h := testHasher(t, 0)
	good, err := h.Hash("version-test")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	cases := map[string]string{
		"not phc":       "not-a-phc-hash",
		"wrong version": strings.Replace(good, "$v=19$", "$v=18$", 1),
		"wrong algo":    strings.Replace(good, "$argon2id$", "$argon2i$", 1),
		"weak memory":   strings.Replace(good, "m=8192", "m=16", 1),
		"bad salt":      good[:strings.LastIndex(good, "$")-4] + "!!!!" + good[strings.LastIndex(good, "$"):],
	}
	for name, encoded := range cases {
		if _, err := h.Verify("version-test", encoded); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("%s: expected ErrMalformedHash, got %v", name, err)
		}
	}
}

func TestArgon2NeedsUpgrade(t *testing.T) {
	weak := testHasher(t, 0)
	encoded, err := weak.Hash("upgrade-me")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if up, err := weak.NeedsUpgrade(encoded); err != nil || up {
		t.Fatalf("same parameters: NeedsUpgrade = %v, %v", up, err)
	}

	cfg := DefaultConfig()
	cfg.Memory = 2 * minMemoryKB
	strong, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	if up, err := strong.NeedsUpgrade(encoded); err != nil || !up {
		t.Fatalf("stronger parameters: NeedsUpgrade = %v, %v", up, err)
	}
}

func TestArgon2LengthLimits(t *testing.T) {
	h := testHasher(t, 64)

	if _, err := h.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("empty: expected ErrEmptyPassword, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 65)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("65 bytes: expected ErrPasswordTooLong, got %v", err)
	}

	exact := strings.Repeat("b", 64)
	encoded, err := h.Hash(exact)
	if err != nil {
		t.Fatalf("64 bytes: %v", err)
	}
	if _, err := h.Verify(strings.Repeat("c", 65), encoded); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Verify 65 bytes: expected ErrPasswordTooLong, got %v", err)
	}
}

func TestArgon2DefaultMaxPasswordBytes(t *testing.T) {
	h := testHasher(t, 0)
	if _, err := h.Hash(strings.Repeat("d", DefaultMaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong above %d bytes, got %v", DefaultMaxPasswordBytes, err)
	}
	if _, err := h.Hash(strings.Repeat("e", DefaultMaxPasswordBytes)); err != nil {
		t.Fatalf("expected %d bytes to be accepted: %v", DefaultMaxPasswordBytes, err)
	}
}

func TestNewArgon2RejectsWeakParameters(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"memory":      func(c *Config) { c.Memory = 1024 },
		"time":        func(c *Config) { c.Time = 0 },
		"parallelism": func(c *Config) { c.Parallelism = 0 },
		"salt":        func(c *Config) { c.SaltLength = 8 },
		"key":         func(c *Config) { c.KeyLength = 8 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		if _, err := NewArgon2(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
