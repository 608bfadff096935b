package crypto

import (
	"encoding/hex"
	"testing"
)

func TestStdHashProviderSHA3_256_KnownVector(t *testing.T) {
	p := StdHashProvider{}
	sum, err := p.SHA3_256([]byte("abc"))
	if err != nil {
		t.Fatalf("SHA3_256 returned error: %v", err)
	}
	const want = "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"
	got := hex.EncodeToString(sum[:])
	if got != want {
		t.Fatalf("digest mismatch: got=%s want=%s", got, want)
	}
}

func TestStdHashProviderDeterministic(t *testing.T) {
	p := StdHashProvider{}
	a, _ := p.SHA3_256([]byte("commit-plan-bytes"))
	b, _ := p.SHA3_256([]byte("commit-plan-bytes"))
	if a != b {
		t.Fatalf("SHA3_256 not deterministic for identical input")
	}
	c, _ := p.SHA3_256([]byte("different-bytes"))
	if a == c {
		t.Fatalf("SHA3_256 collided for distinct inputs")
	}
}
