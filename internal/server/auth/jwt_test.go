package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/streamvault/accountd/internal/common"
)

func newTestIssuer() *Issuer {
	return NewIssuer([]byte("k"), time.Minute, time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	i := newTestIssuer()

	access, err := i.IssueAccess("u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := i.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if id, err := i.Verify(access, KindAccess); err != nil || id != "u1" {
		t.Errorf("Verify(access) = (%q, %v)", id, err)
	}
	if id, err := i.Verify(refresh, KindRefresh); err != nil || id != "u1" {
		t.Errorf("Verify(refresh) = (%q, %v)", id, err)
	}
}

func TestVerify_KindMismatch(t *testing.T) {
	i := newTestIssuer()

	access, err := i.IssueAccess("u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.Verify(access, KindRefresh); !errors.Is(err, common.ErrAuthentication) {
		t.Errorf("access token accepted as refresh: %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	i := NewIssuer([]byte("k"), -time.Minute, -time.Minute)

	token, err := i.IssueAccess("u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.Verify(token, KindAccess); !errors.Is(err, common.ErrAuthentication) {
		t.Errorf("expired token accepted: %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := newTestIssuer().IssueAccess("u1")
	if err != nil {
		t.Fatal(err)
	}

	other := NewIssuer([]byte("different"), time.Minute, time.Hour)
	if _, err := other.Verify(token, KindAccess); !errors.Is(err, common.ErrAuthentication) {
		t.Errorf("token with wrong signature accepted: %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	if _, err := newTestIssuer().Verify("not-a-token", KindAccess); !errors.Is(err, common.ErrAuthentication) {
		t.Errorf("garbage token accepted: %v", err)
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	i := newTestIssuer()
	a, err := i.IssueRefresh("u1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := i.IssueRefresh("u1")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two refresh tokens minted back to back are identical")
	}
}
