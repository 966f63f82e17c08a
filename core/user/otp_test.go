package user

import (
	"testing"
	"time"
)

func TestCheckCode(t *testing.T) {
	code, err := GenerateCode()
	if err != nil {
		t.Fatalf("GenerateCode(): %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("GenerateCode() = %q, want 6 digits", code)
	}

	hash := HashCode(code)
	expiry := time.Now().Add(30 * time.Minute)

	wrongCode := "000000"
	if code == wrongCode {
		wrongCode = "000001"
	}

	tests := []struct {
		name    string
		hash    []byte
		expiry  time.Time
		code    string
		now     time.Time
		wantErr error
	}{
		{name: "no hash stored", code: code, expiry: expiry, wantErr: ErrInvalidCode},
		{name: "wrong code", hash: hash, expiry: expiry, code: wrongCode, wantErr: ErrInvalidCode},
		{name: "expired code", hash: hash, expiry: expiry, code: code, now: expiry.Add(time.Minute), wantErr: ErrCodeExpired},
		{name: "valid code", hash: hash, expiry: expiry, code: code},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.now.IsZero() {
				NowFunc = func() time.Time { return tt.now }
				defer func() { NowFunc = time.Now }()
			}
			if err := checkCode(tt.hash, tt.expiry, tt.code); err != tt.wantErr {
				t.Errorf("checkCode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateCode_unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode(): %v", err)
		}
		seen[code] = true
	}
	// 10 collisions in a million-code space would mean a broken RNG
	if len(seen) < 2 {
		t.Errorf("GenerateCode() produced %d unique codes out of 10", len(seen))
	}
}
