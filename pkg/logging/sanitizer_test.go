package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "sqlserver url",
			input:    "sqlserver://sa:P@ssw0rd1@db.example.com:1433?database=SAC&encrypt=true",
			contains: []string{RedactedText, "database=SAC"},
			absent:   []string{"P@ssw0rd1", "sa:"},
		},
		{
			name:     "ado style",
			input:    "server=db;user id=sa;password=hunter2;database=SAC",
			contains: []string{"password=" + RedactedText, "database=SAC"},
			absent:   []string{"hunter2"},
		},
		{
			name:     "azure client secret",
			input:    "sqlserver://db.example.com?database=SAC&fedauth=ActiveDirectoryServicePrincipal&clientsecret=abc123",
			contains: []string{"clientsecret=" + RedactedText},
			absent:   []string{"abc123"},
		},
		{
			name:     "postgres keyword form",
			input:    "host=localhost port=5432 user=sac password=pw dbname=sac sslmode=disable",
			contains: []string{"password=" + RedactedText},
			absent:   []string{"password=pw "},
		},
		{
			name:     "no credentials",
			input:    "file:sac.db?cache=shared",
			contains: []string{"file:sac.db?cache=shared"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeConnectionString(tt.input)
			for _, c := range tt.contains {
				assert.Contains(t, got, c)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, got, a)
			}
		})
	}

	assert.Equal(t, "", SanitizeConnectionString(""))
}

func TestSanitizeError(t *testing.T) {
	assert.Equal(t, "", SanitizeError(nil))

	err := errors.New("login failed: password=topsecret; token Bearer aaa.bbb.ccc; cookie session=xxx.yyy.zzz")
	got := SanitizeError(err)

	assert.NotContains(t, got, "topsecret")
	assert.NotContains(t, got, "aaa.bbb.ccc")
	assert.NotContains(t, got, "xxx.yyy.zzz")
	assert.Contains(t, got, "login failed")
}

func TestSanitizeQuery(t *testing.T) {
	short := "SELECT * FROM tblAcctSpecial WHERE CustomerNum = @p1"
	assert.Equal(t, short, SanitizeQuery(short))

	long := "SELECT * FROM tblAcctSpecial WHERE " + strings.Repeat("CustomerNum = @p1 AND ", 10)
	got := SanitizeQuery(long)
	assert.Equal(t, MaxQueryLogLength+3, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "", SanitizeQuery(""))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 5))
	assert.Equal(t, "ab...", TruncateString("abcdef", 2))
}
