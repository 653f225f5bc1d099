package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, ok := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	unsetEnv(t, "SSH_PORT")
	unsetEnv(t, "ORBFALL_SOUND")
	t.Setenv("LOG_LEVEL", "warn")

	if err := LoadDotEnv(filepath.Join("testdata", "orbfall.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := GetEnvInt("SSH_PORT", 0); got != 2323 {
		t.Errorf("SSH_PORT = %d, want 2323", got)
	}
	if !GetEnvBool("ORBFALL_SOUND", false) {
		t.Error("ORBFALL_SOUND not loaded")
	}
	if got := GetEnv("LOG_LEVEL", ""); got != "warn" {
		t.Errorf("LOG_LEVEL = %q, existing environment should win", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("ORBFALL_TEST_INT", " 42 ")
	t.Setenv("ORBFALL_TEST_BAD", "forty")
	t.Setenv("ORBFALL_TEST_BOOL", "off")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int", GetEnvInt("ORBFALL_TEST_INT", 0), 42},
		{"bad int", GetEnvInt("ORBFALL_TEST_BAD", 7), 7},
		{"unset int", GetEnvInt("ORBFALL_TEST_UNSET", 3), 3},
		{"bool off", GetEnvBool("ORBFALL_TEST_BOOL", true), false},
		{"bad bool", GetEnvBool("ORBFALL_TEST_BAD", true), true},
		{"string", GetEnv("ORBFALL_TEST_BAD", ""), "forty"},
		{"unset string", GetEnv("ORBFALL_TEST_UNSET", "x"), "x"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
