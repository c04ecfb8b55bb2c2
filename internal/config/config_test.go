package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Port != 5000 || c.Addr() != ":5000" {
		t.Errorf("Port = %d, Addr = %s", c.Port, c.Addr())
	}
	if c.ModelPath != "model.json" || c.LabelMapPath != "label_map.json" || c.DataPath != "data.json" {
		t.Errorf("unexpected artifact paths: %+v", c)
	}
	if c.LogLevel != log.InfoLevel {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, c Config)
	}{
		{
			name: "defaults when unset",
			env:  map[string]string{EnvPort: "", EnvLogLevel: "", EnvSentryDSN: ""},
			check: func(t *testing.T, c Config) {
				if c.Port != DefaultPort || c.SentryDSN != "" {
					t.Errorf("got %+v", c)
				}
			},
		},
		{
			name: "overrides",
			env:  map[string]string{EnvPort: "8081", EnvLogLevel: "debug", EnvSentryDSN: "https://key@sentry.example/1"},
			check: func(t *testing.T, c Config) {
				if c.Port != 8081 || c.LogLevel != log.DebugLevel || c.SentryDSN == "" {
					t.Errorf("got %+v", c)
				}
			},
		},
		{name: "bad port", env: map[string]string{EnvPort: "http"}, wantErr: true},
		{name: "port out of range", env: map[string]string{EnvPort: "70000"}, wantErr: true},
		{name: "bad level", env: map[string]string{EnvLogLevel: "chatty"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			c, err := FromEnv()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestFindWebDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "web"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	got := FindWebDir()
	want, _ := filepath.EvalSymlinks(filepath.Join(dir, "web"))
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Errorf("FindWebDir() = %q, want %q", got, want)
	}
}
