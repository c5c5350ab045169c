package config

import (
	"os"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// TestConfigDefaultsGoldenFile tests that our defaults match the golden file
func TestConfigDefaultsGoldenFile(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	goldenData, err := os.ReadFile("testdata/defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to read golden defaults file: %v", err)
	}

	var goldenConfig Config
	if err := yaml.Unmarshal(goldenData, &goldenConfig); err != nil {
		t.Fatalf("Failed to parse golden config: %v", err)
	}

	testConfig := &Config{}
	ApplyDefaults(testConfig)

	// The golden file spells out an empty users map; defaults leave it nil.
	goldenConfig.Auth.Users = nil

	if !reflect.DeepEqual(*testConfig, goldenConfig) {
		t.Errorf("Defaults drifted from testdata/defaults.yaml:\n got  %+v\n want %+v", *testConfig, goldenConfig)
	}
}
