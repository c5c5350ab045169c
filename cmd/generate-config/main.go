package main

import (
	"fmt"
	"os"

	"github.com/debemdeboas/editorial/internal/config"
	"gopkg.in/yaml.v3"
)

const header = `# Editorial configuration example
# Copy this file to config.yaml and customize as needed.
# S3 credentials (S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY) and the Clerk key
# (CLERK_API) are read from the environment or a .env file.

`

func main() {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Auth.Users = map[string]string{
		"admin": "-----BEGIN PUBLIC KEY-----\n...\n-----END PUBLIC KEY-----\n",
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Defaults do not validate: %v\n", err)
		os.Exit(1)
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}
	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
