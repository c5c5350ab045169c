// Command sign answers Ed25519 login challenges with a token for the
// X-Signature header or the auth_token cookie.
package main

import (
	"bufio"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/debemdeboas/editorial/internal/auth"
	"github.com/debemdeboas/editorial/internal/model"
)

func loadPrivateKey(filename string) (ed25519.PrivateKey, error) {
	privKeyBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(privKeyBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	privKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	edPriv, ok := privKey.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an Ed25519 private key")
	}
	return edPriv, nil
}

// signChallenge turns a base64 challenge into a token for user.
func signChallenge(key ed25519.PrivateKey, user model.UserID, challengeB64 string) (string, error) {
	challenge, err := base64.StdEncoding.DecodeString(challengeB64)
	if err != nil {
		return "", fmt.Errorf("invalid base64: %w", err)
	}
	return auth.FormatToken(user, ed25519.Sign(key, challenge)), nil
}

func main() {
	keyFile := pflag.StringP("key", "k", "privkey.pem", "PEM encoded Ed25519 private key")
	user := pflag.StringP("user", "u", "", "user ID the key is registered for")
	pflag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "--user is required")
		pflag.Usage()
		os.Exit(2)
	}

	privKey, err := loadPrivateKey(*keyFile)
	if err != nil {
		fmt.Println("Error loading private key:", err)
		os.Exit(1)
	}

	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	outputStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	fmt.Println("Enter challenges one by one. Type 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("Enter challenge (base64): "))

		if !scanner.Scan() {
			break
		}

		challengeB64 := strings.TrimSpace(scanner.Text())
		if challengeB64 == "" {
			continue
		}
		if challengeB64 == "quit" {
			break
		}

		token, err := signChallenge(privKey, model.UserID(*user), challengeB64)
		if err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			continue
		}

		fmt.Println(outputStyle.Render("Token: " + token))
	}

	if err := scanner.Err(); err != nil {
		fmt.Println("Error reading input:", err)
	}
}
