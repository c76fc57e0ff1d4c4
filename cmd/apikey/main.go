package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"tryon/internal/infra"
	"tryon/internal/infra/credentials"
)

func main() {
	var (
		keyFlag    string
		statusFlag bool
	)
	flag.StringVar(&keyFlag, "key", "", "NanoBanana API key to store (prompted for when omitted)")
	flag.BoolVar(&statusFlag, "status", false, "Only report where the current key is resolved from")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger("cli", cfg.LogFile).With().Str("cmd", "apikey").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolver, closeCreds, err := credentials.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open credential stores: %v\n", err)
		os.Exit(1)
	}
	defer closeCreds()

	if statusFlag {
		res, err := resolver.Resolve(ctx)
		if err != nil {
			fmt.Println("no API key configured")
			fmt.Printf("checked: %s\n", strings.Join(resolver.Sources(), ", "))
			return
		}
		fmt.Printf("API key found in %s\n", res.Source)
		return
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key, err = promptKey(os.Stdin, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read api key: %v\n", err)
			os.Exit(1)
		}
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "NanoBanana API key is required via -key or prompt")
		os.Exit(1)
	}

	source, err := resolver.Save(ctx, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("NanoBanana API key stored in %s\n", source)
}

// promptKey reads the key without echo when stdin is a terminal.
func promptKey(in *os.File, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "NanoBanana API key: ")
	if term.IsTerminal(int(in.Fd())) {
		raw, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return readLine(in)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
