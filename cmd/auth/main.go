package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aussiebroadwan/tokengate/internal/auth/app"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
)

func main() {
	cfg := app.LoadConfig()

	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(cfg, os.Args[2:]); err != nil {
			log.Fatalf("hash-password: %v", err)
		}
		return
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

// hashPassword prints the argon2id hash for a stock users file entry. The
// password is read from the first argument or, failing that, from stdin.
func hashPassword(cfg app.Config, args []string) error {
	cryptox.SetPepperPath(cfg.PepperFile)

	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return fmt.Errorf("empty password")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
