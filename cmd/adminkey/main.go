// Command adminkey prints the bcrypt hash to configure as ADMIN_KEY_HASH.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nsbs/certify/internal/pkg/auth"
	"github.com/nsbs/certify/internal/pkg/logger"
)

func main() {
	key := ""
	if len(os.Args) > 1 {
		key = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logger.Error().Err(err).Msg("Failed to read admin key from stdin")
			os.Exit(1)
		}
		key = strings.TrimSpace(line)
	}

	if len(key) < 16 {
		logger.Error().Msg("Admin key must be at least 16 characters")
		os.Exit(1)
	}

	hash, err := auth.HashAPIKey(key)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash admin key")
		os.Exit(1)
	}
	fmt.Println(hash)
}
