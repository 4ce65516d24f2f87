// Command hashpw prints a bcrypt hash for provisioning usuarios.password_hash.
//
//	echo -n 'secret' | hashpw -cost 12
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iliyamo/login-service/internal/password"
)

func main() {
	defCost := 10
	if v, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil {
		defCost = v
	}
	cost := flag.Int("cost", defCost, "bcrypt cost")
	secret := flag.String("p", "", "secret to hash (read from stdin when empty)")
	flag.Parse()

	s := *secret
	if s == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "hashpw: no secret on stdin")
			os.Exit(1)
		}
		s = strings.TrimRight(line, "\r\n")
	}
	if s == "" {
		fmt.Fprintln(os.Stderr, "hashpw: empty secret")
		os.Exit(1)
	}

	h, err := password.NewBcrypt(*cost).Hash(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(h)
}
